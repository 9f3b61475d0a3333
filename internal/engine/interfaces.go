package engine

import (
	"github.com/Veraticus/retail-insights/internal/chart"
	"github.com/Veraticus/retail-insights/internal/forecast"
	"github.com/Veraticus/retail-insights/internal/model"
)

// Forecaster fits a weekly series and predicts horizon future periods.
type Forecaster interface {
	Forecast(series model.WeeklySeries, horizon int) (model.Forecast, error)
}

// Renderer draws the monthly and forecast charts.
type Renderer interface {
	RenderMonthly(path string, monthly model.MonthlyTotals) error
	RenderForecast(path string, history model.WeeklySeries, forecast model.Forecast) error
}

// TrendForecaster adapts the forecast package to Forecaster.
type TrendForecaster struct {
	Options forecast.Options
}

// Forecast implements Forecaster.
func (f TrendForecaster) Forecast(series model.WeeklySeries, horizon int) (model.Forecast, error) {
	m, err := forecast.Fit(series, f.Options)
	if err != nil {
		return model.Forecast{}, err
	}
	return m.Predict(horizon)
}

// PNGRenderer adapts the chart package to Renderer.
type PNGRenderer struct{}

// RenderMonthly implements Renderer.
func (PNGRenderer) RenderMonthly(path string, monthly model.MonthlyTotals) error {
	return chart.RenderMonthly(path, monthly)
}

// RenderForecast implements Renderer.
func (PNGRenderer) RenderForecast(path string, history model.WeeklySeries, f model.Forecast) error {
	return chart.RenderForecast(path, history, f)
}
