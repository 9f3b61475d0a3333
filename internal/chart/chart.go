// Package chart renders the monthly trend and the forecast as PNG images.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Veraticus/retail-insights/internal/model"
)

// Output files written under the charts directory.
const (
	MonthlyFile  = "monthly_sales.png"
	ForecastFile = "weekly_forecast.png"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

var (
	lineColor     = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	observedColor = color.RGBA{A: 0xff}
	bandColor     = color.RGBA{R: 0x00, G: 0x72, B: 0xb2, A: 0x40}
)

// Chart dimensions.
var (
	monthlyWidth   = 10 * vg.Inch
	monthlyHeight  = 5 * vg.Inch
	forecastWidth  = 10 * vg.Inch
	forecastHeight = 6 * vg.Inch
)

// RenderMonthly draws monthly totals as a line with point markers, one
// rotated tick label per month.
func RenderMonthly(path string, monthly model.MonthlyTotals) error {
	if len(monthly) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = "Monthly Total Sales"
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Total Sales"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(monthly))
	labels := make([]string, len(monthly))
	for i, m := range monthly {
		labels[i] = m.YearMonth
		// Months without any recorded sale keep their tick but get no point.
		if math.IsNaN(m.TotalSales) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: m.TotalSales})
	}
	if len(pts) == 0 {
		return ErrNoData
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("failed to build monthly line: %w", err)
	}
	line.Color = lineColor
	points.Color = lineColor
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return save(p, monthlyWidth, monthlyHeight, path)
}

// RenderForecast draws the observed weekly totals as points, the fitted and
// predicted mean as a line and the prediction interval as a shaded band.
func RenderForecast(path string, history model.WeeklySeries, forecast model.Forecast) error {
	if len(forecast.Points) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = "Weekly Sales Forecast"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Sales"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	band := make(plotter.XYs, 0, 2*len(forecast.Points))
	mean := make(plotter.XYs, len(forecast.Points))
	for i, pt := range forecast.Points {
		x := timeX(pt.Date)
		mean[i].X, mean[i].Y = x, pt.Mean
		band = append(band, plotter.XY{X: x, Y: pt.Upper})
	}
	for i := len(forecast.Points) - 1; i >= 0; i-- {
		pt := forecast.Points[i]
		band = append(band, plotter.XY{X: timeX(pt.Date), Y: pt.Lower})
	}

	poly, err := plotter.NewPolygon(band)
	if err != nil {
		return fmt.Errorf("failed to build interval band: %w", err)
	}
	poly.Color = bandColor
	poly.LineStyle.Width = 0
	p.Add(poly)

	line, err := plotter.NewLine(mean)
	if err != nil {
		return fmt.Errorf("failed to build forecast line: %w", err)
	}
	line.Color = lineColor
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("forecast", line)
	p.Legend.Add("interval", poly)

	if len(history) > 0 {
		observed := make(plotter.XYs, len(history))
		for i, h := range history {
			observed[i].X, observed[i].Y = timeX(h.Date), h.Sales
		}
		scatter, err := plotter.NewScatter(observed)
		if err != nil {
			return fmt.Errorf("failed to build observed points: %w", err)
		}
		scatter.Color = observedColor
		scatter.Radius = vg.Points(1.5)
		scatter.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add("observed", scatter)
	}
	p.Legend.Top = true

	return save(p, forecastWidth, forecastHeight, path)
}

func timeX(t time.Time) float64 {
	return float64(t.Unix())
}

// save writes the plot, creating the parent directory when needed.
func save(p *plot.Plot, width, height vg.Length, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}
