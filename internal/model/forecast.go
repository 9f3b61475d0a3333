package model

import "time"

// ForecastPoint is one predicted period.
type ForecastPoint struct {
	Date  time.Time
	Mean  float64
	Lower float64
	Upper float64
}

// Forecast holds in-sample fitted rows followed by the future rows.
type Forecast struct {
	Points []ForecastPoint
	// Horizon is how many trailing points lie beyond the observed history.
	Horizon int
}

// Name implements Table.
func (Forecast) Name() string { return "forecast_summary" }

// Header implements Table.
func (Forecast) Header() []string { return []string{"ds", "yhat", "yhat_lower", "yhat_upper"} }

// Records implements Table.
func (f Forecast) Records() [][]string {
	records := make([][]string, 0, len(f.Points))
	for _, p := range f.Points {
		records = append(records, []string{
			FormatDate(p.Date),
			FormatFloat(p.Mean),
			FormatFloat(p.Lower),
			FormatFloat(p.Upper),
		})
	}
	return records
}

// Tail returns a forecast holding only the last n points.
func (f Forecast) Tail(n int) Forecast {
	if n > len(f.Points) {
		n = len(f.Points)
	}
	horizon := f.Horizon
	if horizon > n {
		horizon = n
	}
	return Forecast{Points: f.Points[len(f.Points)-n:], Horizon: horizon}
}

// Future returns only the rows beyond the observed history.
func (f Forecast) Future() Forecast {
	return f.Tail(f.Horizon)
}

// History returns only the in-sample fitted rows.
func (f Forecast) History() []ForecastPoint {
	return f.Points[:len(f.Points)-f.Horizon]
}
