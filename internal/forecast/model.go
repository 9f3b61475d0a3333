package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/retail-insights/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	daysPerYear = 365.25
	// Keeps the normal equations positive definite when columns are collinear.
	jitter = 1e-9
)

var (
	// ErrInsufficientData is returned when the series has fewer than two observations.
	ErrInsufficientData = errors.New("series needs at least two observations")
	// ErrSingular is returned when the normal equations cannot be factorized.
	ErrSingular = errors.New("model matrix is singular")
)

// Model is a fitted additive trend + seasonality model.
type Model struct {
	start        time.Time
	history      model.WeeklySeries
	changepoints []float64
	beta         *mat.VecDense
	chol         mat.Cholesky
	opts         Options
	span         float64
	yScale       float64
	sigma        float64
	yearly       bool
}

// Fit fits the model to a weekly series ordered by date.
func Fit(series model.WeeklySeries, opts Options) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(series) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientData, len(series))
	}

	start := series[0].Date
	span := series.Last().Sub(start).Seconds()
	if span <= 0 {
		return nil, fmt.Errorf("%w: all observations share one date", ErrInsufficientData)
	}

	yScale := 0.0
	for _, p := range series {
		yScale = math.Max(yScale, math.Abs(p.Sales))
	}
	if yScale == 0 {
		yScale = 1
	}

	m := &Model{
		start:   start,
		history: series,
		opts:    opts,
		span:    span,
		yScale:  yScale,
	}
	m.yearly = m.useYearly()
	m.changepoints = m.placeChangepoints()

	n := len(series)
	p := m.width()
	rows := make([][]float64, n)
	y := make([]float64, n)
	for i, obs := range series {
		rows[i] = m.features(obs.Date)
		y[i] = obs.Sales / yScale
	}

	// Normal equations with a ridge penalty per coefficient group.
	penalty := m.penalties()
	a := make([]float64, p*p)
	b := make([]float64, p)
	for i := range rows {
		for j := 0; j < p; j++ {
			b[j] += rows[i][j] * y[i]
			for k := 0; k < p; k++ {
				a[j*p+k] += rows[i][j] * rows[i][k]
			}
		}
	}
	for j := 0; j < p; j++ {
		a[j*p+j] += penalty[j] + jitter
	}

	if ok := m.chol.Factorize(mat.NewSymDense(p, a)); !ok {
		return nil, ErrSingular
	}
	m.beta = mat.NewVecDense(p, nil)
	if err := m.chol.SolveVecTo(m.beta, mat.NewVecDense(p, b)); err != nil {
		return nil, fmt.Errorf("failed to solve model: %w", err)
	}

	coef := m.beta.RawVector().Data
	ssr := 0.0
	for i := range rows {
		r := y[i] - floats.Dot(rows[i], coef)
		ssr += r * r
	}
	dof := math.Max(float64(n-2), 1)
	m.sigma = math.Sqrt(ssr / dof)

	return m, nil
}

// Predict returns fitted values for the history followed by horizon future weeks.
func (m *Model) Predict(horizon int) (model.Forecast, error) {
	if horizon < 0 {
		return model.Forecast{}, fmt.Errorf("horizon cannot be negative: %d", horizon)
	}

	dates := make([]time.Time, 0, len(m.history)+horizon)
	for _, p := range m.history {
		dates = append(dates, p.Date)
	}
	dates = append(dates, FutureDates(m.history.Last(), horizon)...)

	z := distuv.UnitNormal.Quantile(0.5 + m.opts.IntervalWidth/2)
	coef := m.beta.RawVector().Data
	p := len(coef)
	solved := mat.NewVecDense(p, nil)

	points := make([]model.ForecastPoint, len(dates))
	for i, d := range dates {
		x := m.features(d)
		mean := floats.Dot(x, coef)

		xv := mat.NewVecDense(p, x)
		if err := m.chol.SolveVecTo(solved, xv); err != nil {
			return model.Forecast{}, fmt.Errorf("failed to compute interval: %w", err)
		}
		leverage := math.Max(mat.Dot(xv, solved), 0)
		half := z * m.sigma * math.Sqrt(1+leverage)

		points[i] = model.ForecastPoint{
			Date:  d,
			Mean:  mean * m.yScale,
			Lower: (mean - half) * m.yScale,
			Upper: (mean + half) * m.yScale,
		}
	}

	return model.Forecast{Points: points, Horizon: horizon}, nil
}

// Changepoints returns the dates at which the trend may change slope.
func (m *Model) Changepoints() []time.Time {
	out := make([]time.Time, len(m.changepoints))
	for i, c := range m.changepoints {
		out[i] = m.start.Add(time.Duration(c * m.span * float64(time.Second)))
	}
	return out
}

// YearlySeasonality reports whether the fitted model includes yearly terms.
func (m *Model) YearlySeasonality() bool {
	return m.yearly
}

func (m *Model) useYearly() bool {
	switch m.opts.YearlySeasonality {
	case SeasonalityOn:
		return m.opts.YearlyOrder > 0
	case SeasonalityOff:
		return false
	default:
		return m.opts.YearlyOrder > 0 && m.span >= 2*daysPerYear*24*3600
	}
}

// placeChangepoints spreads changepoints evenly over the first ChangepointRange of the
// history, skipping the first observation.
func (m *Model) placeChangepoints() []float64 {
	histSize := int(math.Floor(float64(len(m.history)) * m.opts.ChangepointRange))
	count := m.opts.MaxChangepoints
	if histSize-1 < count {
		count = histSize - 1
	}
	if count <= 0 {
		return nil
	}

	cps := make([]float64, 0, count)
	for i := 1; i <= count; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(count)))
		cps = append(cps, m.scaleTime(m.history[idx].Date))
	}
	return cps
}

func (m *Model) scaleTime(t time.Time) float64 {
	return t.Sub(m.start).Seconds() / m.span
}

func (m *Model) width() int {
	p := 2 + len(m.changepoints)
	if m.yearly {
		p += 2 * m.opts.YearlyOrder
	}
	return p
}

// features builds the design row: intercept, slope, changepoint hinges, Fourier terms.
func (m *Model) features(t time.Time) []float64 {
	ts := m.scaleTime(t)
	x := make([]float64, 0, m.width())
	x = append(x, 1, ts)
	for _, c := range m.changepoints {
		x = append(x, math.Max(ts-c, 0))
	}
	if m.yearly {
		days := float64(t.Unix()) / 86400
		for k := 1; k <= m.opts.YearlyOrder; k++ {
			angle := 2 * math.Pi * float64(k) * days / daysPerYear
			x = append(x, math.Sin(angle), math.Cos(angle))
		}
	}
	return x
}

func (m *Model) penalties() []float64 {
	cp := math.Pow(m.opts.NoiseScale/m.opts.ChangepointPriorScale, 2)
	seasonal := math.Pow(m.opts.NoiseScale/m.opts.SeasonalityPriorScale, 2)

	out := make([]float64, 0, m.width())
	out = append(out, 0, 0)
	for range m.changepoints {
		out = append(out, cp)
	}
	if m.yearly {
		for k := 0; k < 2*m.opts.YearlyOrder; k++ {
			out = append(out, seasonal)
		}
	}
	return out
}

// FutureDates returns horizon weekly dates after last, anchored on Sundays.
// The first date is the first Sunday strictly after last.
func FutureDates(last time.Time, horizon int) []time.Time {
	if horizon <= 0 {
		return nil
	}
	offset := (int(time.Sunday) - int(last.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	first := last.AddDate(0, 0, offset)

	dates := make([]time.Time, horizon)
	for i := range dates {
		dates[i] = first.AddDate(0, 0, 7*i)
	}
	return dates
}
