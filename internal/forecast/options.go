package forecast

import "fmt"

// Seasonality modes.
const (
	SeasonalityAuto = "auto"
	SeasonalityOn   = "on"
	SeasonalityOff  = "off"
)

// Options configures model fitting.
type Options struct {
	// YearlySeasonality is auto, on or off. Auto enables it for histories of two years or more.
	YearlySeasonality string
	// IntervalWidth is the coverage of the uncertainty interval, in (0, 1).
	IntervalWidth float64
	// ChangepointRange is the share of the history in which changepoints are placed.
	ChangepointRange float64
	// ChangepointPriorScale controls how freely the trend may bend.
	ChangepointPriorScale float64
	// SeasonalityPriorScale controls the strength of the seasonal terms.
	SeasonalityPriorScale float64
	// NoiseScale is the assumed noise level of the rescaled series.
	NoiseScale float64
	// MaxChangepoints caps the number of trend changepoints.
	MaxChangepoints int
	// YearlyOrder is the number of Fourier pairs for yearly seasonality.
	YearlyOrder int
}

// DefaultOptions returns the defaults used by the pipeline.
func DefaultOptions() Options {
	return Options{
		YearlySeasonality:     SeasonalityAuto,
		IntervalWidth:         0.8,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		NoiseScale:            0.05,
		MaxChangepoints:       25,
		YearlyOrder:           10,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.IntervalWidth <= 0 || o.IntervalWidth >= 1 {
		return fmt.Errorf("interval width must be in (0, 1), got %v", o.IntervalWidth)
	}
	if o.ChangepointRange <= 0 || o.ChangepointRange > 1 {
		return fmt.Errorf("changepoint range must be in (0, 1], got %v", o.ChangepointRange)
	}
	if o.ChangepointPriorScale <= 0 || o.SeasonalityPriorScale <= 0 || o.NoiseScale <= 0 {
		return fmt.Errorf("prior and noise scales must be positive")
	}
	if o.MaxChangepoints < 0 || o.YearlyOrder < 0 {
		return fmt.Errorf("changepoint count and yearly order cannot be negative")
	}
	switch o.YearlySeasonality {
	case SeasonalityAuto, SeasonalityOn, SeasonalityOff:
	default:
		return fmt.Errorf("unknown yearly seasonality mode %q", o.YearlySeasonality)
	}
	return nil
}
