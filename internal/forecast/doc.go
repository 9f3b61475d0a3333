// Package forecast fits an additive time-series model to weekly sales totals and
// predicts future periods with uncertainty bounds.
//
// The model is the sum of a piecewise-linear trend, whose slope may change at a set of
// changepoints placed over the first part of the history, and a yearly Fourier
// seasonality that is enabled once the history covers two full years. Coefficients are
// fitted by penalized least squares on a rescaled series; the penalties play the role of
// prior scales, so changepoints and seasonal terms stay small unless the data insists.
//
// Bounds are a prediction interval built from the residual spread and the leverage of
// each predicted point, so they widen as the forecast moves away from the data.
//
// Basic usage:
//
//	m, err := forecast.Fit(series, forecast.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fc, err := m.Predict(12)
package forecast
