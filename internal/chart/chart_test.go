package chart

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/retail-insights/internal/model"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "expected PNG header in %s", path)
}

func TestRenderMonthly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", MonthlyFile)
	monthly := model.MonthlyTotals{
		{YearMonth: "2012-02", TotalSales: 13200},
		{YearMonth: "2012-03", TotalSales: 16400},
	}

	require.NoError(t, RenderMonthly(path, monthly))
	assertPNG(t, path)

	gap := filepath.Join(t.TempDir(), MonthlyFile)
	monthly = append(monthly, model.MonthlyTotal{YearMonth: "2012-04", TotalSales: math.NaN()})
	require.NoError(t, RenderMonthly(gap, monthly))
	assertPNG(t, gap)
}

func TestRenderForecast(t *testing.T) {
	start := time.Date(2012, 2, 3, 0, 0, 0, 0, time.UTC)
	history := make(model.WeeklySeries, 8)
	points := make([]model.ForecastPoint, 0, 20)
	for i := range history {
		d := start.AddDate(0, 0, 7*i)
		history[i] = model.WeeklyPoint{Date: d, Sales: 3000 + 300*float64(i)}
		points = append(points, model.ForecastPoint{Date: d, Mean: history[i].Sales, Lower: history[i].Sales - 100, Upper: history[i].Sales + 100})
	}
	for i := 0; i < 12; i++ {
		d := time.Date(2012, 3, 25, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*i)
		points = append(points, model.ForecastPoint{Date: d, Mean: 5400, Lower: 5000, Upper: 5800})
	}

	path := filepath.Join(t.TempDir(), ForecastFile)
	require.NoError(t, RenderForecast(path, history, model.Forecast{Points: points, Horizon: 12}))
	assertPNG(t, path)
}

func TestRender_NoData(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, RenderMonthly(filepath.Join(dir, MonthlyFile), nil), ErrNoData)
	assert.ErrorIs(t, RenderMonthly(filepath.Join(dir, MonthlyFile), model.MonthlyTotals{{YearMonth: "2012-02", TotalSales: math.NaN()}}), ErrNoData)
	assert.ErrorIs(t, RenderForecast(filepath.Join(dir, ForecastFile), nil, model.Forecast{}), ErrNoData)
}
