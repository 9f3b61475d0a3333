package storage_test

import (
	"context"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/Veraticus/retail-insights/internal/loader"
	"github.com/Veraticus/retail-insights/internal/model"
	"github.com/Veraticus/retail-insights/internal/storage"
	"github.com/Veraticus/retail-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageSalesByStore(t *testing.T) {
	store := testutil.SetupTestStorage(t, testutil.DefaultFixture().Load(t))

	result, err := store.AverageSalesByStore(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.StoreAverages{
		{Store: "2", AvgWeeklySales: 2350},
		{Store: "1", AvgWeeklySales: 1350},
	}, result)
}

func TestAverageSalesByStoreRowPerDistinctStore(t *testing.T) {
	fixture := testutil.DefaultFixture()
	fixture.Stores = []testutil.FixtureStore{
		{ID: 1, Type: "A", Size: 1},
		{ID: 5, Type: "B", Size: 2},
		{ID: 9, Type: "C", Size: 3},
		{ID: 12, Type: "A", Size: 4},
	}
	fixture.Depts = 3
	store := testutil.SetupTestStorage(t, fixture.Load(t))

	result, err := store.AverageSalesByStore(context.Background())
	require.NoError(t, err)
	assert.Len(t, result, len(fixture.Stores))

	for i := 1; i < len(result); i++ {
		assert.GreaterOrEqual(t, result[i-1].AvgWeeklySales, result[i].AvgWeeklySales)
	}
}

func TestAverageSalesByType(t *testing.T) {
	fixture := testutil.DefaultFixture()
	fixture.Stores = []testutil.FixtureStore{
		{ID: 1, Type: "A", Size: 1},
		{ID: 2, Type: "A", Size: 2},
		{ID: 3, Type: "B", Size: 3},
	}
	fixture.Depts = 2
	fixture.Sales = func(store, dept, week int) float64 {
		return float64(store*100+dept*10+week) + 0.37
	}
	store := testutil.SetupTestStorage(t, fixture.Load(t))

	// Re-derive the query by hand from the values written to the fixture.
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, s := range fixture.Stores {
		for dept := 1; dept <= fixture.Depts; dept++ {
			for week := 0; week < fixture.Weeks; week++ {
				v, err := strconv.ParseFloat(strconv.FormatFloat(fixture.Sales(s.ID, dept, week), 'f', 2, 64), 64)
				require.NoError(t, err)
				sums[s.Type] += v
				counts[s.Type]++
			}
		}
	}

	result, err := store.AverageSalesByType(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "B", result[0].Type)
	assert.Equal(t, "A", result[1].Type)

	for _, row := range result {
		want := math.Round(sums[row.Type]/float64(counts[row.Type])*100) / 100
		assert.InDelta(t, want, row.AvgSales, 0.0051, "type %s", row.Type)
		assert.InDelta(t, math.Round(row.AvgSales*100)/100, row.AvgSales, 1e-9, "rounded to 2 decimals")
	}
}

func TestMonthlySales(t *testing.T) {
	store := testutil.SetupTestStorage(t, testutil.DefaultFixture().Load(t))

	result, err := store.MonthlySales(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.MonthlyTotals{
		{YearMonth: "2012-02", TotalSales: 13200},
		{YearMonth: "2012-03", TotalSales: 16400},
	}, result)
}

func TestMonthlySalesOneRowPerMonth(t *testing.T) {
	fixture := testutil.DefaultFixture()
	fixture.Start = time.Date(2010, 11, 5, 0, 0, 0, 0, time.UTC)
	fixture.Weeks = 30
	store := testutil.SetupTestStorage(t, fixture.Load(t))

	want := map[string]bool{}
	for _, d := range fixture.Dates() {
		want[d.Format("2006-01")] = true
	}

	result, err := store.MonthlySales(context.Background())
	require.NoError(t, err)
	assert.Len(t, result, len(want))

	for i, row := range result {
		assert.True(t, want[row.YearMonth], "unexpected month %s", row.YearMonth)
		if i > 0 {
			assert.Less(t, result[i-1].YearMonth, row.YearMonth)
		}
	}
}

func TestWeeklySales(t *testing.T) {
	fixture := testutil.DefaultFixture()
	store := testutil.SetupTestStorage(t, fixture.Load(t))

	series, err := store.WeeklySales(context.Background())
	require.NoError(t, err)
	require.Len(t, series, fixture.Weeks)

	for i, p := range series {
		assert.True(t, p.Date.Equal(fixture.Dates()[i]))
		assert.Equal(t, float64(3000+300*i), p.Sales)
	}
}

func TestInvalidDateHaltsQueries(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStorage(t, nil)

	sales, err := loader.Parse(stringsReader("Store,Date,Weekly_Sales\n1,2012-02-03,10\n1,someday,20\n"), loader.SalesTable)
	require.NoError(t, err)
	require.NoError(t, store.RegisterTable(ctx, sales))

	_, err = store.MonthlySales(ctx)
	assert.ErrorIs(t, err, storage.ErrInvalidDate)

	_, err = store.WeeklySales(ctx)
	assert.ErrorIs(t, err, storage.ErrInvalidDate)
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStorage(t, testutil.DefaultFixture().Load(t))

	result, err := store.Query(ctx, `SELECT COUNT(*) AS n, MAX("Temperature") AS hottest FROM features`)
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "hottest"}, result.Header())
	assert.Equal(t, [][]string{{"16", "47"}}, result.Records())

	_, err = store.Query(ctx, `DELETE FROM sales`)
	require.Error(t, err, "statements that write are rejected")

	remaining, err := store.Query(ctx, `SELECT COUNT(*) FROM sales`)
	require.NoError(t, err)
	assert.Equal(t, "16", remaining.Records()[0][0])

	_, err = store.Query(ctx, "  ")
	assert.ErrorIs(t, err, storage.ErrEmptyString)
}

func registerCSV(t *testing.T, store *storage.SQLiteStorage, name, content string) {
	t.Helper()
	table, err := loader.Parse(stringsReader(content), name)
	require.NoError(t, err)
	require.NoError(t, store.RegisterTable(context.Background(), table))
}

func TestQueriesWithTextStoreIDs(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStorage(t, nil)
	registerCSV(t, store, loader.SalesTable, "Store,Date,Weekly_Sales\n"+
		"S1,2012-02-03,100\nS1,2012-02-10,300\nS2,2012-02-03,50\nS2,2012-02-10,50\n")
	registerCSV(t, store, loader.StoresTable, "Store,Type,Size\nS1,A,10\nS2,B,20\n")

	stores, err := store.AverageSalesByStore(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StoreAverages{
		{Store: "S1", AvgWeeklySales: 200},
		{Store: "S2", AvgWeeklySales: 50},
	}, stores)
	assert.Equal(t, [][]string{{"S1", "200"}, {"S2", "50"}}, stores.Records())

	types, err := store.AverageSalesByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.TypeAverages{{Type: "A", AvgSales: 200}, {Type: "B", AvgSales: 50}}, types)
}

func TestQueriesWithMissingSales(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStorage(t, nil)
	// Store 2 never reports a sale, and nothing at all is known for 2012-03-02.
	registerCSV(t, store, loader.SalesTable, "Store,Date,Weekly_Sales\n"+
		"1,2012-02-03,100\n1,2012-02-10,200\n2,2012-02-03,NA\n2,2012-02-10,NA\n1,2012-03-02,NA\n")
	registerCSV(t, store, loader.StoresTable, "Store,Type,Size\n1,A,10\n2,B,20\n")

	stores, err := store.AverageSalesByStore(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "1", stores[0].Store)
	assert.InDelta(t, 150, stores[0].AvgWeeklySales, 1e-9)
	assert.Equal(t, "2", stores[1].Store, "missing averages sort last")
	assert.True(t, math.IsNaN(stores[1].AvgWeeklySales))
	assert.Equal(t, []string{"2", ""}, stores.Records()[1], "missing averages export as empty cells")

	types, err := store.AverageSalesByType(ctx)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.True(t, math.IsNaN(types[1].AvgSales))

	monthly, err := store.MonthlySales(ctx)
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2012-03", monthly[1].YearMonth)
	assert.True(t, math.IsNaN(monthly[1].TotalSales))

	weekly, err := store.WeeklySales(ctx)
	require.NoError(t, err)
	require.Len(t, weekly, 2, "dates without any sale are left out of the series")
	assert.Equal(t, 100.0, weekly[0].Sales)
	assert.Equal(t, 200.0, weekly[1].Sales)
}
