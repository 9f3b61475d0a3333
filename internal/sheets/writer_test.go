package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/model"
)

// fakeSheetsAPI records the calls a Writer makes against the Sheets REST API.
type fakeSheetsAPI struct {
	existing []string
	updates  map[string][][]any
	cleared  []string
	batches  []sheets.BatchUpdateSpreadsheetRequest
	created  *sheets.Spreadsheet
	mu       sync.Mutex
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/v4/spreadsheets"):
		var s sheets.Spreadsheet
		_ = json.NewDecoder(r.Body).Decode(&s)
		f.created = &s
		for _, tab := range s.Sheets {
			f.existing = append(f.existing, tab.Properties.Title)
		}
		_ = json.NewEncoder(w).Encode(sheets.Spreadsheet{SpreadsheetId: "new-id", SpreadsheetUrl: "https://example.invalid/new-id"})

	case r.Method == http.MethodGet:
		resp := sheets.Spreadsheet{SpreadsheetId: "sheet-id"}
		for i, title := range f.existing {
			resp.Sheets = append(resp.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title, SheetId: int64(i + 1)}})
		}
		_ = json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.batches = append(f.batches, req)
		resp := sheets.BatchUpdateSpreadsheetResponse{}
		for i, q := range req.Requests {
			if q.AddSheet != nil {
				resp.Replies = append(resp.Replies, &sheets.Response{AddSheet: &sheets.AddSheetResponse{
					Properties: &sheets.SheetProperties{Title: q.AddSheet.Properties.Title, SheetId: int64(100 + i)},
				}})
			}
		}
		_ = json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.cleared = append(f.cleared, path)
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPut:
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.updates[path] = vr.Values
		_, _ = w.Write([]byte(`{}`))

	default:
		http.Error(w, "unexpected request "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestWriter(t *testing.T, api *fakeSheetsAPI, cfg Config) *Writer {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	return NewWriterWithService(svc, cfg, common.DiscardLogger())
}

func testTables() []model.Table {
	return []model.Table{
		model.StoreAverages{{Store: "2", AvgWeeklySales: 2350}, {Store: "1", AvgWeeklySales: 1350}},
		model.MonthlyTotals{{YearMonth: "2012-02", TotalSales: 13200}},
	}
}

func TestWriter_PublishExistingSpreadsheet(t *testing.T) {
	api := &fakeSheetsAPI{existing: []string{"avg_sales_by_store"}, updates: map[string][][]any{}}
	cfg := DefaultConfig()
	cfg.SpreadsheetID = "sheet-id"
	cfg.RetryAttempts = 1
	w := newTestWriter(t, api, cfg)

	id, err := w.Publish(context.Background(), testTables()...)
	require.NoError(t, err)
	assert.Equal(t, "sheet-id", id)

	// Missing tab added, then formatting applied.
	require.Len(t, api.batches, 2)
	require.Len(t, api.batches[0].Requests, 1)
	assert.Equal(t, "monthly_sales", api.batches[0].Requests[0].AddSheet.Properties.Title)
	assert.Len(t, api.batches[1].Requests, 6)

	assert.Len(t, api.cleared, 2)
	require.Len(t, api.updates, 2)

	var storeRows [][]any
	for path, rows := range api.updates {
		if strings.Contains(path, "avg_sales_by_store") {
			storeRows = rows
		}
	}
	require.Len(t, storeRows, 3)
	assert.Equal(t, []any{"Store", "AvgWeeklySales"}, storeRows[0])
	assert.Equal(t, []any{float64(2), float64(2350)}, storeRows[1])
}

func TestWriter_PublishCreatesSpreadsheet(t *testing.T) {
	api := &fakeSheetsAPI{updates: map[string][][]any{}}
	cfg := DefaultConfig()
	cfg.EnableFormatting = false
	cfg.RetryAttempts = 1
	w := newTestWriter(t, api, cfg)

	id, err := w.Publish(context.Background(), testTables()...)
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)

	require.NotNil(t, api.created)
	assert.Equal(t, DefaultSpreadsheetName, api.created.Properties.Title)
	assert.Len(t, api.created.Sheets, 2)
	assert.Empty(t, api.batches)
	assert.Len(t, api.updates, 2)
}

func TestTableValues(t *testing.T) {
	values := tableValues(model.TypeAverages{{Type: "A", AvgSales: 1350.5}})
	assert.Equal(t, [][]any{{"Type", "AvgSales"}, {"A", 1350.5}}, values)
}

func TestNewWriter_InvalidConfig(t *testing.T) {
	_, err := NewWriter(context.Background(), Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
