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
	sheetsapi "google.golang.org/api/sheets/v4"
)

type fakeSheets struct {
	mu       sync.Mutex
	requests []string
	written  [][]interface{}
	fail     bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if f.fail {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, ":clear"):
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id"}`))
	case r.Method == http.MethodPut:
		var vr sheetsapi.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.written = vr.Values
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-id", "updatedRows": len(vr.Values)})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Export!A1:B2", "values": f.written})
	default:
		http.NotFound(w, r)
	}
}

func newTestRepository(t *testing.T, fake *fakeSheets) *GoogleSheetRepository {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	repo, err := newRepository(context.Background(), "sheet-id", "Export!A1", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return repo
}

func TestWriteRowsClearsThenUpdates(t *testing.T) {
	fake := &fakeSheets{}
	repo := newTestRepository(t, fake)

	rows := [][]string{{"Farm Dashboard Export"}, {}, {"Metric", "Value"}, {"Total Animals", "10"}}
	require.NoError(t, repo.WriteRows(context.Background(), rows))

	require.Len(t, fake.requests, 2)
	assert.True(t, strings.HasPrefix(fake.requests[0], "POST /v4/spreadsheets/sheet-id/values/Export:clear"))
	assert.True(t, strings.HasPrefix(fake.requests[1], "PUT /v4/spreadsheets/sheet-id/values/Export!A1"))

	require.Len(t, fake.written, 4)
	assert.Equal(t, []interface{}{"Total Animals", "10"}, fake.written[3])

	got, err := repo.ReadRange(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestWriteRowsSurfacesAPIErrors(t *testing.T) {
	repo := newTestRepository(t, &fakeSheets{fail: true})

	err := repo.WriteRows(context.Background(), [][]string{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear sheet Export")
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Export", sheetName("Export!A1"))
	assert.Equal(t, "Export", sheetName("Export"))
}
