package handlers

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdboard/internal/domain/models"
	"github.com/mamadbah2/herdboard/internal/service/dashboard"
)

func newDashboardEngine(t *testing.T) (*dashboard.Service, http.Handler) {
	svc := newService(t)
	h := NewDashboardHandler(svc, time.UTC, nil)
	h.now = func() time.Time { return fixedNow }
	return svc, newEngine(h)
}

func TestAnimalLifecycle(t *testing.T) {
	_, r := newDashboardEngine(t)

	rec := doJSON(t, r, http.MethodGet, "/api/animals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Animal](t, rec), 10)

	rec = doJSON(t, r, http.MethodPost, "/api/animals", map[string]any{"name": "Hazel", "type": "Heifer", "weight": 410})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Animal](t, rec)
	assert.Equal(t, "Hazel", created.Name)
	assert.Equal(t, models.HealthHealthy, created.HealthStatus)

	path := "/api/animals/" + strconv.FormatInt(created.ID, 10)
	rec = doJSON(t, r, http.MethodPatch, path, map[string]any{"healthStatus": "Sick"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.HealthSick, decode[models.Animal](t, rec).HealthStatus)

	rec = doJSON(t, r, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.FarmStats](t, rec)
	assert.Equal(t, 11, stats.TotalAnimals)
	assert.Equal(t, 3, stats.SickAnimals)

	rec = doJSON(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAnimalValidation(t *testing.T) {
	_, r := newDashboardEngine(t)

	rec := doJSON(t, r, http.MethodPost, "/api/animals", map[string]any{"name": " ", "type": "Cow", "weight": -5})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, []any{"Name is required", "Weight must not be negative"}, body["errors"])

	rec = doJSON(t, r, http.MethodPost, "/api/animals/validate", map[string]any{"name": "Daisy"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[dashboard.ValidationResult](t, rec)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"Animal type is required"}, res.Errors)
}

func TestUpdateAnimalErrors(t *testing.T) {
	_, r := newDashboardEngine(t)

	rec := doJSON(t, r, http.MethodPatch, "/api/animals/abc", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPatch, "/api/animals/999", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodPatch, "/api/animals/1", map[string]any{"milkProduction": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/animals/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 28.5, decode[models.Animal](t, rec).Milk())
}

func TestReportRoutes(t *testing.T) {
	_, r := newDashboardEngine(t)

	tests := []struct {
		path    string
		code    int
		start   string
		end     string
		animals int
	}{
		{"/api/reports/daily?date=2024-01-15", http.StatusOK, "2024-01-15", "2024-01-15", 3},
		{"/api/reports/daily", http.StatusOK, "2024-01-20", "2024-01-20", 0},
		{"/api/reports/weekly?start=2024-01-10", http.StatusOK, "2024-01-10", "2024-01-17", 10},
		{"/api/reports/monthly?year=2024&month=2", http.StatusOK, "2024-02-01", "2024-02-29", 0},
		{"/api/reports/quarterly?year=2024&quarter=1", http.StatusOK, "2024-01-01", "2024-03-31", 10},
		{"/api/reports/yearly?year=2024", http.StatusOK, "2024-01-01", "2024-12-31", 10},
		{"/api/reports/custom?start=2024-01-14&end=2024-01-15", http.StatusOK, "2024-01-14", "2024-01-15", 5},
		{"/api/reports/monthly?year=2024&month=13", http.StatusBadRequest, "", "", 0},
		{"/api/reports/quarterly?year=2024&quarter=5", http.StatusBadRequest, "", "", 0},
		{"/api/reports/yearly?year=soon", http.StatusBadRequest, "", "", 0},
		{"/api/reports/daily?date=15/01/2024", http.StatusBadRequest, "", "", 0},
		{"/api/reports/custom?start=2024-02-01&end=2024-01-01", http.StatusBadRequest, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.code != http.StatusOK {
				return
			}
			report := decode[models.ReportData](t, rec)
			assert.Equal(t, tt.start, report.StartDate)
			assert.Equal(t, tt.end, report.EndDate)
			assert.Len(t, report.Animals, tt.animals)
			assert.Equal(t, 10, report.Stats.TotalAnimals)
		})
	}
}

func TestWidgetRoutes(t *testing.T) {
	_, r := newDashboardEngine(t)

	rec := doJSON(t, r, http.MethodGet, "/api/dashboard/widgets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	widgets := decode[[]models.DashboardWidget](t, rec)
	require.Len(t, widgets, 3)

	widgets[2].Size = models.Size{Width: 12, Height: 4}
	rec = doJSON(t, r, http.MethodPut, "/api/dashboard/widgets", widgets)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/dashboard/widgets", nil)
	assert.Equal(t, models.Size{Width: 12, Height: 4}, decode[[]models.DashboardWidget](t, rec)[2].Size)

	rec = doJSON(t, r, http.MethodPut, "/api/dashboard/widgets", map[string]any{"not": "a list"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilterAndSelectionRoutes(t *testing.T) {
	_, r := newDashboardEngine(t)

	rec := doJSON(t, r, http.MethodPut, "/api/filter", map[string]any{"filter": "observation"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Filter  string          `json:"filter"`
		Animals []models.Animal `json:"animals"`
	}](t, rec)
	assert.Equal(t, "observation", body.Filter)
	require.Len(t, body.Animals, 1)
	assert.Equal(t, "Rosie", body.Animals[0].Name)

	rec = doJSON(t, r, http.MethodPut, "/api/selection", map[string]any{"id": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	selected := decode[struct {
		Selected *models.Animal `json:"selected"`
	}](t, rec)
	require.NotNil(t, selected.Selected)
	assert.Equal(t, "Rosie", selected.Selected.Name)

	rec = doJSON(t, r, http.MethodPut, "/api/selection", map[string]any{"id": 404})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodPut, "/api/selection", map[string]any{"id": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodGet, "/api/selection", nil)
	assert.JSONEq(t, `{"selected":null}`, rec.Body.String())
}

func TestClearCacheRoute(t *testing.T) {
	svc, r := newDashboardEngine(t)

	rec := doJSON(t, r, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/cache", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalAnimals)
}

func TestDailyReportDefaultsToLocalDay(t *testing.T) {
	auckland, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	h := NewDashboardHandler(newService(t), auckland, nil)
	// Still the 14th in UTC, already the morning of the 15th in Auckland.
	h.now = func() time.Time { return time.Date(2024, 1, 14, 20, 0, 0, 0, time.UTC) }
	r := newEngine(h)

	rec := doJSON(t, r, http.MethodGet, "/api/reports/daily", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[models.ReportData](t, rec)
	assert.Equal(t, "2024-01-15", report.StartDate)
	assert.Len(t, report.Animals, 3)
}
