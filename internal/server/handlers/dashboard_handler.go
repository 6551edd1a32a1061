package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/domain/models"
	"github.com/mamadbah2/herdboard/internal/service/dashboard"
	"github.com/mamadbah2/herdboard/internal/service/reporting"
)

// DashboardHandler exposes the dashboard facade over HTTP.
type DashboardHandler struct {
	svc      *dashboard.Service
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter. Report dates that
// are left out default to the current day in loc.
func NewDashboardHandler(svc *dashboard.Service, loc *time.Location, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{svc: svc, location: loc, now: time.Now, logger: logger}
}

// Register mounts the dashboard routes on rg.
func (h *DashboardHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/animals", h.ListAnimals)
	rg.POST("/animals", h.CreateAnimal)
	rg.POST("/animals/validate", h.ValidateAnimal)
	rg.GET("/animals/:id", h.GetAnimal)
	rg.PATCH("/animals/:id", h.UpdateAnimal)
	rg.DELETE("/animals/:id", h.DeleteAnimal)

	rg.GET("/stats", h.Stats)

	reports := rg.Group("/reports")
	reports.GET("/daily", h.DailyReport)
	reports.GET("/weekly", h.WeeklyReport)
	reports.GET("/monthly", h.MonthlyReport)
	reports.GET("/quarterly", h.QuarterlyReport)
	reports.GET("/yearly", h.YearlyReport)
	reports.GET("/custom", h.CustomReport)

	rg.GET("/dashboard/widgets", h.Widgets)
	rg.PUT("/dashboard/widgets", h.SaveWidgets)

	rg.GET("/filter", h.Filter)
	rg.PUT("/filter", h.SetFilter)
	rg.GET("/selection", h.Selection)
	rg.PUT("/selection", h.SetSelection)

	rg.DELETE("/cache", h.ClearCache)
}

// ListAnimals returns the herd.
func (h *DashboardHandler) ListAnimals(c *gin.Context) {
	animals, err := h.svc.GetAnimals(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing animals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": dashboard.MsgFetchAnimalsFailed})
		return
	}
	c.JSON(http.StatusOK, animals)
}

// CreateAnimal validates and adds an animal.
func (h *DashboardHandler) CreateAnimal(c *gin.Context) {
	var patch models.AnimalPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn("invalid animal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if res := dashboard.ValidateAnimal(patch); !res.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": res.Errors})
		return
	}

	c.JSON(http.StatusCreated, h.svc.AddAnimal(c.Request.Context(), patch))
}

// ValidateAnimal only runs the validator.
func (h *DashboardHandler) ValidateAnimal(c *gin.Context) {
	var patch models.AnimalPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, dashboard.ValidateAnimal(patch))
}

// GetAnimal returns one animal.
func (h *DashboardHandler) GetAnimal(c *gin.Context) {
	id, ok := animalID(c)
	if !ok {
		return
	}

	animal, found, err := h.svc.GetAnimalByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed fetching animal", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": dashboard.MsgFetchAnimalsFailed})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "animal not found"})
		return
	}
	c.JSON(http.StatusOK, animal)
}

// UpdateAnimal merges a partial animal. The merged record must still pass
// validation.
func (h *DashboardHandler) UpdateAnimal(c *gin.Context) {
	id, ok := animalID(c)
	if !ok {
		return
	}

	var patch models.AnimalPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn("invalid animal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	current, found, err := h.svc.GetAnimalByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": dashboard.MsgFetchAnimalsFailed})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "animal not found"})
		return
	}
	if res := dashboard.ValidateAnimal(asPatch(patch.Apply(current))); !res.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": res.Errors})
		return
	}

	updated, ok := h.svc.UpdateAnimal(c.Request.Context(), id, patch)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "animal not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteAnimal removes an animal.
func (h *DashboardHandler) DeleteAnimal(c *gin.Context) {
	id, ok := animalID(c)
	if !ok {
		return
	}
	if !h.svc.DeleteAnimal(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "animal not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats returns herd statistics.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed computing stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": dashboard.MsgComputeStatsFailed})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DailyReport handles GET /reports/daily?date=YYYY-MM-DD (default today).
func (h *DashboardHandler) DailyReport(c *gin.Context) {
	date, ok := h.dateQuery(c, "date")
	if !ok {
		return
	}
	report, err := h.svc.GetDailyReport(c.Request.Context(), date)
	h.respondReport(c, report, err)
}

// WeeklyReport handles GET /reports/weekly?start=YYYY-MM-DD (default today).
func (h *DashboardHandler) WeeklyReport(c *gin.Context) {
	start, ok := h.dateQuery(c, "start")
	if !ok {
		return
	}
	report, err := h.svc.GetWeeklyReport(c.Request.Context(), start)
	h.respondReport(c, report, err)
}

// MonthlyReport handles GET /reports/monthly?year=&month=.
func (h *DashboardHandler) MonthlyReport(c *gin.Context) {
	year, ok := intQuery(c, "year")
	if !ok {
		return
	}
	month, ok := intQuery(c, "month")
	if !ok {
		return
	}
	report, err := h.svc.GetMonthlyReport(c.Request.Context(), year, month)
	h.respondReport(c, report, err)
}

// QuarterlyReport handles GET /reports/quarterly?year=&quarter=.
func (h *DashboardHandler) QuarterlyReport(c *gin.Context) {
	year, ok := intQuery(c, "year")
	if !ok {
		return
	}
	quarter, ok := intQuery(c, "quarter")
	if !ok {
		return
	}
	report, err := h.svc.GetQuarterlyReport(c.Request.Context(), year, quarter)
	h.respondReport(c, report, err)
}

// YearlyReport handles GET /reports/yearly?year=.
func (h *DashboardHandler) YearlyReport(c *gin.Context) {
	year, ok := intQuery(c, "year")
	if !ok {
		return
	}
	report, err := h.svc.GetYearlyReport(c.Request.Context(), year)
	h.respondReport(c, report, err)
}

// CustomReport handles GET /reports/custom?start=&end=.
func (h *DashboardHandler) CustomReport(c *gin.Context) {
	startRaw, endRaw := c.Query("start"), c.Query("end")
	if res := dashboard.ValidateDateRange(startRaw, endRaw); !res.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range", "errors": res.Errors})
		return
	}
	// Both dates parsed during validation.
	start, _ := reporting.ParseDate(startRaw)
	end, _ := reporting.ParseDate(endRaw)

	report, err := h.svc.GetCustomReport(c.Request.Context(), start, end)
	h.respondReport(c, report, err)
}

// Widgets returns the dashboard layout.
func (h *DashboardHandler) Widgets(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetDashboardWidgets(c.Request.Context()))
}

// SaveWidgets stores a new dashboard layout.
func (h *DashboardHandler) SaveWidgets(c *gin.Context) {
	var widgets []models.DashboardWidget
	if err := c.ShouldBindJSON(&widgets); err != nil {
		h.logger.Warn("invalid widgets payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.svc.SaveDashboardLayout(c.Request.Context(), widgets)
	c.JSON(http.StatusOK, widgets)
}

type filterRequest struct {
	Filter string `json:"filter"`
}

// Filter returns the current filter and the animals it matches.
func (h *DashboardHandler) Filter(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"filter": h.svc.Filter(), "animals": h.svc.FilteredAnimals()})
}

// SetFilter stores the free-text filter.
func (h *DashboardHandler) SetFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.svc.SetFilter(req.Filter)
	h.Filter(c)
}

type selectionRequest struct {
	ID *int64 `json:"id"`
}

// Selection returns the selected animal, or null.
func (h *DashboardHandler) Selection(c *gin.Context) {
	if animal, ok := h.svc.SelectedAnimal(); ok {
		c.JSON(http.StatusOK, gin.H{"selected": animal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": nil})
}

// SetSelection selects an animal by id; a null id clears the selection.
func (h *DashboardHandler) SetSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.ID == nil {
		h.svc.SelectAnimal(nil)
		h.Selection(c)
		return
	}

	animal, found, err := h.svc.GetAnimalByID(c.Request.Context(), *req.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": dashboard.MsgFetchAnimalsFailed})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "animal not found"})
		return
	}
	h.svc.SelectAnimal(&animal)
	h.Selection(c)
}

// ClearCache empties the cache.
func (h *DashboardHandler) ClearCache(c *gin.Context) {
	h.svc.ClearCache(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *DashboardHandler) respondReport(c *gin.Context, report models.ReportData, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, report)
	case errors.Is(err, reporting.ErrInvalidMonth),
		errors.Is(err, reporting.ErrInvalidQuarter),
		errors.Is(err, reporting.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("failed generating report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": dashboard.MsgReportFailed})
	}
}

func (h *DashboardHandler) dateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return reporting.LocalDay(h.now(), h.location), true
	}
	t, err := reporting.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a YYYY-MM-DD date"})
		return time.Time{}, false
	}
	return t, true
}

func intQuery(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return v, true
}

func animalID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}

func asPatch(a models.Animal) models.AnimalPatch {
	return models.AnimalPatch{
		Name:            &a.Name,
		Type:            &a.Type,
		Weight:          &a.Weight,
		MilkProduction:  a.MilkProduction,
		FeedConsumption: a.FeedConsumption,
	}
}
