package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/domain/models"
	"github.com/mamadbah2/herdboard/internal/service/dashboard"
	"github.com/mamadbah2/herdboard/internal/service/export"
)

// SheetWriter receives export rows, typically a Google Sheet.
type SheetWriter interface {
	WriteRows(ctx context.Context, rows [][]string) error
}

// ExportHandler serves CSV exports and pushes them to the sheet sink.
type ExportHandler struct {
	svc      *dashboard.Service
	exporter *export.Exporter
	sink     SheetWriter
	now      func() time.Time
	logger   *zap.Logger
}

// NewExportHandler constructs the export handler. sink may be nil when the
// Sheets export is not configured.
func NewExportHandler(svc *dashboard.Service, exporter *export.Exporter, sink SheetWriter, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{svc: svc, exporter: exporter, sink: sink, now: time.Now, logger: logger}
}

// Register mounts the export routes on rg.
func (h *ExportHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/export", h.ExportCurrent)
	rg.POST("/export", h.ExportPayload)
	rg.POST("/export/sheets", h.ExportToSheets)
}

type exportRequest struct {
	Animals []models.Animal   `json:"animals"`
	Stats   *models.FarmStats `json:"stats"`
}

// ExportCurrent downloads the current herd and stats as CSV.
func (h *ExportHandler) ExportCurrent(c *gin.Context) {
	animals, stats, err := h.snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("failed loading export snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export"})
		return
	}
	h.writeCSV(c, animals, stats)
}

// ExportPayload renders the animals and stats held by the caller.
func (h *ExportHandler) ExportPayload(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid export payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.writeCSV(c, req.Animals, req.Stats)
}

// ExportToSheets writes the current export into the configured sheet.
func (h *ExportHandler) ExportToSheets(c *gin.Context) {
	if h.sink == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sheets export is not configured"})
		return
	}

	animals, stats, err := h.snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("failed loading export snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export"})
		return
	}

	rows := h.exporter.Rows(animals, stats)
	if err := h.sink.WriteRows(c.Request.Context(), rows); err != nil {
		h.logger.Error("failed writing export to sheet", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to write to sheet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "exported", "rows": len(rows)})
}

func (h *ExportHandler) snapshot(ctx context.Context) ([]models.Animal, *models.FarmStats, error) {
	animals, err := h.svc.GetAnimals(ctx)
	if err != nil {
		return nil, nil, err
	}
	stats, err := h.svc.GetStats(ctx)
	if err != nil {
		return nil, nil, err
	}
	return animals, &stats, nil
}

func (h *ExportHandler) writeCSV(c *gin.Context, animals []models.Animal, stats *models.FarmStats) {
	body, err := h.exporter.Build(animals, stats)
	if err != nil {
		h.logger.Error("failed building csv", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(h.now())))
	c.Data(http.StatusOK, export.ContentType, body)
}
