package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/health-dashboard/internal/export"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/internal/view"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"go.uber.org/zap"
)

// ArchivePathHeader carries the blob path of an archived export
const ArchivePathHeader = "X-Archive-Path"

// ReportHandler implements report listing and export endpoints
type ReportHandler struct {
	service  *service.ReportService
	registry *view.Registry
	logger   *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *service.ReportService, registry *view.Registry, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service:  service,
		registry: registry,
		logger:   logger,
	}
}

// GetReports returns the reports overview of the session's window
func (h *ReportHandler) GetReports(c *gin.Context) {
	ws, err := workspaceOf(c, h.registry)
	if err != nil {
		writeError(c, h.logger, err, "Failed to open workspace")
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), sessionOf(c), ws)
	if err != nil {
		writeError(c, h.logger, err, "Failed to load reports")
		return
	}

	c.JSON(http.StatusOK, overview)
}

// ExportReports streams the workbook of the session's window. Explicit
// startDate and endDate query parameters override the window, and a missing
// one is taken from it.
func (h *ReportHandler) ExportReports(c *gin.Context) {
	w, err := h.exportWindow(c)
	if err != nil {
		writeError(c, h.logger, err, "Failed to resolve export window")
		return
	}

	result, err := h.service.Export(c.Request.Context(), sessionOf(c), w)
	if err != nil {
		writeError(c, h.logger, err, "Failed to export reports")
		return
	}

	if result.ArchivePath != "" {
		c.Header(ArchivePathHeader, result.ArchivePath)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.File.Name))
	c.Data(http.StatusOK, export.ContentType, result.File.Data)
}

// DownloadArchivedExport serves a workbook archived by an earlier export.
// The path is the value of the X-Archive-Path header of that export.
func (h *ReportHandler) DownloadArchivedExport(c *gin.Context) {
	blobName := strings.TrimPrefix(c.Param("path"), "/")

	file, err := h.service.ArchivedExport(c.Request.Context(), blobName)
	if err != nil {
		writeError(c, h.logger, err, "Failed to download archived export")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, export.ContentType, file.Data)
}

func (h *ReportHandler) exportWindow(c *gin.Context) (window.Window, error) {
	start, end := c.Query("startDate"), c.Query("endDate")
	if start != "" && end != "" {
		return window.Parse(start, end, h.registry.Location())
	}

	ws, err := workspaceOf(c, h.registry)
	if err != nil {
		return window.Window{}, err
	}
	stored := ws.Window()
	if start == "" && end == "" {
		return stored, nil
	}

	// a single boundary overrides only its side of the stored window
	if start == "" {
		start = stored.StartParam()
	}
	if end == "" {
		end = stored.EndParam()
	}
	return window.Parse(start, end, h.registry.Location())
}

// GetPatientReports returns every report of one patient
func (h *ReportHandler) GetPatientReports(c *gin.Context) {
	reports, err := h.service.PatientReports(c.Request.Context(), sessionOf(c), idParam(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to load patient reports")
		return
	}

	c.JSON(http.StatusOK, reports)
}
