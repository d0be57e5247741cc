package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/internal/view"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"go.uber.org/zap"
)

// WindowRequest moves one or both window boundaries.
// Dates are YYYY-MM-DD in the display time zone.
type WindowRequest struct {
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// DashboardHandler implements dashboard and date window endpoints
type DashboardHandler struct {
	service  *service.DashboardService
	registry *view.Registry
	logger   *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service *service.DashboardService, registry *view.Registry, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:  service,
		registry: registry,
		logger:   logger,
	}
}

// GetDashboard loads the dashboard for the session's current window
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	ws, err := workspaceOf(c, h.registry)
	if err != nil {
		writeError(c, h.logger, err, "Failed to open workspace")
		return
	}

	dashboard, err := h.service.Load(c.Request.Context(), sessionOf(c), ws)
	if err != nil {
		writeError(c, h.logger, err, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetLatestDashboard returns the last dashboard committed for the session
func (h *DashboardHandler) GetLatestDashboard(c *gin.Context) {
	ws, err := workspaceOf(c, h.registry)
	if err != nil {
		writeError(c, h.logger, err, "Failed to open workspace")
		return
	}

	dashboard, ok := h.service.Latest(ws)
	if !ok {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Code:    CodeNotFound,
			Message: "Dashboard has not been loaded yet",
		})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetWindow returns the session's current window
func (h *DashboardHandler) GetWindow(c *gin.Context) {
	ws, err := workspaceOf(c, h.registry)
	if err != nil {
		writeError(c, h.logger, err, "Failed to open workspace")
		return
	}

	c.JSON(http.StatusOK, service.NewWindowView(ws.Window()))
}

// PutWindow moves the window. A rejected update leaves it unchanged.
func (h *DashboardHandler) PutWindow(c *gin.Context) {
	var req WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	start, err := parseDate(req.StartDate, "startDate", h.registry.Location())
	if err != nil {
		writeError(c, h.logger, err, "Invalid start date")
		return
	}
	end, err := parseDate(req.EndDate, "endDate", h.registry.Location())
	if err != nil {
		writeError(c, h.logger, err, "Invalid end date")
		return
	}

	ws, err := workspaceOf(c, h.registry)
	if err != nil {
		writeError(c, h.logger, err, "Failed to open workspace")
		return
	}

	w, err := ws.Update(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, h.logger, err, "Failed to update date window")
		return
	}

	h.logger.Info("date window updated", zap.String("window", w.String()))
	c.JSON(http.StatusOK, service.NewWindowView(w))
}

// ResetWindow restores the default seven day window
func (h *DashboardHandler) ResetWindow(c *gin.Context) {
	ws, err := workspaceOf(c, h.registry)
	if err != nil {
		writeError(c, h.logger, err, "Failed to open workspace")
		return
	}

	w, err := ws.Reset(c.Request.Context(), h.registry.Today())
	if err != nil {
		writeError(c, h.logger, err, "Failed to reset date window")
		return
	}

	c.JSON(http.StatusOK, service.NewWindowView(w))
}

// parseDate reads an optional YYYY-MM-DD value
func parseDate(value *string, field string, loc *time.Location) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(window.DateLayout, *value, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", field, &window.ValidationError{
			Field:   field,
			Message: window.MessageInvalidDate,
		})
	}
	return &t, nil
}
