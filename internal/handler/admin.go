package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"go.uber.org/zap"
)

// AdminHandler implements administrator account endpoints
type AdminHandler struct {
	service *service.AdminService
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service *service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.service.List(c.Request.Context(), sessionOf(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to list administrators")
		return
	}

	c.JSON(http.StatusOK, admins)
}

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var input model.AdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	admin, err := h.service.Create(c.Request.Context(), sessionOf(c), input)
	if err != nil {
		writeError(c, h.logger, err, "Failed to create administrator")
		return
	}

	c.JSON(http.StatusCreated, admin)
}

// UpdateAdmin renames an administrator; a non-empty password also resets it
func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	var input model.AdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	admin, err := h.service.Update(c.Request.Context(), sessionOf(c), idParam(c), input)
	if err != nil {
		writeError(c, h.logger, err, "Failed to update administrator")
		return
	}

	c.JSON(http.StatusOK, admin)
}

func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), sessionOf(c), idParam(c)); err != nil {
		writeError(c, h.logger, err, "Failed to delete administrator")
		return
	}

	c.Status(http.StatusNoContent)
}
