package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/internal/session"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"go.uber.org/zap"
)

// AuthHandler implements login and logout endpoints
type AuthHandler struct {
	service *service.AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var creds model.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	// The token travels back to the caller, so a request-scoped session is enough
	token, err := h.service.Login(c.Request.Context(), session.FromBearer(""), creds)
	if err != nil {
		writeError(c, h.logger, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{Token: token})
}

// Logout drops the workspace of the calling session
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), sessionOf(c)); err != nil {
		writeError(c, h.logger, err, "Logout failed")
		return
	}

	c.Status(http.StatusNoContent)
}
