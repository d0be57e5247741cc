package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/internal/middleware"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/internal/session"
	"github.com/vcscsvcscs/health-dashboard/internal/view"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"go.uber.org/zap"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeUpstream        = "UPSTREAM_ERROR"
	CodeSuperseded      = "SUPERSEDED"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_ERROR"
)

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// writeError translates a service error into the matching status and body.
// message is used for failures the user cannot act on.
func writeError(c *gin.Context, logger *zap.Logger, err error, message string) {
	_ = c.Error(err)

	switch service.Classify(err) {
	case service.KindValidation:
		_, msg, _ := service.ValidationMessage(err)
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    CodeValidation,
			Message: msg,
		})
	case service.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Code:    CodeUnauthenticated,
			Message: "Authentication required",
		})
	case service.KindSuperseded:
		c.JSON(http.StatusConflict, model.ErrorResponse{
			Code:    CodeSuperseded,
			Message: "Request was superseded by a newer one",
		})
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Code:    CodeNotFound,
			Message: message,
		})
	case service.KindUpstream:
		c.JSON(upstreamStatus(err), model.ErrorResponse{
			Code:    CodeUpstream,
			Message: message,
			Details: stringPtr(err.Error()),
		})
	default:
		logger.Error(message, zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    CodeInternal,
			Message: message,
		})
	}
}

// upstreamStatus keeps the backend's 4xx status and maps everything else to 502
func upstreamStatus(err error) int {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

// badRequest answers a request body or query that could not be parsed
func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request", zap.Error(err))
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Code:    CodeValidation,
		Message: "Invalid request body",
		Details: stringPtr(err.Error()),
	})
}

// sessionOf returns the request session, never nil
func sessionOf(c *gin.Context) *session.Session {
	if sess := middleware.SessionFrom(c); sess != nil {
		return sess
	}
	return session.FromBearer("")
}

// SessionVerifier confirms with the backend that a session is still valid
type SessionVerifier interface {
	Verify(ctx context.Context, sess gateway.TokenSource) error
}

// requireVerified rejects sessions the backend no longer accepts. It guards
// routes that are served without any backend call.
func requireVerified(verifier SessionVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := verifier.Verify(c.Request.Context(), sessionOf(c)); err != nil {
			writeError(c, logger, err, "Failed to verify session")
			c.Abort()
			return
		}
		c.Next()
	}
}

// workspaceOf resolves the workspace of the request session
func workspaceOf(c *gin.Context, registry *view.Registry) (*view.Workspace, error) {
	key := sessionOf(c).Key()
	if key == "" {
		return nil, session.ErrUnauthenticated
	}
	return registry.Get(c.Request.Context(), key)
}

// idParam reads the :id path parameter
func idParam(c *gin.Context) model.ID {
	return model.ID(strings.TrimSpace(c.Param("id")))
}
