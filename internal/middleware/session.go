package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/health-dashboard/internal/audit"
	"github.com/vcscsvcscs/health-dashboard/internal/session"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// SessionMiddleware attaches a request-scoped session built from the
// Authorization header. Requests without a token get an unauthenticated one.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromBearer(BearerToken(c.GetHeader("Authorization")))
		c.Set(ContextSession, sess)

		if key := sess.Key(); key != "" {
			c.Set(ContextSessionKey, key[:sessionKeyLogLength])
		}

		c.Next()
	}
}

// AuditClientMiddleware attaches the caller's address and user agent to the
// request context for audit entries
func AuditClientMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := audit.WithClient(c.Request.Context(), audit.Client{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireSession rejects requests that carry no bearer token
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil || sess.State() != session.StateAuthenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Code:    "UNAUTHENTICATED",
				Message: "Authentication required",
			})
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session attached by SessionMiddleware, or nil
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
