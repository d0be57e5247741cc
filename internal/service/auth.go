package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"go.uber.org/zap"
)

// SessionInterface is the session state the auth flow writes to
type SessionInterface interface {
	Token() (string, error)
	Key() string
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context) error
}

// WorkspaceForgetter drops per-session state on logout
type WorkspaceForgetter interface {
	Forget(ctx context.Context, key string) error
}

// AuthService handles login and logout
type AuthService struct {
	gateway    AuthGatewayInterface
	workspaces WorkspaceForgetter
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService. workspaces may be nil.
func NewAuthService(gw AuthGatewayInterface, workspaces WorkspaceForgetter, logger *zap.Logger) *AuthService {
	return &AuthService{
		gateway:    gw,
		workspaces: workspaces,
		logger:     logger,
	}
}

// Login checks credentials locally, exchanges them for a token and stores
// it in sess. Empty credentials never reach the backend.
func (s *AuthService) Login(ctx context.Context, sess SessionInterface, creds model.Credentials) (string, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return "", &ValidationError{Field: "credentials", Message: MessageCredentialsRequired}
	}

	s.logger.Info("logging in", zap.String("username", creds.Username))

	token, err := s.gateway.Login(ctx, creds)
	if err != nil {
		s.logger.Warn("login rejected",
			zap.String("username", creds.Username),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to log in: %w", err)
	}

	if err := sess.Login(ctx, token); err != nil {
		s.logger.Error("failed to store session token", zap.Error(err))
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("login successful", zap.String("username", creds.Username))
	return token, nil
}

// Verify asks the backend whether sess still holds an accepted token. Routes
// that never reach the backend call it before serving session state.
func (s *AuthService) Verify(ctx context.Context, sess gateway.TokenSource) error {
	if err := s.gateway.VerifySession(ctx, sess); err != nil {
		s.logger.Warn("session verification failed", zap.Error(err))
		return fmt.Errorf("failed to verify session: %w", err)
	}
	return nil
}

// Logout clears the session and its workspace
func (s *AuthService) Logout(ctx context.Context, sess SessionInterface) error {
	key := sess.Key()

	if err := sess.Logout(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	if s.workspaces != nil && key != "" {
		if err := s.workspaces.Forget(ctx, key); err != nil {
			s.logger.Warn("failed to drop workspace on logout", zap.Error(err))
		}
	}

	s.logger.Info("logout successful")
	return nil
}
