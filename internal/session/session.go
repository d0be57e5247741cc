// Package session holds the bearer token used for backend calls. A Session
// is passed explicitly to every gateway call instead of living in a global.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/vcscsvcscs/health-dashboard/internal/security"
	"github.com/vcscsvcscs/health-dashboard/internal/store"
	"go.uber.org/zap"
)

// TokenKey is the fixed storage key of the persisted token
const TokenKey = "token"

var (
	// ErrUnauthenticated is returned when no token is held
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrLoading is returned before the persisted token has been restored
	ErrLoading = errors.New("session is still loading")
)

// State is the authentication state of a session
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session carries one bearer token and optionally mirrors it to a store
type Session struct {
	mu     sync.RWMutex
	state  State
	token  string
	store  store.KV
	sealer *security.Sealer
	logger *zap.Logger
}

// New creates a persistent session in the loading state; call Restore next.
// sealer may be nil, in which case the token is stored as-is.
func New(kv store.KV, sealer *security.Sealer, logger *zap.Logger) *Session {
	return &Session{
		state:  StateLoading,
		store:  kv,
		sealer: sealer,
		logger: logger,
	}
}

// FromBearer creates a request-scoped session that is never persisted
func FromBearer(token string) *Session {
	s := &Session{state: StateUnauthenticated, logger: zap.NewNop()}
	if token != "" {
		s.state = StateAuthenticated
		s.token = token
	}
	return s
}

// Restore loads the persisted token, leaving the session authenticated or
// unauthenticated. A store failure leaves it unauthenticated.
func (s *Session) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateUnauthenticated
	s.token = ""

	if s.store == nil {
		return nil
	}

	stored, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("no persisted session token")
			return nil
		}
		s.logger.Error("failed to read persisted session token", zap.Error(err))
		return fmt.Errorf("failed to restore session: %w", err)
	}

	token, err := s.unseal(stored)
	if err != nil {
		s.logger.Error("failed to open persisted session token", zap.Error(err))
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if token == "" {
		return nil
	}

	s.token = token
	s.state = StateAuthenticated
	s.logger.Info("session restored")
	return nil
}

// Login stores a new token in memory and in the persistent store.
// If persisting fails the session is left unchanged.
func (s *Session) Login(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("login returned an empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		sealed, err := s.seal(token)
		if err != nil {
			return fmt.Errorf("failed to seal token: %w", err)
		}
		if err := s.store.Set(ctx, TokenKey, sealed, 0); err != nil {
			s.logger.Error("failed to persist session token", zap.Error(err))
			return fmt.Errorf("failed to persist token: %w", err)
		}
	}

	s.token = token
	s.state = StateAuthenticated
	s.logger.Info("session authenticated")
	return nil
}

// Logout clears the in-memory token and the persisted copy.
// The in-memory token is cleared even when the store fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.state = StateUnauthenticated

	if s.store != nil {
		if err := s.store.Delete(ctx, TokenKey); err != nil {
			s.logger.Error("failed to remove persisted session token", zap.Error(err))
			return fmt.Errorf("failed to remove persisted token: %w", err)
		}
	}
	s.logger.Info("session cleared")
	return nil
}

// Token returns the bearer token for an outgoing call
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.state {
	case StateLoading:
		return "", ErrLoading
	case StateAuthenticated:
		return s.token, nil
	default:
		return "", ErrUnauthenticated
	}
}

// State returns the current authentication state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Key returns a stable, non-reversible identifier for the held token.
// It is empty when the session is not authenticated.
func (s *Session) Key() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateAuthenticated {
		return ""
	}
	sum := sha256.Sum256([]byte(s.token))
	return hex.EncodeToString(sum[:])
}

func (s *Session) seal(token string) (string, error) {
	if s.sealer == nil {
		return token, nil
	}
	return s.sealer.Seal(token)
}

func (s *Session) unseal(stored string) (string, error) {
	if !security.IsSealed(stored) {
		return stored, nil
	}
	if s.sealer == nil {
		return "", fmt.Errorf("persisted token is encrypted but no key is configured")
	}
	return s.sealer.Open(stored)
}
