package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vcscsvcscs/health-dashboard/internal/store"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"go.uber.org/zap"
)

const windowKeyPrefix = "window:"

// DefaultMaxWorkspaces bounds how many workspaces are held in memory
const DefaultMaxWorkspaces = 10000

// storedWindow is the persisted form of a workspace window
type storedWindow struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// RegistryConfig configures a Registry. WindowTTL also bounds how long an
// idle workspace stays in memory; zero keeps it until it is evicted for size.
type RegistryConfig struct {
	Location      *time.Location
	WindowTTL     time.Duration
	MaxWorkspaces int
	Now           func() time.Time
}

// Registry holds recently used workspaces per session key and persists each
// window. An evicted workspace is rebuilt from its persisted window.
type Registry struct {
	mu         sync.Mutex
	workspaces *expirable.LRU[string, *Workspace]
	kv         store.KV
	loc        *time.Location
	ttl        time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewRegistry creates a registry backed by kv
func NewRegistry(kv store.KV, cfg RegistryConfig, logger *zap.Logger) *Registry {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxWorkspaces <= 0 {
		cfg.MaxWorkspaces = DefaultMaxWorkspaces
	}
	return &Registry{
		workspaces: expirable.NewLRU[string, *Workspace](cfg.MaxWorkspaces, nil, cfg.WindowTTL),
		kv:         kv,
		loc:        cfg.Location,
		ttl:        cfg.WindowTTL,
		now:        cfg.Now,
		logger:     logger,
	}
}

// Today returns the current time in the registry's display location
func (r *Registry) Today() time.Time {
	return r.now().In(r.loc)
}

// Len returns how many workspaces are held in memory
func (r *Registry) Len() int {
	return r.workspaces.Len()
}

// Location returns the display location windows are expressed in
func (r *Registry) Location() *time.Location {
	return r.loc
}

// Get returns the workspace for key, restoring a persisted window or
// starting from the default one
func (r *Registry) Get(ctx context.Context, key string) (*Workspace, error) {
	if key == "" {
		return nil, fmt.Errorf("workspace key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.workspaces.Get(key); ok {
		// renews the idle deadline
		r.workspaces.Add(key, ws)
		return ws, nil
	}

	w, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}

	ws := newWorkspace(key, w, func(ctx context.Context, w window.Window) error {
		return r.persist(ctx, key, w)
	}, r.now)
	r.workspaces.Add(key, ws)
	return ws, nil
}

// Forget drops the workspace for key and its persisted window
func (r *Registry) Forget(ctx context.Context, key string) error {
	r.mu.Lock()
	r.workspaces.Remove(key)
	r.mu.Unlock()

	if err := r.kv.Delete(ctx, windowKeyPrefix+key); err != nil {
		return fmt.Errorf("failed to delete persisted window: %w", err)
	}
	return nil
}

func (r *Registry) load(ctx context.Context, key string) (window.Window, error) {
	raw, err := r.kv.Get(ctx, windowKeyPrefix+key)
	if errors.Is(err, store.ErrNotFound) {
		return window.Default(r.Today()), nil
	}
	if err != nil {
		return window.Window{}, fmt.Errorf("failed to load window: %w", err)
	}

	var sw storedWindow
	if err := json.Unmarshal([]byte(raw), &sw); err != nil {
		r.logger.Warn("discarding unreadable persisted window", zap.Error(err))
		return window.Default(r.Today()), nil
	}
	w, err := window.Parse(sw.StartDate, sw.EndDate, r.loc)
	if err != nil {
		r.logger.Warn("discarding invalid persisted window",
			zap.String("start_date", sw.StartDate),
			zap.String("end_date", sw.EndDate),
			zap.Error(err),
		)
		return window.Default(r.Today()), nil
	}
	return w, nil
}

func (r *Registry) persist(ctx context.Context, key string, w window.Window) error {
	data, err := json.Marshal(storedWindow{StartDate: w.StartParam(), EndDate: w.EndParam()})
	if err != nil {
		return fmt.Errorf("failed to encode window: %w", err)
	}
	if err := r.kv.Set(ctx, windowKeyPrefix+key, string(data), r.ttl); err != nil {
		r.logger.Error("failed to persist window", zap.Error(err))
		return fmt.Errorf("failed to persist window: %w", err)
	}
	return nil
}
