package view

import (
	"context"
	"sync"
	"time"

	"github.com/vcscsvcscs/health-dashboard/internal/window"
)

// Kind names a screen whose results are committed to the workspace
type Kind string

const (
	KindDashboard Kind = "dashboard"
	KindReports   Kind = "reports"
)

// Ticket identifies one load. It carries the window the load was started with.
type Ticket struct {
	Kind   Kind
	ID     uint64
	Window window.Window
}

// Snapshot is the last committed result of a screen
type Snapshot struct {
	Window      window.Window
	Value       any
	CommittedAt time.Time
}

// saveFunc persists a window change
type saveFunc func(ctx context.Context, w window.Window) error

// Workspace is the state of one session's dashboard
type Workspace struct {
	mu        sync.Mutex
	key       string
	window    window.Window
	sequences map[Kind]*Sequencer
	snapshots map[Kind]Snapshot
	save      saveFunc
	now       func() time.Time
}

// NewWorkspace creates a workspace that is not persisted
func NewWorkspace(key string, w window.Window) *Workspace {
	return newWorkspace(key, w, nil, time.Now)
}

func newWorkspace(key string, w window.Window, save saveFunc, now func() time.Time) *Workspace {
	return &Workspace{
		key:       key,
		window:    w,
		sequences: make(map[Kind]*Sequencer),
		snapshots: make(map[Kind]Snapshot),
		save:      save,
		now:       now,
	}
}

// Key returns the session key the workspace belongs to
func (ws *Workspace) Key() string {
	return ws.key
}

// Window returns the current date window
func (ws *Workspace) Window() window.Window {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.window
}

// Update changes one or both window boundaries. When both are given the
// pair is validated as a whole. A rejected or unsaved update leaves the
// window unchanged.
func (ws *Workspace) Update(ctx context.Context, start, end *time.Time) (window.Window, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	next := ws.window
	switch {
	case start != nil && end != nil:
		w, err := window.New(*start, *end)
		if err != nil {
			return ws.window, err
		}
		next = w
	case start != nil:
		if err := next.SetStart(*start); err != nil {
			return ws.window, err
		}
	case end != nil:
		if err := next.SetEnd(*end); err != nil {
			return ws.window, err
		}
	default:
		return ws.window, nil
	}

	return ws.commitWindow(ctx, next)
}

// Reset restores the default window ending at now
func (ws *Workspace) Reset(ctx context.Context, now time.Time) (window.Window, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.commitWindow(ctx, window.Default(now))
}

func (ws *Workspace) commitWindow(ctx context.Context, next window.Window) (window.Window, error) {
	if ws.save != nil {
		if err := ws.save(ctx, next); err != nil {
			return ws.window, err
		}
	}
	ws.window = next
	return next, nil
}

// Begin starts a load of kind against the current window
func (ws *Workspace) Begin(kind Kind) Ticket {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	seq, ok := ws.sequences[kind]
	if !ok {
		seq = &Sequencer{}
		ws.sequences[kind] = seq
	}
	return Ticket{Kind: kind, ID: seq.Begin(), Window: ws.window}
}

// IsLatest reports whether t is still the newest load of its kind
func (ws *Workspace) IsLatest(t Ticket) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.isLatest(t)
}

func (ws *Workspace) isLatest(t Ticket) bool {
	seq, ok := ws.sequences[t.Kind]
	if !ok || !seq.IsLatest(t.ID) {
		return false
	}
	return sameWindow(t.Window, ws.window)
}

// Commit stores value as the result of t. It returns false, storing
// nothing, when a newer load has started or the window has changed since.
func (ws *Workspace) Commit(t Ticket, value any) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.isLatest(t) {
		return false
	}
	ws.snapshots[t.Kind] = Snapshot{
		Window:      t.Window,
		Value:       value,
		CommittedAt: ws.now(),
	}
	return true
}

// Latest returns the last committed result of kind
func (ws *Workspace) Latest(kind Kind) (Snapshot, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	snap, ok := ws.snapshots[kind]
	return snap, ok
}

func sameWindow(a, b window.Window) bool {
	return a.Start.Equal(b.Start) && a.End.Equal(b.End)
}
