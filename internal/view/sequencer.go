// Package view keeps the per-session dashboard workspace: the selected date
// window and the last committed results of each screen.
package view

import "sync/atomic"

// Sequencer hands out increasing request ids. Only the newest id may commit.
type Sequencer struct {
	last atomic.Uint64
}

// Begin starts a new request and returns its id
func (s *Sequencer) Begin() uint64 {
	return s.last.Add(1)
}

// IsLatest reports whether no request has started after id
func (s *Sequencer) IsLatest(id uint64) bool {
	return s.last.Load() == id
}
