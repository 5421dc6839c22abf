package service

import (
	"sync/atomic"
	"time"
)

// Window bounds the period during which authentications are accepted.
// A zero edge leaves that side unbounded. Close shuts the window early
// regardless of the configured edges.
type Window struct {
	opens  time.Time
	closes time.Time
	closed atomic.Bool
}

// NewWindow builds a window from the configured event edges.
func NewWindow(opens, closes time.Time) *Window {
	return &Window{opens: opens, closes: closes}
}

// Open reports whether authentications are accepted at the given time.
func (w *Window) Open(at time.Time) bool {
	if w.closed.Load() {
		return false
	}
	if !w.opens.IsZero() && at.Before(w.opens) {
		return false
	}
	if !w.closes.IsZero() && !at.Before(w.closes) {
		return false
	}
	return true
}

// Close shuts the window permanently.
func (w *Window) Close() {
	w.closed.Store(true)
}
