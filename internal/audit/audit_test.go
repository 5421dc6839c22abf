package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherStampsTime(t *testing.T) {
	p, inbox := NewPublisher(4, slog.Default())

	require.NoError(t, p.Emit(context.Background(), Event{StationID: "st-1", Action: ActionIssued}))

	got := <-inbox
	assert.Equal(t, "st-1", got.StationID)
	assert.False(t, got.At.IsZero())
}

func TestPublisherDropsWhenFull(t *testing.T) {
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_audit_dropped_total"})
	p, inbox := NewPublisher(1, slog.Default(), WithDropCounter(dropped))

	require.NoError(t, p.Emit(context.Background(), Event{StationID: "st-1", Action: ActionIssued}))
	// Buffer full: this must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Emit(context.Background(), Event{StationID: "st-1", Action: ActionRejected})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a full buffer")
	}

	got := <-inbox
	assert.Equal(t, ActionIssued, got.Action)
	assert.Equal(t, float64(1), testutil.ToFloat64(dropped))
}

func TestWorkerDrainsToStore(t *testing.T) {
	store := NewInMemoryStore()
	p, inbox := NewPublisher(8, slog.Default())
	w := NewWorker(store, inbox, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, p.Emit(ctx, Event{StationID: "st-1", Action: ActionIssued, StudentID: "A12345678"}))
	require.NoError(t, p.Emit(ctx, Event{StationID: "st-1", Action: ActionRejected, Reason: "duplicate_entry"}))

	assert.Eventually(t, func() bool {
		events, err := store.ListByStation(context.Background(), "st-1")
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestWorkerFlushesOnShutdown(t *testing.T) {
	store := NewInMemoryStore()
	p, inbox := NewPublisher(8, slog.Default())
	w := NewWorker(store, inbox, slog.Default())

	// Queue before the worker starts, then cancel immediately.
	require.NoError(t, p.Emit(context.Background(), Event{StationID: "st-2", Action: ActionCompleted}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = w.Run(ctx)

	events, err := store.ListByStation(context.Background(), "st-2")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
