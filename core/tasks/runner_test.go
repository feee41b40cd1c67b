package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// collector gathers done events for assertions.
type collector struct {
	mu     sync.Mutex
	events []Event
	c      chan struct{}
}

func newCollector() *collector {
	return &collector{c: make(chan struct{}, 16)}
}

func (co *collector) done(ev Event) {
	co.mu.Lock()
	co.events = append(co.events, ev)
	co.mu.Unlock()
	co.c <- struct{}{}
}

func (co *collector) wait(t *testing.T) Event {
	t.Helper()
	select {
	case <-co.c:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.events[len(co.events)-1]
}

func TestSubmit_ReturnsHandleImmediately(t *testing.T) {
	co := newCollector()
	r := NewRunner(zap.NewNop(), co.done)

	release := make(chan struct{})
	id, err := r.Submit("session-1", "reconcile", 0, func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	running, ok := r.Running("session-1")
	assert.True(t, ok)
	assert.Equal(t, id, running)

	close(release)
	ev := co.wait(t)
	assert.Equal(t, id, ev.JobID)
	assert.NoError(t, ev.Err)

	_, ok = r.Running("session-1")
	assert.False(t, ok)
}

func TestSubmit_SingleFlightPerKey(t *testing.T) {
	co := newCollector()
	r := NewRunner(zap.NewNop(), co.done)

	release := make(chan struct{})
	_, err := r.Submit("session-1", "reconcile", 0, func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	// Same key is rejected while the first job runs.
	_, err = r.Submit("session-1", "reconcile", 0, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBusy)

	// A different key is fine.
	_, err = r.Submit("session-2", "reconcile", 0, func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
	co.wait(t)

	close(release)
	co.wait(t)

	// Key is free again after completion.
	_, err = r.Submit("session-1", "reconcile", 0, func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
	co.wait(t)
}

func TestSubmit_ReportsFailure(t *testing.T) {
	co := newCollector()
	r := NewRunner(zap.NewNop(), co.done)

	boom := errors.New("boom")
	_, err := r.Submit("session-1", "import", 0, func(ctx context.Context) error {
		return boom
	})
	require.NoError(t, err)

	ev := co.wait(t)
	assert.ErrorIs(t, ev.Err, boom)
}

func TestSubmit_RecoversPanic(t *testing.T) {
	co := newCollector()
	r := NewRunner(zap.NewNop(), co.done)

	_, err := r.Submit("session-1", "import", 0, func(ctx context.Context) error {
		panic("unexpected")
	})
	require.NoError(t, err)

	ev := co.wait(t)
	assert.Error(t, ev.Err)
	assert.Contains(t, ev.Err.Error(), "job panicked")

	// Runner stays usable for the key.
	_, err = r.Submit("session-1", "import", 0, func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
	co.wait(t)
}

func TestSubmit_TimeoutCancelsContext(t *testing.T) {
	co := newCollector()
	r := NewRunner(zap.NewNop(), co.done)

	_, err := r.Submit("session-1", "import", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)

	ev := co.wait(t)
	assert.ErrorIs(t, ev.Err, context.DeadlineExceeded)
}
