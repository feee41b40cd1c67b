package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrBusy is returned when a job for the same key is already running.
// Reconcile and import are not re-entrant for a session, so callers get a
// single-flight discipline instead of overlapping runs.
var ErrBusy = errors.New("a job is already running for this key")

// Event reports the outcome of a finished job.
type Event struct {
	// JobID is the handle returned by Submit.
	JobID string
	// Key is the single-flight key the job ran under.
	Key string
	// Name is the job name given to Submit.
	Name string
	// Err is nil on success.
	Err error
}

// Runner executes long-running work off the request path. Submit returns a
// job handle immediately; completion is reported through the done callback.
type Runner struct {
	logger *zap.Logger
	done   func(Event)

	mu      sync.Mutex
	running map[string]string // key -> job id
}

// NewRunner creates a Runner. The done callback receives one Event per
// finished job; a nil callback is allowed.
func NewRunner(logger *zap.Logger, done func(Event)) *Runner {
	return &Runner{
		logger:  logger,
		done:    done,
		running: make(map[string]string),
	}
}

// Submit starts fn in the background and returns its job id. Only one job
// per key runs at a time; a second Submit for a busy key fails with ErrBusy.
// A zero timeout means no deadline.
func (r *Runner) Submit(key, name string, timeout time.Duration, fn func(ctx context.Context) error) (string, error) {
	r.mu.Lock()
	if _, busy := r.running[key]; busy {
		r.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrBusy, key)
	}
	jobID := uuid.NewString()
	r.running[key] = jobID
	r.mu.Unlock()

	go r.run(jobID, key, name, timeout, fn)
	return jobID, nil
}

// Running reports the job id currently holding the key, if any.
func (r *Runner) Running(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.running[key]
	return id, ok
}

func (r *Runner) run(jobID, key, name string, timeout time.Duration, fn func(ctx context.Context) error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var err error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("job panicked: %v", rec)
			}
		}()
		err = fn(ctx)
	}()

	r.mu.Lock()
	delete(r.running, key)
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("background job failed",
			zap.String("job_id", jobID), zap.String("job", name),
			zap.String("key", key), zap.Error(err))
	} else {
		r.logger.Info("background job finished",
			zap.String("job_id", jobID), zap.String("job", name),
			zap.String("key", key))
	}

	if r.done != nil {
		r.done(Event{JobID: jobID, Key: key, Name: name, Err: err})
	}
}
