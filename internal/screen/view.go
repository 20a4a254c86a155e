// Package screen holds the per-screen state machines the CLI drives.
// Each screen owns its view state; nothing is cached across screens.
package screen

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/spec-kit/citycare/pkg/util"
)

// State is where a data-bearing screen is in its load cycle.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
	Updating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "error"
	case Updating:
		return "updating"
	}
	return "unknown"
}

var (
	// ErrSuperseded is returned to a Load whose result was dropped because a
	// newer Load or Mutate started after it.
	ErrSuperseded = errors.New("screen: load superseded")
	// ErrClosed is returned once the view has been closed.
	ErrClosed = errors.New("screen: view closed")
	// ErrBusy is returned when a form is submitted while a submit is in flight.
	ErrBusy = errors.New("screen: request already in progress")
)

// Fetcher loads the data a view shows.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Snapshot is a copy of a view's state. Data keeps the last loaded value
// even after a failed reload.
type Snapshot[T any] struct {
	State State
	Data  T
	Err   error
	Alert string
}

// View runs Idle → Loading → Loaded | Failed. Every Load cancels the call
// before it, and only the newest call may write state.
type View[T any] struct {
	mu     sync.Mutex
	fetch  Fetcher[T]
	state  State
	data   T
	err    error
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// NewView builds an idle view.
func NewView[T any](fetch Fetcher[T]) *View[T] {
	return &View[T]{fetch: fetch}
}

// begin supersedes any in-flight call and enters state.
func (v *View[T]) begin(ctx context.Context, state State) (context.Context, uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, 0, ErrClosed
	}
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	v.seq++
	v.cancel = cancel
	v.state = state
	v.err = nil
	return ctx, v.seq, nil
}

// current reports whether seq is still the newest call, releasing its
// cancel func when it is.
func (v *View[T]) current(seq uint64) error {
	if v.closed {
		return ErrClosed
	}
	if seq != v.seq {
		return ErrSuperseded
	}
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	return nil
}

// Load fetches fresh data. Focusing a screen calls Load again.
func (v *View[T]) Load(ctx context.Context) (T, error) {
	var zero T
	callCtx, seq, err := v.begin(ctx, Loading)
	if err != nil {
		return zero, err
	}

	data, fetchErr := v.fetch(callCtx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.current(seq); err != nil {
		return zero, err
	}
	if fetchErr != nil {
		v.state = Failed
		v.err = fetchErr
		return zero, fetchErr
	}
	v.state = Loaded
	v.data = data
	return data, nil
}

// Mutate runs action in the Updating state, then reloads. A failed action
// leaves the view in Failed with the previous data.
func (v *View[T]) Mutate(ctx context.Context, action func(ctx context.Context) error) (T, error) {
	var zero T
	callCtx, seq, err := v.begin(ctx, Updating)
	if err != nil {
		return zero, err
	}

	actionErr := action(callCtx)

	v.mu.Lock()
	if err := v.current(seq); err != nil {
		v.mu.Unlock()
		if actionErr != nil {
			return zero, actionErr
		}
		return zero, err
	}
	if actionErr != nil {
		v.state = Failed
		v.err = actionErr
		v.mu.Unlock()
		return zero, actionErr
	}
	v.mu.Unlock()

	return v.Load(ctx)
}

// Close cancels any pending call. Later calls fail with ErrClosed.
func (v *View[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.closed = true
}

// Snapshot copies the current state.
func (v *View[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot[T]{State: v.state, Data: v.data, Err: v.err, Alert: Alert(v.err)}
}

// State returns the current state.
func (v *View[T]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Alert renders err for a blocking alert. Superseded and closed calls are
// silent.
func Alert(err error) string {
	if err == nil || errors.Is(err, ErrSuperseded) || errors.Is(err, ErrClosed) {
		return ""
	}
	if errors.Is(err, ErrBusy) {
		return "Please wait for the current request to finish."
	}
	return apperrors.UserMessage(err)
}
