package sse

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// State is the lifecycle state of a Stream.
type State int32

// Stream states. A stream moves Idle → Sending on the first event,
// Sending → Closing on the last event or on cancellation, and
// Closing → Done after the terminal flush.
const (
	StateIdle State = iota
	StateSending
	StateClosing
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateClosing:
		return "closing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// DefaultInterval is the fixed inter-event delay used when no duration is
// configured. Events go out "as fast as reasonable", not instantaneously,
// so interleaving across concurrent streams stays observable.
const DefaultInterval = 30 * time.Millisecond

// Stream is a single logical state machine delivering one paced SSE
// response. It is driven by one timer at a time, never a dedicated
// worker: between events the goroutine running Run sleeps on the timer or
// the context, whichever fires first.
type Stream struct {
	events   []string
	duration time.Duration
	interval time.Duration
	state    atomic.Int32
	now      func() time.Time
}

// StreamOption customizes a Stream.
type StreamOption func(*Stream)

// WithInterval overrides the fixed inter-event delay used when the
// duration is zero. Intended for tests.
func WithInterval(d time.Duration) StreamOption {
	return func(s *Stream) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewStream creates a Stream over pre-segmented events. A zero duration
// selects fixed-interval pacing; a positive duration spreads the events
// evenly across the window.
func NewStream(events []string, duration time.Duration, opts ...StreamOption) *Stream {
	s := &Stream{
		events:   events,
		duration: duration,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Stream) State() State {
	return State(s.state.Load())
}

func (s *Stream) transition(to State) {
	s.state.Store(int32(to))
}

// delayUntil computes the wall-clock delay before event i may be written,
// given the stream start time. Event i's target offset is
// i*duration/(n-1), so n events cover the whole window with the first at
// t=0 and the last at t=duration.
func (s *Stream) delayUntil(i int, start time.Time) time.Duration {
	if s.duration <= 0 {
		if i == 0 {
			return 0
		}
		return s.interval
	}
	denom := len(s.events) - 1
	if denom < 1 {
		denom = 1
	}
	target := start.Add(time.Duration(i) * s.duration / time.Duration(denom))
	if d := target.Sub(s.now()); d > 0 {
		return d
	}
	return 0
}

// Run writes the events to w, pacing them per the configured duration,
// and flushes after every write when w supports it. Run returns nil after
// the terminal flush, or ctx.Err() when the context is cancelled first.
// After cancellation no further writes are attempted; the terminal flush
// happens exactly once and never after a cancellation.
func (s *Stream) Run(ctx context.Context, w io.Writer) error {
	flusher, _ := w.(http.Flusher)
	start := s.now()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for i, event := range s.events {
		if delay := s.delayUntil(i, start); delay > 0 {
			timer.Reset(delay)
			select {
			case <-ctx.Done():
				s.transition(StateClosing)
				s.transition(StateDone)
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			s.transition(StateClosing)
			s.transition(StateDone)
			return err
		}

		s.transition(StateSending)
		if _, err := io.WriteString(w, event); err != nil {
			s.transition(StateClosing)
			s.transition(StateDone)
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	s.transition(StateClosing)
	if flusher != nil {
		flusher.Flush()
	}
	s.transition(StateDone)
	return nil
}
