package sse

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// timestampingWriter records the wall-clock time of every write.
type timestampingWriter struct {
	mu     sync.Mutex
	writes []string
	times  []time.Time
}

func (w *timestampingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, string(p))
	w.times = append(w.times, time.Now())
	return len(p), nil
}

func (w *timestampingWriter) snapshot() ([]string, []time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.writes...), append([]time.Time(nil), w.times...)
}

func TestStream_DeliversAllEventsInOrder(t *testing.T) {
	events := SplitEvents("a\nb\nc")
	s := NewStream(events, 0, WithInterval(time.Millisecond))
	w := &timestampingWriter{}

	if err := s.Run(context.Background(), w); err != nil {
		t.Fatalf("run: %v", err)
	}
	writes, _ := w.snapshot()
	if len(writes) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(writes))
	}
	if writes[0] != "a\n\n" || writes[1] != "b\n\n" || writes[2] != "c\n\n" {
		t.Errorf("events out of order: %v", writes)
	}
	if s.State() != StateDone {
		t.Errorf("state = %v, want done", s.State())
	}
}

func TestStream_PacedDelivery(t *testing.T) {
	// 3 events over 300ms: gaps of ~150ms each, total ~300ms.
	const duration = 300 * time.Millisecond
	events := SplitEvents("a\nb\nc")
	s := NewStream(events, duration)
	w := &timestampingWriter{}

	start := time.Now()
	if err := s.Run(context.Background(), w); err != nil {
		t.Fatalf("run: %v", err)
	}
	total := time.Since(start)

	_, times := w.snapshot()
	if len(times) != 3 {
		t.Fatalf("expected 3 events, got %d", len(times))
	}

	const slack = 100 * time.Millisecond
	wantGap := duration / 2
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		if gap < wantGap-slack/2 || gap > wantGap+slack {
			t.Errorf("gap %d = %v, want ~%v", i, gap, wantGap)
		}
	}
	if total < duration-slack/2 || total > duration+2*slack {
		t.Errorf("total = %v, want ~%v", total, duration)
	}
}

func TestStream_ZeroDurationIsFastButNotInstant(t *testing.T) {
	events := SplitEvents("a\nb\nc\nd")
	s := NewStream(events, 0, WithInterval(5*time.Millisecond))
	w := &timestampingWriter{}

	start := time.Now()
	if err := s.Run(context.Background(), w); err != nil {
		t.Fatalf("run: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 10*time.Millisecond {
		t.Errorf("zero-duration stream finished in %v, expected fixed inter-event delays", elapsed)
	}
}

func TestStream_CancellationStopsWrites(t *testing.T) {
	events := SplitEvents("a\nb\nc\nd\ne")
	s := NewStream(events, 2*time.Second)
	w := &timestampingWriter{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, w) }()

	// Let the first event out, then disconnect.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected context error after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("stream did not observe cancellation promptly")
	}

	writes, _ := w.snapshot()
	if len(writes) >= len(events) {
		t.Errorf("cancellation should have stopped delivery, got all %d events", len(writes))
	}
	if s.State() != StateDone {
		t.Errorf("state = %v, want done", s.State())
	}

	// No further writes after Run returned.
	before, _ := w.snapshot()
	time.Sleep(100 * time.Millisecond)
	after, _ := w.snapshot()
	if len(after) != len(before) {
		t.Error("writes continued after cancellation")
	}
}

func TestStream_SingleEventStream(t *testing.T) {
	s := NewStream(SplitEvents("only"), time.Second)
	w := &timestampingWriter{}

	start := time.Now()
	if err := s.Run(context.Background(), w); err != nil {
		t.Fatalf("run: %v", err)
	}
	// A single event must not wait out the whole window: its target
	// offset is 0.
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("single event took %v, expected immediate delivery", elapsed)
	}
	writes, _ := w.snapshot()
	if len(writes) != 1 || !strings.HasPrefix(writes[0], "only") {
		t.Errorf("writes = %v", writes)
	}
}

func TestStream_StateProgression(t *testing.T) {
	s := NewStream(SplitEvents("a"), 0, WithInterval(time.Millisecond))
	if s.State() != StateIdle {
		t.Errorf("initial state = %v, want idle", s.State())
	}
	_ = s.Run(context.Background(), &timestampingWriter{})
	if s.State() != StateDone {
		t.Errorf("final state = %v, want done", s.State())
	}
}
