package traffic

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func entryFor(owner, path string) *Entry {
	return &Entry{
		Kind:      KindHTTP,
		Owner:     owner,
		Method:    "GET",
		Path:      path,
		Timestamp: time.Now(),
	}
}

func TestBuffer_NewestFirst(t *testing.T) {
	b := NewBuffer(10)
	b.Append(entryFor("u1", "/test/first"))
	b.Append(entryFor("u1", "/test/second"))

	got := b.ListForOwner("u1")
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Path != "/test/second" || got[1].Path != "/test/first" {
		t.Errorf("expected newest first, got %s then %s", got[0].Path, got[1].Path)
	}
}

func TestBuffer_BoundEviction(t *testing.T) {
	b := NewBuffer(DefaultCapacity)
	for i := 0; i < DefaultCapacity+1; i++ {
		b.Append(entryFor("u1", fmt.Sprintf("/test/p%d", i)))
	}

	if b.Len() != DefaultCapacity {
		t.Fatalf("expected %d retained, got %d", DefaultCapacity, b.Len())
	}

	got := b.ListForOwner("u1")
	if got[0].Path != fmt.Sprintf("/test/p%d", DefaultCapacity) {
		t.Errorf("front should be the most recent, got %s", got[0].Path)
	}
	last := got[len(got)-1].Path
	if last != "/test/p1" {
		t.Errorf("oldest entry should have been evicted, tail is %s", last)
	}
}

func TestBuffer_ClearForOwner(t *testing.T) {
	b := NewBuffer(10)
	b.Append(entryFor("u1", "/test/a"))
	b.Append(entryFor("u2", "/test/b"))
	b.Append(entryFor("u1", "/test/c"))
	b.Append(entryFor("u2", "/test/d"))

	b.ClearForOwner("u1")

	if got := b.ListForOwner("u1"); len(got) != 0 {
		t.Errorf("u1 entries should be gone, got %d", len(got))
	}
	got := b.ListForOwner("u2")
	if len(got) != 2 {
		t.Fatalf("u2 entries should survive, got %d", len(got))
	}
	if got[0].Path != "/test/d" || got[1].Path != "/test/b" {
		t.Errorf("relative order disturbed: %s then %s", got[0].Path, got[1].Path)
	}
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	entries []*Entry
}

func (r *recordingBroadcaster) BroadcastLog(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingBroadcaster) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func TestBuffer_BroadcastAfterInsert(t *testing.T) {
	b := NewBuffer(10)
	rec := &recordingBroadcaster{}
	b.SetBroadcaster(rec)

	b.Append(entryFor("u1", "/test/a"))
	if rec.count() != 1 {
		t.Fatalf("expected 1 broadcast, got %d", rec.count())
	}
	b.Append(entryFor("u1", "/test/b"))
	if rec.count() != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", rec.count())
	}
}

func TestBuffer_OwnerlessEntriesNotBroadcast(t *testing.T) {
	b := NewBuffer(10)
	rec := &recordingBroadcaster{}
	b.SetBroadcaster(rec)

	b.Append(&Entry{Kind: KindHTTP, Path: "/test/anon", Timestamp: time.Now()})

	if rec.count() != 0 {
		t.Errorf("ownerless entry must not broadcast, got %d", rec.count())
	}
	if b.Len() != 1 {
		t.Errorf("ownerless entry must still be retained, len %d", b.Len())
	}
}

func TestBuffer_ConcurrentAppend(t *testing.T) {
	b := NewBuffer(100)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Append(entryFor(fmt.Sprintf("u%d", n), "/test/x"))
			}
		}(i)
	}
	wg.Wait()

	if b.Len() != 100 {
		t.Errorf("expected buffer at capacity 100, got %d", b.Len())
	}
}
