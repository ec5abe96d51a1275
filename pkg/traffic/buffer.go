package traffic

import "sync"

// DefaultCapacity is the number of entries retained by default.
const DefaultCapacity = 500

// Broadcaster delivers a freshly appended entry to the owner's live
// subscribers. Implementations must tolerate concurrent calls and must
// never fail the append path; send errors to dead sessions are theirs to
// swallow.
type Broadcaster interface {
	BroadcastLog(entry *Entry)
}

// BroadcasterFunc adapts a function to the Broadcaster interface.
type BroadcasterFunc func(entry *Entry)

// BroadcastLog calls f(entry).
func (f BroadcasterFunc) BroadcastLog(entry *Entry) { f(entry) }

// Buffer is a bounded, newest-first log of traffic entries. Append is the
// only mutator; once capacity is exceeded the oldest entry is evicted.
// All access is serialized by an internal mutex; readers get snapshots,
// never live iteration over shared state.
type Buffer struct {
	mu          sync.RWMutex
	entries     []*Entry // index 0 is the most recent
	capacity    int
	broadcaster Broadcaster
}

// NewBuffer creates a Buffer with the given capacity. Capacities below 1
// fall back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		entries:  make([]*Entry, 0, capacity),
		capacity: capacity,
	}
}

// SetBroadcaster installs the fan-out sink invoked after every append.
// Call before serving traffic; the buffer works without one.
func (b *Buffer) SetBroadcaster(br Broadcaster) {
	b.mu.Lock()
	b.broadcaster = br
	b.mu.Unlock()
}

// Append inserts the entry at the front, evicts the oldest entry when the
// buffer is over capacity, then broadcasts the entry to the owner's
// subscribers. Exactly one broadcast per append, after the insert.
func (b *Buffer) Append(entry *Entry) {
	if entry == nil {
		return
	}

	b.mu.Lock()
	b.entries = append([]*Entry{entry}, b.entries...)
	if len(b.entries) > b.capacity {
		b.entries = b.entries[:b.capacity]
	}
	br := b.broadcaster
	b.mu.Unlock()

	if br != nil && entry.Owner != "" {
		br.BroadcastLog(entry)
	}
}

// ListForOwner returns the owner's entries, most recent first.
func (b *Buffer) ListForOwner(owner string) []*Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]*Entry, 0)
	for _, e := range b.entries {
		if e.Owner == owner {
			result = append(result, e)
		}
	}
	return result
}

// ClearForOwner removes the owner's entries, preserving the relative
// order of everything else.
func (b *Buffer) ClearForOwner(owner string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.entries[:0]
	for _, e := range b.entries {
		if e.Owner != owner {
			kept = append(kept, e)
		}
	}
	// Zero the tail so evicted entries do not linger.
	for i := len(kept); i < len(b.entries); i++ {
		b.entries[i] = nil
	}
	b.entries = kept
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
