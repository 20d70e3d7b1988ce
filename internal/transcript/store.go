// Package transcript provides a bounded, concurrency-safe store of
// time-stamped OCR text entries.
package transcript

import (
	"strings"
	"sync"
	"time"
)

// Entry is a single transcript record. Immutable once stored, except that
// a duplicate observation refreshes Timestamp in place.
type Entry struct {
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
}

// Store is a fixed-capacity ring of entries with FIFO eviction.
// Single writer (the active capture generation), many concurrent readers.
type Store struct {
	mu      sync.RWMutex
	ring    []Entry
	head    int // index of oldest entry
	size    int
	nextSeq uint64
	events  chan Entry
}

// NewStore creates a store holding at most capacity entries.
func NewStore(capacity, eventBuffer int) *Store {
	if capacity <= 0 {
		capacity = 1
	}
	return &Store{
		ring:   make([]Entry, capacity),
		events: make(chan Entry, eventBuffer),
	}
}

// Append stores text observed at ts. If the trimmed text equals the most
// recent entry's text, the existing entry's timestamp is refreshed instead
// of growing the transcript. Returns the affected entry and whether a new
// entry was created.
func (s *Store) Append(text, source string, ts time.Time) (Entry, bool) {
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	if s.size > 0 && trimmed != "" {
		last := &s.ring[s.index(s.size-1)]
		if last.Text == trimmed {
			last.Timestamp = ts
			e := *last
			s.mu.Unlock()
			return e, false
		}
	}

	e := Entry{
		Seq:       s.nextSeq,
		Timestamp: ts,
		Text:      trimmed,
		Source:    source,
	}
	s.nextSeq++

	if s.size == len(s.ring) {
		s.ring[s.head] = e
		s.head = (s.head + 1) % len(s.ring)
	} else {
		s.ring[s.index(s.size)] = e
		s.size++
	}
	s.mu.Unlock()

	s.emit(e)
	return e, true
}

// index maps a logical position (0 = oldest) to a ring slot. Caller holds mu.
func (s *Store) index(i int) int {
	return (s.head + i) % len(s.ring)
}

// Snapshot returns a point-in-time copy of all entries, oldest first.
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = s.ring[s.index(i)]
	}
	return out
}

// Latest returns the last k entries, oldest first.
func (s *Store) Latest(k int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k > s.size {
		k = s.size
	}
	if k <= 0 {
		return nil
	}
	out := make([]Entry, k)
	for i := 0; i < k; i++ {
		out[i] = s.ring[s.index(s.size-k+i)]
	}
	return out
}

// Len returns the current number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Clear resets the store to empty. Sequence numbers are not reused.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head = 0
	s.size = 0
}

// RecentText joins entries newer than cutoff into a single prompt-ready
// blob, skipping near-duplicate snippets, capped at maxChars.
func (s *Store) RecentText(cutoff time.Time, maxChars int) string {
	entries := s.Snapshot()

	var chunks []string
	total := 0
	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.Timestamp.Before(cutoff) || e.Text == "" {
			continue
		}
		key := e.Text
		if len(key) > 200 {
			key = key[:200]
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		chunks = append(chunks, e.Text)
		total += len(e.Text)
		if total >= maxChars {
			break
		}
	}

	joined := strings.Join(chunks, "\n---\n")
	if len(joined) > maxChars {
		joined = joined[:maxChars]
	}
	return joined
}

// Events returns the channel of appended entries.
func (s *Store) Events() <-chan Entry {
	return s.events
}

// emit sends an event without blocking; slow consumers miss entries.
func (s *Store) emit(e Entry) {
	select {
	case s.events <- e:
	default:
	}
}
