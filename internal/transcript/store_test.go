package transcript

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestAppend(t *testing.T) {
	s := NewStore(10, 10)
	now := time.Now()

	e, appended := s.Append("  hello  ", "screen", now)
	if !appended {
		t.Fatal("first append should create an entry")
	}
	if e.Text != "hello" {
		t.Errorf("text should be trimmed, got %q", e.Text)
	}
	if e.Seq != 0 {
		t.Errorf("first seq = %d, want 0", e.Seq)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestEviction(t *testing.T) {
	s := NewStore(2, 10)
	now := time.Now()
	s.Append("x", "screen", now)
	s.Append("y", "screen", now)
	s.Append("z", "screen", now)

	entries := s.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Text != "y" || entries[1].Text != "z" {
		t.Errorf("expected [y z], got [%s %s]", entries[0].Text, entries[1].Text)
	}
}

func TestBoundedBufferLaw(t *testing.T) {
	const capacity = 5
	s := NewStore(capacity, 10)
	now := time.Now()
	for i := 0; i < 20; i++ {
		s.Append(fmt.Sprintf("entry-%d", i), "screen", now)
	}

	entries := s.Snapshot()
	if len(entries) != capacity {
		t.Fatalf("len = %d, want %d", len(entries), capacity)
	}
	// Retained entries are exactly the last N appended, in order.
	for i, e := range entries {
		want := fmt.Sprintf("entry-%d", 20-capacity+i)
		if e.Text != want {
			t.Errorf("entries[%d].Text = %q, want %q", i, e.Text, want)
		}
	}
}

func TestSequenceMonotonicity(t *testing.T) {
	s := NewStore(3, 10)
	now := time.Now()
	var last uint64
	for i := 0; i < 10; i++ {
		e, _ := s.Append(fmt.Sprintf("t%d", i), "screen", now)
		if i > 0 && e.Seq <= last {
			t.Fatalf("seq not strictly increasing: %d after %d", e.Seq, last)
		}
		last = e.Seq
	}

	// Clear must not rewind the counter.
	s.Clear()
	e, _ := s.Append("after clear", "screen", now)
	if e.Seq <= last {
		t.Errorf("seq reused after Clear: %d after %d", e.Seq, last)
	}
}

func TestDeduplication(t *testing.T) {
	s := NewStore(10, 10)
	t1 := time.Now()
	t2 := t1.Add(time.Second)

	s.Append("same text", "screen", t1)
	e, appended := s.Append("  same text ", "screen", t2)
	if appended {
		t.Error("duplicate trimmed text should not append")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if !e.Timestamp.Equal(t2) {
		t.Errorf("timestamp should refresh to %v, got %v", t2, e.Timestamp)
	}
	snap := s.Snapshot()
	if !snap[0].Timestamp.Equal(t2) {
		t.Error("stored entry timestamp should be refreshed")
	}
}

func TestEmptyTextNotDeduplicated(t *testing.T) {
	s := NewStore(10, 10)
	now := time.Now()
	s.Append("", "screen", now)
	s.Append("", "screen", now)
	if s.Len() != 2 {
		t.Errorf("empty entries should not deduplicate, Len = %d", s.Len())
	}
}

func TestLatest(t *testing.T) {
	s := NewStore(5, 10)
	now := time.Now()
	for i := 0; i < 4; i++ {
		s.Append(fmt.Sprintf("e%d", i), "screen", now)
	}

	last2 := s.Latest(2)
	if len(last2) != 2 || last2[0].Text != "e2" || last2[1].Text != "e3" {
		t.Errorf("Latest(2) = %v", last2)
	}
	if got := s.Latest(100); len(got) != 4 {
		t.Errorf("Latest beyond size should return all, got %d", len(got))
	}
	if s.Latest(0) != nil {
		t.Error("Latest(0) should be nil")
	}
}

func TestClear(t *testing.T) {
	s := NewStore(5, 10)
	s.Append("a", "screen", time.Now())
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d", s.Len())
	}
	if len(s.Snapshot()) != 0 {
		t.Error("Snapshot after Clear should be empty")
	}
}

func TestRecentText(t *testing.T) {
	s := NewStore(10, 10)
	now := time.Now()
	s.Append("old entry", "screen", now.Add(-time.Minute))
	s.Append("fresh entry", "screen", now)
	s.Append("another fresh", "screen", now)

	got := s.RecentText(now.Add(-10*time.Second), 3000)
	if got != "fresh entry\n---\nanother fresh" {
		t.Errorf("RecentText = %q", got)
	}

	capped := s.RecentText(now.Add(-10*time.Second), 5)
	if capped != "fresh" {
		t.Errorf("capped RecentText = %q", capped)
	}
}

func TestEvents(t *testing.T) {
	s := NewStore(10, 1)
	s.Append("one", "screen", time.Now())

	select {
	case e := <-s.Events():
		if e.Text != "one" {
			t.Errorf("event text = %q", e.Text)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected an event")
	}

	// Full buffer must not block the writer.
	done := make(chan struct{})
	go func() {
		s.Append("two", "screen", time.Now())
		s.Append("three", "screen", time.Now())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Append blocked on full event channel")
	}
}

func TestConcurrentReadersSingleWriter(t *testing.T) {
	s := NewStore(16, 10)
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				for _, e := range s.Snapshot() {
					if e.Text == "" && e.Seq != 0 {
						t.Error("observed torn entry")
						return
					}
				}
				s.Latest(5)
				s.Len()
			}
		}()
	}

	for i := 0; i < 500; i++ {
		s.Append(fmt.Sprintf("msg-%d", i), "screen", time.Now())
	}
	close(stop)
	wg.Wait()
}
