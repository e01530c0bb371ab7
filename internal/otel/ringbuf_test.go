package otel

import (
	"sync"
	"testing"
	"time"
)

func TestPushAndSnapshot(t *testing.T) {
	r := NewRingBuffer(8)
	for i := 0; i < 5; i++ {
		r.Push(Event{Kind: KindListStart, Page: i})
	}

	snap := r.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("expected 5 events, got %d", len(snap))
	}
	for i, e := range snap {
		if e.Page != i {
			t.Errorf("snap[%d].Page=%d, want %d", i, e.Page, i)
		}
	}
}

func TestWrapAroundEvictsOldest(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 8; i++ {
		r.Push(Event{Kind: KindListStart, Page: i})
	}

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 events, got %d", len(snap))
	}
	for i, e := range snap {
		if e.Page != i+4 {
			t.Errorf("snap[%d].Page=%d, want %d", i, e.Page, i+4)
		}
	}
	if r.Len() != 4 || r.Cap() != 4 {
		t.Errorf("Len/Cap = %d/%d, want 4/4", r.Len(), r.Cap())
	}
}

func TestLast(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 6; i++ {
		r.Push(Event{Kind: KindListStart, Page: i})
	}

	last := r.Last(2)
	if len(last) != 2 || last[0].Page != 4 || last[1].Page != 5 {
		t.Errorf("Last(2) = %+v, want pages [4 5]", last)
	}
	if got := len(r.Last(100)); got != 4 {
		t.Errorf("Last(100) returned %d events, want 4", got)
	}
	if r.Last(0) != nil || r.Last(-1) != nil {
		t.Error("Last(n<=0) should be nil")
	}
}

func TestEmptyAndDefault(t *testing.T) {
	r := NewRingBuffer(0)
	if r.Cap() != DefaultRingSize {
		t.Errorf("Cap()=%d, want %d", r.Cap(), DefaultRingSize)
	}
	if r.Snapshot() != nil {
		t.Error("empty snapshot should be nil")
	}
}

func TestStats(t *testing.T) {
	r := NewRingBuffer(16)
	r.Push(Event{Kind: KindSearchStart})
	r.Push(Event{Kind: KindSearchStart})
	r.Push(Event{Kind: KindSearchComplete})
	r.Push(Event{Kind: KindStale})

	stats := r.Stats()
	if stats[KindSearchStart] != 2 || stats[KindSearchComplete] != 1 || stats[KindStale] != 1 {
		t.Errorf("Stats() = %v", stats)
	}
}

func TestReadStatsByView(t *testing.T) {
	r := NewRingBuffer(16)
	r.Push(Event{Kind: KindListComplete, View: "leave", Dur: 100 * time.Millisecond})
	r.Push(Event{Kind: KindSearchComplete, View: "leave", Dur: 300 * time.Millisecond})
	r.Push(Event{Kind: KindStale, View: "leave"})
	r.Push(Event{Kind: KindListError, View: "overtime"})
	r.Push(Event{Kind: KindListStart, View: "overtime"})
	r.Push(Event{Kind: KindListComplete, Dur: time.Second})

	stats := r.ReadStatsByView()
	leave := stats["leave"]
	if leave.Reads != 2 || leave.Stale != 1 || leave.MaxDur != 300*time.Millisecond || leave.AvgDur != 200*time.Millisecond {
		t.Errorf("leave = %+v", leave)
	}
	ot := stats["overtime"]
	if ot.Errors != 1 || ot.Reads != 0 {
		t.Errorf("overtime = %+v", ot)
	}
	if _, ok := stats[""]; ok {
		t.Error("events without a view should be ignored")
	}
}

func TestLastErrors(t *testing.T) {
	r := NewRingBuffer(4)
	r.Push(Event{Kind: KindListError, Level: LevelError, Err: "a"})
	r.Push(Event{Kind: KindListComplete, Level: LevelInfo})
	r.Push(Event{Kind: KindMutationError, Level: LevelError, Err: "b"})
	r.Push(Event{Kind: KindSearchError, Level: LevelError, Err: "c"})
	r.Push(Event{Kind: KindListComplete, Level: LevelInfo})

	errs := r.LastErrors(5)
	if len(errs) != 2 || errs[0].Err != "c" || errs[1].Err != "b" {
		t.Errorf("LastErrors = %+v, want [c b]", errs)
	}
}

func TestDeepCopyExtra(t *testing.T) {
	r := NewRingBuffer(4)
	extra := map[string]any{"action": "approve"}
	r.Push(Event{Kind: KindMutationStart, Extra: extra})
	extra["action"] = "reject"

	if got := r.Snapshot()[0].Extra["action"]; got != "approve" {
		t.Errorf("extra was aliased: got %v", got)
	}
}

func TestConcurrentPushAndRead(t *testing.T) {
	r := NewRingBuffer(256)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Push(Event{Kind: KindListComplete, View: "leave"})
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = r.Snapshot()
				_ = r.Last(10)
				_ = r.ReadStatsByView()
			}
		}()
	}
	wg.Wait()
}

func TestRingBufferWithLogger(t *testing.T) {
	r := NewRingBuffer(16)
	l := NewNullLogger()
	l.SetRingBuffer(r)

	l.Emit(Event{Kind: KindStartup})
	l.Emit(Event{Kind: KindShutdown})
	l.Close()

	last := r.Last(2)
	if len(last) != 2 || last[0].Kind != KindStartup || last[1].Kind != KindShutdown {
		t.Errorf("ring = %+v", last)
	}
}
