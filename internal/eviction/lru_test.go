package eviction

import "testing"

func TestLRUEvictsOldest(t *testing.T) {
	l := NewLRU(3)
	l.RecordPut("a")
	l.RecordPut("b")
	l.RecordPut("c")

	if _, ok := l.EvictIfNeeded(3); ok {
		t.Fatalf("expected no eviction at capacity")
	}

	victim, ok := l.EvictIfNeeded(4)
	if !ok || victim != "a" {
		t.Fatalf("expected a to be evicted first, got %q (ok=%v)", victim, ok)
	}
}

func TestLRUAccessRefreshesRecency(t *testing.T) {
	l := NewLRU(3)
	l.RecordPut("a")
	l.RecordPut("b")
	l.RecordPut("c")
	l.RecordAccess("a")

	victim, ok := l.EvictIfNeeded(4)
	if !ok || victim != "b" {
		t.Fatalf("expected b to be evicted after a was touched, got %q (ok=%v)", victim, ok)
	}
}

func TestLRURecordRemove(t *testing.T) {
	l := NewLRU(2)
	l.RecordPut("a")
	l.RecordRemove("a")

	if _, ok := l.EvictIfNeeded(3); ok {
		t.Fatalf("expected nothing tracked after removal")
	}
}

func TestLRUCapacityClamped(t *testing.T) {
	l := NewLRU(0)
	if l.Capacity() != 1 {
		t.Fatalf("expected capacity clamped to 1, got %d", l.Capacity())
	}
}
