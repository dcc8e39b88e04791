package alloc

import (
	"errors"
	"testing"
)

type pair struct{ A, B int64 }

func TestMakeNilAllocator(t *testing.T) {
	s, err := Make[int](nil, 8)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if len(s) != 8 || cap(s) != 8 {
		t.Errorf("expected len=cap=8, got len=%d cap=%d", len(s), cap(s))
	}
	empty, err := Make[int](nil, 0)
	if err != nil || empty != nil {
		t.Errorf("zero-length Make should return nil, nil; got %v, %v", empty, err)
	}
}

func TestCountingTracksLiveBlocks(t *testing.T) {
	c := NewCounting(nil)
	a, err := Make[pair](c, 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Make[pair](c, 2)
	if err != nil {
		t.Fatal(err)
	}
	st := c.Stats()
	if st.LiveBlocks != 2 || st.LiveBytes != 6*16 {
		t.Errorf("unexpected stats after two allocations: %+v", st)
	}
	if !c.Owns(a) || !c.Owns(b) {
		t.Error("counting allocator should own its blocks")
	}
	if c.Owns(make([]pair, 4)) {
		t.Error("counting allocator should not own foreign blocks")
	}

	Free(c, a)
	Free(c, b)
	st = c.Stats()
	if st.LiveBlocks != 0 || st.LiveBytes != 0 {
		t.Errorf("expected no live blocks, got %+v", st)
	}
	if st.PeakBytes != 96 {
		t.Errorf("expected peak 96 bytes, got %d", st.PeakBytes)
	}
	if st.Allocations != 2 || st.Deallocations != 2 {
		t.Errorf("expected 2/2 allocations, got %+v", st)
	}
}

func TestCountingZeroSizedElements(t *testing.T) {
	c := NewCounting(nil)
	a, _ := Make[struct{}](c, 3)
	b, _ := Make[struct{}](c, 5)
	if c.Stats().LiveBlocks != 2 {
		t.Fatalf("expected 2 live blocks, got %d", c.Stats().LiveBlocks)
	}
	Free(c, a)
	if !c.Owns(b) {
		t.Error("second zero-sized block should still be owned")
	}
	Free(c, b)
	if c.Stats().LiveBlocks != 0 {
		t.Errorf("expected 0 live blocks, got %d", c.Stats().LiveBlocks)
	}
}

func TestGrow(t *testing.T) {
	c := NewCounting(nil)
	var s []int
	var err error
	for i := 0; i < 100; i++ {
		s, err = Grow(c, s, 1)
		if err != nil {
			t.Fatalf("Grow at %d: %v", i, err)
		}
		s[len(s)-1] = i
	}
	for i, v := range s {
		if v != i {
			t.Fatalf("element %d corrupted: %d", i, v)
		}
	}
	if c.Stats().LiveBlocks != 1 {
		t.Errorf("old blocks should be released on growth, live=%d", c.Stats().LiveBlocks)
	}
}

func TestBudget(t *testing.T) {
	b := NewBudget(64)
	s, err := Make[int64](b, 8)
	if err != nil {
		t.Fatalf("first allocation within budget failed: %v", err)
	}
	if _, err := Make[int64](b, 1); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	Free(b, s)
	if b.Used() != 0 {
		t.Errorf("expected budget fully returned, used=%d", b.Used())
	}
	if _, err := Make[int64](b, 8); err != nil {
		t.Errorf("allocation after free should succeed: %v", err)
	}
}

func TestGrowKeepsSliceOnFailure(t *testing.T) {
	b := NewBudget(32)
	s, err := Make[int64](b, 4)
	if err != nil {
		t.Fatal(err)
	}
	s[0] = 7
	got, err := Grow(b, s, 1)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if len(got) != 4 || got[0] != 7 {
		t.Errorf("slice should be unchanged on failure, got %v", got)
	}
}

func TestFallback(t *testing.T) {
	primary := NewBudget(16)
	secondary := NewCounting(nil)
	f := Fallback{Primary: primary, Secondary: secondary}

	small, err := Make[int64](f, 2)
	if err != nil {
		t.Fatal(err)
	}
	large, err := Make[int64](f, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !primary.Owns(small) {
		t.Error("small block should come from the primary")
	}
	if !secondary.Owns(large) {
		t.Error("large block should fall back to the secondary")
	}
	if !f.Owns(small) || !f.Owns(large) {
		t.Error("fallback should own both blocks")
	}

	Free[int64](f, large)
	Free[int64](f, small)
	if primary.Used() != 0 || secondary.Stats().LiveBlocks != 0 {
		t.Errorf("blocks not routed back: primary=%d secondary=%+v", primary.Used(), secondary.Stats())
	}
}
