package sparse

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/l1jgo/ecskit/internal/core/alloc"
	"github.com/l1jgo/ecskit/internal/core/hash"
)

func TestInsertDeduplicates(t *testing.T) {
	s := NewComparable[int](nil)
	for _, v := range []int{3, 1, 3, 2, 1} {
		if _, err := s.Insert(v); err != nil {
			t.Fatal(err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 distinct values, got %d", s.Len())
	}
	added, _ := s.Insert(2)
	if added {
		t.Error("inserting a present value should report false")
	}
	want := []int{3, 1, 2}
	for i, v := range s.Values() {
		if v != want[i] {
			t.Errorf("dense[%d] = %d, want %d", i, v, want[i])
		}
	}
}

func TestRemoveSwapsLast(t *testing.T) {
	s := NewComparable[string](nil)
	for _, v := range []string{"a", "b", "c", "d"} {
		_, _ = s.Insert(v)
	}
	if err := s.Remove("b"); err != nil {
		t.Fatal(err)
	}
	if s.Contains("b") {
		t.Error("removed value still present")
	}
	if got := s.IndexOf("d"); got != 1 {
		t.Errorf("last value should move into the hole, IndexOf(d) = %d", got)
	}
	for _, v := range []string{"a", "c", "d"} {
		if !s.Contains(v) {
			t.Errorf("%q lost after removal", v)
		}
	}
}

func TestRemoveAbsent(t *testing.T) {
	s := NewComparable[int](nil)
	_, _ = s.Insert(1)
	if err := s.Remove(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("failed removal must not change size, got %d", s.Len())
	}
}

// collidingHasher sends every value to the same bucket so equality alone
// has to tell values apart.
func collidingHasher() hash.Hasher[int] {
	return hash.Func[int]{
		HashFn:  func(int) uint64 { return 42 },
		EqualFn: func(a, b int) bool { return a == b },
	}
}

func TestCollisionsResolvedByEquality(t *testing.T) {
	s := New(collidingHasher(), nil)
	for v := 0; v < 10; v++ {
		_, _ = s.Insert(v)
	}
	_, _ = s.Insert(5)
	if s.Len() != 10 {
		t.Fatalf("expected 10 values, got %d", s.Len())
	}
	for _, v := range []int{0, 9, 4} {
		if err := s.Remove(v); err != nil {
			t.Fatalf("remove %d: %v", v, err)
		}
	}
	for v := 0; v < 10; v++ {
		removed := v == 0 || v == 9 || v == 4
		if s.Contains(v) == removed {
			t.Errorf("Contains(%d) = %v, removed = %v", v, s.Contains(v), removed)
		}
	}
}

func TestRandomOperationsMatchModel(t *testing.T) {
	for name, s := range map[string]*Set[int]{
		"seeded":    NewComparable[int](nil),
		"colliding": New(collidingHasher(), nil),
	} {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			model := map[int]bool{}
			for step := 0; step < 3000; step++ {
				v := rng.Intn(64)
				if rng.Intn(3) == 0 {
					err := s.Remove(v)
					if model[v] && err != nil {
						t.Fatalf("step %d: remove %d: %v", step, v, err)
					}
					if !model[v] && !errors.Is(err, ErrNotFound) {
						t.Fatalf("step %d: expected ErrNotFound for %d, got %v", step, v, err)
					}
					delete(model, v)
					if s.Contains(v) {
						t.Fatalf("step %d: %d present after removal", step, v)
					}
				} else {
					if _, err := s.Insert(v); err != nil {
						t.Fatal(err)
					}
					model[v] = true
				}
				if s.Len() != len(model) {
					t.Fatalf("step %d: size %d, model %d", step, s.Len(), len(model))
				}
			}
			for v := range model {
				if !s.Contains(v) {
					t.Errorf("%d missing", v)
				}
			}
			for i, v := range s.Values() {
				if s.IndexOf(v) != i {
					t.Errorf("sparse index for %d points at %d, dense position %d", v, s.IndexOf(v), i)
				}
			}
		})
	}
}

func TestAllStopsEarly(t *testing.T) {
	s := NewComparable[int](nil)
	for v := 0; v < 5; v++ {
		_, _ = s.Insert(v)
	}
	n := 0
	for range s.All() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("expected early stop after 2, got %d", n)
	}
}

func TestInsertFailsOnExhaustedAllocator(t *testing.T) {
	s := NewComparable[int64](alloc.NewBudget(32))
	for v := int64(0); v < 4; v++ {
		if _, err := s.Insert(v); err != nil {
			t.Fatalf("insert %d: %v", v, err)
		}
	}
	if _, err := s.Insert(99); !errors.Is(err, alloc.ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if s.Contains(99) || s.Len() != 4 {
		t.Error("failed insert must leave the set unchanged")
	}
}
