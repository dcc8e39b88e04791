package ecs

import (
	"errors"
	"testing"
)

func TestViewOverflow(t *testing.T) {
	r := newTestRegistry(t, 8, WithMaxViewTables(2))
	e1, e2, e3 := mustCreate(t, r), mustCreate(t, r), mustCreate(t, r)
	_ = Add(r, e1, 1)
	_ = Add2(r, e2, 2, "b")
	if _, err := NewView1[int](r); err != nil {
		t.Fatalf("two matching tables fit the bound: %v", err)
	}
	_ = Add2(r, e3, 3, position{})
	if _, err := NewView1[int](r); !errors.Is(err, ErrViewOverflow) {
		t.Fatalf("expected ErrViewOverflow, got %v", err)
	}
	if _, err := NewView2[int, string](r); err != nil {
		t.Errorf("narrower view should still fit: %v", err)
	}
}

func TestViewIsSnapshot(t *testing.T) {
	r := newTestRegistry(t, 8)
	e1 := mustCreate(t, r)
	_ = Add(r, e1, 1)
	v, err := NewView1[int](r)
	if err != nil {
		t.Fatal(err)
	}

	// A row added to a known table is seen; a new table is not.
	e2 := mustCreate(t, r)
	_ = Add(r, e2, 2)
	e3 := mustCreate(t, r)
	_ = Add2(r, e3, 3, 1.5)
	if v.Size() != 2 {
		t.Errorf("snapshot view size %d, want 2", v.Size())
	}

	fresh, _ := NewView1[int](r)
	if fresh.Size() != 3 {
		t.Errorf("new view size %d, want 3", fresh.Size())
	}
}

func TestView2MutatesInPlace(t *testing.T) {
	r := newTestRegistry(t, 8)
	for i := 0; i < 4; i++ {
		e := mustCreate(t, r)
		_ = Add2(r, e, position{}, velocity{DX: float64(i), DY: 1})
	}
	v, err := NewView2[position, velocity](r)
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		v.Each(func(_ Entity, p *position, vel *velocity) {
			p.X += vel.DX
			p.Y += vel.DY
		})
	}
	var xs, ys float64
	for _, row := range v.All() {
		xs += row.A.X
		ys += row.A.Y
	}
	if xs != 18 || ys != 12 {
		t.Errorf("expected sums 18 and 12, got %v and %v", xs, ys)
	}
}

func TestView3AndEarlyStop(t *testing.T) {
	r := newTestRegistry(t, 8)
	for i := 0; i < 5; i++ {
		e := mustCreate(t, r)
		_ = Add3(r, e, i, position{}, tag{})
	}
	v, err := NewView3[int, position, tag](r)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	v.Each(func(Entity, *int, *position, *tag) { n++ })
	if n != 5 {
		t.Errorf("Each visited %d rows, want 5", n)
	}
	n = 0
	for range v.All() {
		if n++; n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("All should stop when the loop breaks, visited %d", n)
	}
}

func TestView1AllYieldsEntities(t *testing.T) {
	r := newTestRegistry(t, 4)
	want := map[Entity]int{}
	for i := 1; i <= 3; i++ {
		e := mustCreate(t, r)
		_ = Add(r, e, i)
		want[e] = i
	}
	v, _ := NewView1[int](r)
	for e, n := range v.All() {
		if want[e] != *n {
			t.Errorf("entity %v yielded %d, want %d", e, *n, want[e])
		}
		delete(want, e)
	}
	if len(want) != 0 {
		t.Errorf("entities not visited: %v", want)
	}
}

func TestUntypedViewAll(t *testing.T) {
	r := newTestRegistry(t, 4)
	id, _ := Register[int](r)
	e := mustCreate(t, r)
	mustCreate(t, r)
	_ = Add(r, e, 1)
	v, err := r.View(id)
	if err != nil {
		t.Fatal(err)
	}
	var got []Entity
	for x := range v.All() {
		got = append(got, x)
	}
	if len(got) != 1 || got[0] != e {
		t.Errorf("expected only %v, got %v", e, got)
	}
}
