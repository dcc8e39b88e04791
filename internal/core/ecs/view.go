package ecs

import (
	"fmt"
	"iter"
)

// View is a snapshot of the tables whose component set includes a
// requested set. Tables created after the view are not seen. Row contents
// are read live, so the view must not be iterated while the registry is
// being mutated.
type View struct {
	mask   bitmask256
	tables []*Table
}

// View selects every table holding all of ids. With no ids it matches
// every entity. It fails with ErrViewOverflow when more tables match than
// the registry's view bound.
func (r *Registry) View(ids ...TypeID) (*View, error) {
	mask := maskOf(ids...)
	tables := make([]*Table, 0, min(len(r.tables), r.maxViewTables))
	for _, t := range r.tables {
		if !t.mask.contains(mask) {
			continue
		}
		if len(tables) == r.maxViewTables {
			return nil, fmt.Errorf("view over %d types: %w", mask.count(), ErrViewOverflow)
		}
		tables = append(tables, t)
	}
	return &View{mask: mask, tables: tables}, nil
}

// Size is the total row count across the view's tables.
func (v *View) Size() int {
	n := 0
	for _, t := range v.tables {
		n += t.Len()
	}
	return n
}

func (v *View) Tables() []*Table { return v.tables }

// Each calls fn for every entity in the view.
func (v *View) Each(fn func(Entity)) {
	for _, t := range v.tables {
		for _, e := range t.entities {
			fn(e)
		}
	}
}

// All iterates the view's entities.
func (v *View) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, t := range v.tables {
			for _, e := range t.entities {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// ── Typed views ─────────────────────────────────────────────────

// View1 iterates entities holding A.
type View1[A any] struct {
	View
	a []Column
}

// NewView1 registers A if needed and snapshots the matching tables.
func NewView1[A any](r *Registry) (*View1[A], error) {
	ia, err := Register[A](r)
	if err != nil {
		return nil, err
	}
	v, err := r.View(ia)
	if err != nil {
		return nil, err
	}
	out := &View1[A]{View: *v, a: make([]Column, len(v.tables))}
	for i, t := range v.tables {
		out.a[i] = t.Column(ia)
	}
	return out, nil
}

// Each calls fn with a pointer into every matching row. The pointer is only
// valid during the call.
func (v *View1[A]) Each(fn func(Entity, *A)) {
	for i, t := range v.tables {
		as := UnsafeValues[A](v.a[i])
		for row, e := range t.entities {
			fn(e, &as[row])
		}
	}
}

func (v *View1[A]) All() iter.Seq2[Entity, *A] {
	return func(yield func(Entity, *A) bool) {
		for i, t := range v.tables {
			as := UnsafeValues[A](v.a[i])
			for row, e := range t.entities {
				if !yield(e, &as[row]) {
					return
				}
			}
		}
	}
}

// Row2 is one matching row of a View2.
type Row2[A, B any] struct {
	A *A
	B *B
}

// View2 iterates entities holding A and B.
type View2[A, B any] struct {
	View
	a, b []Column
}

func NewView2[A, B any](r *Registry) (*View2[A, B], error) {
	ia, err := Register[A](r)
	if err != nil {
		return nil, err
	}
	ib, err := Register[B](r)
	if err != nil {
		return nil, err
	}
	v, err := r.View(ia, ib)
	if err != nil {
		return nil, err
	}
	out := &View2[A, B]{
		View: *v,
		a:    make([]Column, len(v.tables)),
		b:    make([]Column, len(v.tables)),
	}
	for i, t := range v.tables {
		out.a[i] = t.Column(ia)
		out.b[i] = t.Column(ib)
	}
	return out, nil
}

func (v *View2[A, B]) Each(fn func(Entity, *A, *B)) {
	for i, t := range v.tables {
		as := UnsafeValues[A](v.a[i])
		bs := UnsafeValues[B](v.b[i])
		for row, e := range t.entities {
			fn(e, &as[row], &bs[row])
		}
	}
}

func (v *View2[A, B]) All() iter.Seq2[Entity, Row2[A, B]] {
	return func(yield func(Entity, Row2[A, B]) bool) {
		for i, t := range v.tables {
			as := UnsafeValues[A](v.a[i])
			bs := UnsafeValues[B](v.b[i])
			for row, e := range t.entities {
				if !yield(e, Row2[A, B]{&as[row], &bs[row]}) {
					return
				}
			}
		}
	}
}

// Row3 is one matching row of a View3.
type Row3[A, B, C any] struct {
	A *A
	B *B
	C *C
}

// View3 iterates entities holding A, B and C.
type View3[A, B, C any] struct {
	View
	a, b, c []Column
}

func NewView3[A, B, C any](r *Registry) (*View3[A, B, C], error) {
	ia, err := Register[A](r)
	if err != nil {
		return nil, err
	}
	ib, err := Register[B](r)
	if err != nil {
		return nil, err
	}
	ic, err := Register[C](r)
	if err != nil {
		return nil, err
	}
	v, err := r.View(ia, ib, ic)
	if err != nil {
		return nil, err
	}
	out := &View3[A, B, C]{
		View: *v,
		a:    make([]Column, len(v.tables)),
		b:    make([]Column, len(v.tables)),
		c:    make([]Column, len(v.tables)),
	}
	for i, t := range v.tables {
		out.a[i] = t.Column(ia)
		out.b[i] = t.Column(ib)
		out.c[i] = t.Column(ic)
	}
	return out, nil
}

func (v *View3[A, B, C]) Each(fn func(Entity, *A, *B, *C)) {
	for i, t := range v.tables {
		as := UnsafeValues[A](v.a[i])
		bs := UnsafeValues[B](v.b[i])
		cs := UnsafeValues[C](v.c[i])
		for row, e := range t.entities {
			fn(e, &as[row], &bs[row], &cs[row])
		}
	}
}

func (v *View3[A, B, C]) All() iter.Seq2[Entity, Row3[A, B, C]] {
	return func(yield func(Entity, Row3[A, B, C]) bool) {
		for i, t := range v.tables {
			as := UnsafeValues[A](v.a[i])
			bs := UnsafeValues[B](v.b[i])
			cs := UnsafeValues[C](v.c[i])
			for row, e := range t.entities {
				if !yield(e, Row3[A, B, C]{&as[row], &bs[row], &cs[row]}) {
					return
				}
			}
		}
	}
}
