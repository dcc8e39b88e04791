package ecs

import (
	"slices"
	"testing"
)

func TestBitmask(t *testing.T) {
	m := maskOf(0, 63, 64, 200, 255)
	for _, id := range []TypeID{0, 63, 64, 200, 255} {
		if !m.has(id) {
			t.Errorf("bit %d missing", id)
		}
	}
	if m.has(1) || m.has(128) {
		t.Error("unexpected bit set")
	}
	if m.count() != 5 {
		t.Errorf("count = %d, want 5", m.count())
	}
	if got := m.ids(); !slices.Equal(got, []TypeID{0, 63, 64, 200, 255}) {
		t.Errorf("ids = %v", got)
	}

	sub := maskOf(63, 200)
	if !m.contains(sub) || sub.contains(m) {
		t.Error("contains is wrong")
	}
	if !m.contains(bitmask256{}) {
		t.Error("every mask contains the empty mask")
	}
	m.unset(200)
	if m.has(200) || m.contains(sub) {
		t.Error("unset did not clear the bit")
	}
}
