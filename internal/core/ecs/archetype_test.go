package ecs

import (
	"errors"
	"testing"

	"github.com/l1jgo/ecskit/internal/core/alloc"
	"github.com/l1jgo/ecskit/internal/core/handle"
)

func testTables(t *testing.T) (*componentRegistry, TypeID, TypeID) {
	t.Helper()
	reg := newComponentRegistry()
	reg.infos = append(reg.infos,
		componentInfo{typ: NewColumn[int](nil).Type(), newColumn: func(a alloc.Allocator) Column { return NewColumn[int](a) }},
		componentInfo{typ: NewColumn[float32](nil).Type(), newColumn: func(a alloc.Allocator) Column { return NewColumn[float32](a) }},
	)
	return &reg, 0, 1
}

func ent(i uint32) Entity { return handle.Make[entityKind](i, 1) }

func TestTableAddAndRemoveRow(t *testing.T) {
	reg, ii, fi := testTables(t)
	tab := newTable(0, maskOf(ii, fi), reg, nil)
	for i := uint32(1); i <= 3; i++ {
		row, err := tab.AddRow(ent(i), func(id TypeID, c Column) error {
			if id == ii {
				return c.AppendValue(int(i))
			}
			return c.AppendValue(float32(i) / 2)
		})
		if err != nil {
			t.Fatal(err)
		}
		if row != int(i-1) {
			t.Errorf("expected row %d, got %d", i-1, row)
		}
	}

	moved, ok := tab.RemoveRow(0)
	if !ok || moved != ent(3) {
		t.Fatalf("expected entity 3 to move into row 0, got %v %v", moved, ok)
	}
	if tab.Len() != 2 || tab.Column(ii).Len() != 2 || tab.Column(fi).Len() != 2 {
		t.Fatal("columns out of step with the entity column")
	}
	if got := Values[int](tab.Column(ii))[0]; got != 3 {
		t.Errorf("row 0 should hold entity 3's value, got %d", got)
	}
	if _, ok := tab.RemoveRow(1); ok {
		t.Error("removing the last row should not report a move")
	}
}

func TestTableAddRowRollsBack(t *testing.T) {
	reg, ii, fi := testTables(t)
	tab := newTable(0, maskOf(ii, fi), reg, nil)
	if _, err := tab.AddRow(ent(1), nil); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	_, err := tab.AddRow(ent(2), func(id TypeID, c Column) error {
		if id == fi {
			return boom
		}
		return c.AppendValue(7)
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected initializer error, got %v", err)
	}
	if tab.Len() != 1 || tab.Column(ii).Len() != 1 || tab.Column(fi).Len() != 1 {
		t.Errorf("failed AddRow left a partial row: entities %d ints %d floats %d",
			tab.Len(), tab.Column(ii).Len(), tab.Column(fi).Len())
	}
}

func TestTableAddRowRollsBackOnEntityGrowth(t *testing.T) {
	reg, ii, _ := testTables(t)
	// Room for the int column's first block but not the entity column's.
	tab := newTable(0, maskOf(ii), reg, alloc.NewBudget(40))
	if _, err := tab.AddRow(ent(1), nil); !errors.Is(err, alloc.ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if tab.Column(ii).Len() != 0 {
		t.Error("column grown by a failed AddRow was not rolled back")
	}
}

func TestMigrateRow(t *testing.T) {
	reg, ii, fi := testTables(t)
	src := newTable(0, maskOf(ii), reg, nil)
	dst := newTable(1, maskOf(ii, fi), reg, nil)
	for i := uint32(1); i <= 2; i++ {
		_, _ = src.AddRow(ent(i), func(_ TypeID, c Column) error { return c.AppendValue(int(i * 10)) })
	}

	row, moved, ok, err := MigrateRow(src, 0, dst, func(id TypeID, c Column) error {
		return c.AppendValue(float32(2.5))
	})
	if err != nil {
		t.Fatal(err)
	}
	if row != 0 || !ok || moved != ent(2) {
		t.Errorf("unexpected migrate result row=%d moved=%v ok=%v", row, moved, ok)
	}
	if Values[int](dst.Column(ii))[0] != 10 || Values[float32](dst.Column(fi))[0] != 2.5 {
		t.Error("migrated row lost its values")
	}
	if src.Len() != 1 || Values[int](src.Column(ii))[0] != 20 {
		t.Error("source table not compacted")
	}

	// Back again: the float column is dropped.
	if _, _, _, err := MigrateRow(dst, 0, src, nil); err != nil {
		t.Fatal(err)
	}
	if dst.Len() != 0 || src.Len() != 2 || Values[int](src.Column(ii))[1] != 10 {
		t.Error("round trip did not restore the int value")
	}
}
