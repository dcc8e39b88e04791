package ecs

import (
	"fmt"

	"github.com/l1jgo/ecskit/internal/core/alloc"
)

// Table stores every entity whose component set is exactly the table's
// mask. Row i of each column and of the entity column describe the same
// entity.
type Table struct {
	id       int
	mask     bitmask256
	ids      []TypeID
	slots    [MaxComponentTypes]int16
	columns  []Column
	entities []Entity
	alloc    alloc.Allocator
}

// Initializer appends the value for one column of a new row. It must
// append exactly one element on success and none on failure.
type Initializer func(id TypeID, c Column) error

func newTable(id int, mask bitmask256, reg *componentRegistry, a alloc.Allocator) *Table {
	t := &Table{
		id:    id,
		mask:  mask,
		ids:   mask.ids(),
		alloc: a,
	}
	for i := range t.slots {
		t.slots[i] = -1
	}
	t.columns = make([]Column, len(t.ids))
	for i, cid := range t.ids {
		t.slots[cid] = int16(i)
		t.columns[i] = reg.info(cid).newColumn(a)
	}
	return t
}

func (t *Table) ID() int  { return t.id }
func (t *Table) Len() int { return len(t.entities) }

// Has reports whether the table stores component id.
func (t *Table) Has(id TypeID) bool { return t.slots[id] >= 0 }

// Column returns the column for id, or nil if the table lacks it.
func (t *Table) Column(id TypeID) Column {
	if s := t.slots[id]; s >= 0 {
		return t.columns[s]
	}
	return nil
}

// Entities returns the implicit entity column. It is owned by the table.
func (t *Table) Entities() []Entity { return t.entities }

// Types lists the table's component type IDs in ascending order.
func (t *Table) Types() []TypeID { return t.ids }

// AddRow appends a row for e. Each column is filled by init, or with its
// zero value when init is nil. If any step fails the columns already
// extended are truncated back and the table is left unchanged.
func (t *Table) AddRow(e Entity, init Initializer) (int, error) {
	row := len(t.entities)
	for i, c := range t.columns {
		var err error
		if init != nil {
			err = init(t.ids[i], c)
		} else {
			err = c.AppendZero()
		}
		if err == nil && c.Len() != row+1 {
			err = fmt.Errorf("initializer for %s left %d rows, want %d", c.Type(), c.Len(), row+1)
		}
		if err != nil {
			t.truncate(i, row)
			return -1, err
		}
	}
	entities, err := alloc.Grow(t.alloc, t.entities, 1)
	if err != nil {
		t.truncate(len(t.columns), row)
		return -1, fmt.Errorf("grow entity column: %w", err)
	}
	entities[row] = e
	t.entities = entities
	return row, nil
}

// truncate cuts columns [0, upto) back to n rows, plus column upto itself
// in case a failing initializer appended before returning its error.
func (t *Table) truncate(upto, n int) {
	for i := 0; i <= upto && i < len(t.columns); i++ {
		t.columns[i].Truncate(n)
	}
}

// RemoveRow swap-removes row from every column. If another row was moved
// into its place, the entity now at row is returned with ok set.
func (t *Table) RemoveRow(row int) (moved Entity, ok bool) {
	for _, c := range t.columns {
		c.SwapRemove(row)
	}
	last := len(t.entities) - 1
	if row != last {
		t.entities[row] = t.entities[last]
		moved, ok = t.entities[row], true
	}
	t.entities[last] = 0
	t.entities = t.entities[:last]
	return moved, ok
}

// MigrateRow moves row of src into dst. Columns present in both tables are
// copied; columns only in dst are filled by init, or zeroed when init is
// nil. The source row is then removed and the entity displaced by that
// removal, if any, is returned.
func MigrateRow(src *Table, row int, dst *Table, init Initializer) (dstRow int, moved Entity, ok bool, err error) {
	e := src.entities[row]
	dstRow, err = dst.AddRow(e, func(id TypeID, c Column) error {
		if sc := src.Column(id); sc != nil {
			return c.AppendFrom(sc, row)
		}
		if init != nil {
			return init(id, c)
		}
		return c.AppendZero()
	})
	if err != nil {
		return -1, 0, false, err
	}
	moved, ok = src.RemoveRow(row)
	return dstRow, moved, ok, nil
}

func (t *Table) release() {
	for _, c := range t.columns {
		c.Release()
	}
	alloc.Free(t.alloc, t.entities)
	t.entities = nil
}
