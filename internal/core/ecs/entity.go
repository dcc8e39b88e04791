package ecs

import "github.com/l1jgo/ecskit/internal/core/handle"

type entityKind struct{}

// Entity is a generational handle minted by a Registry's entity pool. The
// zero Entity is never valid.
type Entity = handle.Handle[entityKind]

// location records where an entity's row currently lives.
type location struct {
	table *Table
	row   int
}

var nowhere = location{row: -1}
