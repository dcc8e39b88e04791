package main

import (
	"fmt"
	"time"

	"github.com/l1jgo/ecskit/internal/core/alloc"
	"github.com/l1jgo/ecskit/internal/core/ecs"
	"github.com/l1jgo/ecskit/internal/system"
	"github.com/l1jgo/ecskit/internal/world"
)

func printReport(reg *ecs.Registry, ws *world.State, dispatch *system.EventDispatchSystem, counter *alloc.Counting, ticks uint64, elapsed time.Duration) {
	printSection("run")
	printStat("ticks", int64(ticks))
	printStat("elapsed (ms)", elapsed.Milliseconds())
	if ticks > 0 {
		printStat("per tick (ns)", elapsed.Nanoseconds()/int64(ticks))
	}
	printStat("events delivered", int64(dispatch.Delivered()))
	fmt.Println()

	st := ws.Stats()
	printSection("entities")
	printStat("live", int64(reg.Len()))
	printStat("spawned", int64(st.Spawned))
	printStat("expired", int64(st.Expired))
	printStat("destroyed", int64(st.Destroyed))
	printStat("frozen", int64(st.Frozen))
	printStat("rejected spawns", int64(st.Rejected))
	fmt.Println()

	printSection("archetypes")
	for _, t := range reg.Tables() {
		printStat(tableLabel(reg, t), int64(t.Len()))
	}
	fmt.Println()

	as := counter.Stats()
	printSection("allocator")
	printStat("allocations", int64(as.Allocations))
	printStat("deallocations", int64(as.Deallocations))
	printStat("live blocks", int64(as.LiveBlocks))
	printStat("live bytes", as.LiveBytes)
	printStat("peak bytes", as.PeakBytes)
}

// tableLabel names a table by its component types, e.g. "{Group Position}".
func tableLabel(reg *ecs.Registry, t *ecs.Table) string {
	label := "{"
	for i, id := range t.Types() {
		if i > 0 {
			label += " "
		}
		if typ, ok := reg.TypeOf(id); ok {
			label += typ.Name()
		}
	}
	return label + "}"
}
