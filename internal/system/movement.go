package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecskit/internal/component"
	"github.com/l1jgo/ecskit/internal/core/ecs"
	coresys "github.com/l1jgo/ecskit/internal/core/system"
)

// MovementSystem integrates Velocity into Position.
// Phase 2 (Update).
type MovementSystem struct {
	reg    *ecs.Registry
	view   *ecs.View2[component.Position, component.Velocity]
	tables int // registry table count when view was built
	log    *zap.Logger
}

func NewMovementSystem(reg *ecs.Registry, log *zap.Logger) *MovementSystem {
	return &MovementSystem{reg: reg, log: log}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	if !refresh(s.reg, &s.tables, &s.view, ecs.NewView2[component.Position, component.Velocity], s.log) {
		return
	}
	sec := dt.Seconds()
	s.view.Each(func(_ ecs.Entity, p *component.Position, v *component.Velocity) {
		p.X += v.DX * sec
		p.Y += v.DY * sec
	})
}

// refresh rebuilds a cached view when the registry has created tables
// since it was built. Views only see tables that existed at construction.
// It reports whether *view is usable.
func refresh[V any](reg *ecs.Registry, tables *int, view **V, build func(*ecs.Registry) (*V, error), log *zap.Logger) bool {
	if *view != nil && *tables == len(reg.Tables()) {
		return true
	}
	v, err := build(reg)
	if err != nil {
		log.Error("build view", zap.Error(err))
		return false
	}
	*view = v
	*tables = len(reg.Tables())
	return true
}
