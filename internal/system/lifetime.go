package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecskit/internal/component"
	"github.com/l1jgo/ecskit/internal/core/ecs"
	"github.com/l1jgo/ecskit/internal/core/event"
	coresys "github.com/l1jgo/ecskit/internal/core/system"
)

// LifetimeSystem counts lifetimes down and announces expiry. The reaction
// (destroy or freeze) happens when the event is dispatched next tick.
// Phase 3 (PostUpdate).
type LifetimeSystem struct {
	reg    *ecs.Registry
	bus    *event.Bus
	view   *ecs.View2[component.Lifetime, component.Group]
	tables int
	log    *zap.Logger
}

func NewLifetimeSystem(reg *ecs.Registry, bus *event.Bus, log *zap.Logger) *LifetimeSystem {
	return &LifetimeSystem{reg: reg, bus: bus, log: log}
}

func (s *LifetimeSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *LifetimeSystem) Update(_ time.Duration) {
	if !refresh(s.reg, &s.tables, &s.view, ecs.NewView2[component.Lifetime, component.Group], s.log) {
		return
	}
	s.view.Each(func(e ecs.Entity, l *component.Lifetime, g *component.Group) {
		if l.Ticks <= 0 {
			return
		}
		if l.Ticks--; l.Ticks == 0 {
			event.Emit(s.bus, event.EntityExpired{Entity: e, Group: g.Name})
		}
	})
}
