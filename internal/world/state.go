package world

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/ecskit/internal/component"
	"github.com/l1jgo/ecskit/internal/core/ecs"
	"github.com/l1jgo/ecskit/internal/core/event"
	"github.com/l1jgo/ecskit/internal/core/sparse"
	"github.com/l1jgo/ecskit/internal/data"
)

// State is the simulation's mutable world: the registry, the event bus and
// a deferred destruction queue flushed by CleanupSystem each tick. The
// queue is a set, so an entity marked twice is destroyed once.
// Accessed only from the simulation loop goroutine.
type State struct {
	Registry *ecs.Registry
	Bus      *event.Bus

	scenario     *data.Scenario
	destroyQueue *sparse.Set[ecs.Entity]
	stats        Stats
	log          *zap.Logger
}

// Stats counts world-level activity over a run.
type Stats struct {
	Spawned   int
	Destroyed int
	Frozen    int
	Expired   int
	Rejected  int // spawns refused because the entity pool was full
}

// NewState registers the simulation's component types with reg and wires
// expiry handling for the scenario's groups onto bus.
func NewState(reg *ecs.Registry, bus *event.Bus, sc *data.Scenario, log *zap.Logger) (*State, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := registerComponents(reg); err != nil {
		return nil, err
	}
	s := &State{
		Registry:     reg,
		Bus:          bus,
		scenario:     sc,
		destroyQueue: sparse.NewComparable[ecs.Entity](nil),
		log:          log,
	}
	event.Subscribe(bus, s.onExpired)
	return s, nil
}

func registerComponents(reg *ecs.Registry) error {
	for _, register := range []func(*ecs.Registry) (ecs.TypeID, error){
		ecs.Register[component.Group],
		ecs.Register[component.Position],
		ecs.Register[component.Velocity],
		ecs.Register[component.Lifetime],
	} {
		if _, err := register(reg); err != nil {
			return fmt.Errorf("register components: %w", err)
		}
	}
	return nil
}

func (s *State) Stats() Stats { return s.stats }

// Spawn creates one entity for group g and announces it on the bus.
// A full entity pool is not an error: the spawn is counted as rejected and
// the zero Entity is returned.
func (s *State) Spawn(g *data.GroupEntry) (ecs.Entity, error) {
	e, err := s.Registry.CreateEntity()
	if errors.Is(err, ecs.ErrPoolExhausted) {
		if s.stats.Rejected == 0 {
			s.log.Warn("entity pool full, dropping spawns", zap.String("group", g.Name))
		}
		s.stats.Rejected++
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("spawn %s: %w", g.Name, err)
	}

	values := []any{component.Group{Name: g.Name}}
	if g.Position != nil {
		values = append(values, component.Position{X: g.Position.X, Y: g.Position.Y})
	}
	if g.Velocity != nil {
		values = append(values, component.Velocity{DX: g.Velocity.X, DY: g.Velocity.Y})
	}
	if g.Lifetime > 0 {
		values = append(values, component.Lifetime{Ticks: g.Lifetime})
	}
	if err := s.Registry.AddComponents(e, values...); err != nil {
		_ = s.Registry.DestroyEntity(e)
		return 0, fmt.Errorf("spawn %s: %w", g.Name, err)
	}
	s.stats.Spawned++
	event.Emit(s.Bus, event.EntitySpawned{Entity: e, Group: g.Name})
	return e, nil
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (s *State) MarkForDestruction(e ecs.Entity) {
	if _, err := s.destroyQueue.Insert(e); err != nil {
		s.log.Error("queue destroy", zap.Stringer("entity", e), zap.Error(err))
	}
}

// FlushDestroyQueue destroys all queued entities and returns how many were
// destroyed. Entities destroyed elsewhere in the meantime are skipped.
func (s *State) FlushDestroyQueue() int {
	n := 0
	for e := range s.destroyQueue.All() {
		if err := s.Registry.DestroyEntity(e); err != nil {
			s.log.Debug("skip destroy", zap.Stringer("entity", e), zap.Error(err))
			continue
		}
		n++
	}
	s.destroyQueue.Clear()
	s.stats.Destroyed += n
	return n
}

// Queued returns the number of entities waiting for destruction.
func (s *State) Queued() int { return s.destroyQueue.Len() }

// onExpired applies the group's on_expire action.
func (s *State) onExpired(ev event.EntityExpired) {
	if !s.Registry.IsValid(ev.Entity) {
		return
	}
	s.stats.Expired++
	action := data.ExpireDestroy
	if g := s.scenario.Get(ev.Group); g != nil {
		action = g.OnExpire
	}
	switch action {
	case data.ExpireFreeze:
		if err := ecs.Remove2[component.Velocity, component.Lifetime](s.Registry, ev.Entity); err != nil {
			s.log.Warn("freeze failed", zap.Stringer("entity", ev.Entity), zap.Error(err))
			return
		}
		s.stats.Frozen++
	default:
		s.MarkForDestruction(ev.Entity)
	}
}
