package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/ecskit/internal/core/system"
	"github.com/l1jgo/ecskit/internal/data"
	"github.com/l1jgo/ecskit/internal/world"
)

// SpawnSystem spawns every group's per_tick entities.
// Phase 1 (Spawn).
type SpawnSystem struct {
	world    *world.State
	scenario *data.Scenario
	log      *zap.Logger
}

func NewSpawnSystem(ws *world.State, sc *data.Scenario, log *zap.Logger) *SpawnSystem {
	return &SpawnSystem{world: ws, scenario: sc, log: log}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *SpawnSystem) Update(_ time.Duration) {
	groups := s.scenario.Groups()
	for i := range groups {
		g := &groups[i]
		for n := 0; n < g.PerTick; n++ {
			if _, err := s.world.Spawn(g); err != nil {
				s.log.Error("spawn failed", zap.String("group", g.Name), zap.Error(err))
				break
			}
		}
	}
}

// SpawnInitial spawns every group's initial count and returns how many
// entities were created.
func SpawnInitial(ws *world.State, sc *data.Scenario) (int, error) {
	n := 0
	groups := sc.Groups()
	for i := range groups {
		g := &groups[i]
		for k := 0; k < g.Count; k++ {
			e, err := ws.Spawn(g)
			if err != nil {
				return n, err
			}
			if !e.IsNull() {
				n++
			}
		}
	}
	return n, nil
}
