package event

import "github.com/l1jgo/ecskit/internal/core/ecs"

// EntitySpawned is emitted after a scenario group spawns an entity.
type EntitySpawned struct {
	Entity ecs.Entity
	Group  string
}

// EntityExpired is emitted when an entity's lifetime runs out.
type EntityExpired struct {
	Entity ecs.Entity
	Group  string
}
