package component

// Position is an entity's location in world units.
type Position struct {
	X, Y float64
}

// Velocity is applied to Position once per tick, scaled by the tick length
// in seconds.
type Velocity struct {
	DX, DY float64
}

// Lifetime counts down once per tick. The entity expires when it reaches 0.
type Lifetime struct {
	Ticks int
}

// Group names the scenario group an entity was spawned from.
type Group struct {
	Name string
}
