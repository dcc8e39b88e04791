package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseEvents     Phase = iota // 0: swap + dispatch last tick's events
	PhaseSpawn                   // 1: scenario spawns
	PhaseUpdate                  // 2: movement
	PhasePostUpdate              // 3: lifetime countdown, expiry
	PhaseCleanup                 // 4: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseEvents:
		return "events"
	case PhaseSpawn:
		return "spawn"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
