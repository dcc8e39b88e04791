package data

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/ecskit/internal/core/hash"
	"github.com/l1jgo/ecskit/internal/core/sparse"
)

// Expiry actions for a group's entities when their Lifetime runs out.
const (
	ExpireDestroy = "destroy"
	ExpireFreeze  = "freeze"
)

// Vec2 is a YAML pair {x, y}.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// GroupEntry describes one group of entities in a scenario.
type GroupEntry struct {
	Name     string `yaml:"name"`
	Count    int    `yaml:"count"`     // spawned before the first tick
	PerTick  int    `yaml:"per_tick"`  // spawned every tick after that
	Position *Vec2  `yaml:"position"`  // nil = no Position component
	Velocity *Vec2  `yaml:"velocity"`  // nil = no Velocity component
	Lifetime int    `yaml:"lifetime"`  // ticks; 0 = lives forever
	OnExpire string `yaml:"on_expire"` // "destroy" (default) or "freeze"
}

type scenarioFile struct {
	Groups []GroupEntry `yaml:"groups"`
}

// Scenario is the set of groups a simulation run spawns.
type Scenario struct {
	groups []GroupEntry
	byName map[string]*GroupEntry
}

// LoadScenario loads a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(raw)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(raw []byte) (*Scenario, error) {
	var f scenarioFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	s := &Scenario{
		groups: f.Groups,
		byName: make(map[string]*GroupEntry, len(f.Groups)),
	}
	names := sparse.New[string](hash.String{}, nil)
	var errs error
	for i := range s.groups {
		g := &s.groups[i]
		if g.OnExpire == "" {
			g.OnExpire = ExpireDestroy
		}
		errs = multierr.Append(errs, g.validate())
		if added, _ := names.Insert(g.Name); !added {
			errs = multierr.Append(errs, fmt.Errorf("group %q defined twice", g.Name))
		}
		s.byName[g.Name] = g
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid scenario: %w", errs)
	}
	return s, nil
}

func (g *GroupEntry) validate() error {
	var errs error
	if g.Name == "" {
		errs = multierr.Append(errs, fmt.Errorf("group without a name"))
	}
	if g.Count < 0 || g.PerTick < 0 || g.Lifetime < 0 {
		errs = multierr.Append(errs, fmt.Errorf("group %q: count, per_tick and lifetime must not be negative", g.Name))
	}
	switch g.OnExpire {
	case ExpireDestroy, ExpireFreeze:
	default:
		errs = multierr.Append(errs, fmt.Errorf("group %q: unknown on_expire %q", g.Name, g.OnExpire))
	}
	return errs
}

// Groups returns the groups in file order.
func (s *Scenario) Groups() []GroupEntry { return s.groups }

// Get returns the group with the given name, or nil if none.
func (s *Scenario) Get(name string) *GroupEntry { return s.byName[name] }

// Count returns the number of groups loaded.
func (s *Scenario) Count() int { return len(s.groups) }
