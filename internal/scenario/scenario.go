// Package scenario loads, validates, and expands YAML descriptions of
// simulation runs, and watches scenario files for live edits.
//
// A scenario names the bridge capacity, an optional seed, and groups of
// cars per direction:
//
//	name: evening rush
//	capacity: 3
//	seed: 42
//	cars:
//	  - direction: north
//	    count: 3
//	  - direction: south
//	    count: 2
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/onelane/onelane/internal/bridge"
	"github.com/onelane/onelane/internal/errors"
)

// MaxCars bounds the expanded plan size so a typo in a count field does
// not spawn millions of goroutines.
const MaxCars = 10000

// Scenario describes one simulation run.
type Scenario struct {
	// Name is the run's display name (optional).
	Name string `yaml:"name,omitempty"`
	// Capacity is the maximum number of cars on the span at once.
	Capacity int `yaml:"capacity"`
	// Seed drives the run's jitter; 0 or absent means time-seeded.
	Seed int64 `yaml:"seed,omitempty"`
	// Cars lists the car groups, spawned in file order.
	Cars []Group `yaml:"cars"`
}

// Group is a batch of cars travelling the same direction.
type Group struct {
	Direction string `yaml:"direction"`
	// Count is the number of cars in this group (default 1).
	Count int `yaml:"count,omitempty"`
}

// count returns the effective group size.
func (g Group) count() int {
	if g.Count < 1 {
		return 1
	}
	return g.Count
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading scenario file")
	}
	return Parse(data)
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "parsing scenario file")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the scenario is well-formed.
func (s *Scenario) Validate() error {
	if s.Capacity < 1 {
		return errors.NewValidation("capacity must be at least 1").
			WithField("capacity").
			WithValue(s.Capacity).
			WithCause(errors.ErrInvalidCapacity)
	}

	if len(s.Cars) == 0 {
		return errors.NewValidation("scenario needs at least one car group").
			WithField("cars")
	}

	for i, g := range s.Cars {
		if _, err := bridge.ParseDirection(g.Direction); err != nil {
			return errors.NewValidation("unknown direction").
				WithField(fmt.Sprintf("cars[%d].direction", i)).
				WithValue(g.Direction).
				WithCause(errors.ErrInvalidDirection)
		}
		if g.Count < 0 {
			return errors.NewValidation("count cannot be negative").
				WithField(fmt.Sprintf("cars[%d].count", i)).
				WithValue(g.Count)
		}
	}

	if total := s.TotalCars(); total > MaxCars {
		return errors.NewValidation(fmt.Sprintf("scenario expands to %d cars, limit is %d", total, MaxCars)).
			WithField("cars").
			WithValue(total)
	}

	return nil
}

// TotalCars returns the number of cars the scenario expands to.
func (s *Scenario) TotalCars() int {
	total := 0
	for _, g := range s.Cars {
		total += g.count()
	}
	return total
}

// Plan expands the car groups, in file order, into one direction per car.
func (s *Scenario) Plan() ([]bridge.Direction, error) {
	plan := make([]bridge.Direction, 0, s.TotalCars())
	for _, g := range s.Cars {
		dir, err := bridge.ParseDirection(g.Direction)
		if err != nil {
			return nil, err
		}
		n := g.count()
		for i := 0; i < n; i++ {
			plan = append(plan, dir)
		}
	}
	return plan, nil
}

// Example returns the starter scenario written by `onelane scenario init`.
func Example() *Scenario {
	return &Scenario{
		Name:     "evening rush",
		Capacity: 3,
		Seed:     42,
		Cars: []Group{
			{Direction: "north", Count: 3},
			{Direction: "south", Count: 2},
		},
	}
}

// WriteFile marshals the scenario to path.
func (s *Scenario) WriteFile(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding scenario")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "writing scenario file")
	}
	return nil
}
