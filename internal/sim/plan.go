package sim

import (
	"math/rand"
	"time"

	"github.com/onelane/onelane/internal/bridge"
)

// RandomPlan returns n travel directions drawn uniformly from a seeded
// source. Seed 0 means time-seeded; any other seed reproduces the same
// plan.
func RandomPlan(n int, seed int64) []bridge.Direction {
	if n <= 0 {
		return nil
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	plan := make([]bridge.Direction, n)
	for i := range plan {
		if rng.Intn(2) == 0 {
			plan[i] = bridge.Northbound
		} else {
			plan[i] = bridge.Southbound
		}
	}
	return plan
}
