// Package sim drives complete simulation runs: it spawns one goroutine
// per planned car against a shared bridge, waits for every crossing to
// finish, and verifies that the bridge drained clean.
//
// The runner owns the cars but never the bridge. The caller creates the
// bridge before the run and closes it after, so a failed run still
// leaves teardown (and its leak report) in the caller's hands.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/semaphore"

	"github.com/onelane/onelane/internal/bridge"
	"github.com/onelane/onelane/internal/errors"
	"github.com/onelane/onelane/internal/event"
	"github.com/onelane/onelane/internal/logging"
)

// Delay is a jitter range for one kind of pause. A draw is uniform in
// [Min, Max]; Max <= Min collapses the range to Min.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

// pick draws a duration from the range.
func (d Delay) pick(rng *rand.Rand) time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rng.Int63n(int64(d.Max-d.Min)+1))
}

// Config assembles a run. Bridge and Plan are required; everything else
// has a working zero value.
type Config struct {
	// Bridge is the span the cars share. The runner never closes it.
	Bridge *bridge.Bridge

	// Plan holds one travel direction per car, in spawn order.
	Plan []bridge.Direction

	// Bus receives run and crossing events (optional).
	Bus *event.Bus

	// Logger receives run diagnostics (optional).
	Logger *logging.Logger

	// Seed drives all jitter. 0 means time-seeded.
	Seed int64

	// Stagger is the pause between consecutive car spawns.
	Stagger Delay

	// Dwell is how long a car holds the span once admitted.
	Dwell Delay

	// MaxInFlight bounds how many cars are simultaneously active between
	// spawn and departure. 0 means no bound beyond the plan size.
	MaxInFlight int
}

// validate checks the config before any goroutine starts.
func (c Config) validate() error {
	if c.Bridge == nil {
		return errors.NewValidation("a bridge is required").WithField("bridge")
	}
	if len(c.Plan) == 0 {
		return errors.NewValidation("plan needs at least one car").WithField("plan")
	}
	for i, dir := range c.Plan {
		if !dir.Valid() {
			return errors.NewValidation("plan entries must be travel directions").
				WithField(fmt.Sprintf("plan[%d]", i)).
				WithValue(dir.String()).
				WithCause(errors.ErrInvalidDirection)
		}
	}
	if c.Stagger.Min < 0 || c.Dwell.Min < 0 {
		return errors.NewValidation("delays cannot be negative").WithField("delays")
	}
	if c.MaxInFlight < 0 {
		return errors.NewValidation("max in-flight cannot be negative").
			WithField("max_inflight").
			WithValue(c.MaxInFlight)
	}
	return nil
}

// Result summarizes a run.
type Result struct {
	// Reports holds one entry per completed crossing, in completion order.
	Reports []bridge.Report
	// Final is the bridge state after every car was joined.
	Final bridge.Snapshot
	// Elapsed is the wall time from first spawn to last join.
	Elapsed time.Duration
}

// Crossings returns the number of cars that completed the full crossing.
func (r *Result) Crossings() int {
	return len(r.Reports)
}

// Runner executes one run. A Runner is single-use: create, Run, discard.
type Runner struct {
	cfg    Config
	seed   int64
	logger *logging.Logger
	sem    *semaphore.Weighted

	mu      sync.Mutex
	reports []bridge.Report
	started bool
}

// NewRunner validates the config and prepares a runner.
func NewRunner(cfg Config) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	var sem *semaphore.Weighted
	if cfg.MaxInFlight > 0 {
		sem = semaphore.NewWeighted(int64(cfg.MaxInFlight))
	}

	return &Runner{
		cfg:    cfg,
		seed:   seed,
		logger: logger.WithComponent("sim"),
		sem:    sem,
	}, nil
}

// Run spawns every planned car, waits for all of them, and checks the
// final bridge state.
//
// Cancellation is honored only before a car begins crossing: the stagger
// sleeps, the in-flight limiter, and the remaining spawns observe ctx,
// but a car that has entered Cross is committed and is always waited
// for. The returned Result is populated even when err is non-nil.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return nil, errors.New("runner already ran")
	}
	r.started = true
	r.mu.Unlock()

	total := len(r.cfg.Plan)
	capacity := r.cfg.Bridge.Capacity()

	start := time.Now()
	r.publish(event.NewRunStartedEvent(total, capacity))
	r.logger.Info("run started",
		"cars", total, "capacity", capacity, "seed", r.seed)

	rng := rand.New(rand.NewSource(r.seed))

	p := pool.New().WithErrors()
	spawned := 0
	var cancelled error
	for i, dir := range r.cfg.Plan {
		if i > 0 {
			stagger := r.cfg.Stagger.pick(rng)
			select {
			case <-ctx.Done():
			case <-time.After(stagger):
			}
		}
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}

		label := fmt.Sprintf("car %02d", i+1)
		dwell := r.cfg.Dwell.pick(rng)
		p.Go(func() error {
			return r.drive(ctx, label, dir, dwell)
		})
		spawned++
	}

	err := p.Wait()
	if cancelled != nil {
		err = errors.Join(err, cancelled)
		r.logger.Warn("run cancelled",
			"spawned", spawned, "planned", total)
	}

	elapsed := time.Since(start)
	final := r.cfg.Bridge.Snapshot()

	r.mu.Lock()
	reports := r.reports
	r.mu.Unlock()

	crossings := len(reports)
	failures := spawned - crossings
	r.publish(event.NewRunFinishedEvent(crossings, failures, elapsed))

	if err == nil && final != (bridge.Snapshot{}) {
		err = errors.NewConsistency("run", "bridge not empty after all cars crossed").
			WithState(final.Direction.String(), final.Occupants, capacity)
	}

	if err != nil {
		r.logger.Error("run finished with errors",
			"crossings", crossings, "failures", failures,
			"elapsed", elapsed, "error", err)
	} else {
		r.logger.Info("run finished",
			"crossings", crossings, "elapsed", elapsed)
	}

	return &Result{
		Reports: reports,
		Final:   final,
		Elapsed: elapsed,
	}, err
}

// drive is one car: wait for an in-flight slot, cross, record the report.
func (r *Runner) drive(ctx context.Context, label string, dir bridge.Direction, dwell time.Duration) error {
	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return errors.Wrapf(err, "%s never approached", label)
		}
		defer r.sem.Release(1)
	}
	// Last cancellation point: past here the car is committed.
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "%s never approached", label)
	}

	report, err := r.cfg.Bridge.Cross(dir,
		bridge.WithLabel(label),
		bridge.WithOnBridge(func(bridge.Snapshot) {
			time.Sleep(dwell)
		}),
	)
	if err != nil {
		r.logger.Error("crossing failed", "car", label, "error", err)
		return errors.Wrap(err, label)
	}

	r.mu.Lock()
	r.reports = append(r.reports, report)
	r.mu.Unlock()

	r.logger.Debug("crossing complete",
		"car", label, "direction", dir.String(),
		"waited", report.WaitedFor, "held", report.Held)
	return nil
}

// publish sends an event if a bus was attached.
func (r *Runner) publish(e event.Event) {
	if r.cfg.Bus != nil {
		r.cfg.Bus.Publish(e)
	}
}
