package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onelane/onelane/internal/bridge"
	"github.com/onelane/onelane/internal/config"
	"github.com/onelane/onelane/internal/event"
	"github.com/onelane/onelane/internal/logging"
	"github.com/onelane/onelane/internal/scenario"
	"github.com/onelane/onelane/internal/sim"
	"github.com/onelane/onelane/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the simulation in a live dashboard",
	Long: `Run the simulation inside a terminal dashboard showing the current
flow direction, span occupancy, both waiting queues, and a scrolling
crossing log. Press r to re-run with the same plan source.

With --scenario, the file is watched for edits and every save queues a
fresh run. The scenario is re-read at the start of each run, so capacity
and plan changes take effect on the next crossing.

Examples:
  onelane watch
  onelane watch --cars 40 --capacity 5
  onelane watch --scenario rush.yaml`,
	RunE: runWatch,
}

var (
	watchCars        int
	watchCapacity    int
	watchSeed        int64
	watchScenario    string
	watchMaxInFlight int
)

func init() {
	watchCmd.Flags().IntVar(&watchCars, "cars", 0, "number of cars to spawn")
	watchCmd.Flags().IntVar(&watchCapacity, "capacity", 0, "maximum cars on the span at once")
	watchCmd.Flags().Int64Var(&watchSeed, "seed", 0, "jitter seed (0 means time-seeded)")
	watchCmd.Flags().StringVar(&watchScenario, "scenario", "", "scenario file to run and watch for edits")
	watchCmd.Flags().IntVar(&watchMaxInFlight, "max-inflight", 0, "bound on simultaneously active cars (0 disables)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	params, err := buildRunParams(cmd, cfg, watchScenario)
	if err != nil {
		return err
	}

	// Structured logs on stderr would tear up the alt screen, so the
	// dashboard only logs when a file is configured.
	logger := logging.NopLogger()
	if cfg.Logging.File != "" {
		logger, err = newLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		defer logger.Close()
	}

	bus := event.NewBus()
	stagger, dwell := delaysFrom(cfg)

	// Each run gets a fresh bridge: a scenario edit can change the span
	// capacity, and a bridge that was closed cannot be reused.
	start := func(ctx context.Context) (*sim.Result, error) {
		p, err := buildRunParams(cmd, cfg, watchScenario)
		if err != nil {
			return nil, err
		}
		b, err := bridge.New(p.capacity, bridge.WithBus(bus), bridge.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create bridge: %w", err)
		}
		runner, err := sim.NewRunner(sim.Config{
			Bridge:      b,
			Plan:        p.plan,
			Bus:         bus,
			Logger:      logger,
			Seed:        p.seed,
			Stagger:     stagger,
			Dwell:       dwell,
			MaxInFlight: p.maxInFlight,
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to create runner: %w", err), b.Close())
		}
		result, runErr := runner.Run(ctx)
		return result, errors.Join(runErr, b.Close())
	}

	app := tui.New(tui.Config{
		Bus:          bus,
		Capacity:     params.capacity,
		Cars:         len(params.plan),
		ScenarioPath: watchScenario,
		Start:        start,
	})

	if watchScenario != "" {
		watcher, err := scenario.NewWatcher(watchScenario, app.Reload)
		if err != nil {
			return fmt.Errorf("failed to watch scenario: %w", err)
		}
		watcher.Start()
		defer watcher.Stop()
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
