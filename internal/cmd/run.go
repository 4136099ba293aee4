package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/onelane/onelane/internal/bridge"
	"github.com/onelane/onelane/internal/config"
	"github.com/onelane/onelane/internal/event"
	"github.com/onelane/onelane/internal/logging"
	"github.com/onelane/onelane/internal/narrate"
	"github.com/onelane/onelane/internal/scenario"
	"github.com/onelane/onelane/internal/sim"
	"github.com/onelane/onelane/internal/tui/styles"
)

const (
	// defaultInteractiveCars is used when the prompt is answered with enter.
	defaultInteractiveCars = 20
	// maxInteractiveCars keeps typo'd counts from flooding the terminal
	// with one prompt per car.
	maxInteractiveCars = 100
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one bridge crossing simulation",
	Long: `Run one simulation: spawn the planned cars, let them take turns over
the one-lane span, and narrate every crossing step.

The plan comes from, in order of precedence:
  1. --scenario FILE (a YAML scenario file)
  2. flags (--cars, --capacity, --seed)
  3. the config file and ONELANE_* environment variables

Examples:
  onelane run
  onelane run --cars 40 --capacity 5 --seed 7
  onelane run --scenario rush.yaml --quiet
  onelane run --interactive`,
	RunE: runRun,
}

var (
	runCars        int
	runCapacity    int
	runSeed        int64
	runScenario    string
	runMaxInFlight int
	runQuiet       bool // suppress per-crossing narration
	runInteractive bool // prompt for the plan on a terminal
)

func init() {
	runCmd.Flags().IntVar(&runCars, "cars", 0, "number of cars to spawn")
	runCmd.Flags().IntVar(&runCapacity, "capacity", 0, "maximum cars on the span at once")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "jitter seed (0 means time-seeded)")
	runCmd.Flags().StringVar(&runScenario, "scenario", "", "scenario file driving the run")
	runCmd.Flags().IntVar(&runMaxInFlight, "max-inflight", 0, "bound on simultaneously active cars (0 disables)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "print only the run summary")
	runCmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "prompt for each car's direction")
	runCmd.MarkFlagsMutuallyExclusive("scenario", "interactive")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	params, err := buildRunParams(cmd, cfg, runScenario)
	if err != nil {
		return err
	}

	if runInteractive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("interactive mode requires a terminal")
		}
		plan, err := promptPlan(cmd.InOrStdin(), cmd.OutOrStdout(), params.seed)
		if err != nil {
			return fmt.Errorf("failed to read plan: %w", err)
		}
		params.plan = plan
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()

	bus := event.NewBus()
	if !runQuiet {
		narrator := narrate.New(cmd.OutOrStdout())
		narrator.Attach(bus)
		defer narrator.Detach()
	}

	b, err := bridge.New(params.capacity, bridge.WithBus(bus), bridge.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	stagger, dwell := delaysFrom(cfg)
	runner, err := sim.NewRunner(sim.Config{
		Bridge:      b,
		Plan:        params.plan,
		Bus:         bus,
		Logger:      logger,
		Seed:        params.seed,
		Stagger:     stagger,
		Dwell:       dwell,
		MaxInFlight: params.maxInFlight,
	})
	if err != nil {
		return errors.Join(fmt.Errorf("failed to create runner: %w", err), b.Close())
	}

	result, runErr := runner.Run(cmd.Context())
	closeErr := b.Close()

	if result != nil {
		printRunSummary(cmd.OutOrStdout(), result)
	}

	return errors.Join(runErr, closeErr)
}

func printRunSummary(out io.Writer, result *sim.Result) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.SuccessMsg.Render(fmt.Sprintf("✓ %d crossings in %s",
		result.Crossings(), result.Elapsed.Round(time.Millisecond))))

	final := result.Final
	if final == (bridge.Snapshot{}) {
		fmt.Fprintf(out, "  final state: span empty, no cars waiting\n")
		return
	}
	fmt.Fprintf(out, "  final state: flow %s, %d aboard, waiting north %d / south %d\n",
		final.Direction, final.Occupants, final.WaitingNorth, final.WaitingSouth)
}

// runParams is the resolved shape of one run after config, flags, and an
// optional scenario file have been merged.
type runParams struct {
	capacity     int
	seed         int64
	plan         []bridge.Direction
	maxInFlight  int
	scenarioPath string
}

// buildRunParams merges the three plan sources. Changed flags beat the
// config file; a scenario file beats both for every field it sets. A
// scenario seed of zero means "not set", so the flag or config seed
// still applies.
func buildRunParams(cmd *cobra.Command, cfg *config.Config, scenarioPath string) (runParams, error) {
	p := runParams{
		capacity:    cfg.Bridge.Capacity,
		seed:        cfg.Sim.Seed,
		maxInFlight: cfg.Sim.MaxInFlight,
	}
	cars := cfg.Sim.Cars

	flags := cmd.Flags()
	if flags.Changed("capacity") {
		p.capacity, _ = flags.GetInt("capacity")
	}
	if flags.Changed("cars") {
		cars, _ = flags.GetInt("cars")
	}
	if flags.Changed("seed") {
		p.seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("max-inflight") {
		p.maxInFlight, _ = flags.GetInt("max-inflight")
	}

	if scenarioPath != "" {
		sc, err := scenario.Load(scenarioPath)
		if err != nil {
			return runParams{}, fmt.Errorf("failed to load scenario: %w", err)
		}
		plan, err := sc.Plan()
		if err != nil {
			return runParams{}, fmt.Errorf("failed to expand scenario plan: %w", err)
		}
		p.capacity = sc.Capacity
		p.plan = plan
		p.scenarioPath = scenarioPath
		if sc.Seed != 0 {
			p.seed = sc.Seed
		}
	}

	if p.plan == nil {
		p.plan = sim.RandomPlan(cars, p.seed)
	}
	return p, nil
}

func delaysFrom(cfg *config.Config) (stagger, dwell sim.Delay) {
	stagger.Min, stagger.Max = cfg.Sim.StaggerRange()
	dwell.Min, dwell.Max = cfg.Sim.DwellRange()
	return stagger, dwell
}

// newLogger builds the run logger with the configured rotation policy.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	rotation := logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	}
	return logging.NewWithRotation(cfg.Logging.File, cfg.Logging.Level, rotation)
}

// promptPlan asks for a car count and then one direction per car.
// Answering r (or just enter) fills every remaining slot randomly.
func promptPlan(in io.Reader, out io.Writer, seed int64) ([]bridge.Direction, error) {
	reader := bufio.NewReader(in)

	count := 0
	for count == 0 {
		fmt.Fprintf(out, "how many cars? [%d]: ", defaultInteractiveCars)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("failed to read car count: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			count = defaultInteractiveCars
			break
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > maxInteractiveCars {
			fmt.Fprintf(out, "enter a number between 1 and %d\n", maxInteractiveCars)
			continue
		}
		count = n
	}

	plan := make([]bridge.Direction, 0, count)
	for len(plan) < count {
		fmt.Fprintf(out, "car %02d heads (n/s, r fills the rest randomly) [r]: ", len(plan)+1)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("failed to read direction: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "n", "north":
			plan = append(plan, bridge.Northbound)
		case "s", "south":
			plan = append(plan, bridge.Southbound)
		case "", "r", "random":
			plan = append(plan, sim.RandomPlan(count-len(plan), seed)...)
		default:
			fmt.Fprintln(out, "enter n, s, or r")
		}
	}
	return plan, nil
}
