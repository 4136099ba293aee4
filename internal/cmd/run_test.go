package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/onelane/onelane/internal/bridge"
	"github.com/onelane/onelane/internal/config"
	"github.com/onelane/onelane/internal/sim"
)

// newParamsCommand builds a throwaway command carrying the run/watch
// flag set, so flag parsing in tests never touches the real commands.
func newParamsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("cars", 0, "")
	cmd.Flags().Int("capacity", 0, "")
	cmd.Flags().Int64("seed", 0, "")
	cmd.Flags().Int("max-inflight", 0, "")
	return cmd
}

func writeScenarioFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing scenario file: %v", err)
	}
	return path
}

func TestBuildRunParams_ConfigDefaults(t *testing.T) {
	cfg := config.Default()
	cmd := newParamsCommand()

	params, err := buildRunParams(cmd, cfg, "")
	if err != nil {
		t.Fatalf("buildRunParams() error = %v", err)
	}

	if params.capacity != cfg.Bridge.Capacity {
		t.Errorf("capacity = %d, want %d", params.capacity, cfg.Bridge.Capacity)
	}
	if len(params.plan) != cfg.Sim.Cars {
		t.Errorf("plan size = %d, want %d", len(params.plan), cfg.Sim.Cars)
	}
	if params.scenarioPath != "" {
		t.Errorf("scenarioPath = %q, want empty", params.scenarioPath)
	}
}

func TestBuildRunParams_FlagsBeatConfig(t *testing.T) {
	cfg := config.Default()
	cmd := newParamsCommand()
	if err := cmd.ParseFlags([]string{"--cars", "7", "--capacity", "5", "--seed", "9", "--max-inflight", "2"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	params, err := buildRunParams(cmd, cfg, "")
	if err != nil {
		t.Fatalf("buildRunParams() error = %v", err)
	}

	if params.capacity != 5 {
		t.Errorf("capacity = %d, want 5", params.capacity)
	}
	if len(params.plan) != 7 {
		t.Errorf("plan size = %d, want 7", len(params.plan))
	}
	if params.seed != 9 {
		t.Errorf("seed = %d, want 9", params.seed)
	}
	if params.maxInFlight != 2 {
		t.Errorf("maxInFlight = %d, want 2", params.maxInFlight)
	}
}

func TestBuildRunParams_ScenarioBeatsFlags(t *testing.T) {
	path := writeScenarioFile(t, `capacity: 4
seed: 11
cars:
  - direction: north
    count: 2
  - direction: south
`)
	cfg := config.Default()
	cmd := newParamsCommand()
	if err := cmd.ParseFlags([]string{"--capacity", "9", "--cars", "50", "--seed", "1"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	params, err := buildRunParams(cmd, cfg, path)
	if err != nil {
		t.Fatalf("buildRunParams() error = %v", err)
	}

	if params.capacity != 4 {
		t.Errorf("capacity = %d, want 4 from the scenario", params.capacity)
	}
	if params.seed != 11 {
		t.Errorf("seed = %d, want 11 from the scenario", params.seed)
	}
	want := []bridge.Direction{bridge.Northbound, bridge.Northbound, bridge.Southbound}
	if len(params.plan) != len(want) {
		t.Fatalf("plan size = %d, want %d", len(params.plan), len(want))
	}
	for i, dir := range want {
		if params.plan[i] != dir {
			t.Errorf("plan[%d] = %s, want %s", i, params.plan[i], dir)
		}
	}
	if params.scenarioPath != path {
		t.Errorf("scenarioPath = %q, want %q", params.scenarioPath, path)
	}
}

func TestBuildRunParams_ScenarioWithoutSeedKeepsFlagSeed(t *testing.T) {
	path := writeScenarioFile(t, `capacity: 2
cars:
  - direction: north
`)
	cfg := config.Default()
	cmd := newParamsCommand()
	if err := cmd.ParseFlags([]string{"--seed", "5"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	params, err := buildRunParams(cmd, cfg, path)
	if err != nil {
		t.Fatalf("buildRunParams() error = %v", err)
	}

	if params.seed != 5 {
		t.Errorf("seed = %d, want 5 from the flag", params.seed)
	}
}

func TestBuildRunParams_MissingScenarioFails(t *testing.T) {
	cfg := config.Default()
	cmd := newParamsCommand()

	_, err := buildRunParams(cmd, cfg, filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing scenario file")
	}
}

func TestDelaysFrom(t *testing.T) {
	cfg := config.Default()

	stagger, dwell := delaysFrom(cfg)

	if stagger.Min != 50*time.Millisecond || stagger.Max != 400*time.Millisecond {
		t.Errorf("stagger = %v..%v, want 50ms..400ms", stagger.Min, stagger.Max)
	}
	if dwell.Min != 150*time.Millisecond || dwell.Max != 600*time.Millisecond {
		t.Errorf("dwell = %v..%v, want 150ms..600ms", dwell.Min, dwell.Max)
	}
}

func TestPromptPlan_EmptyAnswersGiveDefaultPlan(t *testing.T) {
	in := strings.NewReader("\n\n")
	var out bytes.Buffer

	plan, err := promptPlan(in, &out, 1)
	if err != nil {
		t.Fatalf("promptPlan() error = %v", err)
	}

	if len(plan) != defaultInteractiveCars {
		t.Errorf("plan size = %d, want %d", len(plan), defaultInteractiveCars)
	}
	for i, dir := range plan {
		if !dir.Valid() {
			t.Errorf("plan[%d] = %s, want a travel direction", i, dir)
		}
	}
}

func TestPromptPlan_ExplicitDirections(t *testing.T) {
	in := strings.NewReader("3\nn\ns\nnorth\n")
	var out bytes.Buffer

	plan, err := promptPlan(in, &out, 1)
	if err != nil {
		t.Fatalf("promptPlan() error = %v", err)
	}

	want := []bridge.Direction{bridge.Northbound, bridge.Southbound, bridge.Northbound}
	if len(plan) != len(want) {
		t.Fatalf("plan size = %d, want %d", len(plan), len(want))
	}
	for i, dir := range want {
		if plan[i] != dir {
			t.Errorf("plan[%d] = %s, want %s", i, plan[i], dir)
		}
	}
}

func TestPromptPlan_RandomFillsTheRest(t *testing.T) {
	in := strings.NewReader("4\ns\nr\n")
	var out bytes.Buffer

	plan, err := promptPlan(in, &out, 7)
	if err != nil {
		t.Fatalf("promptPlan() error = %v", err)
	}

	if len(plan) != 4 {
		t.Fatalf("plan size = %d, want 4", len(plan))
	}
	if plan[0] != bridge.Southbound {
		t.Errorf("plan[0] = %s, want south", plan[0])
	}
	for i, dir := range plan {
		if !dir.Valid() {
			t.Errorf("plan[%d] = %s, want a travel direction", i, dir)
		}
	}
}

func TestPromptPlan_RepromptsOnBadCount(t *testing.T) {
	in := strings.NewReader("abc\n0\n101\n2\nn\ns\n")
	var out bytes.Buffer

	plan, err := promptPlan(in, &out, 1)
	if err != nil {
		t.Fatalf("promptPlan() error = %v", err)
	}

	if len(plan) != 2 {
		t.Errorf("plan size = %d, want 2", len(plan))
	}
	if !strings.Contains(out.String(), "enter a number between") {
		t.Error("expected a re-prompt message for bad counts")
	}
}

func TestPromptPlan_RepromptsOnBadDirection(t *testing.T) {
	in := strings.NewReader("1\nwest\nn\n")
	var out bytes.Buffer

	plan, err := promptPlan(in, &out, 1)
	if err != nil {
		t.Fatalf("promptPlan() error = %v", err)
	}

	if len(plan) != 1 || plan[0] != bridge.Northbound {
		t.Errorf("plan = %v, want [north]", plan)
	}
	if !strings.Contains(out.String(), "enter n, s, or r") {
		t.Error("expected a re-prompt message for a bad direction")
	}
}

func TestPromptPlan_EOFFails(t *testing.T) {
	var out bytes.Buffer

	if _, err := promptPlan(strings.NewReader(""), &out, 1); err == nil {
		t.Error("expected an error when input ends at the count prompt")
	}

	if _, err := promptPlan(strings.NewReader("2\nn\n"), &out, 1); err == nil {
		t.Error("expected an error when input ends mid-plan")
	}
}

func TestPrintRunSummary(t *testing.T) {
	t.Run("clean drain", func(t *testing.T) {
		var out bytes.Buffer
		printRunSummary(&out, &sim.Result{Elapsed: 2 * time.Second})

		if !strings.Contains(out.String(), "0 crossings in 2s") {
			t.Errorf("summary = %q, want the crossing count and elapsed time", out.String())
		}
		if !strings.Contains(out.String(), "span empty") {
			t.Errorf("summary = %q, want the empty final state", out.String())
		}
	})

	t.Run("dirty final state", func(t *testing.T) {
		var out bytes.Buffer
		printRunSummary(&out, &sim.Result{
			Final: bridge.Snapshot{Direction: bridge.Northbound, Occupants: 2, WaitingSouth: 1},
		})

		if !strings.Contains(out.String(), "flow north, 2 aboard") {
			t.Errorf("summary = %q, want the dirty final state", out.String())
		}
	})
}
