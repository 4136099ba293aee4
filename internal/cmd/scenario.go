package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/onelane/onelane/internal/scenario"
	"github.com/onelane/onelane/internal/tui/styles"
)

// defaultScenarioFile is where `scenario init` writes when no path is given.
const defaultScenarioFile = "onelane.scenario.yaml"

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Work with scenario files",
	Long: `Work with scenario files.

A scenario is a YAML file describing one run: the span capacity, an
optional seed, and the car groups to spawn in order.`,
}

var scenarioValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check that a scenario file is well-formed",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioValidate,
}

var scenarioInitCmd = &cobra.Command{
	Use:   "init [FILE]",
	Short: "Write a starter scenario file",
	Long: `Write a starter scenario file (default ` + defaultScenarioFile + `).
Refuses to overwrite an existing file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScenarioInit,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
	scenarioCmd.AddCommand(scenarioValidateCmd)
	scenarioCmd.AddCommand(scenarioInitCmd)
}

func runScenarioValidate(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return fmt.Errorf("scenario %s is invalid: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.SuccessMsg.Render("✓ "+args[0]+" is valid"))
	if sc.Name != "" {
		fmt.Fprintf(out, "  name:     %s\n", sc.Name)
	}
	fmt.Fprintf(out, "  capacity: %d\n", sc.Capacity)
	fmt.Fprintf(out, "  cars:     %d in %d groups\n", sc.TotalCars(), len(sc.Cars))
	if sc.Seed != 0 {
		fmt.Fprintf(out, "  seed:     %d\n", sc.Seed)
	}
	return nil
}

func runScenarioInit(cmd *cobra.Command, args []string) error {
	path := defaultScenarioFile
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}

	if err := scenario.Example().WriteFile(path); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
