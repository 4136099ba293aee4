package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onelane/onelane/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "onelane",
	Short: "Single-lane bridge traffic simulator",
	Long: `Onelane simulates traffic over a one-lane bridge: cars arrive from
both ends, at most a handful share the span at once, and everyone
aboard travels the same direction. The simulator drives a configurable
stream of cars through the crossing rules and reports every step.`,
}

// Execute runs the root command. Interrupts cancel the command context
// so an in-flight run stops spawning cars and drains cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/onelane/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/onelane")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ONELANE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., ONELANE_BRIDGE_CAPACITY for bridge.capacity
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
