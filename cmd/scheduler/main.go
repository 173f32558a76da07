// Command scheduler is the CLI front end for the campusplan scheduling
// engine: generate a ranked set of schedules, benchmark the registered
// algorithms against one problem, or race them all and keep the
// winner (spec §6's external interface).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	_ "github.com/campusplan/scheduler/internal/algorithm/complete"
	_ "github.com/campusplan/scheduler/internal/algorithm/hybrid"
	_ "github.com/campusplan/scheduler/internal/algorithm/local"
	_ "github.com/campusplan/scheduler/internal/algorithm/population"
	"github.com/campusplan/scheduler/internal/logging"
)

var (
	cfgFile string
	logEnv  string
	logger  *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:   "scheduler",
		Short: "Generate, benchmark, and compare university course schedules",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, optional)")
	root.PersistentFlags().StringVar(&logEnv, "log-env", "production", "logger environment: development|production")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newBenchCmd())
	root.AddCommand(newCompareCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig validates --config fails fast at startup, before any
// subcommand runs; each subcommand's requestFlags.buildRequest binds
// its own flag set to a fresh viper instance (see bindConfig in
// request.go) so the config file and SCHEDULER_* env vars can actually
// override a flag's default.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %q: %w", cfgFile, err)
		}
	}
	viper.SetEnvPrefix("SCHEDULER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	var err error
	logger, err = logging.New(logEnv)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	return nil
}
