// Package cmd provides the command-line interface of the tiered round robin
// simulator.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"tiered-scheduler/config"
	"tiered-scheduler/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tiered-scheduler",
	Short: "Tiered round robin scheduler simulator.",
	Long: `Simulates a multi-core round robin scheduler with high, medium and ` +
		`low priority tiers, each with reserved cores. It can run a single ` +
		`workload, average batches of random workloads or serve both over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn or error (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: json or text (overrides the config file)")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Registered exit handlers, such as store flushes, run before
// the process exits.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// setup loads the configuration and builds the logger every subcommand uses.
func setup() (*config.SchedulerConfig, *slog.Logger, error) {
	var c *config.SchedulerConfig
	if configPath == "" {
		c = config.GetSchedulerConfig()
	} else {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		c = loaded
	}

	level, format := c.Log.Level, c.Log.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	return c, logging.BuildLogger(level, format), nil
}
