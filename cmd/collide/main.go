// Command collide evaluates 2D scene descriptions and queries the
// compound shapes they define.
package main

import (
	"fmt"
	"os"

	"github.com/chazu/collide/internal/config"
	"github.com/chazu/collide/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	// cfg is loaded before any subcommand runs.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "collide",
	Short: "Inspect and query 2D compound collision shapes",
	Long: `collide evaluates Lisp scene descriptions into compound shapes built from
balls, cuboids, capsules and convex polygons, then reports their bounding
boxes and answers region and point queries against them.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "collide.toml", "path to the TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
}

// setup loads the configuration and applies the log level.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if err := logging.SetLevel(level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logging.Debug("config loaded", "path", configPath, "level", level)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
