package main

import (
	"fmt"
	"os"

	"github.com/aretw0/courier"
	"github.com/aretw0/courier/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "courier",
	Short: "Courier is an in-process request mediator",
	Long: `Courier dispatches requests through pipeline behaviors to their handlers
and fans notifications out to subscribers. This binary hosts the bundled
driving-school application.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "courier.yaml", "Path to the configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Override log.format (text, json)")
}

// newApp loads the configuration named by the flags and builds the App.
func newApp(cmd *cobra.Command) (*courier.App, courier.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := courier.LoadConfig(path)
	if err != nil {
		return nil, cfg, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, cfg, err
	}
	logger := logging.New(level, logging.Format(cfg.Log.Format))

	app, err := courier.New(cfg, courier.WithLogger(logger))
	return app, cfg, err
}
