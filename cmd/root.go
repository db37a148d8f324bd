/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Seann-Moser/pantilt/pkg/config"
)

var (
	cfgPath string
	backend string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pantilt",
	Short: "Drive a two-axis pan/tilt servo mount over hardware PWM",
	Long: `pantilt initializes a PWM timer and two channels for a pan/tilt servo
mount and moves it to the requested angles.

Backends: mock (no hardware), rpio (Raspberry Pi PWM pins 12/13/18/19),
pca9685 (periph.io) and gobot (gobot PCA9685 driver).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath, "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "override the configured pwm backend (mock, rpio, pca9685, gobot)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every driver call")
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "[pantilt] ", log.LstdFlags)
}

// loadConfig reads --config, falling back to defaults when the default path
// does not exist, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) || cmd.Flags().Changed("config") {
			return nil, err
		}
		d := config.Default()
		cfg = &d
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
