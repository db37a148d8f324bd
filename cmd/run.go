/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Seann-Moser/pantilt/pkg/controller"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Hold the mount at its home position until interrupted",
	Long: `Initialize the timer and both channels, move to the configured home
position (pan 90, tilt 0 by default) and hold it until SIGINT or SIGTERM.
On exit the mount returns home and the PWM resources are released.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger()
		c, err := controller.New(*cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := c.Close(); err != nil {
				logger.Printf("teardown: %v", err)
			}
		}()
		if err := c.Start(); err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		logger.Println("pantilt run finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
