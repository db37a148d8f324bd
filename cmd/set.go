package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Seann-Moser/pantilt/pkg/controller"
	"github.com/Seann-Moser/pantilt/pkg/pantilt"
)

var (
	panAngle  int
	tiltAngle int
	hold      bool
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Move the mount to the given pan and tilt angles",
	Long: `Initialize the mount, apply --pan and --tilt and print the resulting
state. Pan is clamped to 0..180; tilt angles above 150 are driven to 180.
With --hold the position is kept until SIGINT or SIGTERM.`,
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
		if err := c.SetXY(panAngle, tiltAngle); err != nil {
			return err
		}
		printSnapshot(cmd, c.Snapshot())

		if hold {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			<-ctx.Done()
		}
		return nil
	},
}

func printSnapshot(cmd *cobra.Command, s pantilt.Snapshot) {
	out := cmd.OutOrStdout()
	for id, t := range s.Timers {
		if t.Initialized {
			fmt.Fprintf(out, "timer %d: %d Hz, %d bit\n", id, t.FrequencyHz, t.ResolutionBits)
		}
	}
	for _, a := range []struct {
		name string
		st   pantilt.AxisState
	}{{"pan", s.Horizontal}, {"tilt", s.Vertical}} {
		if !a.st.Initialized {
			fmt.Fprintf(out, "%s: not initialized\n", a.name)
			continue
		}
		fmt.Fprintf(out, "%s: %d° duty %d (channel %d, gpio %d)\n",
			a.name, a.st.AngleDeg, a.st.Duty, a.st.ChannelID, a.st.GPIOPin)
	}
}

func init() {
	setCmd.Flags().IntVar(&panAngle, "pan", 90, "horizontal angle in degrees")
	setCmd.Flags().IntVar(&tiltAngle, "tilt", 0, "vertical angle in degrees")
	setCmd.Flags().BoolVar(&hold, "hold", false, "keep the position until interrupted")
	rootCmd.AddCommand(setCmd)
}
