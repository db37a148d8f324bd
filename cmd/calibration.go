package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Seann-Moser/pantilt/pkg/pantilt"
)

var calibrationStep int

var calibrationCmd = &cobra.Command{
	Use:   "calibration",
	Short: "Print the angle to duty table",
	Long: `Print the fixed calibration constants and the duty value written for
each angle. No hardware is touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if calibrationStep <= 0 {
			return fmt.Errorf("step must be > 0, got %d", calibrationStep)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "resolution %d bit (max %d)\n", pantilt.DutyResolutionBits, pantilt.MaxDutyValue)
		fmt.Fprintf(out, "min duty %d, middle duty %d, max duty %d\n", pantilt.MinDuty, pantilt.MiddleDuty, pantilt.MaxDuty)
		fmt.Fprintf(out, "tilt limit %d°\n", pantilt.VerticalMaxAngle)
		fmt.Fprintln(out, "angle\tduty")
		for a := pantilt.MinAngle; a <= pantilt.MaxAngle; a += calibrationStep {
			fmt.Fprintf(out, "%d\t%d\n", a, pantilt.AngleToDuty(a))
		}
		return nil
	},
}

func init() {
	calibrationCmd.Flags().IntVar(&calibrationStep, "step", 10, "angle step in degrees")
	rootCmd.AddCommand(calibrationCmd)
}
