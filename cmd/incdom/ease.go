package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redscorpix/npf-sub003/internal/errors"
	"github.com/redscorpix/npf-sub003/pkg/easing"
)

func easeCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "ease <timing-function>",
		Short: "Sample a cubic-bezier timing function",
		Long: `Print eased progress for evenly spaced linear progress values.

The timing function is a CSS keyword (linear, ease, ease-in,
ease-out, ease-in-out) or cubic-bezier(x1, y1, x2, y2).

Examples:
  incdom ease ease-in-out
  incdom ease 'cubic-bezier(0.68, -0.55, 0.265, 1.55)' --steps 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return errors.Newf(errors.CategoryCLI, "--steps must be at least 1")
			}
			curve, err := easing.Parse(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, curve)
			for i := 0; i <= steps; i++ {
				x := float64(i) / float64(steps)
				fmt.Fprintf(out, "%.4f\t%.4f\n", x, curve.At(x))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 10, "Number of intervals to sample")

	return cmd
}
