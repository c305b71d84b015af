package cmd

import (
	"github.com/spf13/cobra"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/controller"
	"github.com/smazurov/busylightd/internal/effect"
)

// CreateBlinkCmd creates the blink command.
func CreateBlinkCmd() *cobra.Command {
	var flags lightFlags
	var count int
	var speed string

	cmd := &cobra.Command{
		Use:   "blink [color]",
		Short: "Blink lights between a color and dark",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := parseColorArg(args, color.RGB{R: 255})
			if err != nil {
				return err
			}
			return flags.withController(func(ctrl *controller.Controller) error {
				eff := effect.Blink(c.Scale(flags.dim), color.Black, count, effect.Speed(speed))
				flags.selection(ctrl).ApplyEffect(eff, flags.led, 1.0)
				waitForEffect(eff, flags.timeout())
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "c", 0, "number of blinks, 0 means until interrupted")
	cmd.Flags().StringVarP(&speed, "speed", "s", "slow", "blink speed: slow, medium or fast")
	return cmd
}
