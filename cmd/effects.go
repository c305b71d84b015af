package cmd

import (
	"github.com/spf13/cobra"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/controller"
	"github.com/smazurov/busylightd/internal/effect"
)

// CreateRainbowCmd creates the rainbow command.
func CreateRainbowCmd() *cobra.Command {
	var flags lightFlags
	var count int

	cmd := &cobra.Command{
		Use:   "rainbow",
		Short: "Sweep lights through the spectrum",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return flags.withController(func(ctrl *controller.Controller) error {
				eff := effect.Spectrum(effect.SpectrumOptions{Scale: flags.dim}, count)
				flags.selection(ctrl).ApplyEffect(eff, flags.led, 1.0)
				waitForEffect(eff, flags.timeout())
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "c", 0, "number of sweeps, 0 means until interrupted")
	return cmd
}

// CreatePulseCmd creates the pulse command.
func CreatePulseCmd() *cobra.Command {
	var flags lightFlags
	var count int
	var step int

	cmd := &cobra.Command{
		Use:   "pulse [color]",
		Short: "Fade lights from dark to a color and back",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := parseColorArg(args, color.RGB{R: 255})
			if err != nil {
				return err
			}
			return flags.withController(func(ctrl *controller.Controller) error {
				eff := effect.Gradient(c, step, count)
				flags.selection(ctrl).ApplyEffect(eff, flags.led, flags.dim)
				waitForEffect(eff, flags.timeout())
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "c", 0, "number of pulses, 0 means until interrupted")
	cmd.Flags().IntVar(&step, "step", 8, "fade step size, smaller is smoother")
	return cmd
}

// CreateFliCmd creates the fli command.
func CreateFliCmd() *cobra.Command {
	var flags lightFlags
	var count int
	var speed string

	cmd := &cobra.Command{
		Use:   "fli [color-a] [color-b]",
		Short: "Flash lights impressively",
		Long:  `Alternates the selected lights between two colors; defaults are red and blue.`,
		Args:  cobra.MaximumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := parseColorArg(args, color.RGB{R: 255})
			if err != nil {
				return err
			}
			b := color.RGB{B: 255}
			if len(args) > 1 {
				if b, err = color.Parse(args[1]); err != nil {
					return err
				}
			}
			return flags.withController(func(ctrl *controller.Controller) error {
				eff := effect.Fli(a, b, count, effect.Speed(speed))
				flags.selection(ctrl).ApplyEffect(eff, flags.led, flags.dim)
				waitForEffect(eff, flags.timeout())
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "c", 0, "number of alternations, 0 means until interrupted")
	cmd.Flags().StringVarP(&speed, "speed", "s", "slow", "alternation speed: slow, medium or fast")
	return cmd
}
