package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/controller"
)

// CreateOnCmd creates the on command.
func CreateOnCmd() *cobra.Command {
	var flags lightFlags

	cmd := &cobra.Command{
		Use:   "on [color]",
		Short: "Turn lights on with a steady color",
		Long: `Turns the selected lights on with a steady color. Colors are given ` +
			`as #RRGGBB hex or as r,g,b decimals; the default is green.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := parseColorArg(args, color.RGB{G: 255})
			if err != nil {
				return err
			}
			return flags.withController(func(ctrl *controller.Controller) error {
				sel := flags.selection(ctrl).TurnOn(c, flags.led, flags.dim, flags.timeout())
				if flags.timeoutMs > 0 {
					// Outlive the scheduled follow-up stop so it runs
					// before shutdown.
					sleepInterruptibly(flags.timeout() + 250*time.Millisecond)
					sel.TurnOff(flags.led)
					return nil
				}
				// Stateful devices hold their color only while a
				// keep-alive flows, so the process must linger for
				// them; stateless families keep the color after exit.
				if hasStatefulLight(ctrl) {
					waitForInterrupt()
				}
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func hasStatefulLight(ctrl *controller.Controller) bool {
	for _, l := range ctrl.All().Lights() {
		if l.Driver().Identity().Keepalive.Stateful {
			return true
		}
	}
	return false
}
