package cmd

import (
	"github.com/spf13/cobra"

	"github.com/smazurov/busylightd/internal/controller"
)

// CreateOffCmd creates the off command.
func CreateOffCmd() *cobra.Command {
	var flags lightFlags

	cmd := &cobra.Command{
		Use:   "off",
		Short: "Turn lights off",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return flags.withController(func(ctrl *controller.Controller) error {
				flags.selection(ctrl).TurnOff(flags.led)
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}
