package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smazurov/busylightd/internal/controller"
)

// CreateListCmd creates the list command.
func CreateListCmd() *cobra.Command {
	var flags lightFlags
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List connected lights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withController(func(ctrl *controller.Controller) error {
				for _, rec := range ctrl.List() {
					fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", rec.Index, rec.Name)
					if verbose {
						fmt.Fprintf(cmd.OutOrStdout(), "   vendor/product: %04x:%04x\n", rec.VendorID, rec.ProductID)
						if rec.Serial != "" {
							fmt.Fprintf(cmd.OutOrStdout(), "   serial: %s\n", rec.Serial)
						}
						fmt.Fprintf(cmd.OutOrStdout(), "   path: %s\n", rec.Path)
						fmt.Fprintf(cmd.OutOrStdout(), "   state: %s %s\n", rec.State, rec.LastColor)
					}
				}
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show USB identity and state details")
	return cmd
}
