package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smazurov/busylightd/internal/logging"
	"github.com/smazurov/busylightd/internal/updater"
	"github.com/smazurov/busylightd/internal/version"
)

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update busylightd to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.Initialize(logging.Config{Level: "info", Format: "text"})
			svc := updater.New(version.Get().Version, logging.GetLogger("updater"))

			if checkOnly {
				status, err := svc.Check(cmd.Context())
				if err != nil {
					return err
				}
				if status.UpdateAvailable {
					fmt.Fprintf(cmd.OutOrStdout(), "update available: %s -> %s\n%s\n",
						status.CurrentVersion, status.LatestVersion, status.ReleaseURL)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "up to date (%s)\n", status.CurrentVersion)
				}
				return nil
			}

			status, err := svc.Apply(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "now running %s\n", status.CurrentVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "only check, do not install")
	return cmd
}
