package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "assessor", version)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.orch.Health(cmd.Context()); err != nil {
			return fmt.Errorf("backend %s: %w", rt.cfg.BackendURL, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", rt.cfg.BackendURL)
		return nil
	},
}
