package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/app"
	"github.com/abhisek/assessor/internal/draft"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open a draft in the terminal editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		return runEditor(cmd, file)
	},
}

func init() {
	editCmd.Flags().StringP("file", "f", "", "Draft file to load (.yaml, .yml or .json); also the ctrl+s export target")
}

// runEditor builds dependencies and launches the TUI, optionally seeded from
// a draft file.
func runEditor(cmd *cobra.Command, file string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ds := draft.NewStore(draft.UUIDAllocator{})
	if file != "" {
		a, err := draft.LoadFile(file)
		if err != nil {
			return fmt.Errorf("load draft: %w", err)
		}
		ds.Load(a)
	}

	return app.Run(app.Options{
		Store:        ds,
		Orchestrator: rt.orch,
		Logger:       rt.logger,
		ExportPath:   file,
	})
}
