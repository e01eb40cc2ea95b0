package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/draft"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Write a blank draft file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		entries, _ := cmd.Flags().GetInt("entries")
		force, _ := cmd.Flags().GetBool("force")

		if entries < 0 {
			return fmt.Errorf("--entries must not be negative, got %d", entries)
		}
		if !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", path, err)
			}
		}

		ds := draft.NewStore(draft.UUIDAllocator{})
		for i := 0; i < entries; i++ {
			ds.AddEntry()
		}
		if err := draft.SaveFile(path, ds.Snapshot()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d competences.\n", path, entries)
		return nil
	},
}

func init() {
	newCmd.Flags().StringP("file", "f", "assessment.yaml", "Draft file to create (.yaml, .yml or .json)")
	newCmd.Flags().IntP("entries", "n", 1, "Number of blank competences")
	newCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
