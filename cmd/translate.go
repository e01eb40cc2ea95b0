package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/api"
	"github.com/abhisek/assessor/internal/config"
)

var translateCmd = &cobra.Command{
	Use:   "translate TEXT...",
	Short: "Translate texts between Dutch and English",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		from, to := rt.cfg.SourceLang, rt.cfg.TargetLang
		if cmd.Flags().Changed("from") {
			from, _ = cmd.Flags().GetString("from")
		}
		if cmd.Flags().Changed("to") {
			to, _ = cmd.Flags().GetString("to")
		}
		if err := config.ValidateDirection(from, to); err != nil {
			return fmt.Errorf("translate: %w", err)
		}

		resp := rt.orch.Translate(cmd.Context(), from, to, args)
		if resp.Error != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", resp.Error)
		}
		for _, t := range resp.Translations {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Look up existing categories or competences",
}

var searchCategoriesCmd = &cobra.Command{
	Use:   "categories [QUERY]",
	Short: "Search categories by name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		results := rt.orch.SearchCategories(cmd.Context(), queryArg(args))
		rows := make([]lookupRow, len(results))
		for i, r := range results {
			rows[i] = lookupRow{r.ID, r.Name, r.NameEn}
		}
		printLookups(cmd, "categories", rows)
		return nil
	},
}

var searchCompetencesCmd = &cobra.Command{
	Use:   "competences [QUERY]",
	Short: "Search competences by name (blank lists all)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		results := rt.orch.SearchCompetences(cmd.Context(), queryArg(args))
		rows := make([]lookupRow, len(results))
		for i, r := range results {
			rows[i] = lookupRow{r.ID, r.Name, r.NameEn}
		}
		printLookups(cmd, "competences", rows)
		return nil
	},
}

func init() {
	translateCmd.Flags().String("from", "", "Source language, "+api.LangNL+" or "+api.LangEN+" (default from ASSESSOR_SOURCE_LANG)")
	translateCmd.Flags().String("to", "", "Target language, "+api.LangNL+" or "+api.LangEN+" (default from ASSESSOR_TARGET_LANG)")

	searchCmd.AddCommand(searchCategoriesCmd)
	searchCmd.AddCommand(searchCompetencesCmd)
}

type lookupRow struct {
	id           int64
	name, nameEn string
}

func queryArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printLookups(cmd *cobra.Command, what string, rows []lookupRow) {
	w := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintf(w, "No %s found.\n", what)
		return
	}
	fmt.Fprintf(w, "%-6s  %-32s  %s\n", "ID", "Name", "Name (EN)")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for _, r := range rows {
		fmt.Fprintf(w, "%-6d  %-32s  %s\n", r.id, truncate(r.name, 32), r.nameEn)
	}
}
