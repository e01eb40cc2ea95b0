package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/store"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "Inspect the backend operation log",
}

var opsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent backend operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		family, _ := cmd.Flags().GetString("family")
		failed, _ := cmd.Flags().GetBool("failed")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openOpsStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit, Family: family, FailedOnly: failed}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}

		ctx := context.Background()
		events, err := s.EventRepo().QueryOperations(ctx, opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "No operations found.")
			return nil
		}

		// Header.
		fmt.Fprintf(w, "%-5s  %-19s  %-18s  %-34s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Family", "Endpoint", "Status", "Ms", "OK")
		fmt.Fprintln(w, strings.Repeat("─", 104))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			status := "-"
			if e.StatusCode != 0 {
				status = fmt.Sprintf("%d", e.StatusCode)
			}
			fmt.Fprintf(w, "%-5d  %-19s  %-18s  %-34s  %-6s  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Family,
				truncate(e.Endpoint, 34),
				status,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var opsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an operation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openOpsStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		e, err := s.EventRepo().GetOperation(ctx, id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("operation %d not found", id)
		}

		w := cmd.OutOrStdout()
		sep := strings.Repeat("─", 60)

		fmt.Fprintf(w, "ID:        %d\n", e.ID)
		fmt.Fprintf(w, "Sequence:  %d\n", e.Sequence)
		fmt.Fprintf(w, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Family:    %s\n", e.Family)
		fmt.Fprintf(w, "Endpoint:  %s\n", e.Endpoint)
		fmt.Fprintf(w, "Status:    %d\n", e.StatusCode)
		fmt.Fprintf(w, "Latency:   %dms\n", e.LatencyMs)
		fmt.Fprintf(w, "Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Fprintf(w, "Error:     %s\n", e.ErrorMessage)
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, "REQUEST")
		fmt.Fprintln(w, sep)
		if e.RequestBody != "" {
			fmt.Fprintln(w, e.RequestBody)
		} else {
			fmt.Fprintln(w, "(none)")
		}

		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, "RESPONSE")
		fmt.Fprintln(w, sep)
		if e.ResponseBody != "" {
			fmt.Fprintln(w, e.ResponseBody)
		} else {
			fmt.Fprintln(w, "(none)")
		}

		return nil
	},
}

var errOpsDisabled = errors.New("operation log is disabled")

// openOpsStore opens the operation log directly. The logger and backend are
// not needed to read it.
func openOpsStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	if dbPath == "" {
		return nil, errOpsDisabled
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func init() {
	opsListCmd.Flags().IntP("limit", "n", 20, "Number of operations to show")
	opsListCmd.Flags().StringP("family", "F", "", "Filter by family (build, preview, translate, search-categories, search-competences, health)")
	opsListCmd.Flags().Bool("failed", false, "Only show failed operations")
	opsListCmd.Flags().Duration("since", 0, "Only show operations newer than this (e.g. 1h)")

	opsCmd.AddCommand(opsListCmd)
	opsCmd.AddCommand(opsViewCmd)
}
