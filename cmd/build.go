package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/assessor/internal/api"
	"github.com/abhisek/assessor/internal/draft"
	"github.com/abhisek/assessor/internal/ops"
)

var errBuildFailed = errors.New("build failed")

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an assessment from a draft file",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := draftFromFlag(cmd)
		if err != nil {
			return err
		}
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res := rt.orch.Build(cmd.Context(), a)
		printBuild(cmd.OutOrStdout(), res)
		return buildErr(res)
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the questionnaire and report XML for a draft file",
	Long: `Render the questionnaire and report XML for a draft file.

Without --out both documents are printed. With --out they are written to
questionnaire.xml and report.xml in that directory, plus per-language
variants when the backend sends them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := draftFromFlag(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res := rt.orch.Preview(cmd.Context(), a)
		if res.Status == ops.StatusFailed {
			return fmt.Errorf("preview: %s", res.Reason)
		}
		if out != "" {
			return writePreview(cmd.OutOrStdout(), out, res.Value)
		}
		printPreview(cmd.OutOrStdout(), res.Value)
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Build and preview a draft file concurrently",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := draftFromFlag(cmd)
		if err != nil {
			return err
		}
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		var (
			built    ops.Result[api.BuildResponse]
			rendered ops.Result[api.PreviewResponse]
		)
		// No shared context: one family failing never cancels the other.
		var g errgroup.Group
		ctx := cmd.Context()
		g.Go(func() error {
			built = rt.orch.Build(ctx, a)
			if built.Status == ops.StatusFailed {
				return fmt.Errorf("%w: %s", errBuildFailed, built.Reason)
			}
			return nil
		})
		g.Go(func() error {
			rendered = rt.orch.Preview(ctx, a)
			if rendered.Status == ops.StatusFailed {
				return fmt.Errorf("preview failed: %s", rendered.Reason)
			}
			return nil
		})
		waitErr := g.Wait()

		w := cmd.OutOrStdout()
		printBuild(w, built)
		fmt.Fprintln(w)
		if rendered.Status == ops.StatusFailed {
			fmt.Fprintf(w, "Preview failed: %s\n", rendered.Reason)
		} else {
			printWarnings(w, rendered.Value.Warnings)
			fmt.Fprintf(w, "Preview: questionnaire %d bytes, report %d bytes\n",
				len(rendered.Value.QuestionnaireXML), len(rendered.Value.ReportXML))
		}
		if err := buildErr(built); err != nil {
			return err
		}
		return waitErr
	},
}

func init() {
	for _, c := range []*cobra.Command{buildCmd, previewCmd, submitCmd} {
		c.Flags().StringP("file", "f", "", "Draft file (.yaml, .yml or .json)")
		_ = c.MarkFlagRequired("file")
	}
	previewCmd.Flags().StringP("out", "o", "", "Directory to write the XML documents to")
}

func draftFromFlag(cmd *cobra.Command) (draft.Assessment, error) {
	path, _ := cmd.Flags().GetString("file")
	a, err := draft.LoadFile(path)
	if err != nil {
		return draft.Assessment{}, fmt.Errorf("load draft: %w", err)
	}
	return a, nil
}

func printBuild(w io.Writer, res ops.Result[api.BuildResponse]) {
	b := res.Value
	switch {
	case b.Success:
		fmt.Fprintf(w, "✓ Built assessment %d\n", b.ID)
	case res.Status == ops.StatusFailed:
		fmt.Fprintf(w, "✗ %s (%s)\n", b.Message, res.Reason)
	default:
		fmt.Fprintln(w, "✗ Build rejected by backend")
	}
	if b.Message != "" && res.Status != ops.StatusFailed {
		fmt.Fprintf(w, "  %s\n", b.Message)
	}
	printWarnings(w, b.Warnings)
}

func printWarnings(w io.Writer, warnings []string) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "⚠ %s\n", warn)
	}
}

// buildErr turns an unsuccessful build into a command error so the process
// exits non-zero.
func buildErr(res ops.Result[api.BuildResponse]) error {
	if res.Value.Success {
		return nil
	}
	if res.Status == ops.StatusFailed {
		return fmt.Errorf("%w: %s", errBuildFailed, res.Reason)
	}
	if res.Value.Message != "" {
		return fmt.Errorf("%w: %s", errBuildFailed, res.Value.Message)
	}
	return errBuildFailed
}

func printPreview(w io.Writer, p api.PreviewResponse) {
	sep := strings.Repeat("─", 60)
	printWarnings(w, p.Warnings)
	for _, doc := range []struct{ name, body string }{
		{"QUESTIONNAIRE", p.QuestionnaireXML},
		{"REPORT", p.ReportXML},
	} {
		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, doc.name)
		fmt.Fprintln(w, sep)
		if doc.body == "" {
			fmt.Fprintln(w, "(empty)")
			continue
		}
		fmt.Fprintln(w, doc.body)
	}
}

func writePreview(w io.Writer, dir string, p api.PreviewResponse) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	files := map[string]string{
		"questionnaire.xml":    p.QuestionnaireXML,
		"report.xml":           p.ReportXML,
		"questionnaire_nl.xml": p.QuestionnaireXMLNl,
		"questionnaire_en.xml": p.QuestionnaireXMLEn,
		"report_nl.xml":        p.ReportXMLNl,
		"report_en.xml":        p.ReportXMLEn,
	}
	for _, name := range []string{
		"questionnaire.xml", "report.xml",
		"questionnaire_nl.xml", "questionnaire_en.xml",
		"report_nl.xml", "report_en.xml",
	} {
		body := files[name]
		if body == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Fprintln(w, "wrote", path)
	}
	printWarnings(w, p.Warnings)
	return nil
}
