package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/qrious/asyncrewriter/internal/job"
	"github.com/qrious/asyncrewriter/internal/model"
	"github.com/qrious/asyncrewriter/internal/persist"
	"github.com/qrious/asyncrewriter/internal/rewrite/diffview"
)

// Output format modes shared by analyze and transform, matching the
// teacher's FormatText/FormatCompact/FormatJSON trio but with a table
// renderer in place of the teacher's "compact" mode.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

// analyzeResult is the analyze command's --format json/table payload.
type analyzeResult struct {
	GraphID persist.GraphID `json:"graph_id"`
}

// renderAnalyzeResult writes graphID to w in the requested format.
func renderAnalyzeResult(w io.Writer, graphID persist.GraphID, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(analyzeResult{GraphID: graphID})
	case FormatTable:
		tbl := newResultTable()
		tbl.AppendHeader(table.Row{"Graph ID"})
		tbl.AppendRow(table.Row{string(graphID)})
		fmt.Fprintln(w, tbl.Render())

		return nil
	default:
		fmt.Fprintf(w, "graph_id: %s\n", graphID)

		return nil
	}
}

// fileRewriteResult is one file's entry in the transform command's
// --format json/table payload.
type fileRewriteResult struct {
	FilePath    string `json:"file_path"`
	Unchanged   bool   `json:"unchanged"`
	AwaitPoints int    `json:"await_points"`
	Bytes       int    `json:"bytes"`
	Patch       string `json:"patch,omitempty"`
}

// fileFailureResult is one failure's entry in the transform command's
// --format json/table payload.
type fileFailureResult struct {
	FilePath string `json:"file_path"`
	Kind     string `json:"kind"`
	Error    string `json:"error"`
}

// transformResult is the transform command's --format json payload.
type transformResult struct {
	Changed   int                 `json:"changed"`
	Unchanged int                 `json:"unchanged"`
	Failed    int                 `json:"failed"`
	Files     []fileRewriteResult `json:"files"`
	Failures  []fileFailureResult `json:"failures,omitempty"`
}

// renderTransformResult writes rewrites/failures to w (and errW for
// failures in text mode) in the requested format. showPatch includes a
// unified-diff patch per changed file, produced by internal/rewrite/diffview
// — the --dry-run preview the apply path has no need for.
func renderTransformResult(
	w, errW io.Writer, rewrites []model.FileRewrite, failures []*job.FileError, format string, showPatch, noColor bool,
) error {
	result := buildTransformResult(rewrites, failures, showPatch)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	case FormatTable:
		renderTransformTable(w, result)

		return nil
	default:
		renderTransformText(w, errW, result, noColor)

		return nil
	}
}

func buildTransformResult(rewrites []model.FileRewrite, failures []*job.FileError, showPatch bool) transformResult {
	result := transformResult{Files: make([]fileRewriteResult, 0, len(rewrites))}

	for _, r := range rewrites {
		if r.Unchanged {
			result.Unchanged++
		} else {
			result.Changed++
		}

		entry := fileRewriteResult{
			FilePath:    r.FilePath,
			Unchanged:   r.Unchanged,
			AwaitPoints: len(r.AwaitLines),
			Bytes:       len(r.Rewritten),
		}

		if showPatch && !r.Unchanged {
			entry.Patch = diffview.RenderPatch(r)
		}

		result.Files = append(result.Files, entry)
	}

	result.Failed = len(failures)

	for _, fe := range failures {
		result.Failures = append(result.Failures, fileFailureResult{
			FilePath: fe.FilePath,
			Kind:     fe.Kind.String(),
			Error:    fe.Err.Error(),
		})
	}

	return result
}

func renderTransformTable(w io.Writer, result transformResult) {
	tbl := newResultTable()
	tbl.AppendHeader(table.Row{"File", "Status", "Await Points", "Size"})

	for _, f := range result.Files {
		status := "changed"
		if f.Unchanged {
			status = "unchanged"
		}

		tbl.AppendRow(table.Row{f.FilePath, status, f.AwaitPoints, humanize.Bytes(uint64(f.Bytes))})
	}

	for _, fe := range result.Failures {
		tbl.AppendRow(table.Row{fe.FilePath, "failed: " + fe.Kind, "-", "-"})
	}

	tbl.AppendFooter(table.Row{
		"Total", fmt.Sprintf("%s changed", humanize.Comma(int64(result.Changed))), "", "",
	})

	fmt.Fprintln(w, tbl.Render())
}

func renderTransformText(w, errW io.Writer, result transformResult, noColor bool) {
	color.NoColor = noColor //nolint:reassign

	changedColor := color.New(color.FgGreen)
	unchangedColor := color.New(color.FgYellow)
	failedColor := color.New(color.FgRed)

	for _, f := range result.Files {
		switch {
		case f.Unchanged:
			unchangedColor.Fprintf(w, "%s: unchanged\n", f.FilePath)
		default:
			changedColor.Fprintf(w, "%s: %d await point(s), %s\n", f.FilePath, f.AwaitPoints, humanize.Bytes(uint64(f.Bytes)))

			if f.Patch != "" {
				fmt.Fprint(w, f.Patch)
			}
		}
	}

	fmt.Fprintf(w, "%s file(s) changed, %d unchanged, %d failed\n",
		humanize.Comma(int64(result.Changed)), result.Unchanged, result.Failed)

	for _, fe := range result.Failures {
		failedColor.Fprintf(errW, "  %s [%s]: %s\n", fe.FilePath, fe.Kind, fe.Error)
	}
}

// newResultTable builds a borderless table.Writer matching the teacher's
// internal/analyzers/common.Formatter table style.
func newResultTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = true
	tbl.Style().Options.DrawBorder = false

	return tbl
}
