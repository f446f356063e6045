// Package diffview renders a FileRewrite as a human-readable unified diff,
// for the CLI's --dry-run output and the MCP transform tool's response.
package diffview

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/qrious/asyncrewriter/internal/model"
)

// Render returns a unified-style diff of r's original and rewritten text.
// An unchanged rewrite renders as an empty string.
func Render(r model.FileRewrite) string {
	if r.Unchanged {
		return ""
	}

	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(r.Original, r.Rewritten, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	return dmp.DiffPrettyText(diffs)
}

// RenderPatch returns diffs as a line-oriented unified patch
// (`--- a/path`, `+++ b/path`, `@@` hunks), suitable for piping to `patch`
// or displaying in a terminal without ANSI color codes.
func RenderPatch(r model.FileRewrite) string {
	if r.Unchanged {
		return ""
	}

	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(r.Original, r.Rewritten)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	patches := dmp.PatchMake(r.Original, diffs)

	return dmp.PatchToText(patches)
}
