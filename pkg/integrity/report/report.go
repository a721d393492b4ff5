// Package report renders diff trees for humans. Rendering is purely
// observational: nothing here influences the classification or the
// process exit code.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jamesainslie/integrity/pkg/integrity/diff"
)

// Render writes a human-readable tree report of the diff. Directories
// print their aggregate counters and recurse; files print only when
// they show a tampering-like pattern, each suspicious signal on its own
// line. Unchanged subtrees produce no output.
func Render(w io.Writer, d *diff.EntryDiff) {
	renderEntry(w, ".", d, 0)
}

func renderEntry(w io.Writer, path string, d *diff.EntryDiff, depth int) {
	indent := strings.Repeat("| ", depth)
	switch {
	case d.Dir != nil:
		if !d.Dir.Dirty() {
			return
		}
		fmt.Fprintf(w, "%s%s: %s\n",
			indent,
			PathStyle.Render(path),
			CountStyle.Render(fmt.Sprintf("%d changed, %d added, %d removed, %d unchanged",
				d.Dir.Changed, d.Dir.Added, d.Dir.Removed, d.Dir.Unchanged)))
		for _, name := range d.Names() {
			renderEntry(w, name, d.Children[name], depth+1)
		}
	case d.File != nil:
		if !d.File.Suspicious() {
			return
		}
		fmt.Fprintf(w, "%s%s changed\n", indent, PathStyle.Render(path))
		if d.File.Zeroed {
			renderSuspicion(w, depth, "file was truncated to zero bytes")
		}
		if d.File.ChangedNul {
			renderSuspicion(w, depth, "NUL-byte content flipped between snapshots")
		}
		if d.File.ChangedNonASCII {
			renderSuspicion(w, depth, "non-ASCII content flipped between snapshots")
		}
	default:
		fmt.Fprintf(w, "%s%s: %s\n", indent, PathStyle.Render(path),
			ChangesStyle.Render("kind changed (file/directory flip)"))
	}
}

func renderSuspicion(w io.Writer, depth int, msg string) {
	fmt.Fprintf(w, "%s> %s\n",
		strings.Repeat("  ", depth+1),
		SuspiciousStyle.Render("suspicious: "+msg))
}

// RenderSummary writes the one-line verdict for a comparison.
func RenderSummary(w io.Writer, s diff.Summary) {
	var styled string
	switch s {
	case diff.NoChanges:
		styled = NoChangesStyle.Render(s.String())
	case diff.Changes:
		styled = ChangesStyle.Render(s.String())
	default:
		styled = SuspiciousStyle.Render(s.String())
	}
	fmt.Fprintf(w, "result: %s\n", styled)
}
