package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ArnaudBarre/bun-dedupe/pkg/analyzer"
)

// FixHint is printed after the duplicates in check mode.
const FixHint = "Run `bun dedupe` to fix"

// PrintTextReport prints the one-line summary of a run.
func PrintTextReport(w io.Writer, check bool, result *analyzer.Result) {
	paths := result.Paths()
	switch {
	case len(paths) == 0:
		fmt.Fprintln(w, "No duplicates found")
	case check:
		fmt.Fprintf(w, "Duplicates found: %s\n", strings.Join(paths, ", "))
		fmt.Fprintln(w, FixHint)
	default:
		fmt.Fprintf(w, "Duplicates removed: %s\n", strings.Join(paths, ", "))
	}
}

// PrintDetails prints every hoisted package in a tabular text format
func PrintDetails(w io.Writer, result *analyzer.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) // minwidth, tabwidth, padding, padchar, flags

	fmt.Fprintln(tw, "PATH\tVERSION\tRANGE\tANCESTOR\tANCESTOR VERSION\tREASON")
	fmt.Fprintln(tw, "----\t-------\t-----\t--------\t----------------\t------")
	for _, h := range result.Hoisted {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			h.Path,
			h.Version,
			h.Range,
			h.AncestorPath,
			h.AncestorVersion,
			h.Reason,
		)
	}

	tw.Flush()
}
