package output

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders the lockfile change as a unified diff. It returns an empty
// string when the contents are identical.
func Diff(path string, before, after []byte) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  1,
	}
	return difflib.GetUnifiedDiffString(diff)
}
