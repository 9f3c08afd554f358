package fix

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between the original and fixed contents
// of a file.
func Diff(original, fixed, path string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(fixed),
		FromFile: "original/" + path,
		ToFile:   "fixed/" + path,
		Context:  3,
	})
}
