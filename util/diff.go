package util

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff between the expected and the generated text, or an empty
// string when they are equal.
func Diff(wantName, want, gotName, got string) string {
	if want == got {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: wantName,
		ToFile:   gotName,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err.Error()
	}
	return text
}
