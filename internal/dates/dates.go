// Package dates normalizes free-text due dates on a best-effort basis.
//
// User input like "Thu 20:00" or "Jan 15 8pm" is converted to ISO-8601
// when it can be understood; anything else passes through verbatim.
// Normalization never fails.
package dates

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Result is the outcome of a normalization attempt: either the parsed
// ISO form, or the original text untouched.
type Result struct {
	Value  string
	Parsed bool
}

// Normalize parses s into ISO-8601 local time if possible. On failure
// the raw input is kept unchanged.
func Normalize(s string) Result {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Result{Value: trimmed, Parsed: false}
	}

	t, err := dateparse.ParseLocal(trimmed)
	if err != nil {
		return Result{Value: trimmed, Parsed: false}
	}

	return Result{Value: t.Format("2006-01-02T15:04:05"), Parsed: true}
}

// Today returns the current local calendar date in ISO form, used for
// due-date prefix matching.
func Today() string {
	return time.Now().Format("2006-01-02")
}
