// Package diag provides the compiler's diagnostic channels. It reuses
// go/scanner.ErrorList the same way this repository's sibling packages reuse
// go/scanner for error collection and go/token for positions: diagnostics
// are plumbing, not a domain concern, and go/scanner already gives sorted,
// de-duplicated, Unwrap()-composable error lists for free.
package diag

import (
	"go/scanner"
	"go/token"
)

type (
	// Error is a single positioned diagnostic.
	Error = scanner.Error
	// ErrorList collects Errors; it implements error, Unwrap() []error, and
	// sorts by position.
	ErrorList = scanner.ErrorList
)

// PrintError prints err, or every error in a list, to w.
var PrintError = scanner.PrintError

// Severity distinguishes fatal diagnostics (abort compilation, spec §7's
// non-advisory tags) from advisory ones (miss, no_effect, builtin_arg,
// Info/Debug) which never abort traversal.
type Severity int

const (
	// Advisory diagnostics are informational: a match miss, a no-op take, a
	// builtin argument mismatch. The compile still completes.
	Advisory Severity = iota
	// Fatal diagnostics abort compilation; Bag.Err returns non-nil once any
	// fatal diagnostic has been recorded.
	Fatal
)

// A Bag accumulates diagnostics of both severities. A fresh compile gets a
// fresh Bag; there is no global diagnostic state (spec §9, "do not use
// process globals").
type Bag struct {
	Fatal    ErrorList
	Advisory ErrorList
}

// Add records a diagnostic at position pos with the given severity.
func (b *Bag) Add(pos token.Position, sev Severity, msg string) {
	switch sev {
	case Fatal:
		b.Fatal.Add(pos, msg)
	default:
		b.Advisory.Add(pos, msg)
	}
}

// Err returns the fatal error list as an error, or nil if no fatal
// diagnostic was recorded. Advisory diagnostics never surface here; callers
// that want them print b.Advisory directly.
func (b *Bag) Err() error {
	if len(b.Fatal) == 0 {
		return nil
	}
	b.Fatal.Sort()
	return b.Fatal.Err()
}

// HasFatal reports whether any fatal diagnostic was recorded.
func (b *Bag) HasFatal() bool { return len(b.Fatal) > 0 }
