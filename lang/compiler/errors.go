package compiler

import (
	"fmt"

	"github.com/mna/mdtc/lang/token"
)

// Fatal error kinds (spec §7). Each wraps the offending position and, where
// useful, the name/value involved; CompileMeta records them into its diag
// Bag at the fatal severity, which walks the expansion-name stack before
// the compile returns its error.
type (
	// OutOfDExpError reports `$` or `setres` used with no enclosing DExp.
	OutOfDExpError struct {
		Pos  token.Pos
		What string // "$" or "setres"
	}
	// CmperTakenError reports a Cmper reaching take_handle directly.
	CmperTakenError struct{ Pos token.Pos }
	// UnresolvedConstDExpResultError reports const'ing a DExp result to a
	// non-Var value.
	UnresolvedConstDExpResultError struct{ Pos token.Pos }
	// RepeatCountError reports an args-repeat count that is negative,
	// non-finite, or exceeds the hard cap of 512.
	RepeatCountError struct {
		Pos   token.Pos
		Count float64
	}
)

func (e *OutOfDExpError) Error() string {
	return fmt.Sprintf("use of %s outside DExp", e.What)
}
func (e *CmperTakenError) Error() string {
	return "comparison tree value used outside a jump condition"
}
func (e *UnresolvedConstDExpResultError) Error() string {
	return "const of a DExp result to a non-Var value"
}
func (e *RepeatCountError) Error() string {
	return fmt.Sprintf("invalid args-repeat count %v", e.Count)
}
