// Package linebuf is the line buffer every compile writes into: an
// append-only, indexable sequence of ParseLine values (spec §4.1). It is a
// leaf package — its ParseLine rows hold already-resolved textual tokens
// (token.Var), never ast.Value — mirroring how this language's own
// tag_code::Buffer operates purely on strings once take_handle has already
// run; lang/compiler is the only package that produces ParseLines, and
// lang/tagcode is the only package that consumes them.
package linebuf

import "github.com/mna/mdtc/lang/token"

// A ParseLine is one row of the line buffer (spec §4.1): a label
// declaration, a symbolic jump, or a free-form argument row.
type ParseLine interface {
	parseLineNode()
}

type lineEmbed struct{}

func (lineEmbed) parseLineNode() {}

// Label declares a symbolic jump target at the position it appears in the
// buffer.
type Label struct {
	lineEmbed
	Name token.Var
}

// Jump is a symbolic jump to Target, carrying the jump condition already
// rendered as textual arguments (e.g. "always", or "equal x y").
type Jump struct {
	lineEmbed
	Target token.Var
	Args   []token.Var
}

// Args is a free-form row of already-resolved tokens, emitted verbatim
// (space-joined) once tag resolution is done.
type Args struct {
	lineEmbed
	Tokens []token.Var
}

// Buffer is the append-only, indexable ParseLine sequence every compile
// writes into.
type Buffer struct {
	lines []ParseLine
}

// New returns an empty Buffer.
func New() *Buffer { return &Buffer{} }

// Len returns the number of lines currently in the buffer.
func (b *Buffer) Len() int { return len(b.lines) }

// Append adds ln to the end of the buffer and returns its index.
func (b *Buffer) Append(ln ParseLine) int {
	b.lines = append(b.lines, ln)
	return len(b.lines) - 1
}

// Pop removes and returns the last line in the buffer. Panics if the buffer
// is empty; callers must check Len() first.
func (b *Buffer) Pop() ParseLine {
	n := len(b.lines) - 1
	ln := b.lines[n]
	b.lines = b.lines[:n]
	return ln
}

// At returns the line at index i.
func (b *Buffer) At(i int) ParseLine { return b.lines[i] }

// Set replaces the line at index i.
func (b *Buffer) Set(i int, ln ParseLine) { b.lines[i] = ln }

// Lines returns the full line slice. Callers must not retain it across a
// subsequent Append/Pop, which may reallocate.
func (b *Buffer) Lines() []ParseLine { return b.lines }

// LabelPopup inserts a synthetic Label at every instruction position that
// is only ever referenced numerically (spec §4.1): for each entry in refs
// (an instruction index referenced by a positional/numeric jump target),
// a Label carrying name(idx) is inserted immediately before that
// instruction if one is not already present there, preserving the relative
// order of every other line. It returns the name of each synthetic label it
// inserted, keyed by the original instruction index; positions that already
// had a label are not in the result.
func (b *Buffer) LabelPopup(refs []int, name func(idx int) token.Var) map[int]token.Var {
	inserted := make(map[int]token.Var, len(refs))
	if len(refs) == 0 {
		return inserted
	}
	sorted := append([]int(nil), refs...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	out := make([]ParseLine, 0, len(b.lines)+len(sorted))
	want := make(map[int]bool, len(sorted))
	for _, idx := range sorted {
		want[idx] = true
	}
	instrIdx := 0
	labelled := false // a Label already sits before instruction instrIdx
	for _, ln := range b.lines {
		_, isLabel := ln.(*Label)
		if isLabel {
			labelled = true
		} else if want[instrIdx] && !labelled {
			n := name(instrIdx)
			out = append(out, &Label{Name: n})
			inserted[instrIdx] = n
		}
		out = append(out, ln)
		if !isLabel {
			instrIdx++
			labelled = false
		}
	}
	b.lines = out
	return inserted
}
