package token

import (
	"sort"
	stdtoken "go/token"
)

// Pos is a byte offset into a source file, the "byte-offset tag" spec §1
// restricts position-tracking to. NoPos is the zero value, meaning
// "unknown" or "synthetic" (e.g. a node built by a macro desugaring step
// with no single source location).
type Pos int

// NoPos is the position of a node with no known source location.
const NoPos Pos = 0

// IsValid reports whether p is a real, resolvable position.
func (p Pos) IsValid() bool { return p != NoPos }

// A File tracks the byte offsets at which each line starts in one source
// file, so a Pos can be resolved to a line/column for diagnostics. It plays
// the same role as go/token.File but is scoped to a single file rather than
// a whole FileSet, since this compiler's core only ever compiles one chunk
// at a time (spec §5: "a single mutable CompileMeta threads through every
// operation").
type File struct {
	Name       string
	lineStarts []int // byte offset of the start of each line; lineStarts[0] == 0
}

// NewFile creates a File over src's contents, precomputing line start
// offsets.
func NewFile(name string, src []byte) *File {
	f := &File{Name: name, lineStarts: []int{0}}
	for i, b := range src {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// Position resolves p to a stdlib go/token.Position (filename, byte offset,
// 1-based line and column), the shape go/scanner.ErrorList (this repo's
// lang/diag package) expects.
func (f *File) Position(p Pos) stdtoken.Position {
	offset := int(p)
	line := sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	col := offset - f.lineStarts[line] + 1
	return stdtoken.Position{Filename: f.Name, Offset: offset, Line: line + 1, Column: col}
}
