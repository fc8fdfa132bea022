package ast

import "github.com/mna/mdtc/lang/token"

// LogicLine is the sum type of statements the core compiles (spec §3).
type LogicLine interface {
	logicLineNode()
}

type lineEmbed struct{}

func (lineEmbed) logicLineNode() {}

// Block is a sequence of statements. Expand is the top-level chunk a parse
// produces (spec §6); InlineBlockLine and ExpandLine also carry a Block.
type Block = []LogicLine

// ConstKey is the left-hand side of a `const`/`take` statement: either a
// plain name, or a value-bind `base.name` key (spec §4.7).
type ConstKey struct {
	// Name is set when this is a plain-name key.
	Name token.Var
	// Bind is set when this is a `base.Name` value-bind key; Name on the
	// ConstKey itself is then the bound attribute name and Base names the
	// owner expression.
	Bind *ValueBind
}

// IsBind reports whether the key is a value-bind key (`base.name`) rather
// than a plain name.
func (k ConstKey) IsBind() bool { return k.Bind != nil }

// OpLine is an `op` statement (spec §3).
type OpLine struct {
	lineEmbed
	Op Op
}

// LabelLine declares a symbolic jump target (spec §3, §6).
type LabelLine struct {
	lineEmbed
	Name token.Var
	Pos  token.Pos
}

// GotoLine is a conditional (or CmpTree-Always unconditional) jump to a
// label (spec §3).
type GotoLine struct {
	lineEmbed
	Label token.Var
	Cond  Tree
	Pos   token.Pos
}

// OtherLine is a free-form command passed through to the emitted MDT
// verbatim after each argument's handle is taken (spec §3, §6).
type OtherLine struct {
	lineEmbed
	Args Args
	Pos  token.Pos
}

// ExpandLine is a block compiled in a fresh const scope (spec §3).
type ExpandLine struct {
	lineEmbed
	Body Block
}

// InlineBlockLine is a block compiled without a fresh const scope — its
// consts and leaks apply directly to the enclosing scope (spec §3).
type InlineBlockLine struct {
	lineEmbed
	Body Block
}

// SelectLine is a `select` dispatch statement (spec §4.5).
type SelectLine struct {
	lineEmbed
	Value Value
	Cases []LogicLine
	Pos   token.Pos
}

// GSwitchCatchKind selects which guard clause a GSwitchCatch handles.
type GSwitchCatchKind int8

const (
	CatchUnderflow GSwitchCatchKind = iota // `<`
	CatchMiss                              // `!`
	CatchOverflow                          // `>`
)

// GSwitchCase is one `gswitch` arm, associated with one or more integer ids.
type GSwitchCase struct {
	IDs  []int64
	Bind token.Var // optional; empty means the value is not bound in this case
	Body Block
}

// GSwitchCatch handles underflow, miss, or overflow of the dispatched value
// (spec §4.5).
type GSwitchCatch struct {
	Kind GSwitchCatchKind
	Bind token.Var
	Body Block
}

// GSwitchLine is a `gswitch` dispatch statement (spec §4.5).
type GSwitchLine struct {
	lineEmbed
	Value   Value
	Cases   []GSwitchCase
	Catches []GSwitchCatch
	Extra   Block // shared epilogue appended after each case body
	Pos     token.Pos
}

// NoOpLine compiles to the configured no-op instruction (default "noop",
// spec §4.8 SetNoOp).
type NoOpLine struct {
	lineEmbed
}

// IgnoreLine compiles to nothing at all.
type IgnoreLine struct {
	lineEmbed
}

// ConstLine is a `const key = value` declaration (spec §3, §4.7).
type ConstLine struct {
	lineEmbed
	Key   ConstKey
	Value Value
	Pos   token.Pos
}

// TakeLine is a `take key = value` statement: evaluate value now, bind the
// resulting handle as a const under key (spec §4.7).
type TakeLine struct {
	lineEmbed
	Key   ConstKey
	Value Value
	Pos   token.Pos
}

// ConstLeakLine marks a const name so its binding migrates to the parent
// scope when the enclosing block is popped (spec §3, §4.3).
type ConstLeakLine struct {
	lineEmbed
	Name token.Var
	Pos  token.Pos
}

// SetResultHandleLine sets the value of the innermost enclosing DExp's
// result handle (`setres`, spec §3).
type SetResultHandleLine struct {
	lineEmbed
	Value          Value
	EffectExpected bool
	Pos            token.Pos
}

// SetArgsLine materializes Args as `_0.._n-1` consts and replaces the
// current env-args frame (spec §4.7).
type SetArgsLine struct {
	lineEmbed
	Args Args
	Pos  token.Pos
}

// ArgsRepeatLine is the `inline N@ { body }` / `inline *val@ { body }`
// splat-iteration statement (spec §4.6). Count == nil means "repeat until
// Builtin.StopRepeat is invoked".
type ArgsRepeatLine struct {
	lineEmbed
	Count Value
	Body  Block
	Pos   token.Pos
}

// MatchAtom is one position of a runtime `match` pattern (spec §4.6).
type MatchAtom struct {
	Name     token.Var // empty: unnamed (value still checked/consumed, not bound)
	Literals []token.Var
	SetRes   bool
}

// MatchPat is a runtime match pattern: either exactly Prefix (no splat) or
// Prefix, then a `@` splat, then Suffix.
type MatchPat struct {
	Prefix   []MatchAtom
	HasSplat bool
	Suffix   []MatchAtom
}

// MatchCase pairs a MatchPat with the body run when it succeeds.
type MatchCase struct {
	Pat  MatchPat
	Body Block
}

// MatchLine is a runtime `match` statement (spec §4.6).
type MatchLine struct {
	lineEmbed
	Cases []MatchCase
	Pos   token.Pos
}

// ConstMatchAtom is one position of a compile-time `const match` pattern.
// Exactly one of Literals or Guard is meaningful: a guard pattern is
// evaluated with the argument bound to `_0`, any non-"0" result is truthy.
type ConstMatchAtom struct {
	Name     token.Var
	Literals []token.Var
	Guard    Value
	SetRes   bool
	DoTake   bool // true: bind with `take` (materialize now); false: `const` (lazy)
}

// ConstMatchPat mirrors MatchPat for compile-time matching.
type ConstMatchPat struct {
	Prefix   []ConstMatchAtom
	HasSplat bool
	Suffix   []ConstMatchAtom
}

// ConstMatchCase pairs a ConstMatchPat with the body run when it succeeds.
type ConstMatchCase struct {
	Pat  ConstMatchPat
	Body Block
}

// ConstMatchLine is a compile-time `const match` statement (spec §4.6).
type ConstMatchLine struct {
	lineEmbed
	Cases []ConstMatchCase
	Pos   token.Pos
}
