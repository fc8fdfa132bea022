// Package ast defines the abstract syntax this compiler's core consumes:
// the Value sum type (spec §3 "Value Model"), the CmpTree condition tree
// (spec §4.4), and the LogicLine statement tree (spec §3, §6). Value and
// LogicLine are mutually recursive in the source language (a DExp's body is
// a list of LogicLines, and several LogicLines carry Values), so they are
// kept in one package the way this repository's sibling AST package keeps
// its mutually recursive Expr and Stmt together.
//
// Positions are token.Pos byte offsets (this module's own lang/token
// package, not go/token — see that package's doc comment), resolved through
// a token.File only where a diagnostic needs to report one (spec §1's
// "byte-offset tag on select AST nodes" — here, "select" means "the nodes
// that can fail", not the select statement).
package ast

import "github.com/mna/mdtc/lang/token"

// Value is the sum type of compile-time values a LogicLine can reference
// (spec §3). Every concrete type below implements it.
type Value interface {
	// Kind names the value's dynamic type the way the builtin Type function
	// reports it (spec §4.8): one of "var", "dexp", "reprvar",
	// "resulthandle", "valuebind", "valuebindref", "cmper", "binder",
	// "builtinfunc", "closuredvalue".
	Kind() string
	valueNode()
}

type valueEmbed struct{}

func (valueEmbed) valueNode() {}

// Var is an ordinary name, subject to const lookup at TakeHandle.
type Var struct {
	valueEmbed
	Name token.Var
	Pos  token.Pos
}

func (*Var) Kind() string { return "var" }

// ReprVar is a "literal" name: never subject to const lookup. A ReprVar is
// never produced by a user `const` right-hand side; constructing one always
// bypasses substitution (spec §3 invariant).
type ReprVar struct {
	valueEmbed
	Name token.Var
	Pos  token.Pos
}

func (*ReprVar) Kind() string { return "reprvar" }

// DExp is a deferred expression: a body of LogicLines plus an optional
// declared result name. When Result is nil, a fresh temporary is allocated
// on evaluation (spec §3, §4.2).
type DExp struct {
	valueEmbed
	Result Value // nil if anonymous; otherwise typically *Var or *ReprVar
	Body   []LogicLine
	Pos    token.Pos
}

func (*DExp) Kind() string { return "dexp" }

// ResultHandle is the symbol `$`: at evaluation it refers to the innermost
// enclosing DExp's result handle. Using it outside any DExp is fatal
// (spec §3, §7 out_of_dexp).
type ResultHandle struct {
	valueEmbed
	Pos token.Pos
}

func (*ResultHandle) Kind() string { return "resulthandle" }

// Binder is the symbol `..`: refers to the innermost enclosing
// const-expansion's binder, i.e. the owner handle of the value-bind that
// named the const currently being expanded, if any (spec §3).
type Binder struct {
	valueEmbed
	Pos token.Pos
}

func (*Binder) Kind() string { return "binder" }

// ValueBind is the syntactic `base.name`. Evaluation takes a handle for
// base, then looks up or lazily allocates a unique handle paired with name
// (spec §3, §4.2).
type ValueBind struct {
	valueEmbed
	Base Value
	Name token.Var
	Pos  token.Pos
}

func (*ValueBind) Kind() string { return "valuebind" }

// BindRefTargetKind selects which of ValueBindRef's four target shapes is
// active.
type BindRefTargetKind int

const (
	// TargetNameBind follows `base.TargetName`.
	TargetNameBind BindRefTargetKind = iota
	// TargetBinder follows the value's binder (`..`).
	TargetBinder
	// TargetResultHandle follows the value's result handle (`$`).
	TargetResultHandle
	// TargetOp coerces the value through numeric evaluation.
	TargetOp
)

// ValueBindRef is a reference that follows const-chains at
// const-propagation time (when the `const` statement runs) rather than at
// TakeHandle time (spec §3).
type ValueBindRef struct {
	valueEmbed
	Base       Value
	TargetKind BindRefTargetKind
	TargetName token.Var // valid when TargetKind == TargetNameBind
	Pos        token.Pos
}

func (*ValueBindRef) Kind() string { return "valuebindref" }

// Cmper is a reified CmpTree, used only to be inlined into a surrounding
// jump condition (spec §4.4 TryInline). Evaluating one as a handle is a
// fatal error (spec §7 cmper_taken).
type Cmper struct {
	valueEmbed
	Tree Tree
	Pos  token.Pos
}

func (*Cmper) Kind() string { return "cmper" }

// BuiltinFunc is an opaque handle to an entry in the builtin table
// (spec §3, §4.8).
type BuiltinFunc struct {
	valueEmbed
	Name token.Var
	Pos  token.Pos
}

func (*BuiltinFunc) Kind() string { return "builtinfunc" }

// Capture describes one name captured by a closure literal: either by
// value ("take", captured now) or by reference ("const", lazily resolved
// through the binder scope on each expansion) (spec §4.6).
type Capture struct {
	Name   token.Var
	ByTake bool
}

// ClosuredValue is a value that snapshots a subset of the current const
// environment (and optionally the env-args) at first TakeHandle, then
// replays it on every subsequent expansion (spec §3, §4.6).
//
// The Inited/binder fields are mutated in place by the compiler on first
// capture: per spec invariant 9, capturing a closure twice must yield the
// same binder handle and body expansion every time, which requires the
// same *ClosuredValue node to remember its capture across calls rather
// than recomputing it — exactly the kind of node-local mutable state a
// purely-functional AST would otherwise avoid.
type ClosuredValue struct {
	valueEmbed
	Captures     []Capture
	CaptureArgs  bool
	BinderRebind token.Var // empty == no rebind
	Labels       []token.Var
	Underlying   Value
	Pos          token.Pos

	inited bool
	binder token.Var
}

func (*ClosuredValue) Kind() string { return "closuredvalue" }

// Inited reports whether this closure has already been captured once.
func (c *ClosuredValue) Inited() bool { return c.inited }

// CapturedBinder returns the binder handle allocated at first capture. Valid only
// after Inited() is true.
func (c *ClosuredValue) CapturedBinder() token.Var { return c.binder }

// MarkInited records the binder handle allocated for this closure's first
// capture. Calling it more than once is a bug in the caller (the compiler
// must check Inited() first) since it would silently change the binder a
// second invocation observes.
func (c *ClosuredValue) MarkInited(binder token.Var) {
	c.inited = true
	c.binder = binder
}
