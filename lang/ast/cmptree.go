package ast

import "github.com/mna/mdtc/lang/token"

// JumpCmp is the comparison kind carried by a CmpTree Atom (spec §3).
type JumpCmp int8

//nolint:revive
const (
	Equal JumpCmp = iota
	NotEqual
	Lt
	LtEq
	Gt
	GtEq
	StrictEqual
	StrictNotEqual
	Always
	Never
)

var jumpCmpNames = [...]string{
	Equal: "equal", NotEqual: "notEqual", Lt: "lessThan", LtEq: "lessThanEq",
	Gt: "greaterThan", GtEq: "greaterThanEq",
	StrictEqual: "strictEqual", StrictNotEqual: "strictNotEqual",
	Always: "always", Never: "never",
}

func (j JumpCmp) String() string { return jumpCmpNames[j] }

// negated maps each comparison to its logical negation, used by Atom's
// per-atom inversion in Tree.Reverse (spec §4.4). StrictEqual/
// StrictNotEqual have no single-token negation in the target MDT
// instruction set, so they are routed through the "op strictEqual" +
// negate pattern instead at the point of use rather than here.
var negated = [...]JumpCmp{
	Equal: NotEqual, NotEqual: Equal,
	Lt: GtEq, GtEq: Lt,
	Gt: LtEq, LtEq: Gt,
	Always: Never, Never: Always,
}

// Negate returns j's direct single-token negation and true, or false when
// j has none (StrictEqual/StrictNotEqual — the caller must route those
// through the "op strictEqual" + negate pattern instead, spec §4.4).
func (j JumpCmp) Negate() (JumpCmp, bool) {
	switch j {
	case StrictEqual, StrictNotEqual:
		return j, false
	default:
		return negated[j], true
	}
}

// Tree is the sum type over/and/not of atomic comparisons lowered by the
// jump-tree engine (spec §4.4).
type Tree interface {
	treeNode()
}

type treeEmbed struct{}

func (treeEmbed) treeNode() {}

// Atom is a single comparison between two values.
type Atom struct {
	treeEmbed
	Op   JumpCmp
	A, B Value
	Pos  token.Pos
}

// And is the short-circuit conjunction of two trees.
type And struct {
	treeEmbed
	L, R Tree
}

// Or is the short-circuit disjunction of two trees.
type Or struct {
	treeEmbed
	L, R Tree
}

// Deps runs Block before evaluating Cond; used to hoist side-effecting
// DExps out of a condition (spec §4.4).
type Deps struct {
	treeEmbed
	Block []LogicLine
	Cond  Tree
}

// InScope evaluates Cond under the const-scope of Handle — the AST shape
// for spec's CmpTree::Expand(handle, cond); renamed here to avoid a name
// collision with the top-level ast.Chunk/Expand block node.
type InScope struct {
	treeEmbed
	Handle Value
	Cond   Tree
}
