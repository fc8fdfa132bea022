package ast

import "github.com/mna/mdtc/lang/token"

// OpKind enumerates every unary and binary operator the `op` statement and
// the numeric const-folder understand (spec §3, §4.4).
type OpKind int8

//nolint:revive
const (
	Add OpKind = iota
	Sub
	Mul
	Div
	IDiv
	Mod
	EMod
	Pow

	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	Shru

	Not // unary logical not
	Neg // unary negation
	Abs
	Sign

	Sin
	Cos
	Tan
	Asin
	Acos
	Atan
	Sqrt
	Log
	LogN
	Exp

	Max
	Min
	Angle
	AngleDiff
	Len
	Noise
	Rand

	// comparisons, also usable as Op results (not just CmpTree atoms)
	OpEqual
	OpNotEqual
	OpLessThan
	OpLessThanEq
	OpGreaterThan
	OpGreaterThanEq
	OpStrictEqual

	opKindCount
)

// binaryArity[k] is true when the operator takes two operands; otherwise it
// is unary.
var binaryArity = [opKindCount]bool{
	Add: true, Sub: true, Mul: true, Div: true, IDiv: true, Mod: true, EMod: true, Pow: true,
	BitAnd: true, BitOr: true, BitXor: true, Shl: true, Shr: true, Shru: true,
	LogN: true, Max: true, Min: true, Angle: false, AngleDiff: true, Noise: true, Rand: false,
	OpEqual: true, OpNotEqual: true, OpLessThan: true, OpLessThanEq: true,
	OpGreaterThan: true, OpGreaterThanEq: true, OpStrictEqual: true,
}

// IsBinary reports whether k takes two operands (vs one).
func (k OpKind) IsBinary() bool { return binaryArity[k] }

var opKindNames = [...]string{
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", IDiv: "idiv", Mod: "mod", EMod: "emod", Pow: "pow",
	BitAnd: "and", BitOr: "or", BitXor: "xor", Shl: "shl", Shr: "shr", Shru: "ushr",
	Not: "not", Neg: "neg", Abs: "abs", Sign: "sign",
	Sin: "sin", Cos: "cos", Tan: "tan", Asin: "asin", Acos: "acos", Atan: "atan",
	Sqrt: "sqrt", Log: "log", LogN: "logn", Exp: "exp",
	Max: "max", Min: "min", Angle: "angle", AngleDiff: "angleDiff", Len: "len",
	Noise: "noise", Rand: "rand",
	OpEqual: "equal", OpNotEqual: "notEqual", OpLessThan: "lessThan", OpLessThanEq: "lessThanEq",
	OpGreaterThan: "greaterThan", OpGreaterThanEq: "greaterThanEq", OpStrictEqual: "strictEqual",
}

func (k OpKind) String() string { return opKindNames[k] }

// cmpOpKinds maps the comparison OpKinds to their JumpCmp equivalent, used
// when CmpTree.TryInline lifts a single-line comparison Op DExp into a jump
// atom (spec §4.4).
var cmpOpKinds = map[OpKind]JumpCmp{
	OpEqual: Equal, OpNotEqual: NotEqual, OpLessThan: Lt, OpLessThanEq: LtEq,
	OpGreaterThan: Gt, OpGreaterThanEq: GtEq, OpStrictEqual: StrictEqual,
}

// JumpCmpFor returns the JumpCmp equivalent of a comparison OpKind and
// whether k is indeed a comparison.
func JumpCmpFor(k OpKind) (JumpCmp, bool) {
	j, ok := cmpOpKinds[k]
	return j, ok
}

// Op is a single `op` instruction: a result value plus one or two argument
// values (spec §3).
type Op struct {
	Kind   OpKind
	Result Value
	A, B   Value // B is nil for a unary Kind
	Pos    token.Pos
}
