package compiler

import (
	"math"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/numfmt"
)

// tryFold offers v to the numeric evaluator before the normal TakeHandle
// dispatch runs (spec §4.2's const-folding short-circuit): only an
// anonymous (Result == nil) DExp whose sole body line is an Op-DExp
// targeting `$` can fold, and only when every operand const-evaluates.
func (m *CompileMeta) tryFold(v ast.Value) (float64, bool) {
	dexp, ok := v.(*ast.DExp)
	if !ok || dexp.Result != nil {
		return 0, false
	}
	return m.foldOpDExp(dexp)
}

func (m *CompileMeta) foldOpDExp(dexp *ast.DExp) (float64, bool) {
	if len(dexp.Body) != 1 {
		return 0, false
	}
	opLine, ok := dexp.Body[0].(*ast.OpLine)
	if !ok {
		return 0, false
	}
	if _, ok := opLine.Op.Result.(*ast.ResultHandle); !ok {
		return 0, false
	}
	a, ok := m.EvalConst(opLine.Op.A)
	if !ok {
		return 0, false
	}
	if !opLine.Op.Kind.IsBinary() {
		r, ok := applyUnaryOp(opLine.Op.Kind, a)
		return r, ok
	}
	b, ok := m.EvalConst(opLine.Op.B)
	if !ok {
		return 0, false
	}
	return applyBinaryOp(opLine.Op.Kind, a, b)
}

// EvalConst recursively const-evaluates v to a float64, without emitting
// any lines or mutating compiler state, used by the EvalNum builtin, the
// fold short-circuit, and args-repeat/SliceArgs counts.
func (m *CompileMeta) EvalConst(v ast.Value) (float64, bool) {
	switch v := v.(type) {
	case *ast.ReprVar:
		return numfmt.ParseFloat(v.Name.String())
	case *ast.Var:
		if data, ok := m.env.GetConst(v.Name); ok {
			return m.EvalConst(data.Value)
		}
		return numfmt.ParseFloat(v.Name.String())
	case *ast.DExp:
		return m.foldOpDExp(v)
	default:
		return 0, false
	}
}

func applyUnaryOp(k ast.OpKind, a float64) (float64, bool) {
	switch k {
	case ast.Not:
		if a == 0 {
			return 1, true
		}
		return 0, true
	case ast.Neg:
		return -a, true
	case ast.Abs:
		return math.Abs(a), true
	case ast.Sign:
		switch {
		case a > 0:
			return 1, true
		case a < 0:
			return -1, true
		default:
			return 0, true
		}
	case ast.Sin:
		return math.Sin(a * math.Pi / 180), true
	case ast.Cos:
		return math.Cos(a * math.Pi / 180), true
	case ast.Tan:
		return math.Tan(a * math.Pi / 180), true
	case ast.Asin:
		return math.Asin(a) * 180 / math.Pi, true
	case ast.Acos:
		return math.Acos(a) * 180 / math.Pi, true
	case ast.Atan:
		return math.Atan(a) * 180 / math.Pi, true
	case ast.Sqrt:
		return math.Sqrt(a), true
	case ast.Log:
		return math.Log(a), true
	case ast.Exp:
		return math.Exp(a), true
	case ast.Rand:
		// Rand is host-side randomness, not foldable at compile time.
		return 0, false
	default:
		return 0, false
	}
}

func applyBinaryOp(k ast.OpKind, a, b float64) (float64, bool) {
	truth := func(t bool) float64 {
		if t {
			return 1
		}
		return 0
	}
	switch k {
	case ast.Add:
		return a + b, true
	case ast.Sub:
		return a - b, true
	case ast.Mul:
		return a * b, true
	case ast.Div:
		return a / b, true
	case ast.IDiv:
		return math.Trunc(a / b), true
	case ast.Mod:
		return math.Mod(a, b), true
	case ast.EMod:
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return r, true
	case ast.Pow:
		return math.Pow(a, b), true
	case ast.BitAnd:
		return float64(int64(a) & int64(b)), true
	case ast.BitOr:
		return float64(int64(a) | int64(b)), true
	case ast.BitXor:
		return float64(int64(a) ^ int64(b)), true
	case ast.Shl:
		return float64(int64(a) << uint(int64(b))), true
	case ast.Shr:
		return float64(int64(a) >> uint(int64(b))), true
	case ast.Shru:
		return float64(int64(uint64(int64(a)) >> uint(int64(b)))), true
	case ast.LogN:
		return math.Log(b) / math.Log(a), true
	case ast.Max:
		return math.Max(a, b), true
	case ast.Min:
		return math.Min(a, b), true
	case ast.AngleDiff:
		d := math.Mod(math.Abs(a-b), 360)
		if d > 180 {
			d = 360 - d
		}
		return d, true
	case ast.Noise:
		// Perlin/simplex noise is not reproducible at compile time.
		return 0, false
	case ast.OpEqual:
		return truth(a == b), true
	case ast.OpNotEqual:
		return truth(a != b), true
	case ast.OpLessThan:
		return truth(a < b), true
	case ast.OpLessThanEq:
		return truth(a <= b), true
	case ast.OpGreaterThan:
		return truth(a > b), true
	case ast.OpGreaterThanEq:
		return truth(a >= b), true
	case ast.OpStrictEqual:
		return truth(a == b), true
	default:
		return 0, false
	}
}
