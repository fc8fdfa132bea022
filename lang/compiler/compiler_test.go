package compiler

import (
	"testing"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/constenv"
	"github.com/mna/mdtc/lang/linebuf"
	"github.com/mna/mdtc/lang/token"
	"github.com/stretchr/testify/require"
)

func v(s string) token.Var { return token.NewVar(s) }

func argsTokens(t *testing.T, ln linebuf.ParseLine) []token.Var {
	t.Helper()
	a, ok := ln.(*linebuf.Args)
	require.True(t, ok, "expected *linebuf.Args, got %T", ln)
	return a.Tokens
}

func TestTakeHandleReprVarPassesThrough(t *testing.T) {
	m := New(nil)
	h, err := m.TakeHandle(&ast.ReprVar{Name: v("x")})
	require.NoError(t, err)
	require.Equal(t, v("x"), h)
}

func TestTakeHandleVarResolvesConst(t *testing.T) {
	m := New(nil)
	m.env.PushBlock()
	m.env.AddConst(v("foo"), &constenv.ConstData{Value: &ast.ReprVar{Name: v("bar")}})
	h, err := m.TakeHandle(&ast.Var{Name: v("foo")})
	require.NoError(t, err)
	require.Equal(t, v("bar"), h)
}

func TestTakeHandleVarFallsThroughWhenUnbound(t *testing.T) {
	m := New(nil)
	h, err := m.TakeHandle(&ast.Var{Name: v("literal42")})
	require.NoError(t, err)
	require.Equal(t, v("literal42"), h)
}

func TestResultHandleOutsideDExpIsFatal(t *testing.T) {
	m := New(nil)
	_, err := m.TakeHandle(&ast.ResultHandle{})
	require.Error(t, err)
	var target *OutOfDExpError
	require.ErrorAs(t, err, &target)
}

func TestTakeHandleDExpAnonymousResultFoldsToLiteral(t *testing.T) {
	m := New(nil)
	dexp := &ast.DExp{
		Body: []ast.LogicLine{
			&ast.OpLine{Op: ast.Op{
				Kind:   ast.Add,
				Result: &ast.ResultHandle{},
				A:      &ast.ReprVar{Name: v("1")},
				B:      &ast.ReprVar{Name: v("2")},
			}},
		},
	}
	h, err := m.TakeHandle(dexp)
	require.NoError(t, err)
	require.Equal(t, "3", h.String())
}

func TestCompileOpEmitsArgs(t *testing.T) {
	m := New(nil)
	err := m.compileOp(&ast.Op{
		Kind:   ast.Add,
		Result: &ast.ReprVar{Name: v("result")},
		A:      &ast.ReprVar{Name: v("a")},
		B:      &ast.ReprVar{Name: v("b")},
	})
	require.NoError(t, err)
	require.Equal(t, 1, m.buf.Len())
	require.Equal(t, []token.Var{v("op"), v("add"), v("result"), v("a"), v("b")}, argsTokens(t, m.buf.At(0)))
}

func TestCompileGotoAlwaysEmitsSingleTokenJump(t *testing.T) {
	m := New(nil)
	err := m.compileGoto(&ast.GotoLine{Label: v("target")})
	require.NoError(t, err)
	require.Equal(t, 1, m.buf.Len())
	j, ok := m.buf.At(0).(*linebuf.Jump)
	require.True(t, ok)
	require.Equal(t, v("target"), j.Target)
	require.Equal(t, []token.Var{v("always")}, j.Args)
}

func TestCompileGotoAtomEmitsComparisonJump(t *testing.T) {
	m := New(nil)
	err := m.compileGoto(&ast.GotoLine{
		Label: v("target"),
		Cond:  &ast.Atom{Op: ast.Equal, A: &ast.ReprVar{Name: v("a")}, B: &ast.ReprVar{Name: v("b")}},
	})
	require.NoError(t, err)
	j := m.buf.At(0).(*linebuf.Jump)
	require.Equal(t, v("target"), j.Target)
	require.Equal(t, []token.Var{v("equal"), v("a"), v("b")}, j.Args)
}

func TestCompileGotoAndEmitsSkipThenJump(t *testing.T) {
	m := New(nil)
	cond := &ast.And{
		L: &ast.Atom{Op: ast.Equal, A: &ast.ReprVar{Name: v("a")}, B: &ast.ReprVar{Name: v("b")}},
		R: &ast.Atom{Op: ast.Lt, A: &ast.ReprVar{Name: v("c")}, B: &ast.ReprVar{Name: v("d")}},
	}
	err := m.compileGoto(&ast.GotoLine{Label: v("target"), Cond: cond})
	require.NoError(t, err)
	// skip-if-not-equal, then jump-if-lessThan, then the skip label.
	require.Equal(t, 3, m.buf.Len())
	skipJump := m.buf.At(0).(*linebuf.Jump)
	require.Equal(t, []token.Var{v("notEqual"), v("a"), v("b")}, skipJump.Args)
	target := m.buf.At(1).(*linebuf.Jump)
	require.Equal(t, []token.Var{v("lessThan"), v("c"), v("d")}, target.Args)
	_, isLabel := m.buf.At(2).(*linebuf.Label)
	require.True(t, isLabel)
}

func TestCompileConstPlainNameThenReference(t *testing.T) {
	m := New(nil)
	m.env.PushBlock()
	err := m.compileConst(&ast.ConstLine{
		Key:   ast.ConstKey{Name: v("x")},
		Value: &ast.ReprVar{Name: v("5")},
	})
	require.NoError(t, err)
	h, err := m.TakeHandle(&ast.Var{Name: v("x")})
	require.NoError(t, err)
	require.Equal(t, v("5"), h)
}

func TestCompileTakeResolvesEagerly(t *testing.T) {
	m := New(nil)
	m.env.PushBlock()
	err := m.compileTake(&ast.TakeLine{
		Key: ast.ConstKey{Name: v("x")},
		Value: &ast.DExp{Body: []ast.LogicLine{
			&ast.OpLine{Op: ast.Op{Kind: ast.Add, Result: &ast.ResultHandle{}, A: &ast.ReprVar{Name: v("1")}, B: &ast.ReprVar{Name: v("1")}}},
		}},
	})
	require.NoError(t, err)
	h, err := m.TakeHandle(&ast.Var{Name: v("x")})
	require.NoError(t, err)
	require.Equal(t, "2", h.String())
}

func TestValueBindAllocatesStableHandlePerOwnerName(t *testing.T) {
	m := New(nil)
	bind := &ast.ValueBind{Base: &ast.ReprVar{Name: v("entity")}, Name: v("attr")}
	h1, err := m.TakeHandle(bind)
	require.NoError(t, err)
	h2, err := m.TakeHandle(bind)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestCmperTakenIsFatal(t *testing.T) {
	m := New(nil)
	_, err := m.TakeHandle(&ast.Cmper{Tree: &ast.Atom{Op: ast.Equal, A: &ast.ReprVar{Name: v("a")}, B: &ast.ReprVar{Name: v("a")}}})
	require.Error(t, err)
	var target *CmperTakenError
	require.ErrorAs(t, err, &target)
}

func TestSelectDispatchesComputedJump(t *testing.T) {
	m := New(nil)
	err := m.compileSelect(&ast.SelectLine{
		Value: &ast.ReprVar{Name: v("0")},
		Cases: []ast.LogicLine{
			&ast.OtherLine{Args: ast.Args{Normal: []ast.Value{&ast.ReprVar{Name: v("case0")}}}},
			&ast.OtherLine{Args: ast.Args{Normal: []ast.Value{&ast.ReprVar{Name: v("case1")}}}},
		},
	})
	require.NoError(t, err)
	require.Greater(t, m.buf.Len(), 0)
	first := m.buf.At(0).(*linebuf.Args)
	require.Equal(t, v("op"), first.Tokens[0])
	require.Equal(t, v("add"), first.Tokens[1])
}

func TestArgsRepeatRunsFixedCount(t *testing.T) {
	m := New(nil)
	m.env.PushBlock()
	count := 0
	err := m.compileArgsRepeat(&ast.ArgsRepeatLine{
		Count: &ast.ReprVar{Name: v("3")},
		Body: []ast.LogicLine{
			&ast.OtherLine{Args: ast.Args{Normal: []ast.Value{&ast.ReprVar{Name: v("tick")}}}},
		},
	})
	require.NoError(t, err)
	for i := 0; i < m.buf.Len(); i++ {
		if _, ok := m.buf.At(i).(*linebuf.Args); ok {
			count++
		}
	}
	require.Equal(t, 3, count)
}

func TestArgsRepeatRejectsOversizedCount(t *testing.T) {
	m := New(nil)
	m.env.PushBlock()
	err := m.compileArgsRepeat(&ast.ArgsRepeatLine{
		Count: &ast.ReprVar{Name: v("9999")},
		Body:  nil,
	})
	require.Error(t, err)
	var target *RepeatCountError
	require.ErrorAs(t, err, &target)
}

func TestClosureCaptureIsIdempotentAcrossExpansions(t *testing.T) {
	m := New(nil)
	m.env.PushBlock()
	m.env.AddConst(v("captured"), &constenv.ConstData{Value: &ast.ReprVar{Name: v("initial")}})

	closure := &ast.ClosuredValue{
		Captures:   []ast.Capture{{Name: v("captured"), ByTake: true}},
		Underlying: &ast.Var{Name: v("captured")},
	}

	h1, err := m.TakeHandle(closure)
	require.NoError(t, err)
	require.Equal(t, v("initial"), h1)

	// Rebind the name in the enclosing scope; the closure must still replay
	// its original snapshot, not the new binding.
	m.env.AddConst(v("captured"), &constenv.ConstData{Value: &ast.ReprVar{Name: v("changed")}})

	h2, err := m.TakeHandle(closure)
	require.NoError(t, err)
	require.Equal(t, v("initial"), h2)
}
