package constenv

import (
	"testing"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/token"
	"github.com/stretchr/testify/require"
)

func v(s string) token.Var { return token.NewVar(s) }

func TestAddGetConstScoping(t *testing.T) {
	e := New()
	e.AddConst(v("x"), &ConstData{Value: &ast.Var{Name: v("1")}})

	d, ok := e.GetConst(v("x"))
	require.True(t, ok)
	require.Equal(t, v("1"), d.Value.(*ast.Var).Name)

	_, ok = e.GetConst(v("y"))
	require.False(t, ok)
}

func TestPushPopBlockShadowing(t *testing.T) {
	e := New()
	e.AddConst(v("x"), &ConstData{Value: &ast.Var{Name: v("outer")}})

	e.PushBlock()
	e.AddConst(v("x"), &ConstData{Value: &ast.Var{Name: v("inner")}})
	d, _ := e.GetConst(v("x"))
	require.Equal(t, v("inner"), d.Value.(*ast.Var).Name)
	e.PopBlock(false)

	d, _ = e.GetConst(v("x"))
	require.Equal(t, v("outer"), d.Value.(*ast.Var).Name)
}

func TestPopBlockWithLeak(t *testing.T) {
	e := New()
	e.PushBlock()
	e.AddConst(v("leaked"), &ConstData{Value: &ast.Var{Name: v("val")}})
	e.MarkLeak(v("leaked"))
	e.PopBlock(true)

	d, ok := e.GetConst(v("leaked"))
	require.True(t, ok)
	require.Equal(t, v("val"), d.Value.(*ast.Var).Name)
}

func TestPopBlockWithoutLeakDropsBinding(t *testing.T) {
	e := New()
	e.PushBlock()
	e.AddConst(v("notLeaked"), &ConstData{Value: &ast.Var{Name: v("val")}})
	e.MarkLeak(v("notLeaked"))
	e.PopBlock(false)

	_, ok := e.GetConst(v("notLeaked"))
	require.False(t, ok)
}

func TestAddGlobalConstGoesToBottomScope(t *testing.T) {
	e := New()
	e.PushBlock()
	e.PushBlock()
	e.AddGlobalConst(v("g"), &ConstData{Value: &ast.Var{Name: v("gv")}})
	e.PopBlock(false)
	e.PopBlock(false)

	d, ok := e.GetConst(v("g"))
	require.True(t, ok)
	require.Equal(t, v("gv"), d.Value.(*ast.Var).Name)
}

func TestEnterExitConstExpandRenamesLabels(t *testing.T) {
	e := New()
	data := &ConstData{Labels: []token.Var{v("loop")}, Binder: v("b1")}
	err := e.EnterConstExpand(v("myconst"), data)
	require.NoError(t, err)

	renamed := e.GetInConstLabel(v("loop"))
	require.NotEqual(t, v("loop"), renamed)
	require.Equal(t, v("b1"), e.CurrentBinder())

	e.ExitConstExpand()
	// after exit, no rename applies and the binder reverts to anonymous
	require.Equal(t, v("loop"), e.GetInConstLabel(v("loop")))
	require.Equal(t, token.Anonymous, e.CurrentBinder())
}

func TestEnterConstExpandDepthLimit(t *testing.T) {
	e := New()
	e.MaxExpandDepth = 2
	data := &ConstData{}
	require.NoError(t, e.EnterConstExpand(v("a"), data))
	require.NoError(t, e.EnterConstExpand(v("b"), data))

	err := e.EnterConstExpand(v("c"), data)
	require.Error(t, err)
	var depthErr *DepthExceededError
	require.ErrorAs(t, err, &depthErr)
	require.Equal(t, 2, depthErr.Limit)
}

func TestCurrentBinderSkipsEmpty(t *testing.T) {
	e := New()
	require.Equal(t, token.Anonymous, e.CurrentBinder())

	require.NoError(t, e.EnterConstExpand(v("a"), &ConstData{Binder: token.Var("")}))
	require.Equal(t, token.Anonymous, e.CurrentBinder())

	require.NoError(t, e.EnterConstExpand(v("b"), &ConstData{Binder: v("realBinder")}))
	require.Equal(t, v("realBinder"), e.CurrentBinder())
}

func TestBindTableLookupSet(t *testing.T) {
	bt := NewBindTable(4)
	_, ok := bt.Lookup(v("owner"), v("attr"))
	require.False(t, ok)

	bt.Set(v("owner"), v("attr"), v("h0"))
	h, ok := bt.Lookup(v("owner"), v("attr"))
	require.True(t, ok)
	require.Equal(t, v("h0"), h)
	require.Equal(t, 1, bt.Count())
}
