package linebuf

import (
	"testing"

	"github.com/mna/mdtc/lang/token"
	"github.com/stretchr/testify/require"
)

func v(s string) token.Var { return token.NewVar(s) }

func TestAppendPop(t *testing.T) {
	b := New()
	require.Equal(t, 0, b.Len())

	i0 := b.Append(&Args{Tokens: []token.Var{v("set"), v("x"), v("1")}})
	require.Equal(t, 0, i0)
	i1 := b.Append(&Label{Name: v("loop")})
	require.Equal(t, 1, i1)
	require.Equal(t, 2, b.Len())

	popped := b.Pop()
	require.IsType(t, &Label{}, popped)
	require.Equal(t, 1, b.Len())
}

func TestAtSet(t *testing.T) {
	b := New()
	b.Append(&Args{Tokens: []token.Var{v("noop")}})
	b.Set(0, &Args{Tokens: []token.Var{v("print"), v("x")}})
	got := b.At(0).(*Args)
	require.Equal(t, []token.Var{v("print"), v("x")}, got.Tokens)
}

func TestLabelPopup(t *testing.T) {
	b := New()
	// instruction 0
	b.Append(&Args{Tokens: []token.Var{v("set"), v("x"), v("0")}})
	// instruction 1
	b.Append(&Args{Tokens: []token.Var{v("print"), v("x")}})

	name := func(idx int) token.Var { return token.NewVar(":synthetic:") }
	inserted := b.LabelPopup([]int{1}, name)
	require.Len(t, inserted, 1)
	require.Equal(t, v(":synthetic:"), inserted[1])

	// a synthetic label must now sit immediately before instruction 1
	lines := b.Lines()
	require.Len(t, lines, 3)
	require.IsType(t, &Args{}, lines[0])
	require.IsType(t, &Label{}, lines[1])
	require.IsType(t, &Args{}, lines[2])
}

func TestLabelPopupSkipsExistingLabel(t *testing.T) {
	b := New()
	b.Append(&Args{Tokens: []token.Var{v("set"), v("x"), v("0")}})
	b.Append(&Label{Name: v("here")})
	b.Append(&Args{Tokens: []token.Var{v("print"), v("x")}})

	name := func(idx int) token.Var { return token.NewVar(":synthetic:") }
	inserted := b.LabelPopup([]int{1}, name)
	require.Empty(t, inserted)
	require.Len(t, b.Lines(), 3)
}
