package tagcode

import (
	"testing"

	"github.com/mna/mdtc/lang/linebuf"
	"github.com/mna/mdtc/lang/token"
	"github.com/stretchr/testify/require"
)

func v(s string) token.Var { return token.NewVar(s) }

func TestResolveBasic(t *testing.T) {
	b := linebuf.New()
	b.Append(&linebuf.Args{Tokens: []token.Var{v("set"), v("x"), v("0")}})
	b.Append(&linebuf.Jump{Target: v("loop"), Args: []token.Var{v("always")}})
	b.Append(&linebuf.Label{Name: v("loop")})
	b.Append(&linebuf.Args{Tokens: []token.Var{v("print"), v("x")}})

	prog, err := Resolve(b)
	require.NoError(t, err)
	require.Len(t, prog.Instrs, 3)

	jmp := prog.Instrs[1].(*JumpInstr)
	require.Equal(t, 2, jmp.Target)
}

func TestResolveDupLabel(t *testing.T) {
	b := linebuf.New()
	b.Append(&linebuf.Label{Name: v("a")})
	b.Append(&linebuf.Args{Tokens: []token.Var{v("noop")}})
	b.Append(&linebuf.Label{Name: v("a")})

	_, err := Resolve(b)
	require.Error(t, err)
	var dup *DupLabelError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, v("a"), dup.Name)
}

func TestResolveUnresolvedJump(t *testing.T) {
	b := linebuf.New()
	b.Append(&linebuf.Jump{Target: v("nope"), Args: []token.Var{v("always")}})

	_, err := Resolve(b)
	require.Error(t, err)
	var unres *UnresolvedJumpError
	require.ErrorAs(t, err, &unres)
	require.Equal(t, v("nope"), unres.Label)
}

func TestAlwaysJumpChainFollowed(t *testing.T) {
	b := linebuf.New()
	// 0: jump -> a
	b.Append(&linebuf.Jump{Target: v("a"), Args: []token.Var{v("always")}})
	b.Append(&linebuf.Label{Name: v("a")})
	// 1: always jump -> b (chain hop)
	b.Append(&linebuf.Jump{Target: v("b"), Args: []token.Var{v("always")}})
	b.Append(&linebuf.Label{Name: v("b")})
	// 2: final landing instruction
	b.Append(&linebuf.Args{Tokens: []token.Var{v("print"), v("x")}})

	prog, err := Resolve(b)
	require.NoError(t, err)
	jmp := prog.Instrs[0].(*JumpInstr)
	require.Equal(t, 2, jmp.Target)
}

func TestAlwaysJumpCycleLeftIntact(t *testing.T) {
	b := linebuf.New()
	b.Append(&linebuf.Label{Name: v("a")})
	// 0: always jump -> b
	b.Append(&linebuf.Jump{Target: v("b"), Args: []token.Var{v("always")}})
	b.Append(&linebuf.Label{Name: v("b")})
	// 1: always jump -> a (cycle)
	b.Append(&linebuf.Jump{Target: v("a"), Args: []token.Var{v("always")}})

	prog, err := Resolve(b)
	require.NoError(t, err)
	// cycle detected: both jumps are left pointing at their original,
	// immediate hop rather than partially or fully rewritten
	require.Equal(t, 1, prog.Instrs[0].(*JumpInstr).Target)
	require.Equal(t, 0, prog.Instrs[1].(*JumpInstr).Target)
}

func TestIsAlwaysJumpEqualSameOperand(t *testing.T) {
	require.True(t, isAlwaysJump([]token.Var{v("equal"), v("x"), v("x")}))
	require.False(t, isAlwaysJump([]token.Var{v("equal"), v("x"), v("y")}))
	require.True(t, isAlwaysJump([]token.Var{v("always")}))
	require.False(t, isAlwaysJump([]token.Var{v("lessThan"), v("x"), v("x")}))
}

func TestRender(t *testing.T) {
	prog := &Program{Instrs: []Instr{
		&ArgsInstr{Tokens: []token.Var{v("set"), v("x"), v("0")}},
		&JumpInstr{Target: 0, Args: []token.Var{v("always")}},
	}}
	require.Equal(t, "set x 0\njump 0 always\n", Render(prog))
}

func TestRenderLabelNameNumeric(t *testing.T) {
	require.Equal(t, ":0", RenderLabelName(v("0")))
	require.Equal(t, "loop", RenderLabelName(v("loop")))
}
