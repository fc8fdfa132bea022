package builtin

import (
	"testing"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/diag"
	"github.com/mna/mdtc/lang/token"
	"github.com/stretchr/testify/require"
)

// mockEnv is a minimal, fully in-memory Env for exercising builtin dispatch
// without a real compiler.
type mockEnv struct {
	args         []ast.Value
	binds        map[[2]token.Var]token.Var
	lastExitCode int
	diags        []string
	exitReq      *int
	repeatLimit  int
	maxDepth     int
	noOp         string
	bindSep      string
	declared     map[token.Var]ast.Value
}

func newMockEnv(args ...ast.Value) *mockEnv {
	return &mockEnv{
		args:        args,
		binds:       map[[2]token.Var]token.Var{},
		declared:    map[token.Var]ast.Value{},
		repeatLimit: 10000,
		maxDepth:    500,
	}
}

func (e *mockEnv) Arg(i int) (ast.Value, bool) {
	if i < 0 || i >= len(e.args) {
		return nil, false
	}
	return e.args[i], true
}
func (e *mockEnv) ArgsLen() int { return len(e.args) }
func (e *mockEnv) TakeHandle(v ast.Value) (token.Var, error) {
	switch v := v.(type) {
	case *ast.Var:
		return v.Name, nil
	case *ast.ReprVar:
		return v.Name, nil
	}
	return token.Anonymous, nil
}
func (e *mockEnv) SetArgs(vals []ast.Value)                 { e.args = vals }
func (e *mockEnv) DeclareConst(name token.Var, value ast.Value) { e.declared[name] = value }
func (e *mockEnv) BindHandle(owner, name token.Var) (token.Var, bool) {
	h, ok := e.binds[[2]token.Var{owner, name}]
	return h, ok
}
func (e *mockEnv) EvalNum(v ast.Value) (float64, bool) {
	vv, ok := v.(*ast.Var)
	if !ok {
		return 0, false
	}
	switch vv.Name.String() {
	case "0":
		return 0, true
	case "1":
		return 1, true
	case "2":
		return 2, true
	case "65":
		return 65, true
	}
	return 0, false
}
func (e *mockEnv) StopRepeat()                 {}
func (e *mockEnv) SetLastExitCode(code int)    { e.lastExitCode = code }
func (e *mockEnv) Diagnostic(pos token.Pos, sev diag.Severity, msg string) {
	e.diags = append(e.diags, msg)
}
func (e *mockEnv) RequestExit(code int)      { e.exitReq = &code }
func (e *mockEnv) RepeatLimit() int          { return e.repeatLimit }
func (e *mockEnv) SetRepeatLimit(n int)      { e.repeatLimit = n }
func (e *mockEnv) MaxExpandDepth() int       { return e.maxDepth }
func (e *mockEnv) SetMaxExpandDepth(n int)   { e.maxDepth = n }
func (e *mockEnv) SetNoOp(s string)          { e.noOp = s }
func (e *mockEnv) SetBindSep(s string)       { e.bindSep = s }

func v(s string) token.Var { return token.NewVar(s) }
func vvar(s string) *ast.Var { return &ast.Var{Name: v(s)} }

func TestTypeBuiltin(t *testing.T) {
	e := newMockEnv(&ast.DExp{})
	entry, ok := Lookup(v("Type"))
	require.True(t, ok)
	got := entry.Call(e, 0)
	require.Equal(t, v("dexp"), got)
}

func TestStringifyWrapsUnquoted(t *testing.T) {
	e := newMockEnv(vvar("hello"))
	entry, _ := Lookup(v("Stringify"))
	got := entry.Call(e, 0)
	require.Equal(t, `"hello"`, got.String())
}

func TestStringifyPassesQuotedThrough(t *testing.T) {
	e := newMockEnv(vvar(`"hello"`))
	entry, _ := Lookup(v("Stringify"))
	got := entry.Call(e, 0)
	require.Equal(t, `"hello"`, got.String())
}

func TestConcat(t *testing.T) {
	e := newMockEnv(vvar(`"foo"`), vvar(`"bar"`))
	entry, _ := Lookup(v("Concat"))
	got := entry.Call(e, 0)
	require.Equal(t, `"foobar"`, got.String())
}

func TestUnbindRequiresValueBind(t *testing.T) {
	entry, _ := Lookup(v("Unbind"))

	e := newMockEnv(&ast.ValueBind{Base: vvar("x"), Name: v("attr")})
	got := entry.Call(e, 0)
	require.Equal(t, v("attr"), got)
	require.Zero(t, e.lastExitCode)

	e2 := newMockEnv(vvar("notabind"))
	got2 := entry.Call(e2, 0)
	require.Equal(t, token.Anonymous, got2)
	require.Equal(t, 2, e2.lastExitCode)
}

func TestArgcMismatchSetsExitCode(t *testing.T) {
	entry, _ := Lookup(v("Concat"))
	e := newMockEnv(vvar("only one"))
	got := entry.Call(e, 0)
	require.Equal(t, token.Anonymous, got)
	require.Equal(t, 2, e.lastExitCode)
}

func TestArgsLen(t *testing.T) {
	e := newMockEnv(vvar("a"), vvar("b"), vvar("c"))
	entry, _ := Lookup(v("ArgsLen"))
	got := entry.Call(e, 0)
	require.Equal(t, "3", got.String())
}

func TestChrOrdRoundTrip(t *testing.T) {
	e := newMockEnv(vvar("65"))
	chr, _ := Lookup(v("Chr"))
	got := chr.Call(e, 0)
	require.Equal(t, `"A"`, got.String())

	e2 := newMockEnv(vvar(`"A"`))
	ord, _ := Lookup(v("Ord"))
	got2 := ord.Call(e2, 0)
	require.Equal(t, "65", got2.String())
}

func TestSetRepeatLimit(t *testing.T) {
	e := newMockEnv(vvar("2"))
	entry, _ := Lookup(v("SetRepeatLimit"))
	entry.Call(e, 0)
	require.Equal(t, 2, e.repeatLimit)
}

func TestConstDeclaresInEnv(t *testing.T) {
	e := newMockEnv(vvar("myname"), vvar("val"))
	entry, _ := Lookup(v("Const"))
	entry.Call(e, 0)
	_, ok := e.declared[v("myname")]
	require.True(t, ok)
}

func TestExitRequestsExit(t *testing.T) {
	e := newMockEnv(vvar("1"))
	entry, _ := Lookup(v("Exit"))
	entry.Call(e, 0)
	require.NotNil(t, e.exitReq)
	require.Equal(t, 1, *e.exitReq)
}
