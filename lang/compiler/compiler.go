// Package compiler is the core engine: it drives a depth-first traversal
// of a parsed Expand AST, threading a single mutable CompileMeta through
// every operation (spec §5), and emits ParseLines into a line buffer that
// lang/tagcode later resolves to textual MDT.
package compiler

import (
	"fmt"
	stdtoken "go/token"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/builtin"
	"github.com/mna/mdtc/lang/constenv"
	"github.com/mna/mdtc/lang/diag"
	"github.com/mna/mdtc/lang/linebuf"
	"github.com/mna/mdtc/lang/token"
)

// CompileMeta is the single mutable state container a compile threads
// through every operation (spec §5): the line buffer, the const-env stack,
// the handle stack, the env-args stack, the bind table, and the tunable
// knobs the builtin table can adjust. There is never a package-level
// CompileMeta; every compile owns its own (spec §9).
type CompileMeta struct {
	buf *linebuf.Buffer
	env *constenv.Env
	bt  *constenv.BindTable

	file *token.File
	diag diag.Bag

	handles   []token.Var   // DExp result handle stack ($)
	argsStack [][]ast.Value // env-args frames (the "_i" vector)
	repeatGo  []bool        // per args-repeat-level continue flag

	tempCounter  uint64
	labelCounter uint64

	noOp        string
	bindSep     string
	repeatLimit int

	lastExitCode  int
	exitRequested bool
	exitCode      int

	// gswitchCatchLabels is scratch state for the currently-compiling
	// GSwitchLine's catch-kind labels; cleared when that gswitch finishes.
	gswitchCatchLabels map[ast.GSwitchCatchKind]token.Var
}

// New returns a fresh CompileMeta ready to compile one chunk. file resolves
// diagnostic positions and may be nil (e.g. in unit tests that build AST
// nodes directly with no source text).
func New(file *token.File) *CompileMeta {
	return &CompileMeta{
		buf:         linebuf.New(),
		env:         constenv.New(),
		bt:          constenv.NewBindTable(64),
		file:        file,
		noOp:        "noop",
		repeatLimit: 10000,
	}
}

// Buffer returns the line buffer lines have been emitted into.
func (m *CompileMeta) Buffer() *linebuf.Buffer { return m.buf }

// Diagnostics returns the accumulated diagnostic bag.
func (m *CompileMeta) Diagnostics() *diag.Bag { return &m.diag }

// ExitRequested reports whether the Exit builtin was invoked, and with
// which code.
func (m *CompileMeta) ExitRequested() (int, bool) { return m.exitCode, m.exitRequested }

// LastExitCode returns the most recent code recorded by a builtin (spec
// §4.8's Status/Err/Exit convention).
func (m *CompileMeta) LastExitCode() int { return m.lastExitCode }

func (m *CompileMeta) goPos(p token.Pos) stdtoken.Position {
	if m.file == nil {
		return stdtoken.Position{}
	}
	return m.file.Position(p)
}

func (m *CompileMeta) fatal(p token.Pos, err error) error {
	msg := err.Error()
	if stack := m.env.ExpansionStack(); len(stack) > 0 {
		msg = fmt.Sprintf("%s (const expansion stack: %v)", msg, stack)
	}
	m.diag.Add(m.goPos(p), diag.Fatal, msg)
	return err
}

func (m *CompileMeta) advisory(p token.Pos, format string, args ...interface{}) {
	m.diag.Add(m.goPos(p), diag.Advisory, fmt.Sprintf(format, args...))
}

// freshName allocates a compiler-private temporary name, base-62 encoded
// past the first 1000 allocations (spec §5) to keep short names short.
func (m *CompileMeta) freshName(prefix string) token.Var {
	m.tempCounter++
	return token.NewVar(fmt.Sprintf("__%s_%s", prefix, encodeCounter(m.tempCounter)))
}

func (m *CompileMeta) freshLabel() token.Var {
	m.labelCounter++
	return token.NewVar(fmt.Sprintf("__label_%s", encodeCounter(m.labelCounter)))
}

const base62Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func encodeCounter(n uint64) string {
	if n == 0 {
		return "0"
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = base62Digits[n%62]
		n /= 62
	}
	return string(buf[i:])
}

// Compile runs the traversal entry point over a top-level block: push a
// fresh const scope, compile every line, pop.
func (m *CompileMeta) Compile(block ast.Block) error {
	m.env.PushBlock()
	defer m.env.PopBlock(false)
	return m.compileBlock(block)
}

func (m *CompileMeta) compileBlock(block ast.Block) error {
	for _, ln := range block {
		if err := m.compileLine(ln); err != nil {
			return err
		}
		if m.exitRequested {
			return nil
		}
	}
	return nil
}

func (m *CompileMeta) compileLine(ln ast.LogicLine) error {
	switch ln := ln.(type) {
	case *ast.OpLine:
		return m.compileOp(&ln.Op)
	case *ast.LabelLine:
		m.buf.Append(&linebuf.Label{Name: m.env.GetInConstLabel(ln.Name)})
		return nil
	case *ast.GotoLine:
		return m.compileGoto(ln)
	case *ast.OtherLine:
		return m.compileOther(ln)
	case *ast.ExpandLine:
		m.env.PushBlock()
		err := m.compileBlock(ln.Body)
		m.env.PopBlock(false)
		return err
	case *ast.InlineBlockLine:
		m.env.PushBlock()
		err := m.compileBlock(ln.Body)
		m.env.PopBlock(true)
		return err
	case *ast.SelectLine:
		return m.compileSelect(ln)
	case *ast.GSwitchLine:
		return m.compileGSwitch(ln)
	case *ast.NoOpLine:
		m.buf.Append(&linebuf.Args{Tokens: []token.Var{token.NewVar(m.noOp)}})
		return nil
	case *ast.IgnoreLine:
		return nil
	case *ast.ConstLine:
		return m.compileConst(ln)
	case *ast.TakeLine:
		return m.compileTake(ln)
	case *ast.ConstLeakLine:
		m.env.MarkLeak(ln.Name)
		return nil
	case *ast.SetResultHandleLine:
		return m.compileSetResultHandle(ln)
	case *ast.SetArgsLine:
		return m.compileSetArgsLine(ln)
	case *ast.ArgsRepeatLine:
		return m.compileArgsRepeat(ln)
	case *ast.MatchLine:
		return m.compileMatch(ln)
	case *ast.ConstMatchLine:
		return m.compileConstMatch(ln)
	default:
		return fmt.Errorf("compiler: unhandled LogicLine %T", ln)
	}
}

func (m *CompileMeta) compileOp(op *ast.Op) error {
	resultHandle, err := m.TakeHandle(op.Result)
	if err != nil {
		return err
	}
	aHandle, err := m.TakeHandle(op.A)
	if err != nil {
		return err
	}
	tokens := []token.Var{token.NewVar("op"), token.NewVar(op.Kind.String()), resultHandle, aHandle}
	if op.Kind.IsBinary() {
		bHandle, err := m.TakeHandle(op.B)
		if err != nil {
			return err
		}
		tokens = append(tokens, bHandle)
	} else {
		tokens = append(tokens, token.NewVar("0"))
	}
	m.buf.Append(&linebuf.Args{Tokens: tokens})
	return nil
}

func (m *CompileMeta) compileOther(ln *ast.OtherLine) error {
	tokens, err := m.takeArgs(ln.Args)
	if err != nil {
		return err
	}
	m.buf.Append(&linebuf.Args{Tokens: tokens})
	return nil
}

func (m *CompileMeta) takeArgs(a ast.Args) ([]token.Var, error) {
	values := m.resolvedArgs(a)
	out := make([]token.Var, 0, len(values))
	for _, v := range values {
		h, err := m.TakeHandle(v)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// --- env-args stack ---

func (m *CompileMeta) pushArgs(vals []ast.Value) {
	m.argsStack = append(m.argsStack, vals)
}

func (m *CompileMeta) popArgs() {
	m.argsStack = m.argsStack[:len(m.argsStack)-1]
}

func (m *CompileMeta) currentArgs() []ast.Value {
	if len(m.argsStack) == 0 {
		return nil
	}
	return m.argsStack[len(m.argsStack)-1]
}

func (m *CompileMeta) resolvedArgs(a ast.Args) []ast.Value {
	if !a.HasSplat {
		return a.Normal
	}
	values := append(append([]ast.Value(nil), a.Prefix...), m.currentArgs()...)
	return append(values, a.Suffix...)
}

// --- builtin.Env implementation ---

var _ builtin.Env = (*CompileMeta)(nil)

func (m *CompileMeta) Arg(i int) (ast.Value, bool) {
	cur := m.currentArgs()
	if i < 0 || i >= len(cur) {
		return nil, false
	}
	return cur[i], true
}

func (m *CompileMeta) ArgsLen() int { return len(m.currentArgs()) }

func (m *CompileMeta) SetArgs(vals []ast.Value) {
	if len(m.argsStack) == 0 {
		m.pushArgs(vals)
		return
	}
	m.argsStack[len(m.argsStack)-1] = vals
}

func (m *CompileMeta) DeclareConst(name token.Var, value ast.Value) {
	m.env.AddConst(name, &constenv.ConstData{Value: value, Labels: ast.CollectLabels(value)})
	m.env.MarkLeak(name)
}

func (m *CompileMeta) BindHandle(owner, name token.Var) (token.Var, bool) {
	return m.bt.Lookup(owner, name)
}

func (m *CompileMeta) EvalNum(v ast.Value) (float64, bool) { return m.EvalConst(v) }

func (m *CompileMeta) StopRepeat() {
	if len(m.repeatGo) > 0 {
		m.repeatGo[len(m.repeatGo)-1] = false
	}
}

func (m *CompileMeta) SetLastExitCode(code int) { m.lastExitCode = code }

func (m *CompileMeta) Diagnostic(p token.Pos, sev diag.Severity, msg string) {
	m.diag.Add(m.goPos(p), sev, msg)
}

func (m *CompileMeta) RequestExit(code int) {
	m.exitRequested = true
	m.exitCode = code
}

func (m *CompileMeta) RepeatLimit() int        { return m.repeatLimit }
func (m *CompileMeta) SetRepeatLimit(n int)    { m.repeatLimit = n }
func (m *CompileMeta) MaxExpandDepth() int     { return m.env.MaxExpandDepth }
func (m *CompileMeta) SetMaxExpandDepth(n int) { m.env.MaxExpandDepth = n }
func (m *CompileMeta) SetNoOp(s string)        { m.noOp = s }
func (m *CompileMeta) SetBindSep(s string)     { m.bindSep = s }
