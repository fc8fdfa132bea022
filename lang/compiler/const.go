package compiler

import (
	"fmt"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/constenv"
	"github.com/mna/mdtc/lang/linebuf"
	"github.com/mna/mdtc/lang/token"
)

// compileConst implements `const key = value` (spec §3, §4.7): a plain-name
// key is inserted into the innermost scope; a value-bind key resolves its
// base immediately and inserts into the global scope under the allocated
// (base, name) handle instead.
func (m *CompileMeta) compileConst(ln *ast.ConstLine) error {
	data := &constenv.ConstData{
		Value:  ln.Value,
		Labels: ast.CollectLabels(ln.Value),
		Binder: m.env.CurrentBinder(),
	}
	if !ln.Key.IsBind() {
		m.env.AddConst(ln.Key.Name, data)
		return nil
	}
	handle, err := m.TakeHandle(ln.Key.Bind)
	if err != nil {
		return err
	}
	m.env.AddGlobalConst(handle, data)
	return nil
}

// compileTake implements `take key = value` (spec §4.7): value is evaluated
// now (as opposed to const's lazy re-expansion on every reference), and the
// resulting handle is bound as an already-resolved ReprVar so future
// lookups of key skip straight to it.
func (m *CompileMeta) compileTake(ln *ast.TakeLine) error {
	if _, isPure := ln.Value.(*ast.Var); isPure {
		m.advisory(ln.Pos, "take of a bare name has no effect beyond a const alias")
	} else if _, isPure := ln.Value.(*ast.ReprVar); isPure {
		m.advisory(ln.Pos, "take of a literal has no effect beyond a const alias")
	}

	handle, err := m.TakeHandle(ln.Value)
	if err != nil {
		return err
	}
	resolved := &ast.ReprVar{Name: handle, Pos: ln.Pos}
	data := &constenv.ConstData{Value: resolved, Binder: m.env.CurrentBinder()}

	if !ln.Key.IsBind() {
		m.env.AddConst(ln.Key.Name, data)
		return nil
	}
	bindHandle, err := m.TakeHandle(ln.Key.Bind)
	if err != nil {
		return err
	}
	m.env.AddGlobalConst(bindHandle, data)
	return nil
}

// compileSetResultHandle implements `setres value` (spec §3): assigns the
// innermost enclosing DExp's result handle. Used with no enclosing DExp is
// fatal (spec §7 out_of_dexp).
func (m *CompileMeta) compileSetResultHandle(ln *ast.SetResultHandleLine) error {
	if len(m.handles) == 0 {
		return m.fatal(ln.Pos, &OutOfDExpError{Pos: ln.Pos, What: "setres"})
	}
	result := m.handles[len(m.handles)-1]
	valueHandle, err := m.TakeHandle(ln.Value)
	if err != nil {
		return err
	}
	if valueHandle == result {
		if ln.EffectExpected {
			m.advisory(ln.Pos, "setres value already equals the result handle")
		}
		return nil
	}
	m.buf.Append(&linebuf.Args{Tokens: []token.Var{token.NewVar("set"), result, valueHandle}})
	return nil
}

// compileSetArgsLine implements the `_0.._n-1` materialization and env-args
// frame replacement backing args-repeat bodies and builtin argument access
// (spec §4.7).
func (m *CompileMeta) compileSetArgsLine(ln *ast.SetArgsLine) error {
	values := m.resolvedArgs(ln.Args)
	for i, v := range values {
		m.env.AddConst(token.NewVar(fmt.Sprintf("_%d", i)), &constenv.ConstData{
			Value:  v,
			Labels: ast.CollectLabels(v),
			Binder: m.env.CurrentBinder(),
		})
	}
	m.SetArgs(values)
	return nil
}
