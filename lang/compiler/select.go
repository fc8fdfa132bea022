package compiler

import (
	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/linebuf"
	"github.com/mna/mdtc/lang/token"
)

// compileSelect implements `select value { case0 case1 ... }` (spec §4.5):
// value picks which of Cases runs, via a computed jump into a goto table
// (one uniform-size jump-table entry per case, bodies placed after the
// table so their size never affects the table's own width).
func (m *CompileMeta) compileSelect(ln *ast.SelectLine) error {
	idx, err := m.TakeHandle(ln.Value)
	if err != nil {
		return err
	}

	end := m.freshLabel()
	caseLabels := make([]token.Var, len(ln.Cases))
	for i := range ln.Cases {
		caseLabels[i] = m.freshLabel()
	}

	m.buf.Append(&linebuf.Args{Tokens: []token.Var{
		token.NewVar("op"), token.NewVar("add"), token.NewVar("@counter"), token.NewVar("@counter"), idx,
	}})
	for _, lbl := range caseLabels {
		m.buf.Append(&linebuf.Jump{Target: lbl, Args: []token.Var{token.NewVar("always")}})
	}

	for i, lbl := range caseLabels {
		m.buf.Append(&linebuf.Label{Name: lbl})
		if err := m.compileLine(ln.Cases[i]); err != nil {
			return err
		}
		m.buf.Append(&linebuf.Jump{Target: end, Args: []token.Var{token.NewVar("always")}})
	}
	m.buf.Append(&linebuf.Label{Name: end})
	return nil
}
