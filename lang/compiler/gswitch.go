package compiler

import (
	"fmt"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/constenv"
	"github.com/mna/mdtc/lang/linebuf"
	"github.com/mna/mdtc/lang/token"
)

// compileGSwitch implements `gswitch value { case ids: body ... catches }`
// (spec §4.5): a dense computed-jump table spanning the full
// [min(ids), max(ids)] range, with underflow/miss/overflow catches for
// values outside the table or inside a hole no case claims.
func (m *CompileMeta) compileGSwitch(ln *ast.GSwitchLine) error {
	idx, err := m.TakeHandle(ln.Value)
	if err != nil {
		return err
	}

	var minID, maxID int64
	haveRange := false
	idOwner := map[int64]int{} // id -> case index
	for ci, c := range ln.Cases {
		for _, id := range c.IDs {
			idOwner[id] = ci
			if !haveRange || id < minID {
				minID = id
			}
			if !haveRange || id > maxID {
				maxID = id
			}
			haveRange = true
		}
	}

	end := m.freshLabel()
	underflow := m.catchLabel(ln.Catches, ast.CatchUnderflow)
	overflow := m.catchLabel(ln.Catches, ast.CatchOverflow)
	missLabel := m.catchLabel(ln.Catches, ast.CatchMiss)
	fallback := firstNonEmpty(missLabel, end)

	if !haveRange {
		// No case claims any id at all: every value is a miss.
		if lbl, ok := m.gswitchCatchLabels[ast.CatchMiss]; ok {
			m.buf.Append(&linebuf.Label{Name: lbl})
		}
		err := m.compileGSwitchCatches(ln, idx, end)
		m.buf.Append(&linebuf.Label{Name: end})
		return err
	}

	if underflow.Empty() {
		underflow = fallback
	}
	if overflow.Empty() {
		overflow = fallback
	}
	if missLabel.Empty() {
		missLabel = end
	}

	idxVal := &ast.ReprVar{Name: idx}
	minVal := &ast.ReprVar{Name: token.NewVar(fmt.Sprintf("%d", minID))}
	maxVal := &ast.ReprVar{Name: token.NewVar(fmt.Sprintf("%d", maxID))}

	if err := m.buildJumpTo(&ast.Atom{Op: ast.Lt, A: idxVal, B: minVal}, underflow); err != nil {
		return err
	}
	if err := m.buildJumpTo(&ast.Atom{Op: ast.Gt, A: idxVal, B: maxVal}, overflow); err != nil {
		return err
	}

	width := int(maxID-minID) + 1
	slotLabels := make([]token.Var, width)
	caseLabels := make(map[int]token.Var, len(ln.Cases))
	for i := 0; i < width; i++ {
		id := minID + int64(i)
		if ci, ok := idOwner[id]; ok {
			lbl, ok := caseLabels[ci]
			if !ok {
				lbl = m.freshLabel()
				caseLabels[ci] = lbl
			}
			slotLabels[i] = lbl
		} else {
			slotLabels[i] = missLabel
		}
	}

	normalized := idx
	if minID != 0 {
		tmp := m.freshName("gsw")
		m.buf.Append(&linebuf.Args{Tokens: []token.Var{
			token.NewVar("op"), token.NewVar("sub"), tmp, idx, token.NewVar(fmt.Sprintf("%d", minID)),
		}})
		normalized = tmp
	}
	m.buf.Append(&linebuf.Args{Tokens: []token.Var{
		token.NewVar("op"), token.NewVar("add"), token.NewVar("@counter"), token.NewVar("@counter"), normalized,
	}})
	for _, lbl := range slotLabels {
		m.buf.Append(&linebuf.Jump{Target: lbl, Args: []token.Var{token.NewVar("always")}})
	}

	for ci, c := range ln.Cases {
		lbl, ok := caseLabels[ci]
		if !ok {
			continue // case declared ids but none survived (can't happen: idOwner only set from c.IDs)
		}
		m.buf.Append(&linebuf.Label{Name: lbl})
		if err := m.runBoundWithExtra(c.Bind, idx, c.Body, ln.Extra); err != nil {
			return err
		}
		m.buf.Append(&linebuf.Jump{Target: end, Args: []token.Var{token.NewVar("always")}})
	}

	if err := m.compileGSwitchCatches(ln, idx, end); err != nil {
		return err
	}
	m.buf.Append(&linebuf.Label{Name: end})
	return nil
}

// catchLabel lazily allocates (and caches, per compileGSwitch call via
// m.gswitchCatchLabels) a label for the first catch of the given kind, or
// returns the empty Var if no such catch is declared.
func (m *CompileMeta) catchLabel(catches []ast.GSwitchCatch, kind ast.GSwitchCatchKind) token.Var {
	if lbl, ok := m.gswitchCatchLabels[kind]; ok {
		return lbl
	}
	for _, c := range catches {
		if c.Kind == kind {
			if m.gswitchCatchLabels == nil {
				m.gswitchCatchLabels = map[ast.GSwitchCatchKind]token.Var{}
			}
			lbl := m.freshLabel()
			m.gswitchCatchLabels[kind] = lbl
			return lbl
		}
	}
	return token.Var("")
}

func (m *CompileMeta) compileGSwitchCatches(ln *ast.GSwitchLine, idx token.Var, end token.Var) error {
	for _, c := range ln.Catches {
		lbl, ok := m.gswitchCatchLabels[c.Kind]
		if !ok {
			continue
		}
		m.buf.Append(&linebuf.Label{Name: lbl})
		if err := m.runBoundWithExtra(c.Bind, idx, c.Body, ln.Extra); err != nil {
			return err
		}
		m.buf.Append(&linebuf.Jump{Target: end, Args: []token.Var{token.NewVar("always")}})
	}
	m.gswitchCatchLabels = nil
	return nil
}

// runBoundWithExtra compiles body (and the shared Extra epilogue) in a
// fresh scope, optionally binding bind to the raw dispatched value first.
func (m *CompileMeta) runBoundWithExtra(bind token.Var, idx token.Var, body, extra ast.Block) error {
	m.env.PushBlock()
	if !bind.Empty() {
		m.env.AddConst(bind, &constenv.ConstData{Value: &ast.ReprVar{Name: idx}})
	}
	err := m.compileBlock(body)
	if err == nil {
		err = m.compileBlock(extra)
	}
	m.env.PopBlock(false)
	return err
}

func firstNonEmpty(a, b token.Var) token.Var {
	if !a.Empty() {
		return a
	}
	return b
}
