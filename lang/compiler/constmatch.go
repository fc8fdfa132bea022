package compiler

import (
	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/constenv"
	"github.com/mna/mdtc/lang/token"
)

// compileConstMatch implements the compile-time `const match` statement:
// unlike `match`, filters and guards run now, against already-resolved
// handles, and exactly one case's body is ever compiled — the dispatch
// itself costs nothing at runtime. A case that matches nothing reports an
// advisory "miss" diagnostic rather than aborting.
func (m *CompileMeta) compileConstMatch(ln *ast.ConstMatchLine) error {
	args := m.currentArgs()
	for _, c := range ln.Cases {
		if !patternCountFitsConst(c.Pat.Prefix, c.Pat.HasSplat, c.Pat.Suffix, len(args)) {
			continue
		}
		m.env.PushBlock()
		matched, err := m.bindConstMatchPat(args, c.Pat)
		if err != nil {
			m.env.PopBlock(false)
			return err
		}
		if !matched {
			m.env.PopBlock(false)
			continue
		}
		err = m.compileBlock(c.Body)
		m.env.PopBlock(false)
		return err
	}
	m.advisory(token.NoPos, "const match: no case matched %d argument(s)", len(args))
	return nil
}

func patternCountFitsConst(prefix []ast.ConstMatchAtom, splat bool, suffix []ast.ConstMatchAtom, n int) bool {
	need := len(prefix) + len(suffix)
	if splat {
		return n >= need
	}
	return n == need
}

// bindConstMatchPat checks every literal-set/guard atom in pat against
// args, binding Name atoms as it goes (even for a case that ultimately
// fails — callers discard the pushed scope in that case). It returns false
// as soon as one atom's filter or guard fails.
func (m *CompileMeta) bindConstMatchPat(args []ast.Value, pat ast.ConstMatchPat) (bool, error) {
	check := func(atom ast.ConstMatchAtom, arg ast.Value) (bool, error) {
		handle, err := m.TakeHandle(arg)
		if err != nil {
			return false, err
		}
		if len(atom.Literals) > 0 {
			ok := false
			for _, lit := range atom.Literals {
				if lit == handle {
					ok = true
					break
				}
			}
			if !ok {
				return false, nil
			}
		}
		if atom.Guard != nil {
			m.env.PushBlock()
			m.env.AddConst(token.NewVar("_0"), &constenv.ConstData{Value: &ast.ReprVar{Name: handle}})
			guardHandle, err := m.TakeHandle(atom.Guard)
			m.env.PopBlock(false)
			if err != nil {
				return false, err
			}
			if guardHandle == token.NewVar("0") {
				return false, nil
			}
		}
		if !atom.Name.Empty() {
			if atom.DoTake {
				m.env.AddConst(atom.Name, &constenv.ConstData{Value: &ast.ReprVar{Name: handle}})
			} else {
				m.env.AddConst(atom.Name, &constenv.ConstData{Value: arg, Labels: ast.CollectLabels(arg)})
			}
		}
		return true, nil
	}

	for i, atom := range pat.Prefix {
		ok, err := check(atom, args[i])
		if err != nil || !ok {
			return false, err
		}
	}
	base := len(args) - len(pat.Suffix)
	for i, atom := range pat.Suffix {
		ok, err := check(atom, args[base+i])
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
