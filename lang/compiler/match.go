package compiler

import (
	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/constenv"
	"github.com/mna/mdtc/lang/linebuf"
	"github.com/mna/mdtc/lang/token"
)

// compileMatch implements the runtime `match` statement (spec §4.6): each
// case's literal filters compile to runtime comparisons against the
// current env-args, tried in order; the first case whose argument count
// and filters all pass runs its body. Positions are bound as consts to the
// raw argument Value so its handle is taken (and any side effects run)
// only within the body that actually needs it.
func (m *CompileMeta) compileMatch(ln *ast.MatchLine) error {
	args := m.currentArgs()
	end := m.freshLabel()

	for _, c := range ln.Cases {
		if !patternCountFits(c.Pat.Prefix, c.Pat.HasSplat, c.Pat.Suffix, len(args)) {
			continue
		}
		next := m.freshLabel()
		if err := m.emitMatchFilters(args, c.Pat, next); err != nil {
			return err
		}

		m.env.PushBlock()
		if err := m.bindMatchAtoms(args, c.Pat); err != nil {
			m.env.PopBlock(false)
			return err
		}
		err := m.compileBlock(c.Body)
		m.env.PopBlock(false)
		if err != nil {
			return err
		}
		m.buf.Append(&linebuf.Jump{Target: end, Args: []token.Var{token.NewVar("always")}})
		m.buf.Append(&linebuf.Label{Name: next})
	}
	m.buf.Append(&linebuf.Label{Name: end})
	return nil
}

func patternCountFits(prefix []ast.MatchAtom, splat bool, suffix []ast.MatchAtom, n int) bool {
	need := len(prefix) + len(suffix)
	if splat {
		return n >= need
	}
	return n == need
}

// emitMatchFilters emits the runtime jump(s) to next for every literal-set
// atom in pat, skipping this case unless every filtered position's
// argument equals one of its literals.
func (m *CompileMeta) emitMatchFilters(args []ast.Value, pat ast.MatchPat, next token.Var) error {
	check := func(atom ast.MatchAtom, arg ast.Value) error {
		if len(atom.Literals) == 0 {
			return nil
		}
		var tree ast.Tree
		for _, lit := range atom.Literals {
			atomTree := &ast.Atom{Op: ast.Equal, A: arg, B: &ast.ReprVar{Name: lit}}
			if tree == nil {
				tree = atomTree
			} else {
				tree = &ast.Or{L: tree, R: atomTree}
			}
		}
		return m.buildSkipIfFalse(tree, next)
	}

	for i, atom := range pat.Prefix {
		if err := check(atom, args[i]); err != nil {
			return err
		}
	}
	base := len(args) - len(pat.Suffix)
	for i, atom := range pat.Suffix {
		if err := check(atom, args[base+i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *CompileMeta) bindMatchAtoms(args []ast.Value, pat ast.MatchPat) error {
	bind := func(atom ast.MatchAtom, arg ast.Value) error {
		if atom.Name.Empty() {
			return nil
		}
		m.env.AddConst(atom.Name, &constenv.ConstData{Value: arg, Labels: ast.CollectLabels(arg)})
		if atom.SetRes && len(m.handles) > 0 {
			handle, err := m.TakeHandle(arg)
			if err != nil {
				return err
			}
			m.buf.Append(&linebuf.Args{Tokens: []token.Var{
				token.NewVar("set"), m.handles[len(m.handles)-1], handle,
			}})
		}
		return nil
	}

	for i, atom := range pat.Prefix {
		if err := bind(atom, args[i]); err != nil {
			return err
		}
	}
	base := len(args) - len(pat.Suffix)
	for i, atom := range pat.Suffix {
		if err := bind(atom, args[base+i]); err != nil {
			return err
		}
	}
	return nil
}
