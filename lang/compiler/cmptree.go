package compiler

import (
	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/linebuf"
	"github.com/mna/mdtc/lang/token"
)

// compileGoto lowers a GotoLine's condition tree and emits the jump(s)
// needed to reach its label exactly when the condition holds (spec §4.4).
func (m *CompileMeta) compileGoto(ln *ast.GotoLine) error {
	target := m.env.GetInConstLabel(ln.Label)
	return m.buildJumpTo(ln.Cond, target)
}

// buildJumpTo emits code that jumps to target precisely when tree
// evaluates true, using algebraic simplification so that a tree built
// purely of conjunctions/disjunctions of atoms compiles to the minimum
// number of jump instructions (spec §4.4's TryInline).
func (m *CompileMeta) buildJumpTo(tree ast.Tree, target token.Var) error {
	switch t := tree.(type) {
	case nil:
		return m.emitJump(target, []token.Var{token.NewVar("always")})

	case *ast.Atom:
		if t.Op == ast.StrictNotEqual {
			// no strictNotEqual jump exists: jump when op strictEqual yields 0
			return m.buildStrictEqualSkip(&ast.Atom{Op: ast.StrictEqual, A: t.A, B: t.B, Pos: t.Pos}, target)
		}
		args, err := m.atomArgs(t)
		if err != nil {
			return err
		}
		return m.emitJump(target, args)

	case *ast.Or:
		if err := m.buildJumpTo(t.L, target); err != nil {
			return err
		}
		return m.buildJumpTo(t.R, target)

	case *ast.And:
		skip := m.freshLabel()
		if err := m.buildSkipIfFalse(t.L, skip); err != nil {
			return err
		}
		if err := m.buildJumpTo(t.R, target); err != nil {
			return err
		}
		m.buf.Append(&linebuf.Label{Name: skip})
		return nil

	case *ast.Deps:
		if err := m.compileBlock(t.Block); err != nil {
			return err
		}
		return m.buildJumpTo(t.Cond, target)

	case *ast.InScope:
		if _, err := m.TakeHandle(t.Handle); err != nil {
			return err
		}
		return m.buildJumpTo(t.Cond, target)

	default:
		return m.fatal(token.NoPos, &unhandledTreeError{What: tree})
	}
}

// buildSkipIfFalse emits code that jumps to skip precisely when tree
// evaluates false — the negated form used to lower the left operand of an
// And (spec §4.4's Reverse). StrictEqual/StrictNotEqual atoms have no
// direct single-token negation, so they are lowered through an
// "op strictEqual" into a temporary followed by an "equal" jump comparing
// that temporary with 0 (StrictEqual) or 1 (StrictNotEqual) instead
// (spec §4.4).
func (m *CompileMeta) buildSkipIfFalse(tree ast.Tree, skip token.Var) error {
	switch t := tree.(type) {
	case nil:
		return nil // "always" never fails, nothing to skip

	case *ast.Atom:
		if neg, ok := t.Op.Negate(); ok {
			args, err := m.atomArgsFor(neg, t.A, t.B)
			if err != nil {
				return err
			}
			return m.emitJump(skip, args)
		}
		return m.buildStrictEqualSkip(t, skip)

	case *ast.Or:
		// not(L or R) == not(L) and not(R): fail only once both sides fail.
		pass := m.freshLabel()
		if err := m.buildJumpTo(t.L, pass); err != nil {
			return err
		}
		if err := m.buildJumpTo(t.R, pass); err != nil {
			return err
		}
		if err := m.emitJump(skip, []token.Var{token.NewVar("always")}); err != nil {
			return err
		}
		m.buf.Append(&linebuf.Label{Name: pass})
		return nil

	case *ast.And:
		// not(L and R) == not(L) or not(R): fail as soon as either side fails.
		if err := m.buildSkipIfFalse(t.L, skip); err != nil {
			return err
		}
		return m.buildSkipIfFalse(t.R, skip)

	case *ast.Deps:
		if err := m.compileBlock(t.Block); err != nil {
			return err
		}
		return m.buildSkipIfFalse(t.Cond, skip)

	case *ast.InScope:
		if _, err := m.TakeHandle(t.Handle); err != nil {
			return err
		}
		return m.buildSkipIfFalse(t.Cond, skip)

	default:
		return m.fatal(token.NoPos, &unhandledTreeError{What: tree})
	}
}

func (m *CompileMeta) buildStrictEqualSkip(a *ast.Atom, skip token.Var) error {
	aHandle, err := m.TakeHandle(a.A)
	if err != nil {
		return err
	}
	bHandle, err := m.TakeHandle(a.B)
	if err != nil {
		return err
	}
	tmp := m.freshName("streq")
	m.buf.Append(&linebuf.Args{Tokens: []token.Var{
		token.NewVar("op"), token.NewVar("strictEqual"), tmp, aHandle, bHandle,
	}})
	want := token.NewVar("0")
	if a.Op == ast.StrictNotEqual {
		want = token.NewVar("1")
	}
	return m.emitJump(skip, []token.Var{token.NewVar("equal"), tmp, want})
}

func (m *CompileMeta) atomArgs(a *ast.Atom) ([]token.Var, error) {
	return m.atomArgsFor(a.Op, a.A, a.B)
}

func (m *CompileMeta) atomArgsFor(op ast.JumpCmp, a, b ast.Value) ([]token.Var, error) {
	if op == ast.Always {
		return []token.Var{token.NewVar("always")}, nil
	}
	if op == ast.Never {
		return nil, nil
	}
	aHandle, err := m.TakeHandle(a)
	if err != nil {
		return nil, err
	}
	bHandle, err := m.TakeHandle(b)
	if err != nil {
		return nil, err
	}
	return []token.Var{token.NewVar(op.String()), aHandle, bHandle}, nil
}

func (m *CompileMeta) emitJump(target token.Var, args []token.Var) error {
	if len(args) == 0 {
		return nil // Never: statically unreachable, emit nothing
	}
	m.buf.Append(&linebuf.Jump{Target: target, Args: args})
	return nil
}

type unhandledTreeError struct{ What ast.Tree }

func (e *unhandledTreeError) Error() string { return "unhandled condition tree node" }
