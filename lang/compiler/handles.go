package compiler

import (
	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/builtin"
	"github.com/mna/mdtc/lang/constenv"
	"github.com/mna/mdtc/lang/numfmt"
	"github.com/mna/mdtc/lang/token"
)

// TakeHandle evaluates v to its textual handle, emitting any dependent
// lines as a side effect (spec §4.2). It is the single entry point every
// LogicLine goes through to turn a Value into a token.Var argument.
func (m *CompileMeta) TakeHandle(v ast.Value) (token.Var, error) {
	switch v := v.(type) {
	case *ast.ReprVar:
		return v.Name, nil

	case *ast.Var:
		return m.takeVar(v)

	case *ast.DExp:
		return m.takeDExp(v)

	case *ast.ResultHandle:
		if len(m.handles) == 0 {
			return token.Anonymous, m.fatal(v.Pos, &OutOfDExpError{Pos: v.Pos, What: "$"})
		}
		return m.handles[len(m.handles)-1], nil

	case *ast.Binder:
		return m.env.CurrentBinder(), nil

	case *ast.ValueBind:
		return m.takeValueBind(v)

	case *ast.ValueBindRef:
		return m.takeValueBindRef(v)

	case *ast.Cmper:
		return token.Anonymous, m.fatal(v.Pos, &CmperTakenError{Pos: v.Pos})

	case *ast.BuiltinFunc:
		entry, ok := builtin.Lookup(v.Name)
		if !ok {
			m.advisory(v.Pos, "unknown builtin %q", v.Name)
			return token.Anonymous, nil
		}
		return entry.Call(m, v.Pos), nil

	case *ast.ClosuredValue:
		return m.takeClosure(v)

	default:
		return token.Anonymous, m.fatal(token.NoPos, &unhandledValueError{What: v})
	}
}

func (m *CompileMeta) takeVar(v *ast.Var) (token.Var, error) {
	data, ok := m.env.GetConst(v.Name)
	if !ok {
		// Not bound: a literal identifier or number, passed through verbatim.
		return v.Name, nil
	}
	if err := m.env.EnterConstExpand(v.Name, data); err != nil {
		return token.Anonymous, m.fatal(v.Pos, err)
	}
	defer m.env.ExitConstExpand()
	return m.TakeHandle(data.Value)
}

// resolveDExpResult turns a DExp's declared Result value into a concrete
// name: Result must itself bottom out at a Var, ReprVar, or the enclosing
// DExp's own ResultHandle — anything else is fatal (spec §4.2,
// unresolved_const_dexp_result).
func (m *CompileMeta) resolveDExpResult(v ast.Value, pos token.Pos) (token.Var, error) {
	switch v := v.(type) {
	case *ast.Var:
		if data, ok := m.env.GetConst(v.Name); ok {
			if err := m.env.EnterConstExpand(v.Name, data); err != nil {
				return token.Anonymous, m.fatal(pos, err)
			}
			defer m.env.ExitConstExpand()
			return m.resolveDExpResult(data.Value, pos)
		}
		return v.Name, nil
	case *ast.ReprVar:
		return v.Name, nil
	case *ast.ResultHandle:
		if len(m.handles) == 0 {
			return token.Anonymous, m.fatal(pos, &OutOfDExpError{Pos: pos, What: "$"})
		}
		return m.handles[len(m.handles)-1], nil
	default:
		return token.Anonymous, m.fatal(pos, &UnresolvedConstDExpResultError{Pos: pos})
	}
}

func (m *CompileMeta) takeDExp(v *ast.DExp) (token.Var, error) {
	if f, ok := m.tryFold(v); ok {
		return token.NewVar(numfmt.FormatFloat(f)), nil
	}

	var handle token.Var
	var err error
	if v.Result == nil {
		handle = m.freshName("tmp")
	} else {
		handle, err = m.resolveDExpResult(v.Result, v.Pos)
		if err != nil {
			return token.Anonymous, err
		}
	}

	m.handles = append(m.handles, handle)
	err = m.compileBlock(v.Body)
	m.handles = m.handles[:len(m.handles)-1]
	if err != nil {
		return token.Anonymous, err
	}
	return handle, nil
}

func (m *CompileMeta) takeValueBind(v *ast.ValueBind) (token.Var, error) {
	owner, err := m.TakeHandle(v.Base)
	if err != nil {
		return token.Anonymous, err
	}
	if h, ok := m.bt.Lookup(owner, v.Name); ok {
		return h, nil
	}
	// Propagate a global default binding registered under the sentinel
	// owner, if one exists for this attribute name (spec §4.2).
	if owner != constenv.GlobalOwner {
		if h, ok := m.bt.Lookup(constenv.GlobalOwner, v.Name); ok {
			m.bt.Set(owner, v.Name, h)
			return h, nil
		}
	}
	handle := m.freshName("bind")
	m.bt.Set(owner, v.Name, handle)
	return handle, nil
}

func (m *CompileMeta) takeValueBindRef(v *ast.ValueBindRef) (token.Var, error) {
	switch v.TargetKind {
	case ast.TargetNameBind:
		return m.TakeHandle(&ast.ValueBind{Base: v.Base, Name: v.TargetName, Pos: v.Pos})
	case ast.TargetBinder:
		if _, err := m.TakeHandle(v.Base); err != nil {
			return token.Anonymous, err
		}
		return m.env.CurrentBinder(), nil
	case ast.TargetResultHandle:
		return m.TakeHandle(v.Base)
	case ast.TargetOp:
		f, ok := m.EvalConst(v.Base)
		if !ok {
			return token.Anonymous, m.fatal(v.Pos, &UnresolvedConstDExpResultError{Pos: v.Pos})
		}
		return token.NewVar(numfmt.FormatFloat(f)), nil
	default:
		return token.Anonymous, m.fatal(v.Pos, &UnresolvedConstDExpResultError{Pos: v.Pos})
	}
}

type unhandledValueError struct{ What ast.Value }

func (e *unhandledValueError) Error() string { return "unhandled value kind: " + e.What.Kind() }
