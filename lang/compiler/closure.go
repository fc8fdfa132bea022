package compiler

import (
	"fmt"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/constenv"
	"github.com/mna/mdtc/lang/token"
)

// closureCaptureKey names the global-scope slot a closure's capture of name
// is stored under once its binder handle is known, so every subsequent
// expansion can look the same snapshot back up without re-walking the
// const-env stack that was active at first capture.
func closureCaptureKey(binder, name token.Var) token.Var {
	return token.NewVar(fmt.Sprintf("__closure_%s_%s", binder, name))
}

// takeClosure implements ClosuredValue evaluation (spec §4.6): the first
// TakeHandle snapshots every captured name (by value for Capture.ByTake, by
// reference otherwise) and the env-args if CaptureArgs is set, under a
// freshly allocated binder handle; every call after that — including this
// first one — replays Underlying against that same snapshot, so two
// expansions of the same closure observe the same captured values and the
// same binder (spec invariant: idempotent first capture).
func (m *CompileMeta) takeClosure(c *ast.ClosuredValue) (token.Var, error) {
	if !c.Inited() {
		binder := m.freshName("closure")
		for _, cap := range c.Captures {
			data, ok := m.env.GetConst(cap.Name)
			if !ok {
				continue
			}
			stored := data
			if cap.ByTake {
				handle, err := m.TakeHandle(data.Value)
				if err != nil {
					return token.Anonymous, err
				}
				stored = &constenv.ConstData{Value: &ast.ReprVar{Name: handle}}
			}
			m.env.AddGlobalConst(closureCaptureKey(binder, cap.Name), stored)
		}
		if c.CaptureArgs {
			for i, v := range m.currentArgs() {
				key := closureCaptureKey(binder, token.NewVar(fmt.Sprintf("_%d", i)))
				m.env.AddGlobalConst(key, &constenv.ConstData{Value: v, Labels: ast.CollectLabels(v)})
			}
		}
		c.MarkInited(binder)
	}
	binder := c.CapturedBinder()

	m.env.PushBlock()
	for _, cap := range c.Captures {
		if data, ok := m.env.GetConst(closureCaptureKey(binder, cap.Name)); ok {
			m.env.AddConst(cap.Name, data)
		}
	}
	if c.CaptureArgs {
		var args []ast.Value
		for i := 0; ; i++ {
			data, ok := m.env.GetConst(closureCaptureKey(binder, token.NewVar(fmt.Sprintf("_%d", i))))
			if !ok {
				break
			}
			args = append(args, data.Value)
		}
		m.pushArgs(args)
	}

	expandBinder := binder
	if !c.BinderRebind.Empty() {
		expandBinder = c.BinderRebind
	}
	wrapped := &constenv.ConstData{Value: c.Underlying, Labels: c.Labels, Binder: expandBinder}
	if err := m.env.EnterConstExpand(token.NewVar("closure"), wrapped); err != nil {
		if c.CaptureArgs {
			m.popArgs()
		}
		m.env.PopBlock(false)
		return token.Anonymous, err
	}
	handle, err := m.TakeHandle(c.Underlying)
	m.env.ExitConstExpand()
	if c.CaptureArgs {
		m.popArgs()
	}
	m.env.PopBlock(false)
	return handle, err
}
