package compiler

import (
	"math"

	"github.com/mna/mdtc/lang/ast"
)

// repeatHardCap is the largest explicit count an args-repeat accepts; a
// larger count is a fatal RepeatCountError (spec §7 repeat_count).
const repeatHardCap = 512

// compileArgsRepeat implements `inline N@ { body }` / `inline *val@ { body }`
// (spec §4.6): body runs once per iteration in its own const scope, with
// `_i@`-splat args resolving against whatever env-args frame is active when
// each iteration runs. A nil Count repeats until Builtin.StopRepeat is
// called, bounded by RepeatLimit.
func (m *CompileMeta) compileArgsRepeat(ln *ast.ArgsRepeatLine) error {
	if ln.Count == nil {
		return m.runBoundedRepeat(ln, m.repeatLimit)
	}

	count, ok := m.EvalConst(ln.Count)
	if !ok || count < 0 || math.IsNaN(count) || math.IsInf(count, 0) || count != math.Trunc(count) || count > repeatHardCap {
		return m.fatal(ln.Pos, &RepeatCountError{Pos: ln.Pos, Count: count})
	}
	return m.runBoundedRepeat(ln, int(count))
}

func (m *CompileMeta) runBoundedRepeat(ln *ast.ArgsRepeatLine, n int) error {
	m.repeatGo = append(m.repeatGo, true)
	defer func() { m.repeatGo = m.repeatGo[:len(m.repeatGo)-1] }()

	for i := 0; i < n; i++ {
		m.env.PushBlock()
		err := m.compileBlock(ln.Body)
		m.env.PopBlock(false)
		if err != nil {
			return err
		}
		if !m.repeatGo[len(m.repeatGo)-1] {
			break
		}
		if m.exitRequested {
			break
		}
	}
	return nil
}
