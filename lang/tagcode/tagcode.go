// Package tagcode resolves the symbolic labels and jumps a compile leaves
// in a linebuf.Buffer into the numeric-indexed, textual Mindustry Logic
// program the compiler ultimately emits (spec §4.1).
package tagcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/mdtc/lang/linebuf"
	"github.com/mna/mdtc/lang/token"
)

// DupLabelError reports a label declared more than once.
type DupLabelError struct {
	Name  token.Var
	Index int // the second (offending) occurrence's instruction index
}

func (e *DupLabelError) Error() string {
	return fmt.Sprintf("duplicate label %q at instruction %d", e.Name, e.Index)
}

// UnresolvedJumpError reports a jump whose target label was never declared.
type UnresolvedJumpError struct {
	Label token.Var
}

func (e *UnresolvedJumpError) Error() string {
	return fmt.Sprintf("unresolved jump target %q", e.Label)
}

// Instr is one instruction of a resolved Program: either a jump to a
// numeric index, or a free-form argument row.
type Instr interface {
	instrNode()
}

type instrEmbed struct{}

func (instrEmbed) instrNode() {}

// JumpInstr is a resolved jump: Target is a numeric instruction index; Args
// holds the condition tokens ("always", or "equal x y", etc.).
type JumpInstr struct {
	instrEmbed
	Target int
	Args   []token.Var
}

// ArgsInstr is a free-form instruction row, emitted as its space-joined
// tokens.
type ArgsInstr struct {
	instrEmbed
	Tokens []token.Var
}

// Program is the fully tag-resolved instruction sequence: one Instr per
// final instruction, in emission order. Index i is the numeric jump target
// any resolved JumpInstr.Target of i refers to.
type Program struct {
	Instrs []Instr
}

// noTarget is the "uninitialized" sentinel for a label's tags_table slot.
const noTarget = -1

// Resolve converts buf into a Program: it collects every label's target
// instruction index (failing on a duplicate), drops the Label rows,
// rewrites each Jump to a numeric target, and follows always-jump chains
// (spec §4.1, steps 1-4).
func Resolve(buf *linebuf.Buffer) (*Program, error) {
	lines := buf.Lines()

	tags := make(map[token.Var]int)
	instrIdx := 0
	for i, ln := range lines {
		if lbl, ok := ln.(*linebuf.Label); ok {
			if _, dup := tags[lbl.Name]; dup {
				return nil, &DupLabelError{Name: lbl.Name, Index: i}
			}
			tags[lbl.Name] = instrIdx
			continue
		}
		instrIdx++
	}

	instrs := make([]Instr, 0, instrIdx)
	for _, ln := range lines {
		switch ln := ln.(type) {
		case *linebuf.Label:
			continue
		case *linebuf.Jump:
			idx, ok := tags[ln.Target]
			if !ok {
				return nil, &UnresolvedJumpError{Label: ln.Target}
			}
			instrs = append(instrs, &JumpInstr{Target: idx, Args: ln.Args})
		case *linebuf.Args:
			instrs = append(instrs, &ArgsInstr{Tokens: ln.Tokens})
		}
	}

	prog := &Program{Instrs: instrs}
	followAlwaysJumpChains(prog)
	return prog, nil
}

// isAlwaysJump reports whether a jump's condition tokens are the literal
// "always", or one of {equal, strictEqual, lessThanEq, greaterThanEq}
// applied to two textually identical operands (spec §4.1 point 4, §6
// "Always-jump recognition").
func isAlwaysJump(args []token.Var) bool {
	if len(args) == 1 && args[0] == token.NewVar("always") {
		return true
	}
	if len(args) == 3 {
		switch args[0].String() {
		case "equal", "strictEqual", "lessThanEq", "greaterThanEq":
			return args[1] == args[2]
		}
	}
	return false
}

// followAlwaysJumpChains retargets every jump whose target instruction is
// itself an unconditional always-jump, transitively, to the chain's final
// destination. A cycle (detected via a per-start visited set) is left
// intact rather than rewritten (spec §4.1 point 4).
func followAlwaysJumpChains(prog *Program) {
	for _, instr := range prog.Instrs {
		j, ok := instr.(*JumpInstr)
		if !ok {
			continue
		}
		visited := map[int]bool{j.Target: true}
		target := j.Target
		cyclic := false
		for {
			if target < 0 || target >= len(prog.Instrs) {
				break
			}
			next, ok := prog.Instrs[target].(*JumpInstr)
			if !ok || !isAlwaysJump(next.Args) || next.Target == target {
				break
			}
			if visited[next.Target] {
				cyclic = true
				break
			}
			visited[next.Target] = true
			target = next.Target
		}
		if !cyclic {
			j.Target = target
		}
	}
}

// Render produces the final textual MDT for prog: each JumpInstr becomes
// "jump <idx> <cond…>", each ArgsInstr becomes its space-joined tokens
// (spec §4.1 point 5).
func Render(prog *Program) string {
	var sb strings.Builder
	for _, instr := range prog.Instrs {
		switch instr := instr.(type) {
		case *JumpInstr:
			sb.WriteString("jump ")
			sb.WriteString(strconv.Itoa(instr.Target))
			for _, a := range instr.Args {
				sb.WriteByte(' ')
				sb.WriteString(a.String())
			}
		case *ArgsInstr:
			for i, t := range instr.Tokens {
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t.String())
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// RenderLabelName formats a label's textual name for a pre-resolution
// dump, disambiguating a numeric-looking name with a leading colon
// (spec §6: "Numeric-named labels must be textually emitted with a leading
// colon").
func RenderLabelName(name token.Var) string {
	s := name.String()
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ":" + s
	}
	return s
}
