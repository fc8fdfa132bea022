// Package lint runs a post-compile advisory pass over a resolved program,
// the way the original toolchain's own logic_lint crate inspects the
// rendered instruction stream rather than the source AST: by the time code
// reaches here every const has been substituted and every handle taken, so
// naming mistakes that only show up in the final token stream (a stray
// "__" handle, an unreplaced `_0` argument, a result that looks like it
// should have been a declared constant) are still catchable even though
// they're no longer tied to a source line.
package lint

import (
	"fmt"
	"regexp"

	"github.com/mna/mdtc/lang/tagcode"
	"github.com/mna/mdtc/lang/token"
)

// Finding is one advisory lint result, anchored to the resolved
// instruction's index (post label-resolution, so it no longer corresponds
// to a source line).
type Finding struct {
	Index int
	Msg   string
}

func (f Finding) String() string { return fmt.Sprintf("instruction %d: %s", f.Index, f.Msg) }

// opMethods mirrors the original logic_lint crate's OP_METHODS table: the
// operator names a rendered `op` instruction's second token may legally be.
var opMethods = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true, "idiv": true, "mod": true,
	"pow": true, "equal": true, "notEqual": true, "land": true, "lessThan": true,
	"lessThanEq": true, "greaterThan": true, "greaterThanEq": true, "strictEqual": true,
	"shl": true, "shr": true, "or": true, "and": true, "xor": true, "not": true,
	"max": true, "min": true, "angle": true, "angleDiff": true, "len": true,
	"noise": true, "abs": true, "log": true, "log10": true, "floor": true,
	"ceil": true, "sqrt": true, "rand": true, "sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true,
}

// jumpMethods mirrors JUMP_METHODS: the comparison names a rendered jump's
// condition token may legally be.
var jumpMethods = map[string]bool{
	"equal": true, "notEqual": true, "lessThan": true, "lessThanEq": true,
	"greaterThan": true, "greaterThanEq": true, "strictEqual": true, "always": true,
}

// assignPositions records, for commands the original lint table recognizes
// as taking a written-to result operand, that operand's token index
// (including the command name itself at index 0).
var assignPositions = map[string]int{
	"set": 1, "getlink": 1, "sensor": 1, "op": 2, "lookup": 2, "fetch": 2,
	"getflag": 1, "weathersense": 1, "packcolor": 1, "getblock": 2,
}

var rawArgsPattern = regexp.MustCompile(`^_\d+$`)

// Check runs every lint over prog and returns the advisory findings, in
// instruction order. It never fails the compile (spec's advisory
// diagnostics never abort traversal) — callers decide whether to surface,
// ignore, or escalate them.
func Check(prog *tagcode.Program) []Finding {
	var out []Finding
	targets := make(map[int]bool)
	for _, instr := range prog.Instrs {
		if j, ok := instr.(*tagcode.JumpInstr); ok {
			targets[j.Target] = true
		}
	}

	live := true
	for i, instr := range prog.Instrs {
		if !live && !targets[i] {
			out = append(out, Finding{i, "unreachable: no preceding fall-through or jump reaches this instruction"})
		}
		switch instr := instr.(type) {
		case *tagcode.JumpInstr:
			if instr.Target == i {
				out = append(out, Finding{i, "jump targets its own instruction"})
			}
			if len(instr.Args) > 0 && !jumpMethods[instr.Args[0].String()] {
				out = append(out, Finding{i, fmt.Sprintf("unknown jump condition %q", instr.Args[0])})
			}
			live = !isBareAlways(instr.Args)
		case *tagcode.ArgsInstr:
			out = append(out, checkArgsInstr(i, instr)...)
			live = true
		}
	}
	return out
}

func isBareAlways(args []token.Var) bool {
	return len(args) == 1 && args[0].String() == "always"
}

func checkArgsInstr(idx int, instr *tagcode.ArgsInstr) []Finding {
	if len(instr.Tokens) == 0 {
		return nil
	}
	var out []Finding
	cmd := instr.Tokens[0].String()
	if cmd == "op" && len(instr.Tokens) > 1 && !opMethods[instr.Tokens[1].String()] {
		out = append(out, Finding{idx, fmt.Sprintf("unknown op kind %q", instr.Tokens[1])})
	}
	if pos, ok := assignPositions[cmd]; ok && pos < len(instr.Tokens) {
		out = append(out, checkAssignVar(idx, instr.Tokens[pos])...)
	}
	for _, tok := range instr.Tokens[1:] {
		out = append(out, checkVarNaming(idx, tok)...)
	}
	return out
}

// checkAssignVar mirrors check_assign_var: a result operand that is a bare
// number literal is almost certainly a mistake (nothing can ever read it
// back under that name), so it gets its own, stronger finding in addition
// to the ordinary naming checks.
func checkAssignVar(idx int, v token.Var) []Finding {
	if isNumericLiteral(v.String()) {
		return []Finding{{idx, fmt.Sprintf("assigning to literal %q has no effect", v)}}
	}
	return checkVarNaming(idx, v)
}

// checkVarNaming mirrors check_var: naming patterns that usually indicate a
// const substitution didn't happen the way the author expected.
func checkVarNaming(idx int, v token.Var) []Finding {
	s := v.String()
	switch {
	case s == "__":
		return []Finding{{idx, "uses the anonymous handle placeholder \"__\" directly"}}
	case rawArgsPattern.MatchString(s):
		return []Finding{{idx, fmt.Sprintf("uses raw env-args handle %q directly", s)}}
	case len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z':
		return []Finding{{idx, fmt.Sprintf("%q looks like an unreplaced constant name", s)}}
	default:
		return nil
	}
}

func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' {
		i++
	}
	if i == len(s) {
		return false
	}
	seenDigit := false
	for ; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			seenDigit = true
			continue
		}
		if s[i] == '.' {
			continue
		}
		return false
	}
	return seenDigit
}
