// Package builtin implements the fixed table of named "host" functions
// invoked through the value system (spec §4.8). Each entry validates its
// argument count and, where the contract needs a particular AST shape
// (e.g. Unbind needs a ValueBind), the Kind of its raw argument before
// doing any work — mirroring how this language's own builtin table
// checks a value's kind before its arity (the `check_type!` pattern in
// the original implementation's builtin table).
//
// Builtins never import lang/compiler: they operate through the small Env
// interface below, implemented by *compiler.CompileMeta, so the dependency
// runs compiler → builtin, never the reverse.
package builtin

import (
	"fmt"
	"strings"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/diag"
	"github.com/mna/mdtc/lang/numfmt"
	"github.com/mna/mdtc/lang/token"
)

// Env is the slice of compiler state a builtin needs, kept minimal so this
// package never depends on lang/compiler.
type Env interface {
	// Arg returns the i'th current env-arg's bound raw value ("_i"), and
	// whether that many args exist.
	Arg(i int) (ast.Value, bool)
	// ArgsLen returns the number of current env-args.
	ArgsLen() int
	// TakeHandle evaluates v to its textual handle, emitting any dependent
	// lines as a side effect (spec §4.2).
	TakeHandle(v ast.Value) (token.Var, error)
	// SetArgs replaces the current env-args frame.
	SetArgs(vals []ast.Value)
	// DeclareConst performs the dynamic `const name = value` that leaks
	// into the enclosing scope (the `Const` builtin, spec §4.8).
	DeclareConst(name token.Var, value ast.Value)
	// BindHandle returns the cached value-bind handle for (owner, name).
	BindHandle(owner, name token.Var) (token.Var, bool)
	// EvalNum const-evaluates v to a float, reporting success.
	EvalNum(v ast.Value) (float64, bool)
	// StopRepeat clears the innermost args-repeat continue flag.
	StopRepeat()
	// SetLastExitCode records a builtin's last exit/status code.
	SetLastExitCode(code int)
	// Diagnostic records a diagnostic at pos.
	Diagnostic(pos token.Pos, sev diag.Severity, msg string)
	// RequestExit records that Builtin.Exit(code) was invoked; the caller
	// decides (per the host's emulate/abort mode, spec §5) whether this
	// actually aborts the process.
	RequestExit(code int)

	RepeatLimit() int
	SetRepeatLimit(n int)
	MaxExpandDepth() int
	SetMaxExpandDepth(n int)
	SetNoOp(s string)
	SetBindSep(s string)
}

// Func is one builtin's implementation. raw holds the current env-args'
// values (len(raw) == env.ArgsLen()); most builtins only look at a prefix
// of it per their fixed arity.
type Func func(env Env, raw []ast.Value, pos token.Pos) token.Var

// Entry describes one builtin table slot.
type Entry struct {
	Name token.Var
	// Argc is the exact expected argument count, or -1 for variadic.
	Argc int
	// WantKind optionally constrains the Kind() of each positional
	// argument (by index); a missing or empty entry means "any kind".
	WantKind map[int]string
	Fn       Func
}

// Table is the fixed builtin dispatch table, keyed by name.
var Table = map[token.Var]*Entry{}

func register(name string, argc int, wantKind map[int]string, fn Func) {
	n := token.NewVar(name)
	Table[n] = &Entry{Name: n, Argc: argc, WantKind: wantKind, Fn: fn}
}

// Lookup returns the builtin table entry for name, if any.
func Lookup(name token.Var) (*Entry, bool) {
	e, ok := Table[name]
	return e, ok
}

// Call validates argc/kind against the current env-args and, on success,
// invokes the entry's Fn. Argument-count and kind mismatches are non-fatal
// (spec §7 "builtin_arg"): they set the last exit code to 2 and return the
// anonymous placeholder rather than a Go error.
func (e *Entry) Call(env Env, pos token.Pos) token.Var {
	n := env.ArgsLen()
	if e.Argc >= 0 && n != e.Argc {
		env.SetLastExitCode(2)
		env.Diagnostic(pos, diag.Advisory, fmt.Sprintf("%s: expected %d argument(s), got %d", e.Name, e.Argc, n))
		return token.Anonymous
	}
	raw := make([]ast.Value, n)
	for i := 0; i < n; i++ {
		v, _ := env.Arg(i)
		raw[i] = v
	}
	for idx, want := range e.WantKind {
		if idx >= len(raw) || raw[idx] == nil || raw[idx].Kind() != want {
			env.SetLastExitCode(2)
			env.Diagnostic(pos, diag.Advisory, fmt.Sprintf("%s: argument %d must be %s", e.Name, idx, want))
			return token.Anonymous
		}
	}
	return e.Fn(env, raw, pos)
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

func unquote(s string) string {
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

func quote(s string) token.Var { return token.NewVar(`"` + s + `"`) }

func takeOrAnon(env Env, v ast.Value, pos token.Pos) (token.Var, bool) {
	h, err := env.TakeHandle(v)
	if err != nil {
		env.SetLastExitCode(1)
		env.Diagnostic(pos, diag.Advisory, err.Error())
		return token.Anonymous, false
	}
	return h, true
}

func init() {
	register("Type", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		return token.NewVar(raw[0].Kind())
	})

	register("Stringify", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		h, ok := takeOrAnon(env, raw[0], pos)
		if !ok {
			return token.Anonymous
		}
		s := h.String()
		if isQuoted(s) {
			return h
		}
		return quote(s)
	})

	register("Concat", 2, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		h0, ok0 := takeOrAnon(env, raw[0], pos)
		h1, ok1 := takeOrAnon(env, raw[1], pos)
		if !ok0 || !ok1 {
			return token.Anonymous
		}
		return quote(unquote(h0.String()) + unquote(h1.String()))
	})

	register("Unbind", 1, map[int]string{0: "valuebind"}, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		return raw[0].(*ast.ValueBind).Name
	})

	register("Const", 2, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		nameHandle, ok := takeOrAnon(env, raw[0], pos)
		if !ok {
			return token.Anonymous
		}
		env.DeclareConst(token.NewVar(unquote(nameHandle.String())), raw[1])
		return token.Anonymous
	})

	register("BindHandle", 1, map[int]string{0: "valuebind"}, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		vb := raw[0].(*ast.ValueBind)
		owner, ok := takeOrAnon(env, vb.Base, pos)
		if !ok {
			return token.Anonymous
		}
		h, found := env.BindHandle(owner, vb.Name)
		if !found {
			return token.Anonymous
		}
		return h
	})

	register("BindHandle2", 2, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		owner, ok0 := takeOrAnon(env, raw[0], pos)
		nameHandle, ok1 := takeOrAnon(env, raw[1], pos)
		if !ok0 || !ok1 {
			return token.Anonymous
		}
		h, found := env.BindHandle(owner, token.NewVar(unquote(nameHandle.String())))
		if !found {
			return token.Anonymous
		}
		return h
	})

	register("SliceArgs", 2, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		s, ok0 := env.EvalNum(raw[0])
		e, ok1 := env.EvalNum(raw[1])
		if !ok0 || !ok1 {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		start, end := int(s), int(e)
		n := env.ArgsLen()
		if start < 0 || end > n || start > end {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		sliced := make([]ast.Value, 0, end-start)
		for i := start; i < end; i++ {
			v, _ := env.Arg(i)
			sliced = append(sliced, v)
		}
		env.SetArgs(sliced)
		return token.Anonymous
	})

	register("ArgsLen", 0, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		return token.NewVar(numfmt.FormatInt(int64(env.ArgsLen())))
	})

	register("ArgsHandle", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		i, ok := env.EvalNum(raw[0])
		if !ok {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		v, found := env.Arg(int(i))
		if !found {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		h, ok := takeOrAnon(env, v, pos)
		if !ok {
			return token.Anonymous
		}
		return h
	})

	register("RefArg", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		i, ok := env.EvalNum(raw[0])
		if !ok {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		v, found := env.Arg(int(i))
		if !found {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		switch v := v.(type) {
		case *ast.Var:
			return v.Name
		case *ast.ReprVar:
			return v.Name
		default:
			env.SetLastExitCode(1)
			return token.Anonymous
		}
	})

	register("EvalNum", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		f, ok := env.EvalNum(raw[0])
		if !ok {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		return token.NewVar(numfmt.FormatFloat(f))
	})

	register("IsString", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		h, ok := takeOrAnon(env, raw[0], pos)
		if !ok {
			return token.Anonymous
		}
		if isQuoted(h.String()) {
			return token.NewVar("1")
		}
		return token.NewVar("0")
	})

	register("StopRepeat", 0, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		env.StopRepeat()
		return token.Anonymous
	})

	register("RepeatLimit", 0, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		return token.NewVar(numfmt.FormatInt(int64(env.RepeatLimit())))
	})

	register("SetRepeatLimit", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		f, ok := env.EvalNum(raw[0])
		if !ok {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		env.SetRepeatLimit(int(f))
		return token.Anonymous
	})

	register("MaxExpandDepth", 0, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		return token.NewVar(numfmt.FormatInt(int64(env.MaxExpandDepth())))
	})

	register("SetMaxExpandDepth", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		f, ok := env.EvalNum(raw[0])
		if !ok {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		env.SetMaxExpandDepth(int(f))
		return token.Anonymous
	})

	register("Chr", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		f, ok := env.EvalNum(raw[0])
		if !ok || f < 0 || f > 0x10FFFF {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		r := rune(int(f))
		if r == '"' || r < 0x20 {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		return quote(string(r))
	})

	register("Ord", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		h, ok := takeOrAnon(env, raw[0], pos)
		if !ok {
			return token.Anonymous
		}
		s := unquote(h.String())
		rs := []rune(s)
		if len(rs) != 1 || rs[0] == '"' || rs[0] < 0x20 {
			env.SetLastExitCode(1)
			return token.Anonymous
		}
		return token.NewVar(numfmt.FormatInt(int64(rs[0])))
	})

	register("SetNoOp", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		h, ok := takeOrAnon(env, raw[0], pos)
		if !ok {
			return token.Anonymous
		}
		env.SetNoOp(unquote(h.String()))
		return token.Anonymous
	})

	register("BindSep", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		h, ok := takeOrAnon(env, raw[0], pos)
		if !ok {
			return token.Anonymous
		}
		env.SetBindSep(unquote(h.String()))
		return token.Anonymous
	})

	register("Info", -1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		env.Diagnostic(pos, diag.Advisory, renderArgs(env, raw, pos))
		return token.Anonymous
	})

	register("Debug", -1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		env.Diagnostic(pos, diag.Advisory, "debug: "+renderArgs(env, raw, pos))
		return token.Anonymous
	})

	register("Err", -1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		env.SetLastExitCode(1)
		env.Diagnostic(pos, diag.Fatal, renderArgs(env, raw, pos))
		return token.Anonymous
	})

	register("Status", -1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		env.Diagnostic(pos, diag.Fatal, renderArgs(env, raw, pos))
		return token.Anonymous
	})

	register("Exit", 1, nil, func(env Env, raw []ast.Value, pos token.Pos) token.Var {
		f, ok := env.EvalNum(raw[0])
		code := 0
		if ok {
			code = int(f)
		}
		env.SetLastExitCode(code)
		env.RequestExit(code)
		return token.Anonymous
	})
}

func renderArgs(env Env, raw []ast.Value, pos token.Pos) string {
	parts := make([]string, 0, len(raw))
	for _, v := range raw {
		h, ok := takeOrAnon(env, v, pos)
		if !ok {
			continue
		}
		parts = append(parts, unquote(h.String()))
	}
	return strings.Join(parts, " ")
}
