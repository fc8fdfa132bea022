// Package constenv implements the const-binding environment a compile
// threads through: a stack of lexical scopes mapping names (and
// value-bind keys) to ConstData, leak-on-pop migration, binder tracking,
// per-expansion label renaming, and the process-wide value-bind handle
// cache (spec §3 "ConstData", §4.3).
package constenv

import (
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/token"
)

// ConstData is what a name or value-bind key resolves to: the bound value,
// the set of labels textually declared inside it (so each expansion can
// allocate fresh α-renamed labels), and the binder handle used to resolve
// `..` while the value is being expanded (spec §3).
type ConstData struct {
	Value  ast.Value
	Labels []token.Var
	Binder token.Var
}

// scope is one lexical level of the const-environment stack.
type scope struct {
	consts map[token.Var]*ConstData
	leak   map[token.Var]bool
}

func newScope() *scope {
	return &scope{consts: make(map[token.Var]*ConstData)}
}

// DepthExceededError reports that const-expansion nesting exceeded its
// configured limit (spec §4.3, §7 "depth").
type DepthExceededError struct {
	Limit int
	Stack []token.Var
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("maximum recursion depth exceeded (limit %d)", e.Limit)
}

// Env is the stack of lexical const scopes plus the auxiliary stacks the
// compiler threads alongside it: the binder stack, the per-expansion
// label-rename stack, and the expansion-name stack used for diagnostic
// stack traces (spec §4.3, §5).
type Env struct {
	scopes []*scope

	binders    []token.Var
	renames    []map[token.Var]token.Var
	expandName []token.Var

	// MaxExpandDepth is the cap on simultaneous EnterConstExpand nesting
	// (spec §4.3's "default 500"), tunable via the MaxExpandDepth /
	// SetMaxExpandDepth builtins.
	MaxExpandDepth int

	renameCounter uint64
}

// New returns an Env with a single (global) scope and the default
// expansion-depth cap.
func New() *Env {
	return &Env{
		scopes:         []*scope{newScope()},
		MaxExpandDepth: 500,
	}
}

// AddConst inserts data under name into the current (innermost) scope.
func (e *Env) AddConst(name token.Var, data *ConstData) {
	e.top().consts[name] = data
}

// AddGlobalConst inserts data under name into the bottom (global) scope,
// used for value-bind keys: "Value-bind keys resolve the base immediately
// and insert into the *global* (bottom) scope keyed by the allocated
// (base_handle, name) handle" (spec §4.3).
func (e *Env) AddGlobalConst(name token.Var, data *ConstData) {
	e.scopes[0].consts[name] = data
}

// GetConst searches every scope from innermost to outermost for name.
func (e *Env) GetConst(name token.Var) (*ConstData, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if d, ok := e.scopes[i].consts[name]; ok {
			return d, true
		}
	}
	return nil, false
}

// MarkLeak records that name, once bound in the current scope, should
// migrate to the parent scope when this scope is popped with leak enabled
// (spec §4.3, the `ConstLeakLine` statement).
func (e *Env) MarkLeak(name token.Var) {
	top := e.top()
	if top.leak == nil {
		top.leak = make(map[token.Var]bool)
	}
	top.leak[name] = true
}

// PushBlock opens a new innermost scope.
func (e *Env) PushBlock() {
	e.scopes = append(e.scopes, newScope())
}

// PopBlock closes the innermost scope. If withLeak is true, every name
// marked via MarkLeak in that scope has its current binding migrated to
// the new top (spec §4.3).
func (e *Env) PopBlock(withLeak bool) {
	n := len(e.scopes) - 1
	popped := e.scopes[n]
	e.scopes = e.scopes[:n]
	if !withLeak {
		return
	}
	newTop := e.top()
	for name := range popped.leak {
		if d, ok := popped.consts[name]; ok {
			newTop.consts[name] = d
		}
	}
}

func (e *Env) top() *scope { return e.scopes[len(e.scopes)-1] }

// EnterConstExpand allocates a fresh α-rename for every label in data's
// label set (named `tmp_const_<name>_<label>_<n>`, n counting expansions),
// pushes that rename map,
// pushes data's binder, and pushes name onto the expansion-name stack used
// for diagnostic stack traces. Exceeding MaxExpandDepth is fatal
// (spec §4.3, §7 "depth").
func (e *Env) EnterConstExpand(name token.Var, data *ConstData) error {
	if len(e.expandName) >= e.MaxExpandDepth {
		return &DepthExceededError{Limit: e.MaxExpandDepth, Stack: append([]token.Var(nil), e.expandName...)}
	}
	e.renameCounter++
	rename := make(map[token.Var]token.Var, len(data.Labels))
	for _, lbl := range data.Labels {
		rename[lbl] = token.NewVar(fmt.Sprintf("tmp_const_%s_%s_%d", name, lbl, e.renameCounter))
	}
	e.renames = append(e.renames, rename)
	e.binders = append(e.binders, data.Binder)
	e.expandName = append(e.expandName, name)
	return nil
}

// ExitConstExpand pops the rename map, binder, and expansion name pushed
// by the matching EnterConstExpand.
func (e *Env) ExitConstExpand() {
	e.renames = e.renames[:len(e.renames)-1]
	e.binders = e.binders[:len(e.binders)-1]
	e.expandName = e.expandName[:len(e.expandName)-1]
}

// CurrentBinder returns the top-most non-empty binder in the expansion
// stack, or the anonymous placeholder if none is set (spec §4.2, the
// `Binder` value case).
func (e *Env) CurrentBinder() token.Var {
	for i := len(e.binders) - 1; i >= 0; i-- {
		if !e.binders[i].Empty() {
			return e.binders[i]
		}
	}
	return token.Anonymous
}

// GetInConstLabel walks the rename-map stack top-down, returning the first
// rewrite found for label, or label unchanged if none apply (spec §4.3).
func (e *Env) GetInConstLabel(label token.Var) token.Var {
	for i := len(e.renames) - 1; i >= 0; i-- {
		if renamed, ok := e.renames[i][label]; ok {
			return renamed
		}
	}
	return label
}

// ExpansionStack returns a snapshot of the expansion-name stack, innermost
// last, used to build a stack trace for a fatal diagnostic (spec §7: "all
// non-advisory errors walk the expansion-name stack").
func (e *Env) ExpansionStack() []token.Var {
	return append([]token.Var(nil), e.expandName...)
}

// bindKey is the composite key of the process-wide value-bind handle cache
// (spec §4.2's "process-wide binding table").
type bindKey struct {
	Owner, Name token.Var
}

// GlobalOwner is the sentinel owner under which a default binding for a
// given attribute name may be registered; such a binding is propagated
// into every specific (owner, name) handle allocated afterwards
// (spec §4.2: "if a global default binding exists under the key
// __global, propagate that global's binding into the specific handle").
const GlobalOwner = token.Anonymous

// BindTable is the process-wide (owner, name) → handle cache backing
// ValueBind evaluation (spec §4.2). It is always owned by one CompileMeta,
// never a package-level variable, so two concurrent or sequential compiles
// never share state (spec §5, §9).
type BindTable struct {
	m *swiss.Map[bindKey, token.Var]
}

// NewBindTable returns an empty BindTable sized for an initial capacity
// hint.
func NewBindTable(sizeHint int) *BindTable {
	if sizeHint < 1 {
		sizeHint = 16
	}
	return &BindTable{m: swiss.NewMap[bindKey, token.Var](uint32(sizeHint))}
}

// Lookup returns the cached handle for (owner, name), if any.
func (t *BindTable) Lookup(owner, name token.Var) (token.Var, bool) {
	return t.m.Get(bindKey{Owner: owner, Name: name})
}

// Set records handle as the cached value-bind handle for (owner, name).
func (t *BindTable) Set(owner, name, handle token.Var) {
	t.m.Put(bindKey{Owner: owner, Name: name}, handle)
}

// Count returns the number of bind pairs currently cached.
func (t *BindTable) Count() int { return t.m.Count() }
