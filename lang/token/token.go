// Package token defines the lexical token kinds and the interned variable
// name type (Var) shared by the scanner, parser and compiler packages.
//
// Source positions (Pos, File, in pos.go) are a small byte-offset scheme of
// this package's own, scoped to a single source file rather than a
// multi-file go/token.FileSet — this compiler never threads positions
// across files the way a Go toolchain does. A Pos is resolved to a
// go/token.Position only at the point a diagnostic is reported (see
// lang/diag), which is the shape go/scanner.ErrorList expects.
package token

import "sync"

// A Kind represents a lexical token kind.
type Kind int8

//nolint:revive
const (
	ILLEGAL Kind = iota
	EOF

	IDENT  // x, foo_bar
	INT    // 123, 0x1F
	FLOAT  // 1.5, 1e10
	STRING // "abc"

	DOLLAR   // $
	DOTDOT   // ..
	AT       // @
	DOT      // .
	COMMA    // ,
	COLON    // :
	SEMI     // ;
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACK   // [
	RBRACK   // ]
	PIPE     // |
	ANDAND   // &&
	OROR     // ||
	BANG     // !
	LT       // <
	LE       // <=
	GT       // >
	GE       // >=
	EQ       // ==
	NE       // !=
	STRICTEQ // ===
	STRICTNE // !==
	ASSIGN   // =
	ARROW    // ->
	STAR     // *
	BACKSLASH // \
	QMARK    // ?

	// keywords
	CONST
	TAKE
	SETRES
	SELECT
	GSWITCH
	MATCH
	INLINE
	GOTO
	OP
	UNUSED
	LEAK
	NOOP
	EXTRA
	CASE
	CATCH
	AS
	WHILE
	DO
	GWHILE
	BREAK
	CONTINUE

	maxKind
)

var kindNames = [...]string{
	ILLEGAL: "illegal", EOF: "eof",
	IDENT: "identifier", INT: "int literal", FLOAT: "float literal", STRING: "string literal",
	DOLLAR: "$", DOTDOT: "..", AT: "@", DOT: ".", COMMA: ",", COLON: ":", SEMI: ";",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACK: "[", RBRACK: "]",
	PIPE: "|", ANDAND: "&&", OROR: "||", BANG: "!",
	LT: "<", LE: "<=", GT: ">", GE: ">=", EQ: "==", NE: "!=", STRICTEQ: "===", STRICTNE: "!==",
	ASSIGN: "=", ARROW: "->", STAR: "*", BACKSLASH: `\`, QMARK: "?",
	CONST: "const", TAKE: "take", SETRES: "setres", SELECT: "select", GSWITCH: "gswitch",
	MATCH: "match", INLINE: "inline", GOTO: "goto", OP: "op", UNUSED: "_",
	LEAK: "leak", NOOP: "noop", EXTRA: "extra", CASE: "case", CATCH: "catch", AS: "as",
	WHILE: "while", DO: "do", GWHILE: "gwhile", BREAK: "break", CONTINUE: "continue",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Keywords maps keyword text to its Kind, used by the scanner to
// distinguish keywords from ordinary identifiers.
var Keywords = map[string]Kind{
	"const": CONST, "take": TAKE, "setres": SETRES, "select": SELECT,
	"gswitch": GSWITCH, "match": MATCH, "inline": INLINE, "goto": GOTO,
	"op": OP, "_": UNUSED, "leak": LEAK, "noop": NOOP, "extra": EXTRA,
	"case": CASE, "catch": CATCH, "as": AS,
	"while": WHILE, "do": DO, "gwhile": GWHILE, "break": BREAK, "continue": CONTINUE,
}

// A Var is a short immutable name: every identifier, literal and compiled
// handle in the system is represented as one. The core does not distinguish
// numbers from names at this layer (spec §3).
//
// Values are interned through NewVar so that equal names compare equal
// without repeated allocation in hot paths such as the bind-pairs table
// (see lang/constenv.BindTable), mirroring the "reference-counted or
// arena-interned" requirement of spec §3.
type Var string

var internPool sync.Map // string -> Var

// NewVar interns s and returns the canonical Var for it.
func NewVar(s string) Var {
	if v, ok := internPool.Load(s); ok {
		return v.(Var)
	}
	v, _ := internPool.LoadOrStore(s, Var(s))
	return v.(Var)
}

// String returns the textual form of the variable name.
func (v Var) String() string { return string(v) }

// Empty reports whether the variable name is the empty string, used as the
// sentinel for "no declared result" and similar optional-name slots.
func (v Var) Empty() bool { return v == "" }

// Anonymous is the placeholder handle returned when no binder is in scope
// (spec §4.2, Binder case) or when a builtin fails to produce a usable
// value (spec §7, builtin_arg/miss).
const Anonymous Var = "__"
