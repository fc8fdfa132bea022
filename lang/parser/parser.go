// Package parser implements the out-of-core recursive-descent parser that
// turns scanned tokens into the ast.Block the compiler consumes (spec §1,
// §6). It owns the two syntactic desugarings the spec's Open Questions
// leave to "whichever of parser or compiler already owns a Meta-like
// counter" (SPEC_FULL.md §3): tag/temp-name allocation for labels
// synthesized by while/do-while sugar, and loop-condition lowering into
// Goto + Label + Tree, all performed here rather than in lang/compiler.
package parser

import (
	"fmt"
	"go/scanner"

	"github.com/mna/mdtc/lang/ast"
	langscanner "github.com/mna/mdtc/lang/scanner"
	mtoken "github.com/mna/mdtc/lang/token"
)

type (
	// Error is a single positioned parse error.
	Error = scanner.Error
	// ErrorList collects Errors; it implements error and Unwrap() []error.
	ErrorList = scanner.ErrorList
)

// PrintError prints err, or every error in a list, to w.
var PrintError = scanner.PrintError

// Parse tokenizes and parses the named source, returning the resulting
// top-level block and the token.File its positions are relative to. The
// returned error, if non-nil, implements Unwrap() []error and aggregates
// every scan and parse error found, not just the first.
func Parse(name string, src []byte) (ast.Block, *mtoken.File, error) {
	file, toks, scanErr := langscanner.ScanAll(name, src)
	p := &parser{file: file, toks: toks}
	block := p.parseBlock(mtoken.EOF)

	var errs ErrorList
	if scanErr != nil {
		if el, ok := scanErr.(langscanner.ErrorList); ok {
			errs = append(errs, el...)
		}
	}
	errs = append(errs, p.errs...)
	if len(errs) == 0 {
		return block, file, nil
	}
	errs.Sort()
	return block, file, errs.Err()
}

// tokInfo is a short alias for the scanner's token type, used throughout
// the grammar files.
type tokInfo = langscanner.TokenInfo

type parser struct {
	file *mtoken.File
	toks []langscanner.TokenInfo
	pos  int
	errs ErrorList

	// tagCounter allocates synthetic label names for while/do-while/gwhile
	// desugaring (SPEC_FULL.md §3: "parser owns its own small counter").
	tagCounter uint64

	// loopStack tracks the break/continue targets of each enclosing
	// while/do-while/gwhile loop, innermost last.
	loopStack []loopLabels
}

// freshTag allocates a unique synthetic label name, used by the loop-sugar
// desugarings to name labels with no user-visible source form.
func (p *parser) freshTag() mtoken.Var {
	p.tagCounter++
	return mtoken.NewVar(fmt.Sprintf("__tag%d", p.tagCounter))
}

func (p *parser) cur() langscanner.TokenInfo {
	if p.pos >= len(p.toks) {
		return langscanner.TokenInfo{Kind: mtoken.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekKind(n int) mtoken.Kind {
	i := p.pos + n
	if i >= len(p.toks) {
		return mtoken.EOF
	}
	return p.toks[i].Kind
}

func (p *parser) advance() langscanner.TokenInfo {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) at(k mtoken.Kind) bool { return p.cur().Kind == k }

func (p *parser) errorf(pos mtoken.Pos, format string, args ...any) {
	p.errs.Add(p.file.Position(pos), fmt.Sprintf(format, args...))
}

// expect consumes the current token if it has kind k, else records an
// error and returns it without advancing, so the parser can keep scanning
// for further errors rather than stopping at the first one.
func (p *parser) expect(k mtoken.Kind) langscanner.TokenInfo {
	t := p.cur()
	if t.Kind != k {
		p.errorf(t.Pos, "expected %s, got %s", k, t.Kind)
		return t
	}
	return p.advance()
}

// synchronize skips tokens until a statement boundary (';' or '}') so one
// malformed statement doesn't cascade into spurious follow-on errors.
func (p *parser) synchronize() {
	for {
		switch p.cur().Kind {
		case mtoken.SEMI:
			p.advance()
			return
		case mtoken.RBRACE, mtoken.EOF:
			return
		default:
			p.advance()
		}
	}
}
