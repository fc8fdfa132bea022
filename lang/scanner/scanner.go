// Package scanner tokenizes this compiler's surface syntax: the textual
// form the out-of-core parser (lang/parser) reads and that lang/compiler
// never sees directly (spec §1, "deliberately out of scope: the
// lexer/grammar that produces the AST"). It is adapted from this
// repository's own scanning idiom — a single-pass byte scanner reporting
// through go/scanner.ErrorList — the way the teacher's lang/scanner adapts
// the Go standard library's own scanner.
package scanner

import (
	"fmt"
	"go/scanner"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mna/mdtc/lang/token"
)

type (
	// Error is a single positioned scan error.
	Error = scanner.Error
	// ErrorList collects Errors; it implements error and Unwrap() []error.
	ErrorList = scanner.ErrorList
)

// PrintError prints err, or every error in a list, to w.
var PrintError = scanner.PrintError

// TokenInfo pairs a token kind with its source position and, for
// IDENT/INT/FLOAT/STRING, its literal text.
type TokenInfo struct {
	Kind token.Kind
	Pos  token.Pos
	Lit  string
}

// ScanAll tokenizes the full contents of src (named name for diagnostics),
// returning the token.File built over it (line-start offsets for position
// resolution) and every scanned token, terminated by one EOF TokenInfo. The
// returned error, if non-nil, implements Unwrap() []error.
func ScanAll(name string, src []byte) (*token.File, []TokenInfo, error) {
	file := token.NewFile(name, src)
	var s Scanner
	var errs ErrorList
	s.Init(file, src, func(pos token.Pos, msg string) {
		errs.Add(file.Position(pos), msg)
	})

	var toks []TokenInfo
	for {
		ti := s.Scan()
		toks = append(toks, ti)
		if ti.Kind == token.EOF {
			break
		}
	}
	if len(errs) == 0 {
		return file, toks, nil
	}
	errs.Sort()
	return file, toks, errs.Err()
}

// Scanner tokenizes one source file for the parser to consume.
type Scanner struct {
	file *token.File
	src  []byte
	err  func(pos token.Pos, msg string)

	cur  rune // current character, or utf8.RuneError/-1 at EOF
	off  int  // byte offset of cur
	roff int  // byte offset right after cur
}

// Init prepares s to scan src, reporting lexical errors through errHandler.
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Pos, string)) {
	s.file = file
	s.src = src
	s.err = errHandler
	s.off = 0
	s.roff = 0
	s.advance()
}

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}
	s.off = s.roff
	r, w := utf8.DecodeRune(s.src[s.roff:])
	if r == utf8.RuneError && w <= 1 {
		s.error(s.off, "invalid UTF-8 encoding")
	}
	s.cur = r
	s.roff += w
}

func (s *Scanner) peek() rune {
	if s.roff >= len(s.src) {
		return -1
	}
	r, _ := utf8.DecodeRune(s.src[s.roff:])
	return r
}

func (s *Scanner) error(off int, format string, args ...any) {
	if s.err != nil {
		s.err(token.Pos(off), fmt.Sprintf(format, args...))
	}
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentPart(r rune) bool {
	return isLetter(r) || isDigit(r)
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case s.cur == ' ' || s.cur == '\t' || s.cur == '\n' || s.cur == '\r':
			s.advance()
		case s.cur == '#':
			for s.cur != '\n' && s.cur >= 0 {
				s.advance()
			}
		case s.cur == '/' && s.peek() == '/':
			for s.cur != '\n' && s.cur >= 0 {
				s.advance()
			}
		case s.cur == '/' && s.peek() == '*':
			s.advance()
			s.advance()
			closed := false
			for s.cur >= 0 {
				if s.cur == '*' && s.peek() == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				s.error(s.off, "unterminated block comment")
			}
		default:
			return
		}
	}
}

// Scan returns the next token. Callers must keep calling Scan after an EOF
// token is returned; doing so simply returns EOF again.
func (s *Scanner) Scan() TokenInfo {
	s.skipWhitespaceAndComments()
	pos := token.Pos(s.off)

	if s.cur < 0 {
		return TokenInfo{Kind: token.EOF, Pos: pos}
	}

	switch {
	case isLetter(s.cur):
		return s.scanIdentOrKeyword(pos)
	case isDigit(s.cur):
		return s.scanNumber(pos)
	case s.cur == '"':
		return s.scanString(pos)
	}

	r := s.cur
	s.advance()
	switch r {
	case '$':
		return TokenInfo{Kind: token.DOLLAR, Pos: pos}
	case '@':
		return TokenInfo{Kind: token.AT, Pos: pos}
	case ',':
		return TokenInfo{Kind: token.COMMA, Pos: pos}
	case ':':
		return TokenInfo{Kind: token.COLON, Pos: pos}
	case ';':
		return TokenInfo{Kind: token.SEMI, Pos: pos}
	case '(':
		return TokenInfo{Kind: token.LPAREN, Pos: pos}
	case ')':
		return TokenInfo{Kind: token.RPAREN, Pos: pos}
	case '{':
		return TokenInfo{Kind: token.LBRACE, Pos: pos}
	case '}':
		return TokenInfo{Kind: token.RBRACE, Pos: pos}
	case '[':
		return TokenInfo{Kind: token.LBRACK, Pos: pos}
	case ']':
		return TokenInfo{Kind: token.RBRACK, Pos: pos}
	case '*':
		return TokenInfo{Kind: token.STAR, Pos: pos}
	case '\\':
		return TokenInfo{Kind: token.BACKSLASH, Pos: pos}
	case '?':
		return TokenInfo{Kind: token.QMARK, Pos: pos}
	case '.':
		if s.cur == '.' {
			s.advance()
			return TokenInfo{Kind: token.DOTDOT, Pos: pos}
		}
		return TokenInfo{Kind: token.DOT, Pos: pos}
	case '|':
		if s.cur == '|' {
			s.advance()
			return TokenInfo{Kind: token.OROR, Pos: pos}
		}
		return TokenInfo{Kind: token.PIPE, Pos: pos}
	case '&':
		if s.cur == '&' {
			s.advance()
			return TokenInfo{Kind: token.ANDAND, Pos: pos}
		}
		s.error(s.off, "unexpected character %q", r)
		return s.Scan()
	case '=':
		if s.cur == '=' {
			s.advance()
			if s.cur == '=' {
				s.advance()
				return TokenInfo{Kind: token.STRICTEQ, Pos: pos}
			}
			return TokenInfo{Kind: token.EQ, Pos: pos}
		}
		return TokenInfo{Kind: token.ASSIGN, Pos: pos}
	case '!':
		if s.cur == '=' {
			s.advance()
			if s.cur == '=' {
				s.advance()
				return TokenInfo{Kind: token.STRICTNE, Pos: pos}
			}
			return TokenInfo{Kind: token.NE, Pos: pos}
		}
		return TokenInfo{Kind: token.BANG, Pos: pos}
	case '<':
		if s.cur == '=' {
			s.advance()
			return TokenInfo{Kind: token.LE, Pos: pos}
		}
		return TokenInfo{Kind: token.LT, Pos: pos}
	case '>':
		if s.cur == '=' {
			s.advance()
			return TokenInfo{Kind: token.GE, Pos: pos}
		}
		return TokenInfo{Kind: token.GT, Pos: pos}
	case '-':
		if s.cur == '>' {
			s.advance()
			return TokenInfo{Kind: token.ARROW, Pos: pos}
		}
		if isDigit(s.cur) {
			return s.scanNumber(pos)
		}
		s.error(s.off, "unexpected character %q", r)
		return s.Scan()
	default:
		s.error(s.off, "unexpected character %q", r)
		return s.Scan()
	}
}

func (s *Scanner) scanIdentOrKeyword(pos token.Pos) TokenInfo {
	start := s.off
	for isIdentPart(s.cur) {
		s.advance()
	}
	lit := string(s.src[start:s.off])
	if kw, ok := token.Keywords[lit]; ok {
		return TokenInfo{Kind: kw, Pos: pos, Lit: lit}
	}
	return TokenInfo{Kind: token.IDENT, Pos: pos, Lit: lit}
}

func (s *Scanner) scanNumber(pos token.Pos) TokenInfo {
	start := s.off
	if s.cur == '-' {
		s.advance()
	}
	isFloat := false
	if s.cur == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		s.advance()
		s.advance()
		for isHexDigit(s.cur) {
			s.advance()
		}
		return TokenInfo{Kind: token.INT, Pos: pos, Lit: string(s.src[start:s.off])}
	}
	for isDigit(s.cur) {
		s.advance()
	}
	if s.cur == '.' && isDigit(s.peek()) {
		isFloat = true
		s.advance()
		for isDigit(s.cur) {
			s.advance()
		}
	}
	if s.cur == 'e' || s.cur == 'E' {
		la := s.peek()
		if isDigit(la) || ((la == '+' || la == '-') && s.off+2 < len(s.src)) {
			isFloat = true
			s.advance()
			if s.cur == '+' || s.cur == '-' {
				s.advance()
			}
			for isDigit(s.cur) {
				s.advance()
			}
		}
	}
	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	return TokenInfo{Kind: kind, Pos: pos, Lit: string(s.src[start:s.off])}
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (s *Scanner) scanString(pos token.Pos) TokenInfo {
	s.advance() // opening quote
	var sb strings.Builder
	for s.cur != '"' {
		if s.cur < 0 || s.cur == '\n' {
			s.error(s.off, "unterminated string literal")
			break
		}
		if s.cur == '\\' {
			s.advance()
			sb.WriteRune(unescape(s.cur))
			s.advance()
			continue
		}
		sb.WriteRune(s.cur)
		s.advance()
	}
	if s.cur == '"' {
		s.advance()
	}
	return TokenInfo{Kind: token.STRING, Pos: pos, Lit: sb.String()}
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '"':
		return '"'
	case '\\':
		return '\\'
	default:
		return r
	}
}
