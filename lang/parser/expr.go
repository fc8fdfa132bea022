package parser

import (
	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/token"
)

// parseValue parses one Value: a primary term followed by any number of
// `.name` value-bind or `->target` value-bind-ref postfixes (spec §3).
func (p *parser) parseValue() ast.Value {
	v := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case token.DOT:
			pos := p.advance().Pos
			name := p.expect(token.IDENT)
			v = &ast.ValueBind{Base: v, Name: token.NewVar(name.Lit), Pos: pos}
		case token.ARROW:
			pos := p.advance().Pos
			ref := &ast.ValueBindRef{Base: v, Pos: pos}
			switch p.cur().Kind {
			case token.IDENT:
				ref.TargetKind = ast.TargetNameBind
				ref.TargetName = token.NewVar(p.advance().Lit)
			case token.DOLLAR:
				p.advance()
				ref.TargetKind = ast.TargetResultHandle
			case token.DOTDOT:
				p.advance()
				ref.TargetKind = ast.TargetBinder
			case token.ASSIGN:
				p.advance()
				ref.TargetKind = ast.TargetOp
			default:
				p.errorf(p.cur().Pos, "expected value-bind-ref target, got %s", p.cur().Kind)
			}
			v = ref
		default:
			return v
		}
	}
}

func (p *parser) parsePrimary() ast.Value {
	t := p.cur()
	switch t.Kind {
	case token.IDENT:
		p.advance()
		if p.at(token.BANG) && p.peekKind(1) == token.LPAREN {
			return p.parseBuiltinCall(t)
		}
		return &ast.Var{Name: token.NewVar(t.Lit), Pos: t.Pos}
	case token.INT, token.FLOAT, token.STRING:
		p.advance()
		return &ast.ReprVar{Name: token.NewVar(t.Lit), Pos: t.Pos}
	case token.DOLLAR:
		p.advance()
		return &ast.ResultHandle{Pos: t.Pos}
	case token.DOTDOT:
		p.advance()
		return &ast.Binder{Pos: t.Pos}
	case token.LBRACK:
		p.advance()
		tree := p.parseCond()
		p.expect(token.RBRACK)
		return &ast.Cmper{Tree: tree, Pos: t.Pos}
	case token.LPAREN:
		return p.parseDExp(t)
	case token.BACKSLASH:
		return p.parseClosure(t)
	default:
		p.errorf(t.Pos, "unexpected token %s in value", t.Kind)
		p.advance()
		return &ast.ReprVar{Name: token.Anonymous, Pos: t.Pos}
	}
}

// parseDExp parses `(body)` (anonymous result) or `(name: body)` (named
// result), body being zero or more statements (spec §3, §4.2).
func (p *parser) parseDExp(open tokInfo) ast.Value {
	p.advance() // '('
	var result ast.Value
	if p.at(token.IDENT) && p.peekKind(1) == token.COLON {
		nameTok := p.advance()
		p.advance() // ':'
		result = &ast.Var{Name: token.NewVar(nameTok.Lit), Pos: nameTok.Pos}
	} else if p.at(token.DOLLAR) && p.peekKind(1) == token.COLON {
		p.advance()
		p.advance()
		result = &ast.ResultHandle{Pos: open.Pos}
	}
	body := p.parseBlock(token.RPAREN)
	p.expect(token.RPAREN)
	return &ast.DExp{Result: result, Body: body, Pos: open.Pos}
}

// parseBuiltinCall parses `name!(args)`, sugar for a DExp that sets the
// env-args to args and sets its own result handle to the builtin's call
// result (spec §4.8: builtins are invoked through the value system, reading
// the active env-args).
func (p *parser) parseBuiltinCall(nameTok tokInfo) ast.Value {
	p.advance() // '!'
	p.advance() // '('
	args := p.parseArgList(token.RPAREN)
	p.expect(token.RPAREN)
	return &ast.DExp{
		Pos: nameTok.Pos,
		Body: []ast.LogicLine{
			&ast.SetArgsLine{Args: args, Pos: nameTok.Pos},
			&ast.SetResultHandleLine{
				Value:          &ast.BuiltinFunc{Name: token.NewVar(nameTok.Lit), Pos: nameTok.Pos},
				EffectExpected: true,
				Pos:            nameTok.Pos,
			},
		},
	}
}

// parseClosure parses `\(captures)[@][as name] value` (spec §3, §4.6):
// captures is a comma list of `name` (by reference) or `take name` (by
// value); a trailing `@` requests env-args capture; `as name` rebinds the
// binder each expansion sees.
func (p *parser) parseClosure(open tokInfo) ast.Value {
	p.advance() // '\'
	p.expect(token.LPAREN)
	var captures []ast.Capture
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		byTake := false
		if p.at(token.TAKE) {
			p.advance()
			byTake = true
		}
		nameTok := p.expect(token.IDENT)
		captures = append(captures, ast.Capture{Name: token.NewVar(nameTok.Lit), ByTake: byTake})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)

	captureArgs := false
	if p.at(token.AT) {
		p.advance()
		captureArgs = true
	}
	var rebind token.Var
	if p.at(token.AS) {
		p.advance()
		rebind = token.NewVar(p.expect(token.IDENT).Lit)
	}
	underlying := p.parseValue()
	return &ast.ClosuredValue{
		Captures:     captures,
		CaptureArgs:  captureArgs,
		BinderRebind: rebind,
		Labels:       ast.CollectLabels(underlying),
		Underlying:   underlying,
		Pos:          open.Pos,
	}
}

// parseArgList parses a value list whose items are separated by commas or
// by whitespace alone, honoring at most one
// bare `@` splat marker, until it reaches until or runs out of tokens
// (spec §3 Args).
func (p *parser) parseArgList(until token.Kind) ast.Args {
	var prefix, suffix []ast.Value
	hasSplat := false
	for !p.at(until) && !p.at(token.SEMI) && !p.at(token.EOF) {
		if p.at(token.AT) {
			p.advance()
			hasSplat = true
			if p.at(token.COMMA) {
				p.advance()
			}
			continue
		}
		v := p.parseValue()
		if hasSplat {
			suffix = append(suffix, v)
		} else {
			prefix = append(prefix, v)
		}
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		switch p.cur().Kind {
		case token.IDENT, token.INT, token.FLOAT, token.STRING, token.DOLLAR,
			token.DOTDOT, token.LBRACK, token.LPAREN, token.BACKSLASH, token.AT:
			continue // the next value follows after whitespace only
		}
		break
	}
	if hasSplat {
		return ast.Args{HasSplat: true, Prefix: prefix, Suffix: suffix}
	}
	return ast.Args{Normal: prefix}
}

// parseCond parses a jump-condition tree: `||`-separated `&&`-separated
// comparisons, with parenthesized sub-trees (spec §4.4).
func (p *parser) parseCond() ast.Tree {
	left := p.parseCondAnd()
	for p.at(token.OROR) {
		p.advance()
		right := p.parseCondAnd()
		left = &ast.Or{L: left, R: right}
	}
	return left
}

func (p *parser) parseCondAnd() ast.Tree {
	left := p.parseCondAtom()
	for p.at(token.ANDAND) {
		p.advance()
		right := p.parseCondAtom()
		left = &ast.And{L: left, R: right}
	}
	return left
}

var cmpOps = map[token.Kind]ast.JumpCmp{
	token.EQ: ast.Equal, token.NE: ast.NotEqual,
	token.LT: ast.Lt, token.LE: ast.LtEq,
	token.GT: ast.Gt, token.GE: ast.GtEq,
	token.STRICTEQ: ast.StrictEqual, token.STRICTNE: ast.StrictNotEqual,
}

func (p *parser) parseCondAtom() ast.Tree {
	if p.at(token.LPAREN) {
		p.advance()
		t := p.parseCond()
		p.expect(token.RPAREN)
		return t
	}
	pos := p.cur().Pos
	a := p.parseValue()
	cmpTok := p.cur()
	cmp, ok := cmpOps[cmpTok.Kind]
	if !ok {
		p.errorf(cmpTok.Pos, "expected comparison operator, got %s", cmpTok.Kind)
		return &ast.Atom{Op: ast.Never, A: a, B: a, Pos: pos}
	}
	p.advance()
	b := p.parseValue()
	return &ast.Atom{Op: cmp, A: a, B: b, Pos: pos}
}
