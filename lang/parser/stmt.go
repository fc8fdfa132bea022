package parser

import (
	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/token"
)

// loopLabels are the break/continue targets of the innermost enclosing
// while/do-while/gwhile loop.
type loopLabels struct {
	breakLabel, continueLabel token.Var
}

// parseBlock parses statements until it sees until or runs out of tokens.
func (p *parser) parseBlock(until token.Kind) ast.Block {
	var block ast.Block
	for !p.at(until) && !p.at(token.EOF) {
		ln := p.parseStmt()
		if ln != nil {
			block = append(block, ln)
		}
	}
	return block
}

var opKindByName = map[string]ast.OpKind{
	"add": ast.Add, "sub": ast.Sub, "mul": ast.Mul, "div": ast.Div, "idiv": ast.IDiv,
	"mod": ast.Mod, "emod": ast.EMod, "pow": ast.Pow,
	"and": ast.BitAnd, "or": ast.BitOr, "xor": ast.BitXor,
	"shl": ast.Shl, "shr": ast.Shr, "ushr": ast.Shru,
	"not": ast.Not, "neg": ast.Neg, "abs": ast.Abs, "sign": ast.Sign,
	"sin": ast.Sin, "cos": ast.Cos, "tan": ast.Tan,
	"asin": ast.Asin, "acos": ast.Acos, "atan": ast.Atan,
	"sqrt": ast.Sqrt, "log": ast.Log, "logn": ast.LogN, "exp": ast.Exp,
	"max": ast.Max, "min": ast.Min, "angle": ast.Angle, "angleDiff": ast.AngleDiff,
	"len": ast.Len, "noise": ast.Noise, "rand": ast.Rand,
	"equal": ast.OpEqual, "notEqual": ast.OpNotEqual,
	"lessThan": ast.OpLessThan, "lessThanEq": ast.OpLessThanEq,
	"greaterThan": ast.OpGreaterThan, "greaterThanEq": ast.OpGreaterThanEq,
	"strictEqual": ast.OpStrictEqual,
}

// parseStmt parses one LogicLine. Returning nil (never currently done, but
// kept for symmetry with synchronize) lets a caller skip a malformed
// statement without appending a placeholder.
func (p *parser) parseStmt() ast.LogicLine {
	t := p.cur()
	switch t.Kind {
	case token.SEMI:
		p.advance()
		return &ast.IgnoreLine{}

	case token.COLON:
		p.advance()
		name := p.expect(token.IDENT)
		p.expect(token.SEMI)
		return &ast.LabelLine{Name: token.NewVar(name.Lit), Pos: t.Pos}

	case token.GOTO:
		return p.parseGoto()

	case token.CONST:
		p.advance()
		if p.at(token.MATCH) {
			return p.parseConstMatch(t.Pos)
		}
		key := p.parseConstKey()
		p.expect(token.ASSIGN)
		val := p.parseValue()
		p.expect(token.SEMI)
		return &ast.ConstLine{Key: key, Value: val, Pos: t.Pos}

	case token.TAKE:
		p.advance()
		key := p.parseConstKey()
		p.expect(token.ASSIGN)
		val := p.parseValue()
		p.expect(token.SEMI)
		return &ast.TakeLine{Key: key, Value: val, Pos: t.Pos}

	case token.LEAK:
		p.advance()
		name := p.expect(token.IDENT)
		p.expect(token.SEMI)
		return &ast.ConstLeakLine{Name: token.NewVar(name.Lit), Pos: t.Pos}

	case token.SETRES:
		p.advance()
		effect := false
		if p.at(token.BANG) {
			p.advance()
			effect = true
		}
		val := p.parseValue()
		p.expect(token.SEMI)
		return &ast.SetResultHandleLine{Value: val, EffectExpected: effect, Pos: t.Pos}

	case token.UNUSED:
		p.advance()
		p.expect(token.ASSIGN)
		args := p.parseArgList(token.SEMI)
		p.expect(token.SEMI)
		return &ast.SetArgsLine{Args: args, Pos: t.Pos}

	case token.INLINE:
		return p.parseArgsRepeat()

	case token.SELECT:
		return p.parseSelect()

	case token.GSWITCH:
		return p.parseGSwitch()

	case token.MATCH:
		return p.parseMatch()

	case token.OP:
		return p.parseOp()

	case token.NOOP:
		p.advance()
		p.expect(token.SEMI)
		return &ast.NoOpLine{}

	case token.LBRACE:
		p.advance()
		body := p.parseBlock(token.RBRACE)
		p.expect(token.RBRACE)
		return &ast.ExpandLine{Body: body}

	case token.WHILE:
		return p.parseWhile("")

	case token.DO:
		return p.parseDoWhile("")

	case token.GWHILE:
		return p.parseGWhile("")

	case token.BREAK:
		p.advance()
		p.expect(token.SEMI)
		if len(p.loopStack) == 0 {
			p.errorf(t.Pos, "break outside of any loop")
			return &ast.IgnoreLine{}
		}
		lbl := p.loopStack[len(p.loopStack)-1].breakLabel
		return &ast.GotoLine{Label: lbl, Pos: t.Pos}

	case token.CONTINUE:
		p.advance()
		p.expect(token.SEMI)
		if len(p.loopStack) == 0 {
			p.errorf(t.Pos, "continue outside of any loop")
			return &ast.IgnoreLine{}
		}
		lbl := p.loopStack[len(p.loopStack)-1].continueLabel
		return &ast.GotoLine{Label: lbl, Pos: t.Pos}

	case token.AT:
		if p.peekKind(1) == token.LBRACE {
			p.advance()
			p.advance()
			body := p.parseBlock(token.RBRACE)
			p.expect(token.RBRACE)
			return &ast.InlineBlockLine{Body: body}
		}
		return p.parseOtherLine()

	case token.IDENT:
		if p.peekKind(1) == token.COLON {
			switch p.peekKind(2) {
			case token.WHILE:
				name := p.advance()
				p.advance()
				return p.parseWhile(token.NewVar(name.Lit))
			case token.DO:
				name := p.advance()
				p.advance()
				return p.parseDoWhile(token.NewVar(name.Lit))
			case token.GWHILE:
				name := p.advance()
				p.advance()
				return p.parseGWhile(token.NewVar(name.Lit))
			}
		}
		return p.parseOtherLine()

	default:
		return p.parseOtherLine()
	}
}

func (p *parser) parseOtherLine() ast.LogicLine {
	pos := p.cur().Pos
	args := p.parseArgList(token.SEMI)
	p.expect(token.SEMI)
	return &ast.OtherLine{Args: args, Pos: pos}
}

func (p *parser) parseGoto() ast.LogicLine {
	pos := p.advance().Pos
	label := p.expect(token.IDENT)
	var cond ast.Tree
	if !p.at(token.SEMI) {
		cond = p.parseCond()
	}
	p.expect(token.SEMI)
	return &ast.GotoLine{Label: token.NewVar(label.Lit), Cond: cond, Pos: pos}
}

// parseConstKey parses a plain name or a `base.name` value-bind key
// (spec §4.7).
func (p *parser) parseConstKey() ast.ConstKey {
	v := p.parseValue()
	switch v := v.(type) {
	case *ast.Var:
		return ast.ConstKey{Name: v.Name}
	case *ast.ValueBind:
		return ast.ConstKey{Name: v.Name, Bind: v}
	default:
		p.errorf(token.NoPos, "invalid const/take key")
		return ast.ConstKey{}
	}
}

func (p *parser) parseOp() ast.LogicLine {
	pos := p.advance().Pos
	kindTok := p.expect(token.IDENT)
	kind, ok := opKindByName[kindTok.Lit]
	if !ok {
		p.errorf(kindTok.Pos, "unknown op kind %q", kindTok.Lit)
	}
	result := p.parseValue()
	p.expect(token.COMMA)
	a := p.parseValue()
	var b ast.Value
	if kind.IsBinary() {
		p.expect(token.COMMA)
		b = p.parseValue()
	} else if p.at(token.COMMA) {
		p.advance()
		b = p.parseValue()
	}
	p.expect(token.SEMI)
	return &ast.OpLine{Op: ast.Op{Kind: kind, Result: result, A: a, B: b, Pos: pos}}
}

func (p *parser) parseArgsRepeat() ast.LogicLine {
	pos := p.advance().Pos // 'inline'
	if p.at(token.STAR) {
		p.advance()
		p.expect(token.AT)
		body := p.parseBraceBlock()
		return &ast.ArgsRepeatLine{Count: nil, Body: body, Pos: pos}
	}
	count := p.parseValue()
	p.expect(token.AT)
	body := p.parseBraceBlock()
	return &ast.ArgsRepeatLine{Count: count, Body: body, Pos: pos}
}

func (p *parser) parseBraceBlock() ast.Block {
	p.expect(token.LBRACE)
	body := p.parseBlock(token.RBRACE)
	p.expect(token.RBRACE)
	return body
}

func (p *parser) parseSelect() ast.LogicLine {
	pos := p.advance().Pos
	val := p.parseValue()
	p.expect(token.LBRACE)
	var cases []ast.LogicLine
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		cases = append(cases, p.parseStmt())
	}
	p.expect(token.RBRACE)
	return &ast.SelectLine{Value: val, Cases: cases, Pos: pos}
}

func (p *parser) parseIDList() []int64 {
	var ids []int64
	for {
		tok := p.expect(token.INT)
		ids = append(ids, parseIntLit(tok.Lit))
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return ids
}

func parseIntLit(lit string) int64 {
	var neg bool
	if len(lit) > 0 && lit[0] == '-' {
		neg = true
		lit = lit[1:]
	}
	var n int64
	if len(lit) > 2 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X') {
		for _, c := range lit[2:] {
			n = n*16 + int64(hexVal(c))
		}
	} else {
		for _, c := range lit {
			if c < '0' || c > '9' {
				break
			}
			n = n*10 + int64(c-'0')
		}
	}
	if neg {
		n = -n
	}
	return n
}

func hexVal(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return 0
	}
}

func (p *parser) parseGSwitch() ast.LogicLine {
	pos := p.advance().Pos
	val := p.parseValue()
	p.expect(token.LBRACE)

	var cases []ast.GSwitchCase
	var catches []ast.GSwitchCatch
	var extra ast.Block
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.CASE:
			p.advance()
			ids := p.parseIDList()
			var bind token.Var
			if p.at(token.AS) {
				p.advance()
				bind = token.NewVar(p.expect(token.IDENT).Lit)
			}
			p.expect(token.COLON)
			body := p.parseBraceBlock()
			cases = append(cases, ast.GSwitchCase{IDs: ids, Bind: bind, Body: body})
		case token.CATCH:
			p.advance()
			var kind ast.GSwitchCatchKind
			switch p.cur().Kind {
			case token.LT:
				kind = ast.CatchUnderflow
			case token.BANG:
				kind = ast.CatchMiss
			case token.GT:
				kind = ast.CatchOverflow
			default:
				p.errorf(p.cur().Pos, "expected <, !, or > after catch")
			}
			p.advance()
			var bind token.Var
			if p.at(token.AS) {
				p.advance()
				bind = token.NewVar(p.expect(token.IDENT).Lit)
			}
			p.expect(token.COLON)
			body := p.parseBraceBlock()
			catches = append(catches, ast.GSwitchCatch{Kind: kind, Bind: bind, Body: body})
		case token.EXTRA:
			p.advance()
			p.expect(token.COLON)
			extra = p.parseBraceBlock()
		default:
			p.errorf(p.cur().Pos, "expected case, catch, or extra in gswitch")
			p.synchronize()
		}
	}
	p.expect(token.RBRACE)
	return &ast.GSwitchLine{Value: val, Cases: cases, Catches: catches, Extra: extra, Pos: pos}
}

// parseMatchAtomSpec parses one atom shared by match and const match
// patterns: `[!] [take] [name=] (lit('|'lit)* | _) [? guard]`. constMode
// enables the `take`/`?guard` extensions that only const match uses.
func (p *parser) parseMatchAtomSpec(constMode bool) (setRes, doTake bool, name token.Var, lits []token.Var, guard ast.Value) {
	if p.at(token.BANG) {
		p.advance()
		setRes = true
	}
	if constMode && p.at(token.TAKE) {
		p.advance()
		doTake = true
	}
	if p.at(token.IDENT) && p.peekKind(1) == token.ASSIGN {
		name = token.NewVar(p.advance().Lit)
		p.advance() // '='
	}
	if p.at(token.UNUSED) {
		p.advance()
	} else {
		for {
			lit := p.cur()
			switch lit.Kind {
			case token.IDENT, token.INT, token.FLOAT, token.STRING:
				p.advance()
				lits = append(lits, token.NewVar(lit.Lit))
			default:
				p.errorf(lit.Pos, "expected literal in match pattern, got %s", lit.Kind)
			}
			if p.at(token.PIPE) {
				p.advance()
				continue
			}
			break
		}
	}
	if constMode && p.at(token.QMARK) {
		p.advance()
		guard = p.parseValue()
	}
	return
}

func (p *parser) parseMatchPat() ast.MatchPat {
	var pat ast.MatchPat
	target := &pat.Prefix
	for !p.at(token.COLON) && !p.at(token.EOF) {
		if p.at(token.AT) {
			p.advance()
			pat.HasSplat = true
			target = &pat.Suffix
			if p.at(token.COMMA) {
				p.advance()
			}
			continue
		}
		setRes, _, name, lits, _ := p.parseMatchAtomSpec(false)
		*target = append(*target, ast.MatchAtom{Name: name, Literals: lits, SetRes: setRes})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return pat
}

func (p *parser) parseConstMatchPat() ast.ConstMatchPat {
	var pat ast.ConstMatchPat
	target := &pat.Prefix
	for !p.at(token.COLON) && !p.at(token.EOF) {
		if p.at(token.AT) {
			p.advance()
			pat.HasSplat = true
			target = &pat.Suffix
			if p.at(token.COMMA) {
				p.advance()
			}
			continue
		}
		setRes, doTake, name, lits, guard := p.parseMatchAtomSpec(true)
		*target = append(*target, ast.ConstMatchAtom{Name: name, Literals: lits, Guard: guard, SetRes: setRes, DoTake: doTake})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return pat
}

func (p *parser) parseMatch() ast.LogicLine {
	pos := p.advance().Pos
	p.expect(token.LBRACE)
	var cases []ast.MatchCase
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		pat := p.parseMatchPat()
		p.expect(token.COLON)
		body := p.parseBraceBlock()
		cases = append(cases, ast.MatchCase{Pat: pat, Body: body})
	}
	p.expect(token.RBRACE)
	return &ast.MatchLine{Cases: cases, Pos: pos}
}

// parseConstMatch parses `const match { pat: body ... }`; the `const`
// keyword itself was already consumed by the caller.
func (p *parser) parseConstMatch(pos token.Pos) ast.LogicLine {
	p.advance() // 'match'
	p.expect(token.LBRACE)
	var cases []ast.ConstMatchCase
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		pat := p.parseConstMatchPat()
		p.expect(token.COLON)
		body := p.parseBraceBlock()
		cases = append(cases, ast.ConstMatchCase{Pat: pat, Body: body})
	}
	p.expect(token.RBRACE)
	return &ast.ConstMatchLine{Cases: cases, Pos: pos}
}

// parseWhile desugars `while cond { body }` into
// `goto end !cond; head: body [continue:] goto head cond; end: [break:]`,
// following the original implementation's make_while (spec SPEC_FULL.md
// §3 desugarMeta).
func (p *parser) parseWhile(loopName token.Var) ast.LogicLine {
	pos := p.advance().Pos
	cond := p.parseCond()
	endLbl, headLbl := p.freshTag(), p.freshTag()
	breakLbl, contLbl := loopLabelNames(loopName, "break"), loopLabelNames(loopName, "continue")
	if loopName.Empty() {
		breakLbl, contLbl = p.freshTag(), p.freshTag()
	}
	p.loopStack = append(p.loopStack, loopLabels{breakLabel: breakLbl, continueLabel: contLbl})
	body := p.parseBraceBlock()
	p.loopStack = p.loopStack[:len(p.loopStack)-1]

	res := ast.Block{
		&ast.GotoLine{Label: endLbl, Cond: negateTree(cond), Pos: pos},
		&ast.LabelLine{Name: headLbl, Pos: pos},
	}
	res = append(res, body...)
	res = append(res, &ast.LabelLine{Name: contLbl, Pos: pos})
	res = append(res,
		&ast.GotoLine{Label: headLbl, Cond: cond, Pos: pos},
		&ast.LabelLine{Name: endLbl, Pos: pos},
		&ast.LabelLine{Name: breakLbl, Pos: pos},
	)
	return &ast.ExpandLine{Body: res}
}

// parseDoWhile desugars `do { body } while cond;`, following make_do_while.
func (p *parser) parseDoWhile(loopName token.Var) ast.LogicLine {
	pos := p.advance().Pos
	breakLbl, contLbl := loopLabelNames(loopName, "break"), loopLabelNames(loopName, "continue")
	if loopName.Empty() {
		breakLbl, contLbl = p.freshTag(), p.freshTag()
	}
	headLbl := p.freshTag()
	p.loopStack = append(p.loopStack, loopLabels{breakLabel: breakLbl, continueLabel: contLbl})
	body := p.parseBraceBlock()
	p.loopStack = p.loopStack[:len(p.loopStack)-1]
	p.expect(token.WHILE)
	cond := p.parseCond()
	p.expect(token.SEMI)

	res := ast.Block{&ast.LabelLine{Name: headLbl, Pos: pos}}
	res = append(res, body...)
	res = append(res,
		&ast.LabelLine{Name: contLbl, Pos: pos},
		&ast.GotoLine{Label: headLbl, Cond: cond, Pos: pos},
		&ast.LabelLine{Name: breakLbl, Pos: pos},
	)
	return &ast.ExpandLine{Body: res}
}

// parseGWhile desugars `gwhile cond { body }`: unlike while, the guard
// check happens after the first iteration's label placement but before
// running the body, by jumping straight to the check on entry
// (make_gwhile).
func (p *parser) parseGWhile(loopName token.Var) ast.LogicLine {
	pos := p.advance().Pos
	cond := p.parseCond()
	toLbl, headLbl := p.freshTag(), p.freshTag()
	breakLbl, contLbl := loopLabelNames(loopName, "break"), loopLabelNames(loopName, "continue")
	if loopName.Empty() {
		breakLbl, contLbl = p.freshTag(), p.freshTag()
	}
	p.loopStack = append(p.loopStack, loopLabels{breakLabel: breakLbl, continueLabel: contLbl})
	body := p.parseBraceBlock()
	p.loopStack = p.loopStack[:len(p.loopStack)-1]

	res := ast.Block{
		&ast.GotoLine{Label: toLbl, Pos: pos}, // always
		&ast.LabelLine{Name: headLbl, Pos: pos},
	}
	res = append(res, body...)
	res = append(res, &ast.LabelLine{Name: toLbl, Pos: pos})
	res = append(res, &ast.LabelLine{Name: contLbl, Pos: pos})
	res = append(res,
		&ast.GotoLine{Label: headLbl, Cond: cond, Pos: pos},
		&ast.LabelLine{Name: breakLbl, Pos: pos},
	)
	return &ast.ExpandLine{Body: res}
}

func loopLabelNames(loopName token.Var, suffix string) token.Var {
	if loopName.Empty() {
		return token.Var("")
	}
	return token.NewVar(loopName.String() + "_" + suffix)
}

// negateTree builds the logical negation of t, used by while's
// jump-to-end-unless-true lowering. Atom negation reuses JumpCmp.Negate
// where a direct token exists; And/Or apply De Morgan's law.
func negateTree(t ast.Tree) ast.Tree {
	switch t := t.(type) {
	case *ast.Atom:
		if neg, ok := t.Op.Negate(); ok {
			return &ast.Atom{Op: neg, A: t.A, B: t.B, Pos: t.Pos}
		}
		// StrictEqual/StrictNotEqual have no single-token negation at the
		// MDT instruction level (Negate reports that), but as a logical
		// matter the two are each other's negation.
		switch t.Op {
		case ast.StrictEqual:
			return &ast.Atom{Op: ast.StrictNotEqual, A: t.A, B: t.B, Pos: t.Pos}
		case ast.StrictNotEqual:
			return &ast.Atom{Op: ast.StrictEqual, A: t.A, B: t.B, Pos: t.Pos}
		default:
			return t
		}
	case *ast.And:
		return &ast.Or{L: negateTree(t.L), R: negateTree(t.R)}
	case *ast.Or:
		return &ast.And{L: negateTree(t.L), R: negateTree(t.R)}
	default:
		return t
	}
}
