package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer pretty-prints a Block, adapted from this repository's sibling AST
// package: a depth-first walk writing one line per node, each indented by
// ". " repeated to its nesting depth. Unlike the teacher's Printer, this one
// walks three mutually-recursive sum types (Value, Tree, LogicLine) instead
// of a single Node interface, since this language's AST does not share a
// common Span()-bearing root node (spec §3's Value/CmpTree/LogicLine are
// each their own closed sum type).
type Printer struct {
	// Output is the writer pretty-printed text is written to.
	Output io.Writer
	// NodeFmt is the format verb used for leaf scalars (names, literals).
	// Defaults to "%v".
	NodeFmt string

	err   error
	depth int
}

// Print pretty-prints a whole program.
func (p *Printer) Print(b Block) error {
	if p.NodeFmt == "" {
		p.NodeFmt = "%v"
	}
	p.printBlock(b)
	return p.err
}

func (p *Printer) line(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	prefix := strings.Repeat(". ", p.depth)
	_, p.err = fmt.Fprintf(p.Output, prefix+format+"\n", args...)
}

func (p *Printer) printBlock(b Block) {
	for _, ln := range b {
		p.printLine(ln)
	}
}

func (p *Printer) indented(f func()) {
	p.depth++
	f()
	p.depth--
}

func (p *Printer) printLine(ln LogicLine) {
	if p.err != nil {
		return
	}
	switch ln := ln.(type) {
	case *OpLine:
		p.line("op %s", ln.Op.Kind)
		p.indented(func() {
			p.printValue(ln.Op.Result)
			p.printValue(ln.Op.A)
			if ln.Op.B != nil {
				p.printValue(ln.Op.B)
			}
		})
	case *LabelLine:
		p.line("label %s", ln.Name)
	case *GotoLine:
		p.line("goto %s", ln.Label)
		p.indented(func() { p.printTree(ln.Cond) })
	case *OtherLine:
		p.line("line")
		p.indented(func() { p.printArgs(ln.Args) })
	case *ExpandLine:
		p.line("expand")
		p.indented(func() { p.printBlock(ln.Body) })
	case *InlineBlockLine:
		p.line("inlineBlock")
		p.indented(func() { p.printBlock(ln.Body) })
	case *SelectLine:
		p.line("select")
		p.indented(func() {
			p.printValue(ln.Value)
			for i, c := range ln.Cases {
				p.line("case %d", i)
				p.indented(func() { p.printLine(c) })
			}
		})
	case *GSwitchLine:
		p.line("gswitch")
		p.indented(func() {
			p.printValue(ln.Value)
			for _, c := range ln.Cases {
				p.line("case %v bind=%s", c.IDs, c.Bind)
				p.indented(func() { p.printBlock(c.Body) })
			}
			for _, c := range ln.Catches {
				p.line("catch %d bind=%s", c.Kind, c.Bind)
				p.indented(func() { p.printBlock(c.Body) })
			}
			if len(ln.Extra) > 0 {
				p.line("extra")
				p.indented(func() { p.printBlock(ln.Extra) })
			}
		})
	case *NoOpLine:
		p.line("noop")
	case *IgnoreLine:
		p.line("ignore")
	case *ConstLine:
		p.line("const %s", constKeyString(ln.Key))
		p.indented(func() { p.printValue(ln.Value) })
	case *TakeLine:
		p.line("take %s", constKeyString(ln.Key))
		p.indented(func() { p.printValue(ln.Value) })
	case *ConstLeakLine:
		p.line("leak %s", ln.Name)
	case *SetResultHandleLine:
		p.line("setres effect=%v", ln.EffectExpected)
		p.indented(func() { p.printValue(ln.Value) })
	case *SetArgsLine:
		p.line("setargs")
		p.indented(func() { p.printArgs(ln.Args) })
	case *ArgsRepeatLine:
		p.line("inlineRepeat")
		p.indented(func() {
			if ln.Count != nil {
				p.printValue(ln.Count)
			}
			p.printBlock(ln.Body)
		})
	case *MatchLine:
		p.line("match")
		p.indented(func() {
			for i, c := range ln.Cases {
				p.line("case %d", i)
				p.indented(func() { p.printBlock(c.Body) })
			}
		})
	case *ConstMatchLine:
		p.line("constMatch")
		p.indented(func() {
			for i, c := range ln.Cases {
				p.line("case %d", i)
				p.indented(func() { p.printBlock(c.Body) })
			}
		})
	default:
		p.line("?%T", ln)
	}
}

func constKeyString(k ConstKey) string {
	if !k.IsBind() {
		return k.Name.String()
	}
	return "<bind>." + k.Name.String()
}

func (p *Printer) printValue(v Value) {
	if p.err != nil {
		return
	}
	if v == nil {
		p.line("nil")
		return
	}
	switch v := v.(type) {
	case *Var:
		p.line("var "+p.NodeFmt, v.Name)
	case *ReprVar:
		p.line("reprVar "+p.NodeFmt, v.Name)
	case *DExp:
		p.line("dexp")
		p.indented(func() {
			if v.Result != nil {
				p.printValue(v.Result)
			}
			p.printBlock(v.Body)
		})
	case *ResultHandle:
		p.line("$")
	case *Binder:
		p.line("..")
	case *ValueBind:
		p.line("bind ."+p.NodeFmt, v.Name)
		p.indented(func() { p.printValue(v.Base) })
	case *ValueBindRef:
		p.line("bindRef kind=%d", v.TargetKind)
		p.indented(func() { p.printValue(v.Base) })
	case *Cmper:
		p.line("cmper")
		p.indented(func() { p.printTree(v.Tree) })
	case *BuiltinFunc:
		p.line("builtin "+p.NodeFmt, v.Name)
	case *ClosuredValue:
		p.line("closure captureArgs=%v", v.CaptureArgs)
		p.indented(func() { p.printValue(v.Underlying) })
	default:
		p.line("?%T", v)
	}
}

func (p *Printer) printTree(t Tree) {
	if p.err != nil {
		return
	}
	switch t := t.(type) {
	case *Atom:
		p.line("atom %s", t.Op)
		p.indented(func() {
			p.printValue(t.A)
			p.printValue(t.B)
		})
	case *And:
		p.line("and")
		p.indented(func() {
			p.printTree(t.L)
			p.printTree(t.R)
		})
	case *Or:
		p.line("or")
		p.indented(func() {
			p.printTree(t.L)
			p.printTree(t.R)
		})
	case *Deps:
		p.line("deps")
		p.indented(func() {
			p.printBlock(t.Block)
			p.printTree(t.Cond)
		})
	case *InScope:
		p.line("inScope")
		p.indented(func() {
			p.printValue(t.Handle)
			p.printTree(t.Cond)
		})
	default:
		p.line("?%T", t)
	}
}

func (p *Printer) printArgs(a Args) {
	if !a.HasSplat {
		for _, v := range a.Normal {
			p.printValue(v)
		}
		return
	}
	for _, v := range a.Prefix {
		p.printValue(v)
	}
	p.line("@")
	for _, v := range a.Suffix {
		p.printValue(v)
	}
}
