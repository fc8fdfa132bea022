package ast

import "github.com/mna/mdtc/lang/token"

// CollectLabels walks v's body (for a DExp) or a statement list looking for
// LabelLine declarations, returning their names in source order. It is used
// to populate ConstData.labels (spec §3): "the set of labels textually
// declared inside the value's body that must be α-renamed on each
// expansion". Nested DExps are walked too: a label inside a nested deferred
// expression is still part of the outer const's textual body and must be
// renamed consistently whenever the outer const is expanded.
//
// Nested ClosuredValue underlying values are walked as well, and
// ArgsRepeat/Select/GSwitch/Match bodies are reached by plain recursion
// through LogicLine — those are ordinary Block values and are walked the
// same way.
func CollectLabels(v Value) []token.Var {
	var out []token.Var
	var walkBlock func(b Block)
	var walkValue func(v Value)

	walkValue = func(v Value) {
		switch v := v.(type) {
		case *DExp:
			walkBlock(v.Body)
		case *ValueBind:
			walkValue(v.Base)
		case *ValueBindRef:
			walkValue(v.Base)
		case *Cmper:
			walkTree(v.Tree, &out, walkBlock)
		case *ClosuredValue:
			walkValue(v.Underlying)
		}
	}

	walkBlock = func(b Block) {
		for _, ln := range b {
			collectLineLabels(ln, &out, walkValue, walkBlock)
		}
	}

	walkValue(v)
	return out
}

func walkTree(t Tree, out *[]token.Var, walkBlock func(Block)) {
	switch t := t.(type) {
	case *And:
		walkTree(t.L, out, walkBlock)
		walkTree(t.R, out, walkBlock)
	case *Or:
		walkTree(t.L, out, walkBlock)
		walkTree(t.R, out, walkBlock)
	case *Deps:
		walkBlock(t.Block)
		walkTree(t.Cond, out, walkBlock)
	case *InScope:
		walkTree(t.Cond, out, walkBlock)
	}
}

func collectLineLabels(ln LogicLine, out *[]token.Var, walkValue func(Value), walkBlock func(Block)) {
	switch ln := ln.(type) {
	case *LabelLine:
		*out = append(*out, ln.Name)
	case *GotoLine:
		walkTree(ln.Cond, out, walkBlock)
	case *ExpandLine:
		walkBlock(ln.Body)
	case *InlineBlockLine:
		walkBlock(ln.Body)
	case *SelectLine:
		walkValue(ln.Value)
		for _, c := range ln.Cases {
			collectLineLabels(c, out, walkValue, walkBlock)
		}
	case *GSwitchLine:
		walkValue(ln.Value)
		for _, c := range ln.Cases {
			walkBlock(c.Body)
		}
		for _, c := range ln.Catches {
			walkBlock(c.Body)
		}
		walkBlock(ln.Extra)
	case *ConstLine:
		walkValue(ln.Value)
	case *TakeLine:
		walkValue(ln.Value)
	case *SetResultHandleLine:
		walkValue(ln.Value)
	case *ArgsRepeatLine:
		walkBlock(ln.Body)
	case *MatchLine:
		for _, c := range ln.Cases {
			walkBlock(c.Body)
		}
	case *ConstMatchLine:
		for _, c := range ln.Cases {
			walkBlock(c.Body)
		}
	case *OpLine:
		walkValue(ln.Op.Result)
		walkValue(ln.Op.A)
		if ln.Op.B != nil {
			walkValue(ln.Op.B)
		}
	case *OtherLine:
		walkArgs(ln.Args, walkValue)
	case *SetArgsLine:
		walkArgs(ln.Args, walkValue)
	}
}

func walkArgs(a Args, walkValue func(Value)) {
	if !a.HasSplat {
		for _, v := range a.Normal {
			walkValue(v)
		}
		return
	}
	for _, v := range a.Prefix {
		walkValue(v)
	}
	for _, v := range a.Suffix {
		walkValue(v)
	}
}
