package parser_test

import (
	"testing"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/parser"
)

func mustParse(t *testing.T, src string) ast.Block {
	t.Helper()
	block, _, err := parser.Parse("test.mdtc", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	return block
}

func TestParseBasicStatements(t *testing.T) {
	block := mustParse(t, `
const x = 5;
print x;
op add y, x, 1;
:start;
goto start;
`)
	if len(block) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(block))
	}
	if _, ok := block[0].(*ast.ConstLine); !ok {
		t.Errorf("stmt 0: expected *ast.ConstLine, got %T", block[0])
	}
	if _, ok := block[1].(*ast.OtherLine); !ok {
		t.Errorf("stmt 1: expected *ast.OtherLine, got %T", block[1])
	}
	if _, ok := block[2].(*ast.OpLine); !ok {
		t.Errorf("stmt 2: expected *ast.OpLine, got %T", block[2])
	}
	if _, ok := block[3].(*ast.LabelLine); !ok {
		t.Errorf("stmt 3: expected *ast.LabelLine, got %T", block[3])
	}
	if _, ok := block[4].(*ast.GotoLine); !ok {
		t.Errorf("stmt 4: expected *ast.GotoLine, got %T", block[4])
	}
}

func TestParseWhileDesugarsToGotoAndLabel(t *testing.T) {
	block := mustParse(t, `
while x < 10 {
	print x;
	op add x, x, 1;
}
`)
	if len(block) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(block))
	}
	exp, ok := block[0].(*ast.ExpandLine)
	if !ok {
		t.Fatalf("expected *ast.ExpandLine, got %T", block[0])
	}
	var gotos, labels int
	for _, line := range exp.Body {
		switch line.(type) {
		case *ast.GotoLine:
			gotos++
		case *ast.LabelLine:
			labels++
		}
	}
	if gotos == 0 || labels == 0 {
		t.Errorf("expected desugared while to contain Goto and Label lines, got %d gotos, %d labels", gotos, labels)
	}
}

func TestParseBreakContinueRequireEnclosingLoop(t *testing.T) {
	_, _, err := parser.Parse("test.mdtc", []byte("break;\n"))
	if err == nil {
		t.Fatal("expected error for break outside any loop")
	}
}

func TestParseBreakContinueInsideLoop(t *testing.T) {
	block := mustParse(t, `
while 1 == 1 {
	break;
	continue;
}
`)
	exp, ok := block[0].(*ast.ExpandLine)
	if !ok {
		t.Fatalf("expected *ast.ExpandLine, got %T", block[0])
	}
	var gotos int
	for _, line := range exp.Body {
		if _, ok := line.(*ast.GotoLine); ok {
			gotos++
		}
	}
	if gotos < 2 {
		t.Errorf("expected break/continue to each desugar to a goto, found %d", gotos)
	}
}

func TestParseMatch(t *testing.T) {
	block := mustParse(t, `
match {
	n=1, 2: {
		print n;
	}
	_: {
		noop;
	}
}
`)
	if len(block) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(block))
	}
	if _, ok := block[0].(*ast.MatchLine); !ok {
		t.Errorf("expected *ast.MatchLine, got %T", block[0])
	}
}

func TestParseGSwitch(t *testing.T) {
	block := mustParse(t, `
gswitch x {
case 0 as n: {
	print n;
}
catch !: {
	print "miss";
}
extra: {
	noop;
}
}
`)
	if len(block) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(block))
	}
	sw, ok := block[0].(*ast.GSwitchLine)
	if !ok {
		t.Fatalf("expected *ast.GSwitchLine, got %T", block[0])
	}
	if len(sw.Cases) != 1 {
		t.Errorf("expected 1 case, got %d", len(sw.Cases))
	}
	if len(sw.Catches) != 1 {
		t.Errorf("expected 1 catch, got %d", len(sw.Catches))
	}
	if len(sw.Extra) == 0 {
		t.Errorf("expected non-empty extra block")
	}
}

func TestParseOpStatement(t *testing.T) {
	block := mustParse(t, `op add y, 2, 3;`)
	op, ok := block[0].(*ast.OpLine)
	if !ok {
		t.Fatalf("expected *ast.OpLine, got %T", block[0])
	}
	if op.Op.Kind != ast.Add {
		t.Errorf("expected Add, got %v", op.Op.Kind)
	}
}

func TestParseTakeAndLeak(t *testing.T) {
	block := mustParse(t, `
take h = x.y;
leak h;
`)
	if _, ok := block[0].(*ast.TakeLine); !ok {
		t.Errorf("stmt 0: expected *ast.TakeLine, got %T", block[0])
	}
	if _, ok := block[1].(*ast.ConstLeakLine); !ok {
		t.Errorf("stmt 1: expected *ast.ConstLeakLine, got %T", block[1])
	}
}

func TestParseArgsRepeat(t *testing.T) {
	block := mustParse(t, `
inline 3@ {
	print _0;
}
`)
	rep, ok := block[0].(*ast.ArgsRepeatLine)
	if !ok {
		t.Fatalf("expected *ast.ArgsRepeatLine, got %T", block[0])
	}
	if rep.Count == nil {
		t.Errorf("expected a bounded repeat count, got nil (unbounded)")
	}
}

func TestParseArgsRepeatUnbounded(t *testing.T) {
	block := mustParse(t, `
inline *@ {
	print _0;
}
`)
	rep, ok := block[0].(*ast.ArgsRepeatLine)
	if !ok {
		t.Fatalf("expected *ast.ArgsRepeatLine, got %T", block[0])
	}
	if rep.Count != nil {
		t.Errorf("expected unbounded repeat (nil Count), got %v", rep.Count)
	}
}
