// Package grammar holds a verified EBNF description of the surface syntax
// lang/scanner and lang/parser implement, checked the way the sibling
// project checks its own language's grammar file: by feeding it to
// golang.org/x/exp/ebnf, the same package cmd/godoc historically used to
// self-test the Go language specification's own embedded grammar.
package grammar

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

func TestEBNF(t *testing.T) {
	const filename = "grammar.ebnf"
	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := ebnf.Parse(filename, f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(g, "Chunk"); err != nil {
		t.Fatal(err)
	}
}
