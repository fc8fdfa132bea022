package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/mna/mainer"

	"github.com/mna/mdtc/lang/ast"
	"github.com/mna/mdtc/lang/parser"
)

// Parse implements the `parse` subcommand: run the scanner and parser and
// print the resulting AST. With --debug, the
// AST is dumped via go-spew instead of run through the source-like
// pretty-printer, surfacing every field (including ones the printer elides,
// such as ReprVar vs Var) for troubleshooting the desugaring passes.
func (c *Cmd) Parse(_ context.Context, stdio mainer.Stdio, args []string) error {
	printer := ast.Printer{Output: stdio.Stdout}
	var firstErr error
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			firstErr = err
			continue
		}
		block, _, err := parser.Parse(path, src)
		if c.Debug {
			spew.Fdump(stdio.Stdout, block)
		} else if printErr := printer.Print(block); printErr != nil {
			fmt.Fprintln(stdio.Stderr, printErr)
			firstErr = printErr
		}
		if err != nil {
			parser.PrintError(stdio.Stderr, err)
			firstErr = err
		}
	}
	return firstErr
}
