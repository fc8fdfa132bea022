package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/mdtc/lang/scanner"
)

// Tokenize implements the `tokenize` subcommand: scan each file and print
// its tokens one per line.
func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			firstErr = err
			continue
		}
		_, toks, err := scanner.ScanAll(path, src)
		for _, t := range toks {
			fmt.Fprintf(stdio.Stdout, "%s %s", path, t.Kind)
			if t.Lit != "" {
				fmt.Fprintf(stdio.Stdout, " %q", t.Lit)
			}
			fmt.Fprintln(stdio.Stdout)
		}
		if err != nil {
			scanner.PrintError(stdio.Stderr, err)
			firstErr = err
		}
	}
	return firstErr
}
