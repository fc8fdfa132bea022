package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/mdtc/lang/compiler"
	"github.com/mna/mdtc/lang/diag"
	"github.com/mna/mdtc/lang/lint"
	"github.com/mna/mdtc/lang/parser"
	"github.com/mna/mdtc/lang/tagcode"
)

// Compile implements the `compile` subcommand: scan, parse, compile and
// resolve each file, printing the resulting Mindustry Logic program. Fatal
// diagnostics abort that file and move to the next; advisory diagnostics and
// (unless --no-lint) lint findings are printed to stderr but never abort.
func (c *Cmd) Compile(_ context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		if err := c.compileOne(stdio, path); err != nil {
			firstErr = err
		}
	}
	return firstErr
}

// Lint implements the `lint` subcommand: run the full pipeline but print
// only diagnostics and lint findings, never the compiled program.
func (c *Cmd) Lint(_ context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			firstErr = err
			continue
		}
		block, file, err := parser.Parse(path, src)
		if err != nil {
			parser.PrintError(stdio.Stderr, err)
			firstErr = err
			continue
		}
		meta := compiler.New(file)
		if err := meta.Compile(block); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			firstErr = err
			continue
		}
		printDiagnostics(stdio, path, meta.Diagnostics())
		prog, err := tagcode.Resolve(meta.Buffer())
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			firstErr = err
			continue
		}
		for _, f := range lint.Check(prog) {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, f)
		}
	}
	return firstErr
}

func (c *Cmd) compileOne(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	block, file, err := parser.Parse(path, src)
	if err != nil {
		parser.PrintError(stdio.Stderr, err)
		return err
	}

	meta := compiler.New(file)
	meta.SetRepeatLimit(c.cfg.RepeatLimit)
	meta.SetNoOp(c.cfg.NoOp)
	if err := meta.Compile(block); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if err := meta.Diagnostics().Err(); err != nil {
		diag.PrintError(stdio.Stderr, err)
		return err
	}
	printDiagnostics(stdio, path, meta.Diagnostics())

	prog, err := tagcode.Resolve(meta.Buffer())
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if !c.NoLint {
		for _, f := range lint.Check(prog) {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, f)
		}
	}
	fmt.Fprint(stdio.Stdout, tagcode.Render(prog))
	return nil
}

func printDiagnostics(stdio mainer.Stdio, path string, bag *diag.Bag) {
	for _, e := range bag.Advisory {
		fmt.Fprintf(stdio.Stderr, "%s: advisory: %s\n", path, e)
	}
}
