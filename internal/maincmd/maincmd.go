// Package maincmd implements the mdtc command-line driver: it wires the
// scanner, parser, compiler and tag-code resolver together behind a small
// set of subcommands (spec §1's CLI driver collaborator), the way the
// sibling project's own maincmd package wires its scanner/parser/resolver
// behind "tokenize"/"parse"/"resolve".
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "mdtc"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler for the Mindustry-Logic-targeting macro language.

The <command> can be one of:
       tokenize                  Run the scanner and print the resulting
                                  tokens.
       parse                     Run the scanner and parser and print the
                                  resulting abstract syntax tree.
       compile                   Run the full pipeline and print the
                                  resulting Mindustry Logic program.
       lint                      Run the full pipeline and print advisory
                                  diagnostics without emitting code.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Valid flag options for the <parse> command are:
       --debug                   Dump the full AST via go-spew instead of
                                  the source-like pretty-printer.

Valid flag options for the <compile> command are:
       --no-lint                 Skip the advisory lint pass.

More information on the mdtc repository:
       https://github.com/mna/mdtc
`, binName)
)

// Cmd is the parsed command line, populated by mainer.Parser and then
// dispatched through buildCmds the same way the sibling project's Cmd does
// (method name, lowercased, is the subcommand name).
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	NoLint bool `flag:"no-lint"`
	Debug  bool `flag:"debug"`

	cfg Config

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}
	if c.flags["no-lint"] && cmdName != "compile" {
		return fmt.Errorf("%s: invalid flag 'no-lint'", cmdName)
	}
	if c.flags["debug"] && cmdName != "parse" {
		return fmt.Errorf("%s: invalid flag 'debug'", cmdName)
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c.cfg = cfg
	return nil
}

// Main parses args, validates them, and runs the resolved subcommand,
// returning the process exit code to use.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands take a mainer.Stdio and a slice of paths and return an
// error, the same reflective dispatch shape the sibling project's own
// maincmd uses.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
