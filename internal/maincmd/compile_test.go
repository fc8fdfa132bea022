package maincmd_test

import (
	"flag"
	"os"
	"testing"

	"github.com/mna/mdtc/internal/filetest"
	"github.com/mna/mdtc/lang/compiler"
	"github.com/mna/mdtc/lang/parser"
	"github.com/mna/mdtc/lang/tagcode"
)

var update = flag.Bool("test.update-compile-tests", false, "update the compile golden files")

// TestCompileGoldenFiles drives the same scan/parse/compile/resolve
// pipeline the `compile` subcommand runs, comparing the rendered program
// against a checked-in golden file per testdata/*.mdtc source.
func TestCompileGoldenFiles(t *testing.T) {
	const dir = "testdata"
	for _, fi := range filetest.SourceFiles(t, dir, ".mdtc") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(dir + "/" + fi.Name())
			if err != nil {
				t.Fatal(err)
			}
			block, file, err := parser.Parse(fi.Name(), src)
			if err != nil {
				t.Fatalf("parse: %s", err)
			}
			meta := compiler.New(file)
			if err := meta.Compile(block); err != nil {
				t.Fatalf("compile: %s", err)
			}
			if err := meta.Diagnostics().Err(); err != nil {
				t.Fatalf("diagnostics: %s", err)
			}
			prog, err := tagcode.Resolve(meta.Buffer())
			if err != nil {
				t.Fatalf("resolve: %s", err)
			}
			filetest.DiffOutput(t, fi, tagcode.Render(prog), dir, update)
		})
	}
}
