package scanner

import (
	"testing"

	"github.com/mna/mdtc/lang/token"
	"github.com/stretchr/testify/require"
)

func kinds(toks []TokenInfo) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanKeywordsAndIdents(t *testing.T) {
	_, toks, err := ScanAll("t", []byte("const take x setres"))
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.CONST, token.TAKE, token.IDENT, token.SETRES, token.EOF}, kinds(toks))
	require.Equal(t, "x", toks[2].Lit)
}

func TestScanOperators(t *testing.T) {
	_, toks, err := ScanAll("t", []byte("== != === !== <= >= && || -> .."))
	require.NoError(t, err)
	require.Equal(t, []token.Kind{
		token.EQ, token.NE, token.STRICTEQ, token.STRICTNE, token.LE, token.GE,
		token.ANDAND, token.OROR, token.ARROW, token.DOTDOT, token.EOF,
	}, kinds(toks))
}

func TestScanNumbers(t *testing.T) {
	_, toks, err := ScanAll("t", []byte("123 -45 1.5 0x1F 1e10"))
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.INT, token.INT, token.FLOAT, token.INT, token.FLOAT, token.EOF}, kinds(toks))
	require.Equal(t, "-45", toks[1].Lit)
	require.Equal(t, "0x1F", toks[3].Lit)
}

func TestScanString(t *testing.T) {
	_, toks, err := ScanAll("t", []byte(`"hello\nworld"`))
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello\nworld", toks[0].Lit)
}

func TestScanCommentsAreSkipped(t *testing.T) {
	_, toks, err := ScanAll("t", []byte("const # line comment\nx // also\n= 1 /* block */ ;"))
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.CONST, token.IDENT, token.ASSIGN, token.INT, token.SEMI, token.EOF}, kinds(toks))
}

func TestScanUnterminatedStringReportsError(t *testing.T) {
	_, _, err := ScanAll("t", []byte(`"unterminated`))
	require.Error(t, err)
}
