package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := Kind(0); k < maxKind; k++ {
		require.NotEmpty(t, k.String())
	}
	require.Equal(t, "invalid", Kind(-1).String())
	require.Equal(t, "invalid", Kind(maxKind+1).String())
}

func TestKeywords(t *testing.T) {
	for text, k := range Keywords {
		got, ok := Keywords[text]
		require.True(t, ok)
		require.Equal(t, k, got)
	}
	require.Equal(t, CONST, Keywords["const"])
	require.Equal(t, UNUSED, Keywords["_"])
}

func TestNewVarInterns(t *testing.T) {
	a := NewVar("foo")
	b := NewVar("foo")
	require.Equal(t, a, b)
	require.Equal(t, "foo", a.String())
}

func TestVarEmpty(t *testing.T) {
	require.True(t, Var("").Empty())
	require.False(t, Anonymous.Empty())
	require.Equal(t, "__", Anonymous.String())
}
