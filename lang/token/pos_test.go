package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilePosition(t *testing.T) {
	src := []byte("ab\ncd\n\nef")
	f := NewFile("test.mdt", src)

	pos := f.Position(Pos(0))
	require.Equal(t, 1, pos.Line)
	require.Equal(t, 1, pos.Column)

	pos = f.Position(Pos(3))
	require.Equal(t, 2, pos.Line)
	require.Equal(t, 1, pos.Column)

	pos = f.Position(Pos(7))
	require.Equal(t, 4, pos.Line)
	require.Equal(t, 1, pos.Column)
	require.Equal(t, "test.mdt", pos.Filename)
}

func TestNoPos(t *testing.T) {
	require.False(t, NoPos.IsValid())
	require.True(t, Pos(1).IsValid())
}
