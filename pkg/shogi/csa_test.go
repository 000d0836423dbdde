package shogi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempCsa(t *testing.T, body string) string {
	t.Helper()
	var path = filepath.Join(t.TempDir(), "game.csa")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const sampleGame = `V2.2
N+sente
N-gote
PI
+
+7776FU
-3334FU
+8822UM
%TORYO
`

func TestReadCSA(t *testing.T) {
	var path = writeTempCsa(t, sampleGame)
	record, err := ReadCSA(path)
	require.NoError(t, err)

	// cursor is at the end of the game: the bishop trade happened
	require.False(t, record.Board().IsBlack())
	require.Equal(t, 1, record.Board().Hand(true, Bishop))
	require.Equal(t, MakePiece(Horse, true), record.Board().Piece(MakeSquare(7, 1)))

	var plies int
	for record.UnmakeMove() {
		plies++
	}
	require.Equal(t, 3, plies)
	require.True(t, record.Board().IsBlack())
	require.Equal(t, NewBoard().Compact(), record.Board().Compact())

	// forward again
	var m = record.NextMove()
	require.False(t, m.IsEmpty())
	require.Equal(t, MakeSquare(2, 6), m.From())
	require.Equal(t, MakeSquare(2, 5), m.To())
	require.True(t, record.MakeMove())
}

func TestReadCSAExplicitPosition(t *testing.T) {
	var body = `P1 *  *  *  *  *  *  *  * -OU
P9+OU *  *  *  *  *  *  *  *
P+00KI
+
+0082KI
%TORYO
`
	var path = writeTempCsa(t, body)
	record, err := ReadCSA(path)
	require.NoError(t, err)
	record.UnmakeMove()
	require.Equal(t, 1, record.Board().Hand(true, Gold))
	require.True(t, record.Board().IsBlack())
}

func TestReadCSAIllegalMove(t *testing.T) {
	var body = `PI
+
+7775FU
`
	var path = writeTempCsa(t, body)
	var _, err = ReadCSA(path)
	require.Error(t, err)
}

func TestReadCSAMissing(t *testing.T) {
	var _, err = ReadCSA(filepath.Join(t.TempDir(), "nope.csa"))
	require.Error(t, err)
}

func TestEnumerateFiles(t *testing.T) {
	var dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csa"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.csa"), nil, 0644))

	files, err := EnumerateFiles(dir, "csa")
	require.NoError(t, err)
	require.Len(t, files, 2)
}
