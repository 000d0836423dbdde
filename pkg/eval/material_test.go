package eval

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbinani/sunfish3/pkg/shogi"
)

func allKinds() []shogi.PieceKind {
	var kinds []shogi.PieceKind
	for k := shogi.Pawn; k <= shogi.Dragon; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func TestExchangeInvariant(t *testing.T) {
	var m = NewMaterial()
	for _, k := range allKinds() {
		require.Equal(t, m.Piece(k)+m.Piece(k.Unpromote()), m.PieceExchange(k), "kind %v", k)
	}
}

func TestPromoteNonNegative(t *testing.T) {
	var m = NewMaterial()
	for _, k := range allKinds() {
		require.GreaterOrEqual(t, int(m.PiecePromote(k)), 0, "kind %v", k)
	}
}

func TestKingSentinels(t *testing.T) {
	var m = NewMaterial()
	require.Equal(t, PieceInf, m.Piece(shogi.King))
	require.Equal(t, PieceInfEx, m.PieceExchange(shogi.King))
	require.Equal(t, Value(0), m.PiecePromote(shogi.King))
}

func TestUpdateExAfterMutation(t *testing.T) {
	var m = NewMaterial()
	m.Add(materialIndex(shogi.Rook), 10)
	m.UpdateEx()
	require.Equal(t, m.Piece(shogi.Rook)*2, m.PieceExchange(shogi.Rook))
	require.Equal(t, m.Piece(shogi.Dragon)+m.Piece(shogi.Rook), m.PieceExchange(shogi.Dragon))
}

func TestAddKeepsPromotionInvariant(t *testing.T) {
	var m = NewMaterial()
	// push the pawn above the tokin; the tokin must follow
	m.Add(materialIndex(shogi.Pawn), 1000)
	m.UpdateEx()
	require.GreaterOrEqual(t, int(m.PiecePromote(shogi.Pawn)), 0)
}

func TestMaterialFileRoundTrip(t *testing.T) {
	var m = NewMaterial()
	m.Add(materialIndex(shogi.Silver), -3)
	m.Add(materialIndex(shogi.Horse), 7)
	m.UpdateEx()

	var path = filepath.Join(t.TempDir(), "material.bin")
	require.NoError(t, m.WriteFile(path))

	var loaded = NewMaterial()
	require.NoError(t, loaded.ReadFile(path))
	for i := 0; i < MaterialCount; i++ {
		require.Equal(t, m.Value(i), loaded.Value(i), "index %v", i)
	}
	for _, k := range allKinds() {
		require.Equal(t, m.PieceExchange(k), loaded.PieceExchange(k))
	}
}

func TestMaterialFileMissing(t *testing.T) {
	var m = NewMaterial()
	require.Error(t, m.ReadFile(filepath.Join(t.TempDir(), "none.bin")))
}
