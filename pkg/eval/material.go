package eval

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"

	"github.com/kbinani/sunfish3/pkg/shogi"
)

// MaterialCount is the number of learned piece values.
const MaterialCount = 13

// Material holds the thirteen piece values and their derived exchange
// values. The file order is fixed: pawn, lance, knight, silver, gold,
// bishop, rook, tokin, pro_lance, pro_knight, pro_silver, horse, dragon.
type Material struct {
	values   [MaterialCount]Value
	exchange [MaterialCount]Value
}

var defaultMaterial = [MaterialCount]Value{
	87, 232, 257, 369, 444, 569, 642, 534, 489, 510, 495, 827, 945,
}

func NewMaterial() *Material {
	var m = &Material{values: defaultMaterial}
	m.UpdateEx()
	return m
}

func materialIndex(k shogi.PieceKind) int { return int(k) - 1 }

// Piece returns the evaluation contribution of a piece kind; the king
// gets the piece-infinity sentinel.
func (m *Material) Piece(k shogi.PieceKind) Value {
	if k == shogi.King {
		return PieceInf
	}
	if k == shogi.NoPieceKind {
		return 0
	}
	return m.values[materialIndex(k)]
}

// PieceExchange returns the credit awarded for capturing the piece:
// its value plus the value of its unpromoted form.
func (m *Material) PieceExchange(k shogi.PieceKind) Value {
	if k == shogi.King {
		return PieceInfEx
	}
	if k == shogi.NoPieceKind {
		return 0
	}
	return m.exchange[materialIndex(k)]
}

// PiecePromote returns the value gained by promoting the piece; zero
// for kinds that do not promote.
func (m *Material) PiecePromote(k shogi.PieceKind) Value {
	var pk = k.Promote()
	if pk == shogi.NoPieceKind {
		return 0
	}
	return m.values[materialIndex(pk)] - m.values[materialIndex(k)]
}

// UpdateEx recomputes the exchange values from the base values.
func (m *Material) UpdateEx() {
	for i := 0; i < MaterialCount; i++ {
		var k = shogi.PieceKind(i + 1)
		m.exchange[i] = m.values[i] + m.values[materialIndex(k.Unpromote())]
	}
}

// Add shifts one base value and restores the promotion invariant by
// raising a promoted value up to its base where needed. UpdateEx must
// follow once the batch of mutations is done.
func (m *Material) Add(i int, delta Value) {
	m.values[i] += delta
	for _, k := range []shogi.PieceKind{shogi.Pawn, shogi.Lance, shogi.Knight,
		shogi.Silver, shogi.Bishop, shogi.Rook} {
		var base = materialIndex(k)
		var pro = materialIndex(k.Promote())
		if m.values[pro] < m.values[base] {
			m.values[pro] = m.values[base]
		}
	}
}

func (m *Material) Value(i int) Value { return m.values[i] }

// WriteFile persists the thirteen base values.
func (m *Material) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "write material")
	}
	defer file.Close()
	var raw [MaterialCount]int32
	for i, v := range m.values {
		raw[i] = int32(v)
	}
	if err := binary.Write(file, binary.LittleEndian, raw[:]); err != nil {
		return errors.Wrap(err, "write material")
	}
	return nil
}

// ReadFile loads the thirteen base values and rederives the exchange
// values.
func (m *Material) ReadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "read material")
	}
	defer file.Close()
	var raw [MaterialCount]int32
	if err := binary.Read(file, binary.LittleEndian, raw[:]); err != nil {
		return errors.Wrap(err, "read material")
	}
	for i, v := range raw {
		m.values[i] = Value(v)
	}
	m.UpdateEx()
	return nil
}
