package eval

// Value is an evaluation score from the black side's point of view
// unless stated otherwise.
type Value int32

const (
	ValueInf  Value = 20000
	ValueMate Value = 15000

	// sentinels returned for the king by the material table
	PieceInf   Value = 5000
	PieceInfEx Value = 10000

	// positional table entries are stored at this scale relative to
	// material units
	PositionalScale = 32
)

// IsMate reports whether v lies beyond the mate threshold on either side.
func (v Value) IsMate() bool {
	return v <= -ValueMate || v >= ValueMate
}
