package learning

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/kbinani/sunfish3/pkg/shogi"
)

const trainingDatName = "training.dat"

// pvLine is one stored line: the move from the root followed by the
// principal variation found below it.
type pvLine struct {
	moves []shogi.Move
}

// TrainingWriter streams training blocks: a compact root position, a
// run of length-prefixed PVs, and a zero length byte closing the block.
// Callers serialize WriteBlock themselves (the pool mutex).
type TrainingWriter struct {
	file *os.File
	w    *bufio.Writer
}

func NewTrainingWriter(path string) (*TrainingWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "open training data")
	}
	return &TrainingWriter{file: file, w: bufio.NewWriter(file)}, nil
}

func (tw *TrainingWriter) WriteBlock(cb shogi.CompactBoard, lines []pvLine) error {
	if _, err := tw.w.Write(cb[:]); err != nil {
		return errors.Wrap(err, "write training block")
	}
	for _, line := range lines {
		if err := tw.w.WriteByte(byte(len(line.moves) + 1)); err != nil {
			return errors.Wrap(err, "write training block")
		}
		for _, m := range line.moves {
			var code [2]byte
			binary.LittleEndian.PutUint16(code[:], m.Serialize16())
			if _, err := tw.w.Write(code[:]); err != nil {
				return errors.Wrap(err, "write training block")
			}
		}
	}
	if err := tw.w.WriteByte(0); err != nil {
		return errors.Wrap(err, "write training block")
	}
	return nil
}

func (tw *TrainingWriter) Close() error {
	if err := tw.w.Flush(); err != nil {
		tw.file.Close()
		return errors.Wrap(err, "close training data")
	}
	return errors.Wrap(tw.file.Close(), "close training data")
}

// TrainingReader consumes the block stream written by TrainingWriter.
type TrainingReader struct {
	r *bufio.Reader
}

func NewTrainingReader(r io.Reader) *TrainingReader {
	return &TrainingReader{r: bufio.NewReader(r)}
}

// ReadRoot reads the next root position; ok is false at end of stream.
func (tr *TrainingReader) ReadRoot() (cb shogi.CompactBoard, ok bool, err error) {
	_, err = io.ReadFull(tr.r, cb[:])
	if err == io.EOF {
		return cb, false, nil
	}
	if err != nil {
		return cb, false, errors.Wrap(err, "read training root")
	}
	return cb, true, nil
}

// ReadPV consumes one length-prefixed PV and replays it onto board.
// ok is false at the zero length byte that closes a block. A PV whose
// moves do not all replay is consumed in full and reported broken so
// the caller can skip it without losing stream alignment.
func (tr *TrainingReader) ReadPV(board *shogi.Board) (ok, broken bool, err error) {
	length, err := tr.r.ReadByte()
	if err != nil {
		return false, false, errors.Wrap(err, "read pv")
	}
	if length == 0 {
		return false, false, nil
	}
	for i := 0; i < int(length)-1; i++ {
		var code [2]byte
		if _, err := io.ReadFull(tr.r, code[:]); err != nil {
			return false, false, errors.Wrap(err, "read pv")
		}
		var move = shogi.DeserializeMove(binary.LittleEndian.Uint16(code[:]))
		if !broken && (move.IsEmpty() || !board.MakeMove(move)) {
			broken = true
		}
	}
	return true, broken, nil
}
