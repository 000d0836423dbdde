package shogi

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Record is a parsed game: an initial position and the move sequence,
// with a cursor for forward and backward iteration.
type Record struct {
	initial *Board
	board   *Board
	moves   []Move
	pos     int
}

func (r *Record) Board() *Board { return r.board }

// NextMove returns the move to be played next, MoveEmpty past the end.
func (r *Record) NextMove() Move {
	if r.pos >= len(r.moves) {
		return MoveEmpty
	}
	return r.moves[r.pos]
}

// MakeMove advances the cursor by one ply.
func (r *Record) MakeMove() bool {
	if r.pos >= len(r.moves) {
		return false
	}
	if !r.board.MakeMove(r.moves[r.pos]) {
		return false
	}
	r.pos++
	return true
}

// UnmakeMove steps the cursor back by one ply.
func (r *Record) UnmakeMove() bool {
	if r.pos == 0 {
		return false
	}
	r.board.UnmakeMove()
	r.pos--
	return true
}

// ReadCSA parses a CSA game record. The cursor of the returned record
// is at the end of the game; rewind with UnmakeMove.
func ReadCSA(path string) (*Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "read csa")
	}
	defer file.Close()

	var board *Board
	var setup = &Board{black: true}
	var explicit bool
	var record *Record
	var scanner = bufio.NewScanner(file)
	for scanner.Scan() {
		var line = strings.TrimRight(scanner.Text(), "\r")
		if line == "" || line[0] == '\'' {
			continue
		}
		switch {
		case strings.HasPrefix(line, "V") || strings.HasPrefix(line, "N") || strings.HasPrefix(line, "$"):
			// version, player names, metadata
		case line == "PI":
			board = NewBoard()
		case strings.HasPrefix(line, "P1") || strings.HasPrefix(line, "P2") ||
			strings.HasPrefix(line, "P3") || strings.HasPrefix(line, "P4") ||
			strings.HasPrefix(line, "P5") || strings.HasPrefix(line, "P6") ||
			strings.HasPrefix(line, "P7") || strings.HasPrefix(line, "P8") ||
			strings.HasPrefix(line, "P9"):
			if err := parseCsaRank(setup, line); err != nil {
				return nil, errors.Wrapf(err, "csa %v", path)
			}
			explicit = true
		case strings.HasPrefix(line, "P+") || strings.HasPrefix(line, "P-"):
			if err := parseCsaHand(setup, line); err != nil {
				return nil, errors.Wrapf(err, "csa %v", path)
			}
			explicit = true
		case line == "+" || line == "-":
			if record != nil {
				// a bare side marker after moves is a resignation marker
				continue
			}
			if board == nil {
				if !explicit {
					return nil, errors.Errorf("csa %v: no position", path)
				}
				board = setup
			}
			board.black = line == "+"
			board.refresh()
			record = &Record{initial: board.Clone(), board: board}
		case line[0] == '+' || line[0] == '-':
			if record == nil {
				return nil, errors.Errorf("csa %v: move before position", path)
			}
			move, err := parseCsaMove(record.board, line)
			if err != nil {
				return nil, errors.Wrapf(err, "csa %v", path)
			}
			record.moves = append(record.moves, move)
			if !record.board.MakeMove(move) {
				return nil, errors.Errorf("csa %v: illegal move %v", path, line)
			}
			record.pos++
		case line[0] == '%':
			// %TORYO and friends end the game
			if record != nil {
				return record, nil
			}
		case line[0] == 'T':
			// move times
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read csa")
	}
	if record == nil {
		return nil, errors.Errorf("csa %v: no moves", path)
	}
	return record, nil
}

func csaSquare(file, rank int) (Square, error) {
	if file < 1 || file > 9 || rank < 1 || rank > 9 {
		return 0, fmt.Errorf("bad square %d%d", file, rank)
	}
	return MakeSquare(9-file, rank-1), nil
}

func csaKind(code string) (PieceKind, error) {
	for k := 1; k <= PieceKindCount; k++ {
		if pieceKindNames[k] == code {
			return PieceKind(k), nil
		}
	}
	return NoPieceKind, fmt.Errorf("bad piece code %q", code)
}

func parseCsaRank(b *Board, line string) error {
	var rank = int(line[1] - '0')
	var body = line[2:]
	for i := 0; i+3 <= len(body); i += 3 {
		var cell = body[i : i+3]
		if cell == " * " {
			continue
		}
		var kind, err = csaKind(cell[1:])
		if err != nil {
			return err
		}
		sq, err := csaSquare(9-i/3, rank)
		if err != nil {
			return err
		}
		b.squares[sq] = MakePiece(kind, cell[0] == '+')
	}
	return nil
}

func parseCsaHand(b *Board, line string) error {
	var black = line[1] == '+'
	var body = line[2:]
	for i := 0; i+4 <= len(body); i += 4 {
		if body[i:i+2] != "00" {
			return fmt.Errorf("bad hand entry %q", body[i:i+4])
		}
		var kind, err = csaKind(body[i+2 : i+4])
		if err != nil {
			return err
		}
		b.hands[sideIndex(black)][handIndex(kind)]++
	}
	return nil
}

func parseCsaMove(b *Board, line string) (Move, error) {
	if len(line) < 7 {
		return MoveEmpty, fmt.Errorf("bad move %q", line)
	}
	var fromFile = int(line[1] - '0')
	var fromRank = int(line[2] - '0')
	var kind, err = csaKind(line[5:7])
	if err != nil {
		return MoveEmpty, err
	}
	to, err := csaSquare(int(line[3]-'0'), int(line[4]-'0'))
	if err != nil {
		return MoveEmpty, err
	}
	if fromFile == 0 && fromRank == 0 {
		return MakeDrop(kind, to), nil
	}
	from, err := csaSquare(fromFile, fromRank)
	if err != nil {
		return MoveEmpty, err
	}
	var moving = b.Piece(from)
	if moving.IsEmpty() {
		return MoveEmpty, fmt.Errorf("no piece for move %q", line)
	}
	// the CSA code names the piece after the move; a kind change means
	// the move promotes
	var promote = moving.Kind() != kind && moving.Kind().Promote() == kind
	return MakeMove(from, to, promote), nil
}

// EnumerateFiles lists the files with the given extension (without dot)
// in a directory, sorted by name.
func EnumerateFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "enumerate files")
	}
	var result []string
	for _, de := range entries {
		if !de.IsDir() && filepath.Ext(de.Name()) == "."+ext {
			result = append(result, filepath.Join(dir, de.Name()))
		}
	}
	return result, nil
}
