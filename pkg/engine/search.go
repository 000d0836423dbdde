package engine

import (
	"log"
	"sort"

	"github.com/kbinani/sunfish3/pkg/eval"
	"github.com/kbinani/sunfish3/pkg/shogi"
)

// Search runs one bounded search to the configured depth and stores
// the outcome in Info. The value is from the side to move.
func (s *Searcher) Search(b *shogi.Board, alpha, beta eval.Value) {
	s.nodes = 0
	var pv []shogi.Move
	var v = s.alphaBeta(b, s.config.MaxDepth, 0, alpha, beta, &pv)
	s.info = SearchInfo{Eval: v, PV: pv, Nodes: s.nodes}
}

// IDSearch deepens iteratively to the configured depth.
func (s *Searcher) IDSearch(b *shogi.Board, alpha, beta eval.Value) {
	s.nodes = 0
	var info SearchInfo
	for depth := 1; depth <= s.config.MaxDepth; depth++ {
		var pv []shogi.Move
		var v = s.alphaBeta(b, depth, 0, alpha, beta, &pv)
		info = SearchInfo{Eval: v, PV: pv, Nodes: s.nodes}
		if s.config.Logging {
			log.Println("idsearch",
				"depth", depth,
				"eval", v,
				"nodes", s.nodes)
		}
		if v.IsMate() {
			break
		}
	}
	s.info = info
}

func (s *Searcher) stmEval(b *shogi.Board) eval.Value {
	var v = s.evaluator.Evaluate(b)
	if !b.IsBlack() {
		v = -v
	}
	return v
}

func (s *Searcher) alphaBeta(b *shogi.Board, depth, ply int,
	alpha, beta eval.Value, pv *[]shogi.Move) eval.Value {
	s.nodes++
	if ply >= maxPly {
		return s.stmEval(b)
	}
	if s.config.EnableLimit && s.config.NodeLimit > 0 && s.nodes >= s.config.NodeLimit {
		return s.stmEval(b)
	}
	if depth <= 0 {
		return s.quiescence(b, ply, alpha, beta)
	}

	var ttMove = shogi.MoveEmpty
	if s.tt != nil {
		if ttDepth, ttScore, ttBound, m, ok := s.tt.Read(b.Key()); ok {
			ttMove = m
			if ttDepth >= depth && ply > 0 {
				if ttBound == boundExact ||
					ttBound == boundLower && ttScore >= beta ||
					ttBound == boundUpper && ttScore <= alpha {
					return ttScore
				}
			}
		}
	}

	var moves = s.orderMoves(b, ttMove)
	var alphaOrig = alpha
	var best = -eval.ValueInf
	var bestMove = shogi.MoveEmpty
	var legal int
	var quiets []shogi.Move
	for _, m := range moves {
		if !b.MakeMove(m) {
			continue
		}
		legal++
		var childPV []shogi.Move
		var v = -s.alphaBeta(b, depth-1, ply+1, -beta, -alpha, &childPV)
		b.UnmakeMove()
		if isQuiet(b, m) {
			quiets = append(quiets, m)
		}
		if v > best {
			best = v
			bestMove = m
			*pv = append(append((*pv)[:0], m), childPV...)
			if best > alpha {
				alpha = best
			}
			if best >= beta {
				break
			}
		}
	}
	if legal == 0 {
		// mated; prefer longer resistance
		return -(eval.ValueInf - eval.Value(ply))
	}
	if bestMove != shogi.MoveEmpty && isQuiet(b, bestMove) {
		s.history.Update(b.IsBlack(), quiets, bestMove, depth)
	}
	if s.tt != nil {
		var bound = boundExact
		if best <= alphaOrig {
			bound = boundUpper
		} else if best >= beta {
			bound = boundLower
		}
		s.tt.Update(b.Key(), depth, best, bound, bestMove)
	}
	return best
}

func (s *Searcher) quiescence(b *shogi.Board, ply int, alpha, beta eval.Value) eval.Value {
	s.nodes++
	var best = s.stmEval(b)
	if best >= beta || ply >= maxPly {
		return best
	}
	if best > alpha {
		alpha = best
	}
	var moves = s.orderMoves(b, shogi.MoveEmpty)
	for _, m := range moves {
		if isQuiet(b, m) {
			continue
		}
		if !b.MakeMove(m) {
			continue
		}
		var v = -s.quiescence(b, ply+1, -beta, -alpha)
		b.UnmakeMove()
		if v > best {
			best = v
			if best >= beta {
				break
			}
			if best > alpha {
				alpha = best
			}
		}
	}
	return best
}

func isQuiet(b *shogi.Board, m shogi.Move) bool {
	return m.IsDrop() || b.Piece(m.To()).IsEmpty()
}

type orderedMove struct {
	move  shogi.Move
	score int
}

func (s *Searcher) orderMoves(b *shogi.Board, ttMove shogi.Move) []shogi.Move {
	var moves = b.GenerateMoves()
	var ordered = make([]orderedMove, len(moves))
	for i, m := range moves {
		var score int
		switch {
		case m == ttMove:
			score = 1 << 30
		case !isQuiet(b, m):
			score = 1<<20 + int(s.evaluator.Material.PieceExchange(b.Piece(m.To()).Kind()))
		default:
			score = s.history.Read(b.IsBlack(), m)
		}
		if m.IsPromotion() {
			score += int(s.evaluator.Material.PiecePromote(b.Piece(m.From()).Kind()))
		}
		ordered[i] = orderedMove{move: m, score: score}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].score > ordered[j].score
	})
	for i := range ordered {
		moves[i] = ordered[i].move
	}
	return moves
}
