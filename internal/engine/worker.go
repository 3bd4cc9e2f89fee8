package engine

import (
	"sync/atomic"
	"time"

	"github.com/maxflowmincut/FlareChessEngine/internal/board"
)

// Worker performs alpha-beta search on its own Position copy. Workers share
// the transposition table but keep killers/history local, per spec's
// "per-worker, not shared" allowance.
type Worker struct {
	id int

	pos     *board.Position
	orderer *MoveOrderer

	nodes uint64
	pv    PVTable

	undoStack [MaxPly]board.MoveState

	posHistory    []uint64
	rootPosHashes []uint64

	tt       *TranspositionTable
	stopFlag *atomic.Bool
	deadline time.Time
}

// NewWorker creates a search worker bound to a transposition table and a
// shared stop flag.
func NewWorker(id int, tt *TranspositionTable, stopFlag *atomic.Bool) *Worker {
	return &Worker{
		id:       id,
		orderer:  NewMoveOrderer(),
		tt:       tt,
		stopFlag: stopFlag,
	}
}

// ID returns the worker's id.
func (w *Worker) ID() int { return w.id }

// Nodes returns the number of nodes searched by this worker.
func (w *Worker) Nodes() uint64 { return w.nodes }

// Reset clears per-worker search state for a new search.
func (w *Worker) Reset() {
	w.nodes = 0
	w.orderer.Clear()
}

// SetRootHistory sets the position history from the game, used for
// repetition detection.
func (w *Worker) SetRootHistory(hashes []uint64) {
	w.rootPosHashes = make([]uint64, len(hashes))
	copy(w.rootPosHashes, hashes)
}

// SetDeadline sets the shared search deadline. A zero Time means no deadline.
func (w *Worker) SetDeadline(deadline time.Time) {
	w.deadline = deadline
}

// InitSearch copies pos into the worker and resets the position history for
// a new search.
func (w *Worker) InitSearch(pos *board.Position) {
	w.pos = pos.Copy()
	w.posHistory = make([]uint64, 0, len(w.rootPosHashes)+MaxPly)
	w.posHistory = append(w.posHistory, w.rootPosHashes...)
	w.posHistory = append(w.posHistory, w.pos.Hash)
}

// GetPV returns the principal variation from the last search.
func (w *Worker) GetPV() []board.Move {
	pv := make([]board.Move, w.pv.length[0])
	copy(pv, w.pv.moves[0][:w.pv.length[0]])
	return pv
}

// evaluate returns the static evaluation of the worker's current position.
func (w *Worker) evaluate() int {
	return Evaluate(w.pos)
}

// shouldStop performs the termination check: external stop, or deadline
// passed. Called roughly every 4096 nodes.
func (w *Worker) shouldStop() bool {
	if w.stopFlag.Load() {
		return true
	}
	if !w.deadline.IsZero() && time.Now().After(w.deadline) {
		w.stopFlag.Store(true)
		return true
	}
	return false
}

// isDraw reports draw by the 50-move rule, insufficient material, or
// repetition against the position history.
func (w *Worker) isDraw() bool {
	if w.pos.HalfMoveClock >= 100 {
		return true
	}
	if w.pos.IsInsufficientMaterial() {
		return true
	}
	if len(w.posHistory) > 0 {
		hash := w.pos.Hash
		count := 0
		for _, h := range w.posHistory {
			if h == hash {
				count++
				if count >= 2 {
					return true
				}
			}
		}
	}
	return false
}

// AlphaBeta performs a negamax search with alpha-beta pruning, null-move
// pruning, and TT cutoffs. At ply 0 this doubles as the single-threaded
// root search loop.
func (w *Worker) AlphaBeta(depth, ply, alpha, beta int) int {
	if ply >= MaxPly-1 {
		return w.evaluate()
	}

	if w.nodes&4095 == 0 && w.shouldStop() {
		return w.evaluate()
	}
	w.nodes++

	w.pv.length[ply] = ply

	if ply > 0 && w.isDraw() {
		return 0
	}

	if depth <= 0 {
		return w.Quiescence(ply, alpha, beta)
	}

	alpha0 := alpha
	beta0 := beta

	var ttMove board.Move
	ttEntry, found := w.tt.Probe(w.pos.Hash)
	if found {
		ttMove = ttEntry.BestMove
		if ttMove != board.NoMove {
			piece := w.pos.PieceAt(ttMove.From())
			if piece == board.NoPiece || piece.Color() != w.pos.SideToMove {
				ttMove = board.NoMove
			}
		}
		if int(ttEntry.Depth) >= depth {
			score := AdjustScoreFromTT(int(ttEntry.Score), ply)
			switch ttEntry.Flag {
			case TTExact:
				if ply == 0 && ttMove != board.NoMove {
					w.pv.moves[0][0] = ttMove
					w.pv.length[0] = 1
				}
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	inCheck := w.pos.InCheck()

	if !inCheck && depth >= 3 && ply > 0 && w.pos.HasNonPawnMaterial() {
		R := 2
		if depth >= 6 {
			R = 3
		}
		reduced := depth - 1 - R
		nullUndo := w.pos.MakeNullMove()
		nullScore := -w.AlphaBeta(reduced, ply+1, -beta, -beta+1)
		w.pos.UnmakeNullMove(nullUndo)
		if nullScore >= beta {
			return beta
		}
	}

	moves := w.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	scores := w.orderer.ScoreMoves(moves, ply, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		w.undoStack[ply] = w.pos.MakeMove(move)
		w.posHistory = append(w.posHistory, w.pos.Hash)

		score := -w.AlphaBeta(depth-1, ply+1, -beta, -alpha)

		w.posHistory = w.posHistory[:len(w.posHistory)-1]
		w.pos.UnmakeMove(move, w.undoStack[ply])

		if w.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				flag = TTExact

				w.pv.moves[ply][ply] = move
				for j := ply + 1; j < w.pv.length[ply+1]; j++ {
					w.pv.moves[ply][j] = w.pv.moves[ply+1][j]
				}
				w.pv.length[ply] = w.pv.length[ply+1]
			}
		}

		if alpha >= beta {
			if move.IsQuiet() {
				w.orderer.UpdateKillers(move, ply)
				w.orderer.UpdateHistory(move, depth, true)
			}
			break
		}
	}

	if bestScore <= alpha0 {
		flag = TTUpperBound
	} else if bestScore >= beta0 {
		flag = TTLowerBound
	} else {
		flag = TTExact
	}

	w.tt.Store(w.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)

	return bestScore
}

// Quiescence searches captures and promotions to the point of a quiet
// position, avoiding the horizon effect at the end of the main search.
func (w *Worker) Quiescence(ply, alpha, beta int) int {
	if ply >= MaxPly-1 {
		return w.evaluate()
	}
	if w.nodes&4095 == 0 && w.shouldStop() {
		return w.evaluate()
	}
	w.nodes++

	inCheck := w.pos.InCheck()

	var standPat int
	if !inCheck {
		standPat = w.evaluate()
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	// In check, every evasion must be considered, not just captures. Out of
	// check, only tactical moves are searched; GenerateCaptures produces
	// exactly that set (captures, en passant, and all promotions) without
	// first building and filtering the full legal move list.
	var moves *board.MoveList
	if inCheck {
		moves = w.pos.GenerateLegalMoves()
		if moves.Len() == 0 {
			return -MateScore + ply
		}
	} else {
		moves = w.pos.GenerateCaptures()
		if moves.Len() == 0 {
			return standPat
		}
	}

	scores := w.orderer.ScoreMoves(moves, ply, board.NoMove)

	best := standPat
	if inCheck {
		best = -Infinity
	}

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		state := w.pos.MakeMove(move)
		score := -w.Quiescence(ply+1, -beta, -alpha)
		w.pos.UnmakeMove(move, state)

		if w.stopFlag.Load() {
			return 0
		}

		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			return alpha
		}
	}

	return best
}

// SearchRootMove applies one root move on the worker's own position and
// searches the resulting subtree to depth-1 with a full window. Used by
// the parallel root search: each call handles one root move, and a worker
// keeps drawing further root moves until none are left.
func (w *Worker) SearchRootMove(move board.Move, depth int) int {
	state := w.pos.MakeMove(move)
	w.posHistory = append(w.posHistory, w.pos.Hash)

	var score int
	if depth-1 <= 0 {
		score = -w.Quiescence(1, -Infinity, Infinity)
	} else {
		score = -w.AlphaBeta(depth-1, 1, -Infinity, Infinity)
	}

	w.posHistory = w.posHistory[:len(w.posHistory)-1]
	w.pos.UnmakeMove(move, state)
	return score
}
