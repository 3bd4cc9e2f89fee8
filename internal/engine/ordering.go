package engine

import (
	"github.com/maxflowmincut/FlareChessEngine/internal/board"
)

// Move ordering priorities.
const (
	TTMoveScore  = 1000000
	CaptureBase  = 5000
	PromoBase    = 8000
	KillerScore1 = 7000
	KillerScore2 = 6000
)

// mvvLvaValue gives a piece type's value for MVV-LVA scoring, in the same
// units as the material tables.
var mvvLvaValue = [6]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue}

// MoveOrderer carries the killer and history tables used to order moves at
// each ply of a single worker's search.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
	history [64][64]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets killers and ages down history for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves assigns ordering scores to every move in the list.
func (mo *MoveOrderer) ScoreMoves(moves *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(moves.Get(i), ply, ttMove)
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return TTMoveScore
	}

	if m.IsCapture() {
		victim := board.Pawn
		if !m.IsEnPassant() {
			victim = m.Captured()
		}
		attacker := m.Piece()
		return CaptureBase + 10*mvvLvaValue[victim] - mvvLvaValue[attacker]
	}

	if m.IsPromotion() {
		return PromoBase + mvvLvaValue[m.Promotion()]
	}

	if ply < MaxPly {
		if m == mo.killers[ply][0] {
			return KillerScore1
		}
		if m == mo.killers[ply][1] {
			return KillerScore2
		}
	}

	return mo.history[m.From()][m.To()]
}

// SortMoves sorts moves by descending score (selection sort; lists are
// small enough that this outperforms a general-purpose sort).
func SortMoves(moves *board.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove selects the best-scoring remaining move and swaps it into index,
// allowing lazy selection-sort style iteration during search.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records a killer move for a ply. Only non-tactical moves
// are stored; the most recent killer shifts into the second slot.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || m.IsTactical() {
		return
	}
	if mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory bumps or penalizes the history score for a quiet move by
// depth^2, capped at 1e6 in either direction.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int, isGood bool) {
	from := m.From()
	to := m.To()
	bonus := depth * depth

	if isGood {
		mo.history[from][to] += bonus
		if mo.history[from][to] > 1000000 {
			mo.history[from][to] = 1000000
		}
	} else {
		mo.history[from][to] -= bonus
		if mo.history[from][to] < -1000000 {
			mo.history[from][to] = -1000000
		}
	}
}
