package engine

import (
	"time"

	"github.com/maxflowmincut/FlareChessEngine/internal/board"
)

// SearchInfo reports progress after each completed iterative-deepening
// depth.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // permille of hash table used
}

// SearchLimits constrains a search. Depth 0 means unbounded (capped at
// DefaultMaxPly); MoveTime 0 means no time limit; Infinite raises the depth
// cap to MaxPly-1. Any search, infinite or not, also ends early once a
// completed depth reports a mate score.
type SearchLimits struct {
	Depth    int
	MoveTime time.Duration
	Infinite bool
}

// Engine is the chess search engine: an iterative-deepening driver wrapped
// around a Searcher and its transposition table.
type Engine struct {
	searcher *Searcher
	tt       *TranspositionTable
	threads  int

	OnInfo func(SearchInfo)
}

// NewEngine creates a chess engine with the given transposition table size
// in MB.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	return &Engine{
		searcher: NewSearcher(tt),
		tt:       tt,
		threads:  1,
	}
}

// SetThreads sets the number of root search workers, clamped to at least 1.
func (e *Engine) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	e.threads = n
	e.searcher.SetThreads(n)
}

// SetRootHistory sets the position history from the game for repetition
// detection.
func (e *Engine) SetRootHistory(hashes []uint64) {
	e.searcher.SetRootHistory(hashes)
}

// SearchWithLimits runs iterative deepening from depth 1 to limits.Depth (or
// DefaultMaxPly if unset), stopping early at the deadline or on Stop(). The
// last fully completed depth's move is returned; each completed depth's
// score is reported through OnInfo.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) board.Move {
	e.searcher.Reset()
	e.tt.NewSearch()

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int

	maxDepth := DefaultMaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}
	if limits.Infinite {
		maxDepth = MaxPly - 1
	}

	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	for depth := 1; depth <= maxDepth; depth++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		if e.searcher.IsStopped() {
			break
		}

		move, score := e.searcher.SearchRoot(pos, depth, deadline)

		if e.searcher.IsStopped() && depth > 1 {
			break
		}

		if move != board.NoMove {
			bestMove = move
			bestScore = score
		}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    bestScore,
				Nodes:    e.searcher.Nodes(),
				Time:     time.Since(startTime),
				PV:       e.searcher.GetPV(),
				HashFull: e.tt.HashFull(),
			})
		}

		if abs(bestScore) > MateThreshold {
			break
		}
	}

	return bestMove
}

// NodesSearched returns the node count from the most recent search.
func (e *Engine) NodesSearched() uint64 {
	return e.searcher.Nodes()
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear clears the transposition table and move-ordering state.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.ClearOrderer()
}

// Perft counts leaf nodes at a fixed depth, for move-generation testing.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		state := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, state)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// ScoreToString renders a score as either a mate distance or pawns.centipawns.
func ScoreToString(score int) string {
	if score > MateThreshold {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateThreshold {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// itoa avoids pulling in fmt/strconv for this one conversion, matching the
// rest of the package's minimal-allocation style.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
