package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/maxflowmincut/FlareChessEngine/internal/board"
)

// Mate score convention and search-wide bounds.
const (
	Infinity      = 32000
	MateScore     = 30000
	MateThreshold = 29000
	MaxPly        = 128
	DefaultMaxPly = 64 // limits.Depth == 0 means "unbounded", capped here
)

// PVTable stores the principal variation discovered at each ply.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher drives iterative deepening and the (optionally parallel) root
// search. One Searcher is reused across a game; Reset() clears search state
// between moves while keeping the transposition table warm.
type Searcher struct {
	tt       *TranspositionTable
	worker   *Worker
	stopFlag atomic.Bool
	nodes    atomic.Uint64
	threads  int
}

// NewSearcher creates a searcher bound to tt, defaulting to a single thread.
func NewSearcher(tt *TranspositionTable) *Searcher {
	s := &Searcher{tt: tt, threads: 1}
	s.worker = NewWorker(0, tt, &s.stopFlag)
	return s
}

// SetThreads sets the number of root workers used by SearchRoot.
func (s *Searcher) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	s.threads = n
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// IsStopped reports whether the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Reset clears per-search state ahead of a new search: the stop flag, node
// counts and killers are cleared, and history scores are halved.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes.Store(0)
	s.worker.Reset()
}

// Nodes returns the total number of nodes searched during the last call.
func (s *Searcher) Nodes() uint64 {
	return s.nodes.Load()
}

// SetRootHistory sets the position history from the game, used for
// repetition detection.
func (s *Searcher) SetRootHistory(hashes []uint64) {
	s.worker.SetRootHistory(hashes)
}

// ClearOrderer clears the move orderer state (killers/history).
func (s *Searcher) ClearOrderer() {
	s.worker.orderer.Clear()
}

// GetPV returns the principal variation from the last search.
func (s *Searcher) GetPV() []board.Move {
	return s.worker.GetPV()
}

// Search runs SearchRoot at a fixed depth with the current thread count and
// no deadline.
func (s *Searcher) Search(pos *board.Position, depth int) (board.Move, int) {
	return s.SearchRoot(pos, depth, time.Time{})
}

// SearchRoot implements the root search contract: generate legal moves,
// promote the TT move to the front, then either run a single-threaded
// alpha-beta loop or fan the root moves out across s.threads workers.
func (s *Searcher) SearchRoot(pos *board.Position, depth int, deadline time.Time) (board.Move, int) {
	s.worker.InitSearch(pos)
	s.worker.SetDeadline(deadline)

	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if pos.InCheck() {
			return board.NoMove, -MateScore
		}
		return board.NoMove, 0
	}

	if ttEntry, found := s.tt.Probe(pos.Hash); found && ttEntry.BestMove != board.NoMove {
		promoteMove(moves, ttEntry.BestMove)
	}

	var move board.Move
	var score int
	if s.threads <= 1 || moves.Len() <= 1 {
		move, score = s.searchRootSingleThreaded(pos, depth)
	} else {
		move, score = s.searchRootParallel(pos, moves, depth, deadline)
	}

	s.nodes.Store(s.worker.Nodes())
	return move, score
}

// searchRootSingleThreaded reuses AlphaBeta at ply 0: the root move loop,
// TT probing, and move ordering are identical to an internal node.
func (s *Searcher) searchRootSingleThreaded(pos *board.Position, depth int) (board.Move, int) {
	score := s.worker.AlphaBeta(depth, 0, -Infinity, Infinity)

	var move board.Move
	if s.worker.pv.length[0] > 0 {
		move = s.worker.pv.moves[0][0]
	}
	if move == board.NoMove && !s.stopFlag.Load() {
		if moves := s.worker.pos.GenerateLegalMoves(); moves.Len() > 0 {
			move = moves.Get(0)
		}
	}
	return move, score
}

// searchRootParallel draws root-move indices from a shared counter; each
// worker searches its assigned move on its own Position copy to depth-1
// with a full window, sharing only the transposition table.
func (s *Searcher) searchRootParallel(pos *board.Position, moves *board.MoveList, depth int, deadline time.Time) (board.Move, int) {
	var index atomic.Int64
	var bestMu sync.Mutex
	bestMove := moves.Get(0)
	bestScore := -Infinity
	haveBest := false

	var totalNodes atomic.Uint64
	var wg sync.WaitGroup

	for t := 0; t < s.threads; t++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			worker := NewWorker(workerID, s.tt, &s.stopFlag)
			worker.SetRootHistory(s.worker.rootPosHashes)
			worker.SetDeadline(deadline)
			worker.InitSearch(pos)

			for {
				i := index.Add(1) - 1
				if i >= int64(moves.Len()) || s.stopFlag.Load() {
					break
				}
				move := moves.Get(int(i))
				score := worker.SearchRootMove(move, depth)

				bestMu.Lock()
				if !haveBest || score > bestScore {
					haveBest = true
					bestScore = score
					bestMove = move
				}
				bestMu.Unlock()
			}

			totalNodes.Add(worker.Nodes())
		}(t)
	}

	wg.Wait()
	s.worker.nodes += totalNodes.Load()
	s.worker.pv.moves[0][0] = bestMove
	s.worker.pv.length[0] = 1

	return bestMove, bestScore
}

// promoteMove moves m to the front of the list, if present.
func promoteMove(moves *board.MoveList, m board.Move) {
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i) == m {
			moves.Swap(0, i)
			return
		}
	}
}

// abs returns the absolute value of an integer.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
