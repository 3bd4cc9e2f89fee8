package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/maxflowmincut/FlareChessEngine/internal/board"
	"github.com/maxflowmincut/FlareChessEngine/internal/engine"
)

// benchPositions are the fixed FENs the bench CLI searches: the start
// position, the "Kiwipete" perft-stress position, and a bare K-vs-K
// endgame.
var benchPositions = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/8/8/4k3/8/8/8/4K3 w - - 0 1",
}

func runBench(args []string) {
	depth := 6
	threads := 1

	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}
	if len(args) > 1 {
		if t, err := strconv.Atoi(args[1]); err == nil {
			threads = t
		}
	}

	eng := engine.NewEngine(64)
	eng.SetThreads(threads)

	var totalNodes uint64
	start := time.Now()

	for i, fen := range benchPositions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			fmt.Printf("position %d: invalid FEN %q: %v\n", i+1, fen, err)
			continue
		}

		eng.Clear()
		posStart := time.Now()
		eng.SearchWithLimits(pos, engine.SearchLimits{Depth: depth})
		elapsed := time.Since(posStart)

		nodes := eng.NodesSearched()
		totalNodes += nodes

		fmt.Printf("position %d: nodes=%d time=%dms\n", i+1, nodes, elapsed.Milliseconds())
	}

	totalElapsed := time.Since(start)
	elapsedMs := totalElapsed.Milliseconds()
	if elapsedMs == 0 {
		elapsedMs = 1
	}
	nps := totalNodes * 1000 / uint64(elapsedMs)

	fmt.Printf("total: nodes=%d time=%dms nps=%d\n", totalNodes, totalElapsed.Milliseconds(), nps)
}
