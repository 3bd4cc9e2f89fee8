package engine

import (
	"testing"
	"time"

	"github.com/maxflowmincut/FlareChessEngine/internal/board"
)

func TestSearchReturnsLegalMove(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	move := eng.SearchWithLimits(pos, SearchLimits{Depth: 4})
	if move == board.NoMove {
		t.Fatal("search returned NoMove for starting position")
	}

	legal := pos.GenerateLegalMoves()
	if !legal.Contains(move) {
		t.Fatalf("search returned illegal move %s", move.String())
	}
}

func TestSearchRespectsDepthLimit(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	var maxDepthSeen int
	eng.OnInfo = func(info SearchInfo) {
		if info.Depth > maxDepthSeen {
			maxDepthSeen = info.Depth
		}
	}

	eng.SearchWithLimits(pos, SearchLimits{Depth: 3})

	if maxDepthSeen > 3 {
		t.Errorf("search reported depth %d, exceeding limit of 3", maxDepthSeen)
	}
	if maxDepthSeen == 0 {
		t.Error("search never reported any completed depth")
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	// White to move: Qh5xf7 delivers scholar's mate.
	pos, err := board.ParseFEN("r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	var lastInfo SearchInfo
	eng := NewEngine(16)
	eng.OnInfo = func(info SearchInfo) { lastInfo = info }

	move := eng.SearchWithLimits(pos, SearchLimits{Depth: 4})

	if move.String() != "h5f7" {
		t.Fatalf("search returned %s, want h5f7 (mate)", move.String())
	}
	if lastInfo.Score <= MateThreshold {
		t.Errorf("score %d does not reflect a mate, want > %d", lastInfo.Score, MateThreshold)
	}
	if got := MateScore - lastInfo.Score; got != 1 {
		t.Errorf("mate distance = %d plies from MateScore, want 1 (mate in 1)", got)
	}
}

func TestSearchStopsOnDeadline(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	start := time.Now()
	eng.SearchWithLimits(pos, SearchLimits{Depth: 64, MoveTime: 50 * time.Millisecond})
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Errorf("search ran for %v, well past its 50ms deadline", elapsed)
	}
}

func TestTranspositionTableConsistency(t *testing.T) {
	pos := board.NewPosition()

	withTT := NewEngine(16)
	moveWithTT := withTT.SearchWithLimits(pos, SearchLimits{Depth: 4})

	freshTT := NewEngine(16)
	freshTT.Clear()
	moveFresh := freshTT.SearchWithLimits(pos, SearchLimits{Depth: 4})

	if moveWithTT == board.NoMove || moveFresh == board.NoMove {
		t.Fatal("search returned NoMove")
	}
	// A table cleared before the search must lead to the same choice as a
	// newly allocated one.
	if moveWithTT != moveFresh {
		t.Errorf("cleared-table search chose %s, fresh-table search chose %s", moveFresh.String(), moveWithTT.String())
	}
}

func TestPerftStartPosition(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(1)

	cases := []struct {
		depth int
		nodes uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}

	for _, c := range cases {
		got := eng.Perft(pos, c.depth)
		if got != c.nodes {
			t.Errorf("perft(%d) = %d, want %d", c.depth, got, c.nodes)
		}
	}
}
