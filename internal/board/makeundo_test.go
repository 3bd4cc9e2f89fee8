package board

import "testing"

// assertPositionsEqual compares every field UnmakeMove is responsible for
// restoring, byte for byte.
func assertPositionsEqual(t *testing.T, before, after *Position) {
	t.Helper()

	if before.Pieces != after.Pieces {
		t.Error("Pieces bitboards not restored")
	}
	if before.Occupied != after.Occupied {
		t.Error("Occupied bitboards not restored")
	}
	if before.AllOccupied != after.AllOccupied {
		t.Error("AllOccupied not restored")
	}
	if before.SideToMove != after.SideToMove {
		t.Error("SideToMove not restored")
	}
	if before.CastlingRights != after.CastlingRights {
		t.Error("CastlingRights not restored")
	}
	if before.EnPassant != after.EnPassant {
		t.Errorf("EnPassant not restored: got %v, want %v", after.EnPassant, before.EnPassant)
	}
	if before.HalfMoveClock != after.HalfMoveClock {
		t.Errorf("HalfMoveClock not restored: got %d, want %d", after.HalfMoveClock, before.HalfMoveClock)
	}
	if before.FullMoveNumber != after.FullMoveNumber {
		t.Errorf("FullMoveNumber not restored: got %d, want %d", after.FullMoveNumber, before.FullMoveNumber)
	}
	if before.Hash != after.Hash {
		t.Errorf("Hash not restored: got %d, want %d", after.Hash, before.Hash)
	}
	if before.KingSquare != after.KingSquare {
		t.Error("KingSquare not restored")
	}
}

// roundTrip makes then unmakes every legal move in pos, asserting the
// position is restored exactly each time.
func roundTrip(t *testing.T, pos *Position) {
	t.Helper()

	before := pos.Copy()
	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		state := pos.MakeMove(m)
		pos.UnmakeMove(m, state)
		assertPositionsEqual(t, before, pos)
	}
}

func TestMakeUnmakeStartPosition(t *testing.T) {
	roundTrip(t, NewPosition())
}

func TestMakeUnmakeKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	roundTrip(t, pos)
}

func TestMakeUnmakeCastling(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	roundTrip(t, pos)
}

func TestEnPassantCaptureMakeUnmake(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	var epMove Move
	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsEnPassant() {
			epMove = m
			break
		}
	}
	if epMove == NoMove {
		t.Fatal("expected an en passant move in legal moves")
	}

	before := pos.Copy()
	state := pos.MakeMove(epMove)

	if pos.PieceAt(D5) != NoPiece {
		t.Error("expected d5 to be emptied after en passant capture")
	}
	if pos.PieceAt(D6) != NewPiece(Pawn, White) {
		t.Error("expected a white pawn on d6 after en passant capture")
	}

	pos.UnmakeMove(epMove, state)
	assertPositionsEqual(t, before, pos)
	if pos.PieceAt(D5) != NewPiece(Pawn, Black) {
		t.Error("expected black pawn restored on d5 after undo")
	}
}

func TestDoublePushSetsEnPassantSquare(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/3p4/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	var push Move
	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsDoublePush() && m.From() == E2 && m.To() == E4 {
			push = m
			break
		}
	}
	if push == NoMove {
		t.Fatal("expected e2e4 double push in legal moves")
	}

	pos.MakeMove(push)
	if pos.EnPassant != E3 {
		t.Errorf("EnPassant = %v, want E3", pos.EnPassant)
	}
}

func TestDoublePushNoEnPassantWhenNoCapturerPresent(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	var push Move
	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsDoublePush() && m.From() == E2 && m.To() == E4 {
			push = m
			break
		}
	}
	if push == NoMove {
		t.Fatal("expected e2e4 double push in legal moves")
	}

	pos.MakeMove(push)
	if pos.EnPassant != NoSquare {
		t.Errorf("EnPassant = %v, want NoSquare", pos.EnPassant)
	}
}

func TestPromotionGeneratesAllFourPieces(t *testing.T) {
	pos, err := ParseFEN("7k/P7/8/8/8/8/7p/7K w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	want := map[PieceType]bool{Queen: false, Rook: false, Bishop: false, Knight: false}
	count := 0

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() == A7 && m.To() == A8 && m.IsPromotion() {
			want[m.Promotion()] = true
			count++
		}
	}

	if count != 4 {
		t.Errorf("got %d promotion moves a7a8, want 4", count)
	}
	for pt, seen := range want {
		if !seen {
			t.Errorf("missing promotion to %v", pt)
		}
	}
}

func TestKiwipeteIncludesQueensideCastle(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	found := false
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() == E1 && m.To() == C1 && m.IsCastle() {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected queenside castle e1c1 in Kiwipete legal moves")
	}
}
