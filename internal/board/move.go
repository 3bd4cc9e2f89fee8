package board

import "fmt"

// Move encodes a chess move in a 32-bit word:
//
//	bits 0-5:   from square (0-63)
//	bits 6-11:  to square (0-63)
//	bits 12-15: moved piece type (0=none, 1=Pawn..6=King)
//	bits 16-19: captured piece type (0=none, 1=Pawn..6=King)
//	bits 20-23: promotion piece type (0=none, 1=Pawn..6=King)
//	bits 24-27: flag
type Move uint32

const (
	moveFromShift     = 0
	moveToShift       = 6
	movePieceShift    = 12
	moveCapturedShift = 16
	movePromoShift    = 20
	moveFlagShift     = 24

	moveSquareMask = 0x3F
	movePieceMask  = 0xF
	moveFlagMask   = 0xF
)

// MoveFlag distinguishes the special-move handling a Move requires.
type MoveFlag uint32

const (
	FlagNone MoveFlag = iota
	FlagPromotion
	FlagEnPassant
	FlagCastle
	FlagDoublePush
)

// NoMove represents an invalid or absent move (UCI "0000").
const NoMove Move = 0

// encodePieceType maps a PieceType to the Move word's 4-bit field, where
// 0 means "none" and values 1..6 cover Pawn..King.
func encodePieceType(pt PieceType) uint32 {
	if pt >= NoPieceType {
		return 0
	}
	return uint32(pt) + 1
}

func decodePieceType(v uint32) PieceType {
	if v == 0 {
		return NoPieceType
	}
	return PieceType(v - 1)
}

func packMove(from, to Square, piece, captured, promo PieceType, flag MoveFlag) Move {
	return Move(uint32(from)<<moveFromShift |
		uint32(to)<<moveToShift |
		encodePieceType(piece)<<movePieceShift |
		encodePieceType(captured)<<moveCapturedShift |
		encodePieceType(promo)<<movePromoShift |
		uint32(flag)<<moveFlagShift)
}

// NewMove creates a normal (non-special) move, capturing "captured" if it is
// not NoPieceType.
func NewMove(from, to Square, piece, captured PieceType) Move {
	return packMove(from, to, piece, captured, NoPieceType, FlagNone)
}

// NewDoublePush creates a pawn double-push move.
func NewDoublePush(from, to Square, piece PieceType) Move {
	return packMove(from, to, piece, NoPieceType, NoPieceType, FlagDoublePush)
}

// NewPromotion creates a (possibly capturing) pawn promotion move.
func NewPromotion(from, to Square, captured, promo PieceType) Move {
	return packMove(from, to, Pawn, captured, promo, FlagPromotion)
}

// NewEnPassant creates an en-passant capture move.
func NewEnPassant(from, to Square) Move {
	return packMove(from, to, Pawn, Pawn, NoPieceType, FlagEnPassant)
}

// NewCastle creates a castling move (the king's from/to squares).
func NewCastle(from, to Square) Move {
	return packMove(from, to, King, NoPieceType, NoPieceType, FlagCastle)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square((uint32(m) >> moveFromShift) & moveSquareMask)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((uint32(m) >> moveToShift) & moveSquareMask)
}

// Piece returns the moved piece's type.
func (m Move) Piece() PieceType {
	return decodePieceType((uint32(m) >> movePieceShift) & movePieceMask)
}

// Captured returns the captured piece's type, or NoPieceType if none.
func (m Move) Captured() PieceType {
	return decodePieceType((uint32(m) >> moveCapturedShift) & movePieceMask)
}

// Promotion returns the promotion piece's type (only meaningful when
// Flag() == FlagPromotion).
func (m Move) Promotion() PieceType {
	return decodePieceType((uint32(m) >> movePromoShift) & movePieceMask)
}

// Flag returns the special-move flag.
func (m Move) Flag() MoveFlag {
	return MoveFlag((uint32(m) >> moveFlagShift) & moveFlagMask)
}

// IsPromotion reports whether this move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Flag() == FlagPromotion
}

// IsCastle reports whether this move castles.
func (m Move) IsCastle() bool {
	return m.Flag() == FlagCastle
}

// IsEnPassant reports whether this move is an en-passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsDoublePush reports whether this move is a pawn double push.
func (m Move) IsDoublePush() bool {
	return m.Flag() == FlagDoublePush
}

// IsCapture reports whether this move captures a piece (including en passant).
func (m Move) IsCapture() bool {
	return m.Flag() == FlagEnPassant || m.Captured() != NoPieceType
}

// IsTactical reports whether this move is a capture or a promotion —
// the set quiescence search considers.
func (m Move) IsTactical() bool {
	return m.IsCapture() || m.IsPromotion()
}

// IsQuiet reports whether this move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return !m.IsTactical()
}

// String returns the UCI form of the move, e.g. "e2e4", "e7e8q", or "0000".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(promoChar(m.Promotion()))
	}
	return s
}

func promoChar(pt PieceType) byte {
	switch pt {
	case Queen:
		return 'q'
	case Rook:
		return 'r'
	case Bishop:
		return 'b'
	case Knight:
		return 'n'
	default:
		return '?'
	}
}

func promoPieceFromChar(c byte) (PieceType, error) {
	switch c {
	case 'q':
		return Queen, nil
	case 'r':
		return Rook, nil
	case 'b':
		return Bishop, nil
	case 'n':
		return Knight, nil
	default:
		return NoPieceType, fmt.Errorf("invalid promotion piece: %c", c)
	}
}

// ParseUCIMove parses a UCI move string ("e2e4", "e7e8q", "0000") against a
// position's legal moves, returning the matching Move. It never fabricates
// a Move from the string alone: the result always comes from
// GenerateLegalMoves, so an illegal or malformed string is rejected.
func ParseUCIMove(s string, pos *Position) (Move, error) {
	if s == "0000" {
		return NoMove, nil
	}
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	var promo PieceType = NoPieceType
	if len(s) == 5 {
		promo, err = promoPieceFromChar(s[4])
		if err != nil {
			return NoMove, err
		}
	}

	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() {
			if m.Promotion() == promo {
				return m, nil
			}
			continue
		}
		if promo == NoPieceType {
			return m, nil
		}
	}

	return NoMove, fmt.Errorf("illegal move: %s", s)
}

// MoveList is a fixed-capacity move buffer, avoiding per-node heap
// allocation during search.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains reports whether the list holds m.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list's array.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// MoveState is the undo record saved by MakeMove and consumed by UnmakeMove.
// It is stack-scoped: callers own its storage and pair it 1:1 with a Make.
type MoveState struct {
	CapturedPiece  PieceType
	CapturedSquare Square
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int
	SideToMove     Color
	Hash           uint64
}
