package board

// Color is one side of the game.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

var colorNames = [2]string{"White", "Black"}

// Other flips White<->Black. Only meaningful for White/Black, not NoColor.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c >= NoColor {
		return "NoColor"
	}
	return colorNames[c]
}

// PieceType is a kind of chess piece, independent of color.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

var pieceTypeNames = [6]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King"}

func (pt PieceType) String() string {
	if pt >= NoPieceType {
		return "None"
	}
	return pieceTypeNames[pt]
}

var pieceTypeChars = [6]byte{'p', 'n', 'b', 'r', 'q', 'k'}

// Char returns the lowercase FEN letter for the piece type.
func (pt PieceType) Char() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return pieceTypeChars[pt]
}

// PieceValue holds each piece type's material weight in centipawns, indexed
// by PieceType. King carries a large sentinel value here rather than zero,
// so a king ever appearing on the wrong side of a material count is
// impossible to miss. Position.Material skips kings, and engine.Evaluate
// uses its own value table.
var PieceValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// Piece packs a PieceType and Color into one byte: pieceType + color*6, so
// White's six pieces occupy 0-5 and Black's occupy 6-11.
type Piece uint8

const (
	WhitePawn Piece = Piece(iota)
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece
)

// NewPiece packs pt and c into a Piece, or NoPiece if either is out of range.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// Type unpacks the PieceType half of p.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color unpacks the Color half of p.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

const pieceChars = "PNBRQKpnbrqk"

// String returns the FEN letter for p: uppercase for White, lowercase for
// Black, a single space for NoPiece.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return string(pieceChars[p])
}

// PieceFromChar converts a FEN piece letter into a Piece, or NoPiece for
// anything else (board squares, digits, separators).
func PieceFromChar(c byte) Piece {
	for i := 0; i < len(pieceChars); i++ {
		if pieceChars[i] == c {
			return Piece(i)
		}
	}
	return NoPiece
}

// Value returns p's material weight; see PieceValue.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}
