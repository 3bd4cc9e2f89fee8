// Package board implements a bitboard chess position: squares, pieces,
// attack generation, move encoding, the legal move generator, and the FEN
// codec.
package board

import "fmt"

// Square identifies one of the 64 board squares under little-endian
// rank-file mapping: a1=0, h1=7, a8=56, h8=63. Rank and file both run
// 0-7, so square = rank*8 + file.
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// NewSquare builds a square from a 0-indexed file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// ParseSquare parses algebraic notation ("e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(file, rank), nil
}

// File returns the 0-indexed file (a=0 .. h=7).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the 0-indexed rank (1=0 .. 8=7).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// IsValid reports whether sq is one of the 64 real board squares.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Mirror flips a square across the board's horizontal midline, turning a
// white-relative square into its black-relative counterpart (e.g. e2 <-> e7).
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// RelativeRank returns the rank as seen by c: rank 0 is always that color's
// back rank, so a pawn's start rank is RelativeRank==1 for either side.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

// String renders algebraic notation directly into a 2-byte buffer rather
// than going through fmt, matching the engine's avoidance of fmt on
// search-hot paths (see Move.String, itoa).
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	buf := [2]byte{byte('a' + sq.File()), byte('1' + sq.Rank())}
	return string(buf[:])
}
