package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// Direction is a unit step on the grid
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// Delta returns the signed unit step for d
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Horizontal reports whether d moves along the x axis
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

// Symbol returns the instruction symbol for d
func (d Direction) Symbol() rune {
	switch d {
	case Up:
		return '^'
	case Down:
		return 'v'
	case Left:
		return '<'
	case Right:
		return '>'
	}
	return '?'
}

// Add adds one step in direction d. It fails only when an axis would go
// negative; upper bounds depend on the grid and are checked by the caller.
func (p Position) Add(d Direction) (Position, bool) {
	dx, dy := d.Delta()
	x, y := p.X+dx, p.Y+dy
	if x < 0 || y < 0 {
		return p, false
	}
	return Position{X: x, Y: y}, true
}

// Offset returns the neighbour in direction d without any bounds check.
// Only used for diagnostics about blocked moves.
func (p Position) Offset(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// String formats p as (x,y)
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// ParseDirection accepts a direction name (case-insensitive) or an
// instruction symbol.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "^":
		return Up, nil
	case "down", "v":
		return Down, nil
	case "left", "<":
		return Left, nil
	case "right", ">":
		return Right, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// DirectionFromSymbol maps one of ^ v < > to a direction
func DirectionFromSymbol(r rune) (Direction, bool) {
	switch r {
	case '^':
		return Up, true
	case 'v':
		return Down, true
	case '<':
		return Left, true
	case '>':
		return Right, true
	}
	return "", false
}

// ParseInstructions parses a stream of direction symbols. Whitespace,
// including line breaks, is ignored.
func ParseInstructions(s string) ([]Direction, error) {
	dirs := make([]Direction, 0, len(s))
	for i, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		d, ok := DirectionFromSymbol(r)
		if !ok {
			return nil, fmt.Errorf("%w: invalid instruction '%c' at offset %d", ErrParse, r, i)
		}
		dirs = append(dirs, d)
	}
	if len(dirs) > MaxInstructions {
		return nil, fmt.Errorf("%w: %d instructions exceeds limit of %d", ErrParse, len(dirs), MaxInstructions)
	}
	return dirs, nil
}

// FormatInstructions renders directions back to their symbols
func FormatInstructions(dirs []Direction) string {
	var b strings.Builder
	b.Grow(len(dirs))
	for _, d := range dirs {
		b.WriteRune(d.Symbol())
	}
	return b.String()
}
