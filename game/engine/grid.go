package engine

// Grid owns the 2-D array of cells. Rows are indexed by y, columns by x.
type Grid struct {
	cells  [][]Cell
	width  int
	height int
}

// NewGrid creates a width × height grid of empty cells
func NewGrid(width, height int) *Grid {
	cells := make([][]Cell, height)
	for y := range cells {
		row := make([]Cell, width)
		for x := range row {
			row[x] = emptyCell
		}
		cells[y] = row
	}
	return &Grid{cells: cells, width: width, height: height}
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies inside the grid
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.Y < g.height && p.X < len(g.cells[p.Y])
}

// Get returns the cell at p, or false when p is outside the grid
func (g *Grid) Get(p Position) (Cell, bool) {
	if !g.InBounds(p) {
		return Cell{}, false
	}
	return g.cells[p.Y][p.X], true
}

// Set writes c at p. Callers validate p with Get first; writing outside the
// grid is an integrity violation.
func (g *Grid) Set(p Position, c Cell) {
	if !g.InBounds(p) {
		integrityPanic("set", p, c.Object, "coordinate outside grid")
	}
	g.cells[p.Y][p.X] = c
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	cells := make([][]Cell, len(g.cells))
	for y, row := range g.cells {
		cells[y] = append([]Cell(nil), row...)
	}
	return &Grid{cells: cells, width: g.width, height: g.height}
}

// Count returns how many cells have the given kind
func (g *Grid) Count(kind CellKind) int {
	n := 0
	for _, row := range g.cells {
		for _, c := range row {
			if c.Kind == kind {
				n++
			}
		}
	}
	return n
}

// Each calls fn for every cell in row-major order
func (g *Grid) Each(fn func(p Position, c Cell)) {
	for y, row := range g.cells {
		for x, c := range row {
			fn(Position{X: x, Y: y}, c)
		}
	}
}
