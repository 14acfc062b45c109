package engine

import (
	"fmt"
	"strings"
)

// Warehouse bundles the grid, the object table and the agent of one
// simulation. Only the resolver mutates it after construction.
type Warehouse struct {
	Grid    *Grid
	Objects *ObjectTable
	Agent   *Agent

	hasAgent bool
}

// NewWarehouse creates an empty warehouse. An agent must be placed before
// the first move.
func NewWarehouse(width, height int) *Warehouse {
	return &Warehouse{
		Grid:    NewGrid(width, height),
		Objects: NewObjectTable(),
		Agent:   &Agent{},
	}
}

// PlaceObstacle marks p as an immovable obstacle
func (w *Warehouse) PlaceObstacle(p Position) error {
	cell, ok := w.Grid.Get(p)
	if !ok {
		return fmt.Errorf("%w: obstacle at %s is outside the grid", ErrPlacement, p)
	}
	if cell.Kind != KindEmpty {
		return fmt.Errorf("%w: obstacle at %s overlaps %s", ErrPlacement, p, cell.Kind)
	}
	w.Grid.Set(p, obstacleCell)
	return nil
}

// PlaceObject adds a width × height object with its top-left cell at origin
func (w *Warehouse) PlaceObject(origin Position, width, height int) (Handle, error) {
	if width < 1 || height < 1 {
		return NoHandle, fmt.Errorf("%w: object dimensions %dx%d must be at least 1x1", ErrPlacement, width, height)
	}
	obj := MovableObject{Origin: origin, Width: width, Height: height}
	cells := footprint(obj)
	for _, p := range cells {
		cell, ok := w.Grid.Get(p)
		if !ok {
			return NoHandle, fmt.Errorf("%w: object at %s extends outside the grid", ErrPlacement, origin)
		}
		if cell.Kind != KindEmpty {
			return NoHandle, fmt.Errorf("%w: object at %s overlaps %s at %s", ErrPlacement, origin, cell.Kind, p)
		}
	}
	h := w.Objects.Add(obj)
	for _, p := range cells {
		w.Grid.Set(p, ObjectCell(h))
	}
	return h, nil
}

// PlaceAgent puts the agent at p. There is exactly one agent.
func (w *Warehouse) PlaceAgent(p Position) error {
	if w.hasAgent {
		return fmt.Errorf("%w: agent already placed at %s", ErrPlacement, w.Agent.Pos)
	}
	cell, ok := w.Grid.Get(p)
	if !ok {
		return fmt.Errorf("%w: agent at %s is outside the grid", ErrPlacement, p)
	}
	if cell.Kind != KindEmpty {
		return fmt.Errorf("%w: agent at %s overlaps %s", ErrPlacement, p, cell.Kind)
	}
	w.Grid.Set(p, agentCell)
	w.Agent.Pos = p
	w.hasAgent = true
	return nil
}

// HasAgent reports whether an agent has been placed
func (w *Warehouse) HasAgent() bool {
	return w.hasAgent
}

// TryMove applies one instruction; see TryMove
func (w *Warehouse) TryMove(d Direction) bool {
	return TryMove(w.Grid, w.Objects, w.Agent, d)
}

// Resolve applies one instruction and reports what happened
func (w *Warehouse) Resolve(d Direction) MoveOutcome {
	return Resolve(w.Grid, w.Objects, w.Agent, d)
}

// Probe reports what d would do without applying it
func (w *Warehouse) Probe(d Direction) MoveOutcome {
	return Probe(w.Grid, w.Objects, w.Agent, d)
}

// Apply runs dirs in order and returns how many of them moved the agent
func (w *Warehouse) Apply(dirs []Direction) int {
	moved := 0
	for _, d := range dirs {
		if w.TryMove(d) {
			moved++
		}
	}
	return moved
}

// Score returns the GPS sum of every object origin
func (w *Warehouse) Score() int {
	return GPSScore(w.Objects.Origins())
}

// ParseLayout builds a warehouse from rows of layout symbols:
// '#' obstacle, '.' empty, 'O' a 1×1 object, '@' the agent, and "[]" a 2×1
// object as rendered by the enlarged variant.
func ParseLayout(rows []string) (*Warehouse, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: layout is empty", ErrParse)
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrParse, i+1, len(row), width)
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("%w: layout rows are empty", ErrParse)
	}

	w := NewWarehouse(width, len(rows))
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			p := Position{X: x, Y: y}
			var err error
			switch row[x] {
			case SymbolEmpty:
			case SymbolObstacle:
				err = w.PlaceObstacle(p)
			case SymbolObject:
				_, err = w.PlaceObject(p, 1, 1)
			case SymbolAgent:
				err = w.PlaceAgent(p)
			case SymbolWideLeft:
				if x+1 >= len(row) || row[x+1] != SymbolWideRight {
					return nil, fmt.Errorf("%w: unmatched '%c' at row %d, col %d", ErrParse, SymbolWideLeft, y+1, x+1)
				}
				_, err = w.PlaceObject(p, 2, 1)
				x++
			case SymbolWideRight:
				return nil, fmt.Errorf("%w: unmatched '%c' at row %d, col %d", ErrParse, SymbolWideRight, y+1, x+1)
			default:
				return nil, fmt.Errorf("%w: invalid character '%c' at row %d, col %d", ErrParse, row[x], y+1, x+1)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	if !w.hasAgent {
		return nil, fmt.Errorf("%w: layout must contain exactly one agent (%c)", ErrParse, SymbolAgent)
	}
	return w, nil
}

// Enlarge returns a copy where every column is doubled: obstacles and empty
// cells become two cells, the agent keeps the left cell, and every object
// keeps its height while its origin x and width are doubled.
func (w *Warehouse) Enlarge() *Warehouse {
	big := NewWarehouse(w.Grid.Width()*2, w.Grid.Height())
	w.Grid.Each(func(p Position, c Cell) {
		if c.Kind == KindObstacle {
			big.Grid.Set(Position{X: 2 * p.X, Y: p.Y}, obstacleCell)
			big.Grid.Set(Position{X: 2*p.X + 1, Y: p.Y}, obstacleCell)
		}
	})
	for _, obj := range w.Objects.All() {
		origin := Position{X: obj.Origin.X * 2, Y: obj.Origin.Y}
		if _, err := big.PlaceObject(origin, obj.Width*2, obj.Height); err != nil {
			integrityPanic("enlarge", origin, NoHandle, err.Error())
		}
	}
	if w.hasAgent {
		pos := Position{X: w.Agent.Pos.X * 2, Y: w.Agent.Pos.Y}
		if err := big.PlaceAgent(pos); err != nil {
			integrityPanic("enlarge", pos, NoHandle, err.Error())
		}
	}
	return big
}

// Render draws the warehouse with the layout symbols. Objects one cell wide
// are drawn as 'O', wider objects as "[]", "[=]", and so on.
func (w *Warehouse) Render() []string {
	rows := make([]string, w.Grid.Height())
	var b strings.Builder
	for y := 0; y < w.Grid.Height(); y++ {
		b.Reset()
		for x := 0; x < w.Grid.Width(); x++ {
			cell, _ := w.Grid.Get(Position{X: x, Y: y})
			b.WriteByte(w.symbol(Position{X: x, Y: y}, cell))
		}
		rows[y] = b.String()
	}
	return rows
}

func (w *Warehouse) symbol(p Position, c Cell) byte {
	switch c.Kind {
	case KindObstacle:
		return SymbolObstacle
	case KindAgent:
		return SymbolAgent
	case KindObject:
		obj, ok := w.Objects.Get(c.Object)
		if !ok {
			return '?'
		}
		switch {
		case obj.Width == 1:
			return SymbolObject
		case p.X == obj.Origin.X:
			return SymbolWideLeft
		case p.X == obj.Origin.X+obj.Width-1:
			return SymbolWideRight
		default:
			return SymbolWideFill
		}
	}
	return SymbolEmpty
}

// String renders the warehouse as newline-separated rows
func (w *Warehouse) String() string {
	return strings.Join(w.Render(), "\n")
}

// Verify checks every structural invariant: each object's handle appears in
// exactly the cells of its rectangle, objects do not overlap each other, an
// obstacle or the agent, and exactly one cell holds the agent at its
// recorded position.
func (w *Warehouse) Verify() error {
	counts := make([]int, w.Objects.Len())
	agents := 0
	var firstErr error
	w.Grid.Each(func(p Position, c Cell) {
		if firstErr != nil {
			return
		}
		switch c.Kind {
		case KindAgent:
			agents++
			if p != w.Agent.Pos {
				firstErr = &IntegrityError{Op: "verify", Pos: p, Handle: NoHandle, Reason: "agent cell does not match agent position"}
			}
		case KindObject:
			obj, ok := w.Objects.Get(c.Object)
			if !ok {
				firstErr = &IntegrityError{Op: "verify", Pos: p, Handle: c.Object, Reason: "handle references no object"}
				return
			}
			if !obj.Contains(p) {
				firstErr = &IntegrityError{Op: "verify", Pos: p, Handle: c.Object, Reason: "cell outside the object's footprint"}
				return
			}
			counts[c.Object]++
		case KindEmpty, KindObstacle:
		default:
			firstErr = &IntegrityError{Op: "verify", Pos: p, Handle: NoHandle, Reason: "unknown cell kind " + string(c.Kind)}
		}
	})
	if firstErr != nil {
		return firstErr
	}
	if agents != 1 {
		return &IntegrityError{Op: "verify", Pos: w.Agent.Pos, Handle: NoHandle, Reason: fmt.Sprintf("found %d agent cells", agents)}
	}
	for h, obj := range w.Objects.All() {
		if counts[h] != obj.Area() {
			return &IntegrityError{
				Op:     "verify",
				Pos:    obj.Origin,
				Handle: Handle(h),
				Reason: fmt.Sprintf("footprint has %d cells, expected %d", counts[h], obj.Area()),
			}
		}
	}
	return nil
}

// Clone returns a deep copy
func (w *Warehouse) Clone() *Warehouse {
	agent := *w.Agent
	return &Warehouse{
		Grid:     w.Grid.Clone(),
		Objects:  w.Objects.Clone(),
		Agent:    &agent,
		hasAgent: w.hasAgent,
	}
}
