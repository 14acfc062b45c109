package engine

// Agent is the single mobile entity of a simulation
type Agent struct {
	Pos Position `json:"pos"`
}

// Blocker describes the cell that stopped a move
type Blocker struct {
	Pos         Position `json:"pos"`
	Kind        CellKind `json:"kind,omitempty"`
	OutOfBounds bool     `json:"out_of_bounds,omitempty"`
}

// MoveOutcome is the result of resolving one instruction. When Moved is
// false the grid, the object table and the agent are unchanged.
type MoveOutcome struct {
	Direction Direction `json:"direction"`
	Moved     bool      `json:"moved"`
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Pushed    []Handle  `json:"pushed,omitempty"`
	Blocker   *Blocker  `json:"blocker,omitempty"`
}

// TryMove moves the agent one step in d, pushing every object in the way.
// It returns false, with no state changed, when any object of the chain is
// blocked by an obstacle or the grid boundary.
func TryMove(grid *Grid, objects *ObjectTable, agent *Agent, d Direction) bool {
	return Resolve(grid, objects, agent, d).Moved
}

// Resolve is TryMove with diagnostics about the pushed chain or the blocker.
func Resolve(grid *Grid, objects *ObjectTable, agent *Agent, d Direction) MoveOutcome {
	out, chain := probe(grid, objects, agent, d)
	if !out.Moved {
		return out
	}

	chain.commit()

	grid.Set(agent.Pos, emptyCell)
	agent.Pos = out.To
	grid.Set(agent.Pos, agentCell)
	return out
}

// Probe runs only the read-only collect phase: the outcome says whether the
// move would succeed and which objects it would push.
func Probe(grid *Grid, objects *ObjectTable, agent *Agent, d Direction) MoveOutcome {
	out, _ := probe(grid, objects, agent, d)
	return out
}

func probe(grid *Grid, objects *ObjectTable, agent *Agent, d Direction) (MoveOutcome, *pushChain) {
	out := MoveOutcome{Direction: d, From: agent.Pos, To: agent.Pos}
	if cell, ok := grid.Get(agent.Pos); !ok || cell.Kind != KindAgent {
		integrityPanic("collect", agent.Pos, NoHandle, "agent is not on the grid")
	}
	if !d.Valid() {
		out.Blocker = &Blocker{Pos: agent.Pos, OutOfBounds: true}
		return out, nil
	}

	target, ok := agent.Pos.Add(d)
	if !ok {
		out.Blocker = &Blocker{Pos: agent.Pos.Offset(d), OutOfBounds: true}
		return out, nil
	}

	chain := &pushChain{
		grid:    grid,
		objects: objects,
		dir:     d,
		seen:    make(map[Handle]struct{}),
	}
	if !chain.collect(target) {
		out.Blocker = chain.blocker
		return out, nil
	}

	out.Moved = true
	out.To = target
	out.Pushed = chain.order
	return out, chain
}

// pushChain accumulates the objects that must move together for one push.
type pushChain struct {
	grid    *Grid
	objects *ObjectTable
	dir     Direction

	// order holds each handle once, in discovery order
	order   []Handle
	seen    map[Handle]struct{}
	blocker *Blocker
}

// collect checks that the cell at p can be vacated in c.dir. It never
// writes to the grid or the table.
func (c *pushChain) collect(p Position) bool {
	cell, ok := c.grid.Get(p)
	if !ok {
		c.blocker = &Blocker{Pos: p, OutOfBounds: true}
		return false
	}

	switch cell.Kind {
	case KindEmpty:
		return true

	case KindObstacle:
		c.blocker = &Blocker{Pos: p, Kind: KindObstacle}
		return false

	case KindObject:
		h := cell.Object
		if _, dup := c.seen[h]; dup {
			return true
		}
		obj := c.objects.mustGet("collect", p, h)
		if !obj.Contains(p) {
			integrityPanic("collect", p, h, "cell references an object that does not cover it")
		}
		c.seen[h] = struct{}{}
		c.order = append(c.order, h)

		for _, edge := range leadingEdge(obj, c.dir) {
			next, ok := edge.Add(c.dir)
			if !ok {
				c.blocker = &Blocker{Pos: edge.Offset(c.dir), OutOfBounds: true}
				return false
			}
			if !c.collect(next) {
				return false
			}
		}
		return true

	case KindAgent:
		integrityPanic("collect", p, NoHandle, "agent found ahead of itself in a push chain")
	}

	integrityPanic("collect", p, NoHandle, "unknown cell kind "+string(cell.Kind))
	return false
}

// commit applies the collected chain. Every old footprint is cleared before
// any new footprint is written, so the order of objects does not matter.
func (c *pushChain) commit() {
	for _, h := range c.order {
		for _, p := range c.objects.Footprint(h) {
			c.grid.Set(p, emptyCell)
		}
	}
	for _, h := range c.order {
		c.objects.Translate(h, c.dir)
		cell := ObjectCell(h)
		for _, p := range c.objects.Footprint(h) {
			c.grid.Set(p, cell)
		}
	}
}
