package engine

import "fmt"

// GPSScore returns the sum of 100*y + x over every origin
func GPSScore(origins []Position) int {
	sum := 0
	for _, p := range origins {
		sum += 100*p.Y + p.X
	}
	return sum
}

// CountObjectCells counts the grid cells covered by objects
func CountObjectCells(g *Grid) int {
	return g.Count(KindObject)
}

// ObjectArea sums the area of every object in the table
func ObjectArea(t *ObjectTable) int {
	area := 0
	for _, obj := range t.All() {
		area += obj.Area()
	}
	return area
}

// LocalView renders the 3x3 neighbourhood of center. Cells outside the grid
// are drawn as obstacles.
func LocalView(w *Warehouse, center Position) []string {
	rows := make([]string, 0, 3)
	for dy := -1; dy <= 1; dy++ {
		row := make([]byte, 0, 3)
		for dx := -1; dx <= 1; dx++ {
			p := Position{X: center.X + dx, Y: center.Y + dy}
			cell, ok := w.Grid.Get(p)
			if !ok {
				row = append(row, SymbolObstacle)
				continue
			}
			row = append(row, w.symbol(p, cell))
		}
		rows = append(rows, string(row))
	}
	return rows
}

// DescribeCell returns a short human description of the cell at p
func DescribeCell(w *Warehouse, p Position) string {
	cell, ok := w.Grid.Get(p)
	if !ok {
		return "outside the warehouse"
	}
	switch cell.Kind {
	case KindObject:
		obj, _ := w.Objects.Get(cell.Object)
		return fmt.Sprintf("object %d (%dx%d at %s)", cell.Object, obj.Width, obj.Height, obj.Origin)
	case KindAgent:
		return "agent"
	}
	return string(cell.Kind)
}
