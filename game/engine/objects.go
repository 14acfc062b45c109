package engine

// ObjectTable owns every movable object. Cells refer to objects by Handle;
// the table is the only owner of the records.
type ObjectTable struct {
	objects []MovableObject
}

// NewObjectTable creates an empty table
func NewObjectTable() *ObjectTable {
	return &ObjectTable{}
}

// Add stores obj and returns its handle
func (t *ObjectTable) Add(obj MovableObject) Handle {
	t.objects = append(t.objects, obj)
	return Handle(len(t.objects) - 1)
}

// Get returns the object for h
func (t *ObjectTable) Get(h Handle) (MovableObject, bool) {
	if h < 0 || int(h) >= len(t.objects) {
		return MovableObject{}, false
	}
	return t.objects[h], true
}

// mustGet is Get for call sites where a missing record means corrupted state
func (t *ObjectTable) mustGet(op string, pos Position, h Handle) MovableObject {
	obj, ok := t.Get(h)
	if !ok {
		integrityPanic(op, pos, h, "handle references no object")
	}
	return obj
}

// Len returns the number of objects
func (t *ObjectTable) Len() int {
	return len(t.objects)
}

// Footprint returns every cell covered by h, row by row
func (t *ObjectTable) Footprint(h Handle) []Position {
	obj := t.mustGet("footprint", Position{}, h)
	return footprint(obj)
}

func footprint(obj MovableObject) []Position {
	cells := make([]Position, 0, obj.Area())
	for y := obj.Origin.Y; y < obj.Origin.Y+obj.Height; y++ {
		for x := obj.Origin.X; x < obj.Origin.X+obj.Width; x++ {
			cells = append(cells, Position{X: x, Y: y})
		}
	}
	return cells
}

// LeadingEdge returns the boundary cells of h facing d: the top row for Up,
// the rightmost column for Right, and so on. It depends only on the object's
// origin and dimensions.
func (t *ObjectTable) LeadingEdge(h Handle, d Direction) []Position {
	obj := t.mustGet("leading edge", Position{}, h)
	return leadingEdge(obj, d)
}

func leadingEdge(obj MovableObject, d Direction) []Position {
	var edge []Position
	switch d {
	case Up, Down:
		y := obj.Origin.Y
		if d == Down {
			y = obj.Origin.Y + obj.Height - 1
		}
		edge = make([]Position, 0, obj.Width)
		for x := obj.Origin.X; x < obj.Origin.X+obj.Width; x++ {
			edge = append(edge, Position{X: x, Y: y})
		}
	case Left, Right:
		x := obj.Origin.X
		if d == Right {
			x = obj.Origin.X + obj.Width - 1
		}
		edge = make([]Position, 0, obj.Height)
		for y := obj.Origin.Y; y < obj.Origin.Y+obj.Height; y++ {
			edge = append(edge, Position{X: x, Y: y})
		}
	}
	return edge
}

// Translate moves the origin of h one step in d. Only the resolver's commit
// phase calls it, after the destination has been proven free.
func (t *ObjectTable) Translate(h Handle, d Direction) {
	obj := t.mustGet("translate", Position{}, h)
	origin, ok := obj.Origin.Add(d)
	if !ok {
		integrityPanic("translate", obj.Origin, h, "origin would leave the grid")
	}
	t.objects[h].Origin = origin
}

// Origins returns every object's origin, indexed by handle
func (t *ObjectTable) Origins() []Position {
	origins := make([]Position, len(t.objects))
	for i, obj := range t.objects {
		origins[i] = obj.Origin
	}
	return origins
}

// All returns a copy of every object, indexed by handle
func (t *ObjectTable) All() []MovableObject {
	return append([]MovableObject(nil), t.objects...)
}

// Clone returns a deep copy
func (t *ObjectTable) Clone() *ObjectTable {
	return &ObjectTable{objects: t.All()}
}
