package engine

import (
	"encoding/json"
	"testing"
)

func TestCellKindConstants(t *testing.T) {
	tests := []struct {
		kind     CellKind
		expected string
	}{
		{KindEmpty, "empty"},
		{KindObstacle, "obstacle"},
		{KindObject, "object"},
		{KindAgent, "agent"},
	}

	for _, test := range tests {
		if string(test.kind) != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, string(test.kind))
		}
	}
}

func TestCellConstructors(t *testing.T) {
	if c := EmptyCell(); c.Kind != KindEmpty || c.Object != NoHandle {
		t.Errorf("Unexpected empty cell: %+v", c)
	}
	if c := ObstacleCell(); c.Kind != KindObstacle {
		t.Errorf("Unexpected obstacle cell: %+v", c)
	}
	if c := AgentCell(); c.Kind != KindAgent {
		t.Errorf("Unexpected agent cell: %+v", c)
	}
	if c := ObjectCell(3); c.Kind != KindObject || c.Object != 3 {
		t.Errorf("Unexpected object cell: %+v", c)
	}
}

func TestMovableObject_Contains(t *testing.T) {
	obj := MovableObject{Origin: Position{X: 2, Y: 1}, Width: 2, Height: 3}

	inside := []Position{{X: 2, Y: 1}, {X: 3, Y: 1}, {X: 2, Y: 3}, {X: 3, Y: 3}}
	outside := []Position{{X: 1, Y: 1}, {X: 4, Y: 1}, {X: 2, Y: 0}, {X: 2, Y: 4}}

	for _, p := range inside {
		if !obj.Contains(p) {
			t.Errorf("Expected %s inside the object", p)
		}
	}
	for _, p := range outside {
		if obj.Contains(p) {
			t.Errorf("Expected %s outside the object", p)
		}
	}
	if obj.Area() != 6 {
		t.Errorf("Expected area 6, got %d", obj.Area())
	}
}

func TestObjectTable_LeadingEdge(t *testing.T) {
	table := NewObjectTable()
	h := table.Add(MovableObject{Origin: Position{X: 4, Y: 2}, Width: 2, Height: 2})

	tests := []struct {
		dir      Direction
		expected []Position
	}{
		{Up, []Position{{X: 4, Y: 2}, {X: 5, Y: 2}}},
		{Down, []Position{{X: 4, Y: 3}, {X: 5, Y: 3}}},
		{Left, []Position{{X: 4, Y: 2}, {X: 4, Y: 3}}},
		{Right, []Position{{X: 5, Y: 2}, {X: 5, Y: 3}}},
	}

	for _, test := range tests {
		t.Run(string(test.dir), func(t *testing.T) {
			edge := table.LeadingEdge(h, test.dir)
			if len(edge) != len(test.expected) {
				t.Fatalf("Expected %d edge cells, got %d", len(test.expected), len(edge))
			}
			for i := range edge {
				if edge[i] != test.expected[i] {
					t.Errorf("Edge cell %d: expected %s, got %s", i, test.expected[i], edge[i])
				}
			}
		})
	}
}

func TestObjectTable_FootprintAndTranslate(t *testing.T) {
	table := NewObjectTable()
	h := table.Add(MovableObject{Origin: Position{X: 1, Y: 1}, Width: 2, Height: 1})

	footprint := table.Footprint(h)
	if len(footprint) != 2 || footprint[0] != (Position{X: 1, Y: 1}) || footprint[1] != (Position{X: 2, Y: 1}) {
		t.Errorf("Unexpected footprint: %v", footprint)
	}

	table.Translate(h, Left)
	obj, _ := table.Get(h)
	if obj.Origin != (Position{X: 0, Y: 1}) {
		t.Errorf("Expected origin (0,1), got %s", obj.Origin)
	}

	// a negative origin is an integrity violation
	ie := catchIntegrity(func() { table.Translate(h, Left) })
	if ie == nil {
		t.Fatal("Expected integrity panic")
	}
	if ie.Op != "translate" {
		t.Errorf("Expected op 'translate', got '%s'", ie.Op)
	}

	if _, ok := table.Get(NoHandle); ok {
		t.Error("Expected NoHandle lookup to fail")
	}
}

func TestObjectTable_CloneIsIndependent(t *testing.T) {
	table := NewObjectTable()
	h := table.Add(MovableObject{Origin: Position{X: 1, Y: 1}, Width: 1, Height: 1})
	clone := table.Clone()

	clone.Translate(h, Right)

	if table.Origins()[0] != (Position{X: 1, Y: 1}) {
		t.Error("Expected original table to be unaffected")
	}
}

func TestGrid_Bounds(t *testing.T) {
	grid := NewGrid(3, 2)

	if _, ok := grid.Get(Position{X: 3, Y: 0}); ok {
		t.Error("Expected x=3 to be out of bounds")
	}
	if _, ok := grid.Get(Position{X: 0, Y: 2}); ok {
		t.Error("Expected y=2 to be out of bounds")
	}
	if _, ok := grid.Get(Position{X: -1, Y: 0}); ok {
		t.Error("Expected negative x to be out of bounds")
	}
	if c, ok := grid.Get(Position{X: 2, Y: 1}); !ok || c.Kind != KindEmpty {
		t.Errorf("Expected empty in-bounds cell, got %+v %v", c, ok)
	}

	if ie := catchIntegrity(func() { grid.Set(Position{X: 5, Y: 5}, ObstacleCell()) }); ie == nil {
		t.Error("Expected integrity panic for out-of-range write")
	}
}

func TestGameStateJSONMarshaling(t *testing.T) {
	engine := NewEngineWithDefaults()
	engine.Move("left")

	data, err := json.Marshal(engine.GetState())
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal state: %v", err)
	}

	for _, key := range []string{"grid", "agent_pos", "objects", "score", "move_history", "local_view_3x3", "halted"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in state JSON", key)
		}
	}
	if _, ok := decoded["fault"]; ok {
		t.Error("Expected no fault key for a healthy simulation")
	}
}
