package engine

import (
	"errors"
	"testing"
)

func TestEngine_BulkMoveOperations(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	t.Run("blocked moves do not stop the batch", func(t *testing.T) {
		results, err := engine.BulkMove([]string{"up", "right", "right", "right", "down"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := []bool{false, true, true, false, true}
		if len(results) != len(expected) {
			t.Fatalf("Expected %d results, got %d", len(expected), len(results))
		}
		for i := range expected {
			if results[i] != expected[i] {
				t.Errorf("Move %d: expected %v, got %v", i+1, expected[i], results[i])
			}
		}
		if pos := engine.GetAgentPosition(); pos != (Position{X: 3, Y: 2}) {
			t.Errorf("Expected agent at (3,2), got %s", pos)
		}
	})

	t.Run("invalid direction rejects the whole batch", func(t *testing.T) {
		engine.Reset()
		results, err := engine.BulkMove([]string{"right", "invalid", "left"})
		if !errors.Is(err, ErrInvalidDirection) {
			t.Errorf("Expected ErrInvalidDirection, got %v", err)
		}
		if results != nil {
			t.Errorf("Expected no results, got %v", results)
		}
		if pos := engine.GetAgentPosition(); pos != (Position{X: 1, Y: 1}) {
			t.Errorf("Expected no move applied, agent at %s", pos)
		}
	})

	t.Run("empty bulk moves", func(t *testing.T) {
		engine.Reset()
		results, err := engine.BulkMove([]string{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("Expected 0 results for empty moves, got %d", len(results))
		}
	})
}

func TestEngine_Replay(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// Replay starts from the initial warehouse regardless of earlier moves
	engine.Move("down")

	moved, err := engine.Replay()
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if moved != 3 {
		t.Errorf("Expected 3 successful moves, got %d", moved)
	}
	if engine.GetScore() != 306 {
		t.Errorf("Expected score 306, got %d", engine.GetScore())
	}
	if state := engine.GetState(); state.CurrentMovesCount != 4 {
		t.Errorf("Expected 4 moves in the current segment, got %d", state.CurrentMovesCount)
	}
}

func TestEngine_ReplayKnownAnswers(t *testing.T) {
	tests := []struct {
		name      string
		layout    []string
		moves     string
		enlarged  bool
		wantScore int
	}{
		{
			name:      "small sample",
			layout:    DefaultConfig().Layout,
			moves:     DefaultConfig().Instructions,
			wantScore: 2028,
		},
		{
			name:      "enlarged sample",
			layout:    enlargedSampleLayout,
			moves:     "<vv<<^^<<^^",
			enlarged:  true,
			wantScore: 618,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			config.Layout = tt.layout
			config.Instructions = tt.moves
			config.Enlarged = tt.enlarged

			engine, err := NewEngine(config)
			if err != nil {
				t.Fatalf("Failed to create engine: %v", err)
			}
			if _, err := engine.Replay(); err != nil {
				t.Fatalf("Replay failed: %v", err)
			}
			if engine.GetScore() != tt.wantScore {
				t.Errorf("Expected score %d, got %d", tt.wantScore, engine.GetScore())
			}
		})
	}
}

func TestEngine_HaltsOnIntegrityViolation(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// Corrupt the grid: a second agent cell right of the agent
	engine.wh.Grid.Set(Position{X: 2, Y: 1}, AgentCell())

	moved, err := engine.Move("right")
	if moved {
		t.Error("Expected faulting move not to report success")
	}
	if !errors.Is(err, ErrSimulationHalted) {
		t.Errorf("Expected ErrSimulationHalted, got %v", err)
	}
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("Expected error to carry *IntegrityError, got %v", err)
	}
	if ie.Pos != (Position{X: 2, Y: 1}) {
		t.Errorf("Expected fault at (2,1), got %s", ie.Pos)
	}
	if !IsIntegrityFault(engine.Fault()) {
		t.Error("Expected Fault() to report the integrity violation")
	}
	if !engine.IsHalted() {
		t.Fatal("Expected engine to be halted")
	}

	t.Run("later calls are rejected", func(t *testing.T) {
		if _, err := engine.Move("down"); !errors.Is(err, ErrSimulationHalted) {
			t.Errorf("Move: expected ErrSimulationHalted, got %v", err)
		}
		if _, err := engine.BulkMove([]string{"down"}); !errors.Is(err, ErrSimulationHalted) {
			t.Errorf("BulkMove: expected ErrSimulationHalted, got %v", err)
		}
		if _, err := engine.Reset(); !errors.Is(err, ErrSimulationHalted) {
			t.Errorf("Reset: expected ErrSimulationHalted, got %v", err)
		}
		if _, err := engine.Replay(); !errors.Is(err, ErrSimulationHalted) {
			t.Errorf("Replay: expected ErrSimulationHalted, got %v", err)
		}
		if engine.CanMove("down") {
			t.Error("Expected CanMove to be false once halted")
		}
		if len(engine.GetPossibleMoves()) != 0 {
			t.Error("Expected no possible moves once halted")
		}
	})

	t.Run("state reports the fault", func(t *testing.T) {
		state := engine.GetState()
		if !state.Halted {
			t.Error("Expected state to be halted")
		}
		if state.Fault == "" {
			t.Error("Expected fault description in state")
		}
	})
}

func TestEngine_ProbeFaultHalts(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())
	engine.wh.Grid.Set(Position{X: 1, Y: 2}, ObjectCell(99))

	if engine.CanMove("down") {
		t.Error("Expected CanMove to fail on a dangling handle")
	}
	if !engine.IsHalted() {
		t.Error("Expected probe fault to halt the engine")
	}
}

func TestEngine_HistoryNumbering(t *testing.T) {
	engine, _ := NewEngine(createTestConfig())

	engine.BulkMove([]string{"right", "up", "down"})
	engine.Reset()
	engine.Move("down")

	history := engine.GetMoveHistory()
	if len(history) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(history))
	}
	for i, entry := range history {
		if entry.MoveNumber != i+1 {
			t.Errorf("Entry %d: expected move number %d, got %d", i, i+1, entry.MoveNumber)
		}
		if entry.Timestamp == 0 {
			t.Errorf("Entry %d: expected timestamp", i)
		}
	}
	if history[1].Success {
		t.Error("Expected 'up' into the wall to be recorded as unsuccessful")
	}
	if history[1].FromPosition != history[1].ToPosition {
		t.Error("Expected blocked move to keep the same position")
	}
}
