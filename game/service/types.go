package service

import (
	"time"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
)

// Event types
const (
	EventMove    = "move"
	EventPush    = "push"
	EventBlocked = "blocked"
	EventReset   = "reset"
	EventFault   = "fault"
)

// Stop reason codes reported by bulk moves
const (
	StopHalted    = "halted"
	StopTruncated = "truncated"
	StopCancelled = "cancelled"
)

// SessionInfo provides information about a simulation session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Enlarged       bool               `json:"enlarged"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	MovesBlocked   int               `json:"moves_blocked"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // halted|truncated|cancelled
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos   engine.Position `json:"start_pos"`
	EndPos     engine.Position `json:"end_pos"`
	StartScore int             `json:"start_score"`
	EndScore   int             `json:"end_score"`
	ScoreDelta int             `json:"score_delta"`
	Pushes     int             `json:"pushes"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// First blocked target, if any
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	Halted        bool     `json:"halted"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	LocalView3x3  []string `json:"local_view_3x3,omitempty"`
}

// StepInfo is a compact record for each resolved move
type StepInfo struct {
	Idx     int             `json:"idx"`
	Dir     string          `json:"dir"`
	From    engine.Position `json:"from"`
	To      engine.Position `json:"to"`
	Pushed  int             `json:"pushed"`
	Objects []engine.Handle `json:"objects,omitempty"`
	Success bool            `json:"success"`
}

// AttemptInfo details the cell that blocked a move
type AttemptInfo struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	TileChar    string `json:"tile_char"`
	TileType    string `json:"tile_type"`
	OutOfBounds bool   `json:"out_of_bounds,omitempty"`
}

// GameEvent represents an event that occurred during a simulation
type GameEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"` // "move", "push", "blocked", "reset", "fault"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// CellInfo describes one grid cell
type CellInfo struct {
	Position    engine.Position     `json:"position"`
	Kind        engine.CellKind     `json:"kind,omitempty"`
	Symbol      string              `json:"symbol"`
	Description string              `json:"description"`
	InBounds    bool                `json:"in_bounds"`
	Object      *engine.ObjectState `json:"object,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a warehouse configuration
type ConfigInfo struct {
	Filename        string `json:"filename"`
	ConfigID        string `json:"config_id"` // The identifier to use for session creation
	Name            string `json:"name"`      // Display name
	Description     string `json:"description"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Objects         int    `json:"objects"`
	Enlarged        bool   `json:"enlarged"`
	HasInstructions bool   `json:"has_instructions"`
}
