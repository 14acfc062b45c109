package engine

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// Engine provides the main interface for simulation operations
type Engine interface {
	// State management
	GetState() *GameState
	Reset() (*GameState, error)
	GetScore() int
	GetAgentPosition() Position
	GetObjectOrigins() []Position

	// Movement operations
	Move(direction string) (bool, error)
	CanMove(direction string) bool
	GetPossibleMoves() []string
	BulkMove(moves []string) ([]bool, error)
	Replay() (int, error)

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
	LastOutcome() *MoveOutcome

	// Local view
	GetLocalView() []string

	// Integrity
	IsHalted() bool
	Fault() error
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; the service layer serializes access.
type GameEngine struct {
	config  *GameConfig
	initial *Warehouse
	wh      *Warehouse

	message     string
	history     []MoveHistoryEntry
	current     []MoveHistoryEntry
	totalPushes int
	last        *MoveOutcome

	fault error
}

// NewEngine creates a new engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	wh, err := BuildWarehouse(config)
	if err != nil {
		return nil, err
	}

	return &GameEngine{
		config:  config,
		initial: wh,
		wh:      wh.Clone(),
		message: config.Messages.Welcome,
		history: []MoveHistoryEntry{},
		current: []MoveHistoryEntry{},
	}, nil
}

// NewEngineWithDefaults creates an engine on the built-in sample warehouse
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		// DefaultConfig is a constant layout
		panic(err)
	}
	return e
}

// BuildWarehouse parses the config layout and enlarges it when requested
func BuildWarehouse(config *GameConfig) (*Warehouse, error) {
	wh, err := ParseLayout(config.Layout)
	if err != nil {
		return nil, err
	}
	if config.Enlarged {
		wh = wh.Enlarge()
	}
	return wh, nil
}

// Warehouse returns a copy of the current warehouse
func (e *GameEngine) Warehouse() *Warehouse {
	return e.wh.Clone()
}

// GetState returns a snapshot of the current state
func (e *GameEngine) GetState() *GameState {
	objects := e.wh.Objects.All()
	states := make([]ObjectState, len(objects))
	for i, obj := range objects {
		states[i] = ObjectState{Handle: Handle(i), Origin: obj.Origin, Width: obj.Width, Height: obj.Height}
	}

	state := &GameState{
		Grid:              e.wh.Render(),
		Width:             e.wh.Grid.Width(),
		Height:            e.wh.Grid.Height(),
		AgentPos:          e.wh.Agent.Pos,
		Objects:           states,
		Score:             e.wh.Score(),
		Enlarged:          e.config.Enlarged,
		Message:           e.message,
		Halted:            e.fault != nil,
		ConfigName:        e.config.Name,
		MoveHistory:       append([]MoveHistoryEntry{}, e.history...),
		TotalMoves:        len(e.history),
		TotalPushes:       e.totalPushes,
		CurrentMoves:      append([]MoveHistoryEntry{}, e.current...),
		CurrentMovesCount: len(e.current),
		LocalView3x3:      LocalView(e.wh, e.wh.Agent.Pos),
	}
	if e.fault != nil {
		state.Fault = e.fault.Error()
	}
	return state
}

// Reset restores the initial warehouse. Cumulative history and totals are
// preserved; only the current segment is cleared.
func (e *GameEngine) Reset() (*GameState, error) {
	if e.fault != nil {
		return nil, ErrSimulationHalted
	}
	e.wh = e.initial.Clone()
	e.message = e.config.Messages.Welcome
	e.current = []MoveHistoryEntry{}
	e.last = nil
	return e.GetState(), nil
}

// GetScore returns the GPS sum of the current object origins
func (e *GameEngine) GetScore() int {
	return e.wh.Score()
}

// GetAgentPosition returns the current agent position
func (e *GameEngine) GetAgentPosition() Position {
	return e.wh.Agent.Pos
}

// GetObjectOrigins returns every object's origin, indexed by handle
func (e *GameEngine) GetObjectOrigins() []Position {
	return e.wh.Objects.Origins()
}

// Move resolves one instruction. A blocked move returns false with a nil
// error. An integrity violation halts the engine and is returned wrapped in
// ErrSimulationHalted; every later call fails with ErrSimulationHalted.
func (e *GameEngine) Move(direction string) (bool, error) {
	if e.fault != nil {
		return false, ErrSimulationHalted
	}
	d, err := ParseDirection(direction)
	if err != nil {
		return false, err
	}
	return e.step(d)
}

func (e *GameEngine) step(d Direction) (bool, error) {
	var out MoveOutcome
	if err := e.guard("move", func() { out = e.wh.Resolve(d) }); err != nil {
		return false, err
	}

	e.last = &out
	e.totalPushes += len(out.Pushed)
	e.message = e.moveMessage(out)
	e.record(out)
	return out.Moved, nil
}

// guard runs fn and converts an integrity panic into a halt
func (e *GameEngine) guard(op string, fn func()) (err error) {
	defer func() {
		if err != nil {
			e.halt(op, err)
			err = e.fault
		}
	}()
	defer recoverIntegrity(&err)
	fn()
	return nil
}

func (e *GameEngine) halt(op string, cause error) {
	e.fault = fmt.Errorf("%w: %w", ErrSimulationHalted, cause)
	e.message = "Simulation halted: " + cause.Error()
	log.Printf("Warehouse %q halted during %s: %v", e.config.Name, op, cause)
}

func (e *GameEngine) moveMessage(out MoveOutcome) string {
	msgs := e.config.Messages
	switch {
	case !out.Moved:
		if msgs.Blocked != "" {
			return msgs.Blocked
		}
		return DefaultMessages().Blocked
	case len(out.Pushed) > 0:
		if msgs.Pushed != "" {
			return fmt.Sprintf(msgs.Pushed, len(out.Pushed))
		}
		return fmt.Sprintf(DefaultMessages().Pushed, len(out.Pushed))
	}
	if msgs.Moved != "" {
		return msgs.Moved
	}
	return DefaultMessages().Moved
}

func (e *GameEngine) record(out MoveOutcome) {
	entry := MoveHistoryEntry{
		Action:       string(out.Direction),
		FromPosition: out.From,
		ToPosition:   out.To,
		Pushed:       len(out.Pushed),
		Timestamp:    time.Now().Unix(),
		Success:      out.Moved,
		MoveNumber:   len(e.history) + 1,
	}
	e.history = append(e.history, entry)
	e.current = append(e.current, entry)
}

// CanMove reports whether a move in direction would succeed, without
// applying it
func (e *GameEngine) CanMove(direction string) bool {
	if e.fault != nil {
		return false
	}
	d, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	var out MoveOutcome
	if err := e.guard("probe", func() { out = e.wh.Probe(d) }); err != nil {
		return false
	}
	return out.Moved
}

// GetPossibleMoves returns all directions the agent can currently move in
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, d := range Directions {
		if e.CanMove(string(d)) {
			possible = append(possible, string(d))
		}
	}
	return possible
}

// BulkMove executes moves in sequence and returns the outcome of each.
// Blocked moves do not stop the batch; a halt does.
func (e *GameEngine) BulkMove(moves []string) ([]bool, error) {
	dirs := make([]Direction, 0, len(moves))
	for i, m := range moves {
		d, err := ParseDirection(m)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		dirs = append(dirs, d)
	}
	return e.run(dirs)
}

func (e *GameEngine) run(dirs []Direction) ([]bool, error) {
	results := make([]bool, 0, len(dirs))
	for _, d := range dirs {
		if e.fault != nil {
			return results, ErrSimulationHalted
		}
		moved, err := e.step(d)
		if err != nil {
			return results, err
		}
		results = append(results, moved)
	}
	return results, nil
}

// Replay resets the warehouse and runs the configured instruction stream to
// completion. It returns how many instructions moved the agent.
func (e *GameEngine) Replay() (int, error) {
	dirs, err := ParseInstructions(e.config.Instructions)
	if err != nil {
		return 0, err
	}
	if _, err := e.Reset(); err != nil {
		return 0, err
	}
	results, err := e.run(dirs)
	moved := 0
	for _, ok := range results {
		if ok {
			moved++
		}
	}
	return moved, err
}

// GetConfig returns the current configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig replaces the configuration and starts a fresh simulation
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	wh, err := BuildWarehouse(config)
	if err != nil {
		return err
	}

	e.config = config
	e.initial = wh
	e.wh = wh.Clone()
	e.message = config.Messages.Welcome
	e.history = []MoveHistoryEntry{}
	e.current = []MoveHistoryEntry{}
	e.totalPushes = 0
	e.last = nil
	e.fault = nil
	return nil
}

// GetMoveHistory returns the cumulative move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.history
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// LastOutcome returns the diagnostics of the last resolved move
func (e *GameEngine) LastOutcome() *MoveOutcome {
	return e.last
}

// GetLocalView returns the 3x3 neighbourhood of the agent
func (e *GameEngine) GetLocalView() []string {
	return LocalView(e.wh, e.wh.Agent.Pos)
}

// IsHalted reports whether an integrity violation stopped the simulation
func (e *GameEngine) IsHalted() bool {
	return e.fault != nil
}

// Fault returns the integrity violation that halted the simulation, if any.
// The result matches ErrSimulationHalted and unwraps to *IntegrityError.
func (e *GameEngine) Fault() error {
	return e.fault
}

// IsIntegrityFault reports whether err carries an *IntegrityError
func IsIntegrityFault(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
