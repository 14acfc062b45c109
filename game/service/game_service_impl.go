package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new warehouse service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// lookup fetches a session and touches its access time. The caller holds
// s.mu for writing.
func (s *gameServiceImpl) lookup(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	configID := sess.ConfigID
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		Enlarged:       sess.Config.Enlarged,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new session. When enlarged is set the layout is
// widened before the engine is built.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, enlarged bool) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	if enlarged && !config.Enlarged {
		widened := *config
		widened.Enlarged = true
		config = &widened
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess.ConfigID = configName
	if sess.ConfigID == "" {
		sess.ConfigID = s.getConfigID(config.Name)
	}
	activeSessions.Set(float64(len(s.sessions.List())))

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	activeSessions.Set(float64(len(sessions)))

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %q: %w", sessionID, err)
	}
	activeSessions.Set(float64(len(s.sessions.List())))
	return nil
}

// Move resolves a single instruction for a session. A blocked move is a
// successful call with Success false; an integrity violation is returned as
// an error matching engine.ErrSimulationHalted.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, err
		}
		events = append(events, newEvent(EventReset, "Warehouse reset to initial state", sess.Engine.GetAgentPosition()))
	}

	wasHalted := sess.Engine.IsHalted()
	moved, err := sess.Engine.Move(direction)
	if err != nil {
		if !wasHalted && sess.Engine.IsHalted() {
			recordFault()
			log.Printf("Session %s halted: %v", sess.ID, err)
		}
		return nil, err
	}

	out := sess.Engine.LastOutcome()
	recordOutcome(out)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   moved,
		GameState: state,
		Message:   state.Message,
		Events:    append(events, outcomeEvents(out)...),
	}
	if moved {
		step := stepInfo(1, out)
		result.Step = &step
	} else {
		result.AttemptedTo = attemptInfo(state, out)
	}
	return result, nil
}

// BulkMove resolves multiple instructions in sequence. Blocked moves are
// counted and skipped; a halt or a cancelled context stops the batch.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	// Reject the whole batch before touching the session
	for i, m := range moves {
		if _, err := engine.ParseDirection(m); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, err
		}
		result.Events = append(result.Events, newEvent(EventReset, "Warehouse reset to initial state", sess.Engine.GetAgentPosition()))
	}

	start := sess.Engine.GetState()
	result.StartPos = start.AgentPos
	result.StartScore = start.Score

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		result.StopReasonCode = StopTruncated
		result.StoppedReason = fmt.Sprintf("only the first %d moves were executed", engine.MaxBulkMoves)
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if err := ctx.Err(); err != nil {
			result.Success = false
			result.StopReasonCode = StopCancelled
			result.StoppedReason = err.Error()
			result.StoppedOnMove = i + 1
			break
		}

		wasHalted := sess.Engine.IsHalted()
		moved, err := sess.Engine.Move(move)
		if err != nil {
			if !wasHalted && sess.Engine.IsHalted() {
				recordFault()
				log.Printf("Session %s halted on move %d: %v", sess.ID, i+1, err)
			}
			result.Success = false
			result.StopReasonCode = StopHalted
			result.StoppedReason = err.Error()
			result.StoppedOnMove = i + 1
			result.Events = append(result.Events, newEvent(EventFault, err.Error(), sess.Engine.GetAgentPosition()))
			break
		}

		out := sess.Engine.LastOutcome()
		recordOutcome(out)
		result.Events = append(result.Events, outcomeEvents(out)...)

		if !moved {
			result.MovesBlocked++
			if result.AttemptedTo == nil {
				result.AttemptedTo = attemptInfo(sess.Engine.GetState(), out)
			}
			continue
		}

		result.MovesExecuted++
		result.Pushes += len(out.Pushed)
		result.Steps = append(result.Steps, stepInfo(i+1, out))
	}

	s.finish(sess, result)
	return result, nil
}

// Replay resets the session and runs its configured instruction stream
func (s *gameServiceImpl) Replay(ctx context.Context, sessionID string) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	dirs, err := engine.ParseInstructions(sess.Config.Instructions)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(dirs),
		Events:         []GameEvent{},
		Success:        true,
	}
	initial, err := engine.BuildWarehouse(sess.Config)
	if err != nil {
		return nil, err
	}
	result.StartPos = initial.Agent.Pos
	result.StartScore = initial.Score()

	pushesBefore := sess.Engine.GetState().TotalPushes
	wasHalted := sess.Engine.IsHalted()
	moved, err := sess.Engine.Replay()
	if err != nil {
		if !errors.Is(err, engine.ErrSimulationHalted) {
			return nil, err
		}
		if !wasHalted && sess.Engine.IsHalted() {
			recordFault()
			log.Printf("Session %s halted during replay: %v", sess.ID, err)
		}
		result.Success = false
		result.StopReasonCode = StopHalted
		result.StoppedReason = err.Error()
		result.Events = append(result.Events, newEvent(EventFault, err.Error(), sess.Engine.GetAgentPosition()))
	}
	replaysTotal.Inc()

	state := sess.Engine.GetState()
	result.MovesExecuted = moved
	result.MovesBlocked = state.CurrentMovesCount - moved
	result.Pushes = state.TotalPushes - pushesBefore

	s.finish(sess, result)
	return result, nil
}

// finish fills the end snapshot and decision aids of a bulk result
func (s *gameServiceImpl) finish(sess *Session, result *BulkMoveResult) {
	end := sess.Engine.GetState()
	result.GameState = end
	result.EndPos = end.AgentPos
	result.EndScore = end.Score
	result.ScoreDelta = end.Score - result.StartScore
	result.Halted = end.Halted
	result.Message = end.Message
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	result.LocalView3x3 = end.LocalView3x3
}

// Reset resets a session to its initial warehouse
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Reset()
}

// GetGameState retrieves the current state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}
	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// DescribeCell reports what occupies pos in a session's warehouse
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*CellInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	wh := sess.Engine.Warehouse()
	info := &CellInfo{
		Position:    pos,
		Symbol:      string(engine.SymbolObstacle),
		Description: engine.DescribeCell(wh, pos),
	}
	cell, ok := wh.Grid.Get(pos)
	if !ok {
		return info, nil
	}

	info.InBounds = true
	info.Kind = cell.Kind
	info.Symbol = string(engine.LocalView(wh, pos)[1][1])
	if cell.Kind == engine.KindObject {
		if obj, ok := wh.Objects.Get(cell.Object); ok {
			info.Object = &engine.ObjectState{
				Handle: cell.Object,
				Origin: obj.Origin,
				Width:  obj.Width,
				Height: obj.Height,
			}
		}
	}
	return info, nil
}

// Render returns the current warehouse as text rows
func (s *gameServiceImpl) Render(ctx context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Warehouse().Render(), nil
}

// ListConfigs returns available warehouse configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific warehouse configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a warehouse configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func newEvent(kind, message string, pos engine.Position) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		Timestamp: time.Now(),
		Position:  pos,
	}
}

// outcomeEvents generates events from a resolved move
func outcomeEvents(out *engine.MoveOutcome) []GameEvent {
	if out == nil {
		return nil
	}
	if !out.Moved {
		return []GameEvent{newEvent(EventBlocked, fmt.Sprintf("Blocked moving %s at %s", out.Direction, out.From), out.From)}
	}

	events := []GameEvent{
		newEvent(EventMove, fmt.Sprintf("Moved %s to %s", out.Direction, out.To), out.To),
	}
	if len(out.Pushed) > 0 {
		events = append(events, newEvent(EventPush, fmt.Sprintf("Pushed %d object(s) %s", len(out.Pushed), out.Direction), out.To))
	}
	return events
}

func stepInfo(idx int, out *engine.MoveOutcome) StepInfo {
	return StepInfo{
		Idx:     idx,
		Dir:     string(out.Direction),
		From:    out.From,
		To:      out.To,
		Pushed:  len(out.Pushed),
		Objects: append([]engine.Handle(nil), out.Pushed...),
		Success: out.Moved,
	}
}

// attemptInfo describes the cell that blocked out
func attemptInfo(state *engine.GameState, out *engine.MoveOutcome) *AttemptInfo {
	if out == nil || out.Blocker == nil {
		return nil
	}
	b := out.Blocker
	info := &AttemptInfo{X: b.Pos.X, Y: b.Pos.Y}
	if b.OutOfBounds || b.Pos.Y < 0 || b.Pos.Y >= len(state.Grid) || b.Pos.X < 0 || b.Pos.X >= len(state.Grid[b.Pos.Y]) {
		info.TileChar = string(engine.SymbolObstacle)
		info.TileType = "boundary"
		info.OutOfBounds = true
		return info
	}
	info.TileChar = string(state.Grid[b.Pos.Y][b.Pos.X])
	info.TileType = string(b.Kind)
	return info
}
