package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/warehouse/game/config"
	"github.com/wricardo/mcp-training/warehouse/game/engine"
	"github.com/wricardo/mcp-training/warehouse/game/service"
	"github.com/wricardo/mcp-training/warehouse/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string, enlarged bool) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Simulation Operations
	MoveFunc     func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error)
	BulkMoveFunc func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error)
	ReplayFunc   func(ctx context.Context, sessionID string) (*service.BulkMoveResult, error)
	ResetFunc    func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Simulation State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	DescribeCellFunc   func(ctx context.Context, sessionID string, pos engine.Position) (*service.CellInfo, error)
	RenderFunc         func(ctx context.Context, sessionID string) ([]string, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string, enlarged bool) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName, enlarged)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: configName,
		Enlarged:   enlarged,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, reset)
	}
	return &service.MoveResult{
		Success:   true,
		GameState: &engine.GameState{},
	}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves, reset)
	}
	return &service.BulkMoveResult{
		Success:        true,
		RequestedMoves: len(moves),
		GameState:      &engine.GameState{},
	}, nil
}

func (m *MockGameService) Replay(ctx context.Context, sessionID string) (*service.BulkMoveResult, error) {
	if m.ReplayFunc != nil {
		return m.ReplayFunc(ctx, sessionID)
	}
	return &service.BulkMoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveHistoryEntry{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*service.CellInfo, error) {
	if m.DescribeCellFunc != nil {
		return m.DescribeCellFunc(ctx, sessionID, pos)
	}
	return &service.CellInfo{Position: pos, InBounds: true, Kind: engine.KindEmpty, Symbol: "."}, nil
}

func (m *MockGameService) Render(ctx context.Context, sessionID string) ([]string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, sessionID)
	}
	return []string{"#####", "#@O.#", "#####"}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.GameConfig{Name: configName, Layout: []string{"#@O#"}}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, cfg *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, cfg)
	}
	return nil
}

func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(target); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func notFound(id string) error {
	return fmt.Errorf("session %q: %w", id, service.ErrSessionNotFound)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"session not found", notFound("x"), http.StatusNotFound},
		{"config not found", fmt.Errorf("wrap: %w", service.ErrConfigNotFound), http.StatusNotFound},
		{"invalid direction", fmt.Errorf("move 1: %w", engine.ErrInvalidDirection), http.StatusBadRequest},
		{"parse", engine.ErrParse, http.StatusBadRequest},
		{"invalid config", config.ErrInvalidConfig, http.StatusBadRequest},
		{"halted", fmt.Errorf("%w: boom", engine.ErrSimulationHalted), http.StatusConflict},
		{"other", fmt.Errorf("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name         string
		body         interface{}
		mockFunc     func(ctx context.Context, configName string, enlarged bool) (*service.SessionInfo, error)
		wantStatus   int
		wantConfig   string
		wantEnlarged bool
	}{
		{
			name:       "default config",
			body:       nil,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "config_id",
			body:       map[string]interface{}{"config_id": "sample"},
			wantStatus: http.StatusCreated,
			wantConfig: "sample",
		},
		{
			name:       "deprecated config_name",
			body:       map[string]interface{}{"config_name": "classic"},
			wantStatus: http.StatusCreated,
			wantConfig: "classic",
		},
		{
			name:         "enlarged",
			body:         map[string]interface{}{"config_id": "sample", "enlarged": true},
			wantStatus:   http.StatusCreated,
			wantConfig:   "sample",
			wantEnlarged: true,
		},
		{
			name: "unknown config",
			body: map[string]interface{}{"config_id": "missing"},
			mockFunc: func(ctx context.Context, configName string, enlarged bool) (*service.SessionInfo, error) {
				return nil, fmt.Errorf("config '%s' not found: %w", configName, service.ErrConfigNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantConfig: "missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotConfig string
			var gotEnlarged bool
			mock := &MockGameService{
				CreateSessionFunc: func(ctx context.Context, configName string, enlarged bool) (*service.SessionInfo, error) {
					gotConfig, gotEnlarged = configName, enlarged
					if tt.mockFunc != nil {
						return tt.mockFunc(ctx, configName, enlarged)
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: configName, Enlarged: enlarged}, nil
				},
			}
			w := serve(setupTestServer(mock), makeRequest("POST", "/api/sessions", tt.body))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if gotConfig != tt.wantConfig || gotEnlarged != tt.wantEnlarged {
				t.Errorf("service called with (%q, %v), want (%q, %v)", gotConfig, gotEnlarged, tt.wantConfig, tt.wantEnlarged)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
				{ID: "mid", CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now.Add(-30 * time.Minute)},
			}, nil
		},
	}
	server := setupTestServer(mock)

	tests := []struct {
		name      string
		query     string
		wantOrder []string
		wantTotal int
	}{
		{"default accessed desc", "", []string{"new", "mid", "old"}, 3},
		{"created asc", "?sort=created&order=asc", []string{"old", "mid", "new"}, 3},
		{"limited", "?limit=1", []string{"new"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.wantTotal || resp.Count != len(tt.wantOrder) {
				t.Errorf("count/total = %d/%d", resp.Count, resp.Total)
			}
			for i, id := range tt.wantOrder {
				if resp.Sessions[i].ID != id {
					t.Errorf("session %d = %s, want %s", i, resp.Sessions[i].ID, id)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, notFound(sessionID)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return notFound(sessionID)
			}
			return nil
		},
	}
	server := setupTestServer(mock)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zz99", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zz99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(server, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		mockErr    error
		wantStatus int
		wantDir    string
	}{
		{
			name:       "push",
			body:       map[string]interface{}{"direction": "left"},
			wantStatus: http.StatusOK,
			wantDir:    "left",
		},
		{
			name:       "invalid body",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid direction",
			body:       map[string]interface{}{"direction": "sideways"},
			mockErr:    fmt.Errorf("%w: %q", engine.ErrInvalidDirection, "sideways"),
			wantStatus: http.StatusBadRequest,
			wantDir:    "sideways",
		},
		{
			name:       "halted",
			body:       map[string]interface{}{"direction": "up"},
			mockErr:    fmt.Errorf("%w: integrity", engine.ErrSimulationHalted),
			wantStatus: http.StatusConflict,
			wantDir:    "up",
		},
		{
			name:       "unknown session",
			body:       map[string]interface{}{"direction": "up"},
			mockErr:    notFound("ab12"),
			wantStatus: http.StatusNotFound,
			wantDir:    "up",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotDir string
			mock := &MockGameService{
				MoveFunc: func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					gotDir = direction
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return &service.MoveResult{
						Success:   true,
						GameState: &engine.GameState{AgentPos: engine.Position{X: 1, Y: 1}},
						Step:      &service.StepInfo{Idx: 1, Dir: direction, Pushed: 1, Success: true},
					}, nil
				},
			}
			w := serve(setupTestServer(mock), makeRequest("POST", "/api/sessions/ab12/move", tt.body))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if gotDir != tt.wantDir {
				t.Errorf("direction = %q, want %q", gotDir, tt.wantDir)
			}
			if tt.wantStatus == http.StatusOK {
				var result service.MoveResult
				parseResponse(t, w, &result)
				if result.Step == nil || result.Step.Pushed != 1 {
					t.Errorf("unexpected step: %+v", result.Step)
				}
			}
		})
	}
}

func TestBulkMove(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantMoves  []string
		wantReset  bool
	}{
		{
			name:       "moves list",
			body:       map[string]interface{}{"moves": []string{"up", "left"}, "reset": true},
			wantStatus: http.StatusOK,
			wantMoves:  []string{"up", "left"},
			wantReset:  true,
		},
		{
			name:       "instruction stream",
			body:       map[string]interface{}{"instructions": "<v\n>^"},
			wantStatus: http.StatusOK,
			wantMoves:  []string{"left", "down", "right", "up"},
		},
		{
			name:       "bad instruction stream",
			body:       map[string]interface{}{"instructions": "<x"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid body",
			body:       "[",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMoves []string
			var gotReset bool
			mock := &MockGameService{
				BulkMoveFunc: func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
					gotMoves, gotReset = moves, reset
					return &service.BulkMoveResult{
						RequestedMoves: len(moves),
						MovesExecuted:  len(moves),
						Success:        true,
						GameState:      &engine.GameState{},
					}, nil
				},
			}
			w := serve(setupTestServer(mock), makeRequest("POST", "/api/sessions/ab12/bulk-move", tt.body))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if strings.Join(gotMoves, ",") != strings.Join(tt.wantMoves, ",") || gotReset != tt.wantReset {
				t.Errorf("service got moves=%v reset=%v", gotMoves, gotReset)
			}
			var result service.BulkMoveResult
			parseResponse(t, w, &result)
			if result.RequestedMoves != len(tt.wantMoves) {
				t.Errorf("requested_moves = %d, want %d", result.RequestedMoves, len(tt.wantMoves))
			}
		})
	}
}

func TestReplayAndReset(t *testing.T) {
	mock := &MockGameService{
		ReplayFunc: func(ctx context.Context, sessionID string) (*service.BulkMoveResult, error) {
			if sessionID != "ab12" {
				return nil, notFound(sessionID)
			}
			return &service.BulkMoveResult{RequestedMoves: 15, MovesExecuted: 11, EndScore: 2028, GameState: &engine.GameState{Score: 2028}}, nil
		},
		ResetFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return &engine.GameState{Score: 1234}, nil
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("POST", "/api/sessions/ab12/replay", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("replay status = %d", w.Code)
	}
	var result service.BulkMoveResult
	parseResponse(t, w, &result)
	if result.EndScore != 2028 {
		t.Errorf("EndScore = %d, want 2028", result.EndScore)
	}

	if w := serve(server, makeRequest("POST", "/api/sessions/zz99/replay", nil)); w.Code != http.StatusNotFound {
		t.Errorf("replay unknown session status = %d, want 404", w.Code)
	}

	w = serve(server, makeRequest("POST", "/api/sessions/ab12/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}
	var resp struct {
		State engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.State.Score != 1234 {
		t.Errorf("reset state score = %d", resp.State.Score)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantOpts service.HistoryOptions
	}{
		{"defaults", "", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"explicit", "?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"garbage ignored", "?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mock := &MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Moves: []engine.MoveHistoryEntry{}}, nil
				},
			}
			w := serve(setupTestServer(mock), makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if got != tt.wantOpts {
				t.Errorf("opts = %+v, want %+v", got, tt.wantOpts)
			}
		})
	}
}

func TestStateRenderAndCell(t *testing.T) {
	var gotPos engine.Position
	mock := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return &engine.GameState{Grid: []string{"#@O#"}, Score: 2}, nil
		},
		DescribeCellFunc: func(ctx context.Context, sessionID string, pos engine.Position) (*service.CellInfo, error) {
			gotPos = pos
			return &service.CellInfo{Position: pos, InBounds: true, Kind: engine.KindObject, Symbol: "O"}, nil
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/sessions/ab12/state", nil))
	var state engine.GameState
	parseResponse(t, w, &state)
	if state.Score != 2 || len(state.Grid) != 1 {
		t.Errorf("unexpected state: %+v", state)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/ab12/render", nil))
	var rendered struct {
		Rows []string `json:"rows"`
	}
	parseResponse(t, w, &rendered)
	if len(rendered.Rows) != 3 || rendered.Rows[1] != "#@O.#" {
		t.Errorf("render rows = %v", rendered.Rows)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/ab12/render?format=text", nil))
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := w.Body.String(); body != "#####\n#@O.#\n#####\n" {
		t.Errorf("text render = %q", body)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/ab12/cell?x=2&y=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("cell status = %d", w.Code)
	}
	if gotPos != (engine.Position{X: 2, Y: 1}) {
		t.Errorf("DescribeCell pos = %v", gotPos)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/ab12/cell?x=two&y=1", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad cell query status = %d, want 400", w.Code)
	}
}

func TestConfigs(t *testing.T) {
	var saved string
	mock := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "sample", Name: "Sample", Width: 8, Height: 8, Objects: 6}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			if configName != "sample" {
				return nil, service.ErrConfigNotFound
			}
			return engine.DefaultConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, cfg *engine.GameConfig) error {
			if err := engine.ValidateGameConfig(cfg); err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
			}
			saved = configName
			return nil
		},
	}
	server := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/configs", nil))
	var list []*service.ConfigInfo
	parseResponse(t, w, &list)
	if len(list) != 1 || list[0].ConfigID != "sample" {
		t.Errorf("configs = %+v", list)
	}

	if w := serve(server, makeRequest("GET", "/api/configs/sample", nil)); w.Code != http.StatusOK {
		t.Errorf("get config status = %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/api/configs/missing", nil)); w.Code != http.StatusNotFound {
		t.Errorf("missing config status = %d, want 404", w.Code)
	}

	valid := engine.DefaultConfig()
	body := map[string]interface{}{
		"config_id":    "copy",
		"name":         valid.Name,
		"description":  valid.Description,
		"layout":       valid.Layout,
		"instructions": valid.Instructions,
		"messages":     valid.Messages,
	}
	if w := serve(server, makeRequest("POST", "/api/configs", body)); w.Code != http.StatusCreated {
		t.Errorf("create config status = %d: %s", w.Code, w.Body.String())
	}
	if saved != "copy" {
		t.Errorf("saved as %q, want copy", saved)
	}

	if w := serve(server, makeRequest("POST", "/api/configs", map[string]interface{}{"layout": []string{"#@#"}})); w.Code != http.StatusBadRequest {
		t.Errorf("nameless config status = %d, want 400", w.Code)
	}
	bad := map[string]interface{}{"name": "bad", "description": "x", "layout": []string{"#.#"}}
	if w := serve(server, makeRequest("POST", "/api/configs", bad)); w.Code != http.StatusBadRequest {
		t.Errorf("invalid config status = %d, want 400", w.Code)
	}
}

func TestUnifiedSessions(t *testing.T) {
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", ConfigName: "sample", GameState: &engine.GameState{Objects: make([]engine.ObjectState, 6)}},
				{ID: "b", ConfigName: "classic", GameState: &engine.GameState{}},
			}, nil
		},
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "b" {
				return &service.SessionInfo{ID: "b", ConfigName: "classic"}, nil
			}
			return nil, notFound(sessionID)
		},
	}
	server := setupTestServer(mock)

	tests := []struct {
		name        string
		query       string
		wantIDs     []string
		wantObjects int
	}{
		{"all", "", []string{"a", "b"}, 6},
		{"by config", "?configName=classic", []string{"b"}, 0},
		{"by ids skips unknown", "?sessionIds=b,zz", []string{"b"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions/unified"+tt.query, nil))
			var resp struct {
				TotalObjects int `json:"total_objects"`
				Sessions     []struct {
					SessionID string `json:"session_id"`
				} `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if len(resp.Sessions) != len(tt.wantIDs) {
				t.Fatalf("got %d sessions, want %d", len(resp.Sessions), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if resp.Sessions[i].SessionID != id {
					t.Errorf("session %d = %s, want %s", i, resp.Sessions[i].SessionID, id)
				}
			}
			if resp.TotalObjects != tt.wantObjects {
				t.Errorf("total_objects = %d, want %d", resp.TotalObjects, tt.wantObjects)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	for _, path := range []string{"/health", "/api/health"} {
		w := serve(server, makeRequest("GET", path, nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
			t.Errorf("%s = %d %s", path, w.Code, w.Body.String())
		}
	}

	w := serve(server, makeRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "warehouse_active_sessions") {
		t.Error("metrics output is missing warehouse_active_sessions")
	}
}

func TestWebSocket(t *testing.T) {
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, notFound(sessionID)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
	}
	server := NewServer(mock, hub)

	t.Run("missing session parameter", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/ws", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/ws?session=zz99", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("move is broadcast", func(t *testing.T) {
		ts := httptest.NewServer(server)
		defer ts.Close()

		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=ab12"
		conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for hub.ClientCount("ab12") == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		resp, err := http.Post(ts.URL+"/api/sessions/ab12/move", "application/json", strings.NewReader(`{"direction":"up"}`))
		if err != nil {
			t.Fatalf("post move: %v", err)
		}
		resp.Body.Close()

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.SessionID != "ab12" || msg.Event != websocket.EventStateUpdate {
			t.Errorf("unexpected message: %+v", msg)
		}
	})
}
