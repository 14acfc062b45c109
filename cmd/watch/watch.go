package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
	wstransport "github.com/wricardo/mcp-training/warehouse/transport/websocket"
)

// Watcher prints a frame for every update received on one or more sessions
type Watcher struct {
	out  io.Writer
	mu   sync.Mutex
	last map[string]*engine.GameState
}

func NewWatcher(out io.Writer) *Watcher {
	return &Watcher{
		out:  out,
		last: make(map[string]*engine.GameState),
	}
}

// wsURL turns an http(s) server URL into the /ws endpoint for sessionID.
func wsURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial opens the update stream for one session
func Dial(ctx context.Context, baseURL, sessionID string) (*websocket.Conn, error) {
	target, err := wsURL(baseURL, sessionID)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	log.Printf("WebSocket connected for session %s", sessionID)
	return conn, nil
}

// Listen reads messages until the connection closes or ctx is cancelled.
func (w *Watcher) Listen(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("session %s: %w", sessionID, err)
		}

		var msg wstransport.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}
		if msg.SessionID == "" {
			msg.SessionID = sessionID
		}

		w.mu.Lock()
		fmt.Fprint(w.out, w.frame(msg))
		w.mu.Unlock()
	}
}

// frame renders msg and updates the remembered state. Callers hold w.mu.
func (w *Watcher) frame(msg wstransport.Message) string {
	var b strings.Builder

	if msg.Event == wstransport.EventFault {
		fmt.Fprintf(&b, "[%s] ⛔ fault: %v\n", msg.SessionID, msg.Data)
		return b.String()
	}

	state := msg.GameState
	if state == nil {
		return ""
	}
	prev := w.last[msg.SessionID]
	w.last[msg.SessionID] = state

	fmt.Fprintf(&b, "[%s] %s | GPS %d | moves %d | %s\n",
		msg.SessionID, state.ConfigName, state.Score, state.TotalMoves, describeChange(prev, state))
	for _, row := range state.Grid {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

// describeChange summarizes what happened between two consecutive states.
func describeChange(prev, next *engine.GameState) string {
	switch {
	case next.Halted:
		return "halted: " + next.Fault
	case prev == nil:
		return "connected"
	case next.CurrentMovesCount == 0 && prev.CurrentMovesCount > 0:
		return "reset"
	case next.TotalMoves <= prev.TotalMoves:
		return "unchanged"
	}

	moves := next.TotalMoves - prev.TotalMoves
	pushes := next.TotalPushes - prev.TotalPushes
	if next.AgentPos == prev.AgentPos && moves == 1 {
		return "blocked"
	}
	if moves == 1 {
		if pushes > 0 {
			return fmt.Sprintf("pushed %d", pushes)
		}
		return "moved"
	}
	return fmt.Sprintf("%d moves, %d pushes", moves, pushes)
}
