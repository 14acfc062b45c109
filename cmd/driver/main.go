// Command driver plays a warehouse session over the REST API. Each attempt
// resets the session and sends random batches of moves, biased toward pushes
// that raise the GPS score. The best instruction stream found is printed so
// it can be replayed with "warehouse solve" or stored in a config.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
	"github.com/wricardo/mcp-training/warehouse/game/service"
)

// SearchOptions bounds one search run
type SearchOptions struct {
	Attempts  int
	MaxMoves  int
	BatchSize int
	Delay     time.Duration
	Verbose   bool
}

// SearchResult is the best attempt seen
type SearchResult struct {
	Attempt      int
	InitialScore int
	BestScore    int
	Instructions string
	Attempts     int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "driver",
		Usage: "Random search for a high GPS score on a live session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Warehouse server URL"},
			&cli.StringFlag{Name: "config", Usage: "Config ID for a new session"},
			&cli.BoolFlag{Name: "enlarged", Usage: "Create the session in enlarged mode"},
			&cli.StringFlag{Name: "continue", Usage: "Resume an existing session by ID"},
			&cli.IntFlag{Name: "max-moves", Value: 200, Usage: "Moves per attempt"},
			&cli.IntFlag{Name: "max-attempts", Value: 20, Usage: "Number of attempts"},
			&cli.IntFlag{Name: "batch", Value: 25, Usage: "Moves per bulk-move request"},
			&cli.FloatFlag{Name: "bias", Value: 0.5, Usage: "Probability of a down/right move"},
			&cli.Uint64Flag{Name: "seed", Usage: "Random seed (default: current time)"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between requests in milliseconds"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Connecting to warehouse server at %s", cmd.String("url"))
	client := NewClient(cmd.String("url"))

	sessionFile := ".session"
	savedID := cmd.String("continue")
	if savedID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedID = string(bytes.TrimSpace(data))
		}
	}

	var state *engine.GameState
	var err error
	if savedID != "" {
		state, err = client.Resume(ctx, savedID)
		if err != nil {
			log.Printf("Failed to resume session %s (may be expired): %v", savedID, err)
		} else {
			log.Printf("Resumed session %s", client.SessionID())
		}
	}
	if state == nil {
		state, err = client.CreateSession(ctx, cmd.String("config"), cmd.Bool("enlarged"))
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		log.Printf("Session created: %s", client.SessionID())
		if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
			log.Printf("Warning: failed to save session ID: %v", err)
		}
	}
	log.Printf("Grid: %dx%d, objects: %d, GPS: %d", state.Width, state.Height, len(state.Objects), state.Score)

	seed := cmd.Uint64("seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	strategy := NewRandomStrategy(seed, cmd.Float("bias"))

	result, err := search(ctx, client, strategy, SearchOptions{
		Attempts:  cmd.Int("max-attempts"),
		MaxMoves:  cmd.Int("max-moves"),
		BatchSize: cmd.Int("batch"),
		Delay:     time.Duration(cmd.Int("delay")) * time.Millisecond,
		Verbose:   cmd.Bool("v"),
	})
	if err != nil {
		return err
	}

	log.Printf("Best GPS %d (start %d) in attempt %d/%d, seed %d", result.BestScore, result.InitialScore, result.Attempt, result.Attempts, seed)
	fmt.Println(result.Instructions)
	return nil
}

// search runs opts.Attempts attempts and keeps the stream with the highest
// final score. Blocked moves are kept in the stream; they are no-ops on replay.
func search(ctx context.Context, client *Client, strategy *RandomStrategy, opts SearchOptions) (*SearchResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}

	var best *SearchResult
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			break
		}

		state, err := client.Reset(ctx)
		if err != nil {
			return nil, fmt.Errorf("reset: %w", err)
		}
		initial := state.Score

		var stream []engine.Direction
		possible := []string{}
		score := initial
		for len(stream) < opts.MaxMoves {
			n := min(opts.BatchSize, opts.MaxMoves-len(stream))
			moves := strategy.Next(possible, n)

			res, err := client.BulkMove(ctx, moves)
			if err != nil {
				return nil, fmt.Errorf("attempt %d: %w", attempt, err)
			}
			processed := res.MovesExecuted + res.MovesBlocked
			for _, m := range moves[:processed] {
				stream = append(stream, engine.Direction(m))
			}
			score = res.EndScore
			possible = res.PossibleMoves

			if opts.Verbose {
				log.Printf("attempt %d: %d moves, GPS %d", attempt, len(stream), score)
			}
			if processed == 0 || res.Halted || res.StopReasonCode == service.StopCancelled {
				break
			}
			if opts.Delay > 0 {
				time.Sleep(opts.Delay)
			}
		}

		log.Printf("Attempt %d: moves=%d GPS=%d", attempt, len(stream), score)
		if best == nil || score > best.BestScore {
			best = &SearchResult{
				Attempt:      attempt,
				InitialScore: initial,
				BestScore:    score,
				Instructions: engine.FormatInstructions(stream),
			}
		}
		best.Attempts = attempt
	}

	if best == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("no attempts were run")
	}
	return best, nil
}
