// Command watch streams live updates for one or more sessions to the
// terminal. Every state update is printed as a frame with the rendered grid
// and a one-line summary of what changed (moved, pushed, blocked, reset).
//
//	watch --url http://localhost:8080 a1b2 c3d4
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:      "watch",
		Usage:     "Stream warehouse session updates to the terminal",
		ArgsUsage: "<session-id>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "Warehouse server URL",
				Sources: cli.EnvVars("WAREHOUSE_API_URL"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	sessions := cmd.Args().Slice()
	if len(sessions) == 0 {
		return errors.New("at least one session ID is required")
	}

	watcher := NewWatcher(os.Stdout)
	g, gCtx := errgroup.WithContext(ctx)
	for _, id := range sessions {
		g.Go(func() error {
			conn, err := Dial(gCtx, cmd.String("url"), id)
			if err != nil {
				return err
			}
			return watcher.Listen(gCtx, conn, id)
		})
	}
	return g.Wait()
}
