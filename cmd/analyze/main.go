// Command analyze prints quick, human-readable heuristics about every
// configuration in a configs directory (./configs by default). It summarizes
// dimensions, object counts, objects already wedged into corners, and the
// result of running the configured instructions in the normal and the
// enlarged geometry.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/wricardo/mcp-training/warehouse/game/config"
	"github.com/wricardo/mcp-training/warehouse/game/engine"
)

// Analysis is the summary for one configuration
type Analysis struct {
	Name         string
	Width        int
	Height       int
	Objects      int
	Agent        engine.Position
	Instructions int
	InitialScore int
	Cornered     []engine.Position
	Runs         []RunAnalysis
}

// RunAnalysis is the outcome of replaying the instructions in one geometry
type RunAnalysis struct {
	Enlarged     bool
	Applied      int
	Blocked      int
	LongestChain int
	FinalScore   int
	Fault        string
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := analyzeDir(os.Stdout, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// analyzeDir analyzes every config the manager can list in dir.
func analyzeDir(w io.Writer, dir string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	for _, info := range infos {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)
		cfg, err := manager.LoadConfig(info.Filename)
		if err != nil {
			fmt.Fprintf(w, "Error loading config: %v\n", err)
			continue
		}
		a, err := analyzeConfig(cfg)
		if err != nil {
			fmt.Fprintf(w, "Error analyzing config: %v\n", err)
			continue
		}
		printAnalysis(w, a)
	}
	return nil
}

// analyzeConfig builds the warehouse described by cfg and replays its
// instructions in both geometries.
func analyzeConfig(cfg *engine.GameConfig) (*Analysis, error) {
	wh, err := engine.BuildWarehouse(cfg)
	if err != nil {
		return nil, err
	}
	dirs, err := engine.ParseInstructions(cfg.Instructions)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Name:         cfg.Name,
		Width:        wh.Grid.Width(),
		Height:       wh.Grid.Height(),
		Objects:      wh.Objects.Len(),
		Agent:        wh.Agent.Pos,
		Instructions: len(dirs),
		InitialScore: wh.Score(),
		Cornered:     corneredObjects(wh),
	}

	for _, enlarged := range []bool{false, true} {
		run := *cfg
		run.Enlarged = enlarged
		eng, err := engine.NewEngine(&run)
		if err != nil {
			// The doubled copy of a wide layout may exceed the size limit
			continue
		}
		a.Runs = append(a.Runs, replay(eng, dirs, enlarged))
	}
	return a, nil
}

// replay applies dirs one at a time so each outcome can be inspected.
func replay(eng *engine.GameEngine, dirs []engine.Direction, enlarged bool) RunAnalysis {
	r := RunAnalysis{Enlarged: enlarged}
	for _, d := range dirs {
		moved, err := eng.Move(string(d))
		if err != nil {
			r.Fault = err.Error()
			break
		}
		if !moved {
			r.Blocked++
			continue
		}
		r.Applied++
		if out := eng.LastOutcome(); out != nil && len(out.Pushed) > r.LongestChain {
			r.LongestChain = len(out.Pushed)
		}
	}
	r.FinalScore = eng.GetScore()
	return r
}

// corneredObjects lists origins of objects with an obstacle (or the grid
// edge) on one vertical and one horizontal side. They can never move again.
func corneredObjects(wh *engine.Warehouse) []engine.Position {
	blocked := func(p engine.Position, d engine.Direction) bool {
		next, ok := p.Add(d)
		if !ok {
			return true
		}
		cell, ok := wh.Grid.Get(next)
		return !ok || cell.Kind == engine.KindObstacle
	}

	var cornered []engine.Position
	for h, obj := range wh.Objects.All() {
		var vertical, horizontal bool
		for _, p := range wh.Objects.LeadingEdge(engine.Handle(h), engine.Up) {
			vertical = vertical || blocked(p, engine.Up)
		}
		for _, p := range wh.Objects.LeadingEdge(engine.Handle(h), engine.Down) {
			vertical = vertical || blocked(p, engine.Down)
		}
		for _, p := range wh.Objects.LeadingEdge(engine.Handle(h), engine.Left) {
			horizontal = horizontal || blocked(p, engine.Left)
		}
		for _, p := range wh.Objects.LeadingEdge(engine.Handle(h), engine.Right) {
			horizontal = horizontal || blocked(p, engine.Right)
		}
		if vertical && horizontal {
			cornered = append(cornered, obj.Origin)
		}
	}
	return cornered
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Agent Position: (%d, %d)\n", a.Agent.X, a.Agent.Y)
	fmt.Fprintf(w, "Total Objects: %d\n", a.Objects)
	fmt.Fprintf(w, "Initial GPS: %d\n", a.InitialScore)
	fmt.Fprintf(w, "Instructions: %d\n", a.Instructions)

	if len(a.Cornered) > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d objects are wedged into corners and can never move\n", len(a.Cornered))
		for i, p := range a.Cornered {
			if i < 5 {
				fmt.Fprintf(w, "   Cornered: (%d, %d)\n", p.X, p.Y)
			}
		}
		if len(a.Cornered) > 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(a.Cornered)-5)
		}
	} else {
		fmt.Fprintf(w, "✅ No object is wedged into a corner\n")
	}

	for _, r := range a.Runs {
		label := "normal"
		if r.Enlarged {
			label = "enlarged"
		}
		if r.Fault != "" {
			fmt.Fprintf(w, "⚠️  CRITICAL (%s): %s\n", label, r.Fault)
			continue
		}
		fmt.Fprintf(w, "Replay (%s): %d applied, %d blocked, longest push %d, final GPS %d\n",
			label, r.Applied, r.Blocked, r.LongestChain, r.FinalScore)
	}
}
