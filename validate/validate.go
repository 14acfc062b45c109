// Command validate checks every warehouse configuration (JSON or YAML) in a
// directory, ../configs by default. Files are validated concurrently. It checks:
//   - Structure and required fields
//   - Grid consistency and allowed characters (# . O @ [ ])
//   - Exactly one agent and well-formed two-cell objects
//   - Instruction streams containing only ^ v < > and whitespace
//   - Reachability: every object touches the region the agent can walk in
//   - The instruction stream replays without an integrity fault in both geometries
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.UnmarshalConfig(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("Invalid %s: %v", strings.TrimPrefix(filepath.Ext(filePath), "."), err)
		return result
	}

	if len(config.Layout) == 0 {
		result.fail("Layout is empty")
		return result
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}

	wh, err := engine.BuildWarehouse(config)
	if err != nil {
		result.fail("Failed to build warehouse: %v", err)
		return result
	}

	connectivity := validateConnectivity(wh)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	if result.Valid {
		replay := validateReplay(config)
		if !replay.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, replay.Errors...)
	}

	if result.Valid {
		result.info("Name: %s", config.Name)
		result.info("Grid: %dx%d", wh.Grid.Width(), wh.Grid.Height())
		result.info("Objects: %d", wh.Objects.Len())
		result.info("Enlarged: %v", config.Enlarged)
		result.info("Initial GPS: %d", wh.Score())
	}

	return result
}

// validateConnectivity flood-fills the cells the agent can reach while
// treating objects as passable, then reports any object with no footprint
// cell in that region. Such objects can never be pushed.
func validateConnectivity(wh *engine.Warehouse) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if !wh.HasAgent() {
		result.fail("Cannot validate connectivity: no agent")
		return result
	}

	visited := map[engine.Position]bool{}
	queue := []engine.Position{wh.Agent.Pos}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, d := range engine.Directions {
			next, ok := current.Add(d)
			if !ok || visited[next] {
				continue
			}
			cell, inBounds := wh.Grid.Get(next)
			if !inBounds || cell.Kind == engine.KindObstacle {
				continue
			}
			queue = append(queue, next)
		}
	}

	var unreachable []string
	for h, obj := range wh.Objects.All() {
		reached := false
		for _, p := range wh.Objects.Footprint(engine.Handle(h)) {
			if visited[p] {
				reached = true
				break
			}
		}
		if !reached {
			unreachable = append(unreachable, fmt.Sprintf("Object %d at %s", h, obj.Origin))
		}
	}

	if len(unreachable) > 0 {
		result.fail("Connectivity failure: %d/%d objects unreachable from the agent", len(unreachable), wh.Objects.Len())
		for _, obj := range unreachable {
			result.fail("Unreachable: %s", obj)
		}
	} else {
		result.info("Connectivity: %d floor cells reachable, all %d objects reachable", len(visited), wh.Objects.Len())
	}

	return result
}

// validateReplay runs the configured instructions in the normal and the
// enlarged geometry and reports the final scores.
func validateReplay(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if strings.TrimSpace(config.Instructions) == "" {
		return result
	}

	for _, enlarged := range []bool{false, true} {
		run := *config
		run.Enlarged = enlarged
		label := "normal"
		if enlarged {
			label = "enlarged"
		}

		eng, err := engine.NewEngine(&run)
		if err != nil {
			// An enlarged copy may exceed the size limit; only the configured geometry must build
			if enlarged != config.Enlarged {
				continue
			}
			result.fail("Replay (%s): %v", label, err)
			continue
		}
		moved, err := eng.Replay()
		if err != nil {
			result.fail("Replay (%s): %v", label, err)
			continue
		}
		if err := eng.Warehouse().Verify(); err != nil {
			result.fail("Replay (%s): %v", label, err)
			continue
		}
		result.info("Replay (%s): %d moves applied, final GPS %d", label, moved, eng.GetScore())
	}

	return result
}

// configFiles lists every config file in dir, sorted by name.
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, ext := range engine.ConfigExtensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// validateDir validates every config file in dir concurrently. Results keep
// the order of configFiles.
func validateDir(ctx context.Context, dir string) ([]ValidationResult, error) {
	files, err := configFiles(dir)
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, file := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = validateConfig(file)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// main validates every config in the directory given as the first argument
// (../configs by default), printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDir(context.Background(), configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Printf("✅ All %d configurations are valid!\n", len(results))
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
