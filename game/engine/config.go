package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigExtensions lists the file extensions a layout config may use, in
// lookup order
var ConfigExtensions = []string{".json", ".yaml", ".yml"}

// ValidateGameConfig validates a warehouse configuration for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	height := len(config.Layout)
	if height < MinGridSize || height > MaxGridSize {
		return fmt.Errorf("config validation: layout must have between %d and %d rows, got %d", MinGridSize, MaxGridSize, height)
	}
	width := len(config.Layout[0])
	if width < MinGridSize || width > MaxGridSize {
		return fmt.Errorf("config validation: layout rows must have between %d and %d columns, got %d", MinGridSize, MaxGridSize, width)
	}
	if config.Enlarged && width*2 > MaxGridSize {
		return fmt.Errorf("config validation: enlarged layout would have %d columns, limit is %d", width*2, MaxGridSize)
	}

	agents := 0
	for i, row := range config.Layout {
		if len(row) != width {
			return fmt.Errorf("config validation: row %d must have %d characters, got %d", i+1, width, len(row))
		}
		for j, char := range row {
			switch char {
			case SymbolEmpty, SymbolObstacle, SymbolObject, SymbolWideLeft, SymbolWideRight:
			case SymbolAgent:
				agents++
			default:
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, i+1, j+1)
			}
		}
	}
	if agents != 1 {
		return fmt.Errorf("config validation: layout must contain exactly one agent (%c), found %d", SymbolAgent, agents)
	}

	// Wide object pairs and overlaps are checked by the parser itself
	if _, err := ParseLayout(config.Layout); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if _, err := ParseInstructions(config.Instructions); err != nil {
		return fmt.Errorf("config validation: instructions: %w", err)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Pushed != "" && !strings.Contains(config.Messages.Pushed, "%d") {
		return fmt.Errorf("config validation: messages.pushed must contain %%d for the pushed count")
	}

	return nil
}

// UnmarshalConfig decodes a config in the format implied by ext
func UnmarshalConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case ".json", "":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	return &config, nil
}

// LoadGameConfig loads a warehouse configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := UnmarshalConfig(data, filepath.Ext(configPath))
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigByName loads a configuration by name from the configs directory,
// trying each of ConfigExtensions when the name has none
func LoadConfigByName(configName string) (*GameConfig, error) {
	candidates := []string{configName}
	if filepath.Ext(configName) == "" {
		candidates = candidates[:0]
		for _, ext := range ConfigExtensions {
			candidates = append(candidates, configName+ext)
		}
	}

	for _, name := range candidates {
		configPath := filepath.Join("configs", name)
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			continue
		}

		config, err := LoadGameConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config '%s': %w", name, err)
		}
		return config, nil
	}

	return nil, fmt.Errorf("config file '%s' not found", configName)
}

// ParsePuzzleInput reads the plain puzzle format: layout rows, a blank line,
// then any number of instruction lines.
func ParsePuzzleInput(text string) (*GameConfig, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	layoutPart, instrPart, _ := strings.Cut(strings.TrimLeft(text, "\n"), "\n\n")

	var layout []string
	for _, line := range strings.Split(layoutPart, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			layout = append(layout, line)
		}
	}
	if len(layout) == 0 {
		return nil, fmt.Errorf("%w: input has no layout", ErrParse)
	}
	if _, err := ParseLayout(layout); err != nil {
		return nil, err
	}

	dirs, err := ParseInstructions(instrPart)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	config.Name = "Puzzle Input"
	config.Description = fmt.Sprintf("%dx%d warehouse with %d instructions", len(layout[0]), len(layout), len(dirs))
	config.Layout = layout
	config.Instructions = FormatInstructions(dirs)
	return config, nil
}

// DefaultMessages returns the texts used when a config leaves them empty
func DefaultMessages() Messages {
	return Messages{
		Welcome: "Welcome! Move the agent to push objects around the warehouse.",
		Moved:   "Moved.",
		Pushed:  "Pushed %d object(s).",
		Blocked: "Blocked! Nothing moved.",
	}
}

// DefaultConfig returns the small sample warehouse
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "Sample Warehouse",
		Description: "Small 8x8 warehouse with a column of objects",
		Layout: []string{
			"########",
			"#..O.O.#",
			"##@.O..#",
			"#...O..#",
			"#.#.O..#",
			"#...O..#",
			"#......#",
			"########",
		},
		Instructions: "<^^>>>vv<v>>v<<",
		Messages:     DefaultMessages(),
	}
}
