package engine

// CellKind identifies what occupies a grid cell
type CellKind string

const (
	KindEmpty    CellKind = "empty"
	KindObstacle CellKind = "obstacle"
	KindObject   CellKind = "object"
	KindAgent    CellKind = "agent"

	// Validation constants
	MinGridSize     = 1
	MaxGridSize     = 128
	MaxBulkMoves    = 1000
	MaxInstructions = 100000
)

// Layout symbols
const (
	SymbolEmpty     = '.'
	SymbolObstacle  = '#'
	SymbolObject    = 'O'
	SymbolAgent     = '@'
	SymbolWideLeft  = '['
	SymbolWideRight = ']'
	SymbolWideFill  = '='
)

// Handle is a stable, non-owning reference to an object in an ObjectTable.
type Handle int

// NoHandle marks a cell that does not reference an object.
const NoHandle Handle = -1

// Cell is the tagged value stored at each grid coordinate. Object is only
// meaningful when Kind is KindObject.
type Cell struct {
	Kind   CellKind `json:"kind"`
	Object Handle   `json:"object,omitempty"`
}

var (
	emptyCell    = Cell{Kind: KindEmpty, Object: NoHandle}
	obstacleCell = Cell{Kind: KindObstacle, Object: NoHandle}
	agentCell    = Cell{Kind: KindAgent, Object: NoHandle}
)

// EmptyCell returns an empty cell
func EmptyCell() Cell { return emptyCell }

// ObstacleCell returns an immovable obstacle cell
func ObstacleCell() Cell { return obstacleCell }

// AgentCell returns the cell marking the agent
func AgentCell() Cell { return agentCell }

// ObjectCell returns a cell referencing the object h
func ObjectCell(h Handle) Cell { return Cell{Kind: KindObject, Object: h} }

// Position represents x,y coordinates. Both axes are non-negative for any
// coordinate inside a grid.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// MovableObject is a rectangular pushable object. Origin is the top-left cell.
type MovableObject struct {
	Origin Position `json:"origin"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}

// Contains reports whether p lies inside the object's footprint.
func (o MovableObject) Contains(p Position) bool {
	return p.X >= o.Origin.X && p.X < o.Origin.X+o.Width &&
		p.Y >= o.Origin.Y && p.Y < o.Origin.Y+o.Height
}

// Area returns width × height
func (o MovableObject) Area() int {
	return o.Width * o.Height
}

// GameConfig represents a warehouse configuration loaded from JSON or YAML
type GameConfig struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Layout       []string `json:"layout" yaml:"layout"`
	Instructions string   `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Enlarged     bool     `json:"enlarged,omitempty" yaml:"enlarged,omitempty"`
	Messages     Messages `json:"messages" yaml:"messages"`
}

// Messages are the user-facing texts reported after each move
type Messages struct {
	Welcome string `json:"welcome" yaml:"welcome"`
	Moved   string `json:"moved,omitempty" yaml:"moved,omitempty"`
	Pushed  string `json:"pushed,omitempty" yaml:"pushed,omitempty"`
	Blocked string `json:"blocked,omitempty" yaml:"blocked,omitempty"`
}

// ObjectState is the JSON view of one object
type ObjectState struct {
	Handle Handle   `json:"handle"`
	Origin Position `json:"origin"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}

// GameState is a snapshot of a simulation, rebuilt on every GetState call
type GameState struct {
	Grid       []string      `json:"grid"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	AgentPos   Position      `json:"agent_pos"`
	Objects    []ObjectState `json:"objects"`
	Score      int           `json:"score"`
	Enlarged   bool          `json:"enlarged"`
	Message    string        `json:"message"`
	Halted     bool          `json:"halted"`
	Fault      string        `json:"fault,omitempty"`
	ConfigName string        `json:"config_name"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`
	TotalPushes int                `json:"total_pushes"`

	// CurrentMoves tracks only the moves since the last reset. MoveHistory stays cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	LocalView3x3 []string `json:"local_view_3x3,omitempty"`
}

// MoveHistoryEntry represents a single instruction in the move history
type MoveHistoryEntry struct {
	Action       string   `json:"action"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Pushed       int      `json:"pushed"`
	Timestamp    int64    `json:"timestamp"`
	Success      bool     `json:"success"`
	MoveNumber   int      `json:"move_number"`
}
