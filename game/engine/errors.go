package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrParse            = errors.New("parse error")
	ErrSimulationHalted = errors.New("simulation halted after integrity violation")
	ErrPlacement        = errors.New("invalid placement")
)

// IntegrityError reports a broken invariant of the grid or object table:
// the agent found inside a push chain, a dangling handle, or a write outside
// the grid. It is raised with panic by the resolver and converted to an
// error once, at the engine boundary.
type IntegrityError struct {
	Op     string
	Pos    Position
	Handle Handle
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.Handle != NoHandle {
		return fmt.Sprintf("integrity violation during %s at %s (object %d): %s", e.Op, e.Pos, e.Handle, e.Reason)
	}
	return fmt.Sprintf("integrity violation during %s at %s: %s", e.Op, e.Pos, e.Reason)
}

func integrityPanic(op string, pos Position, h Handle, reason string) {
	panic(&IntegrityError{Op: op, Pos: pos, Handle: h, Reason: reason})
}

// recoverIntegrity turns an *IntegrityError panic into *errp. Any other
// panic is re-raised.
func recoverIntegrity(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*IntegrityError); ok {
		*errp = ie
		return
	}
	panic(r)
}
