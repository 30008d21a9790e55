package transcript

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the progress of one render run.
type State int

const (
	// StatePending - Inputs accepted, nothing computed yet.
	StatePending State = iota
	// StateResolved - Every unit has a speaker attribution.
	StateResolved
	// StateBuilt - Attributions have been merged into passages.
	StateBuilt
	// StateRendered - The document has been produced. Terminal.
	StateRendered
	// StateFailed - The run was abandoned. Terminal.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateResolved:
		return "RESOLVED"
	case StateBuilt:
		return "BUILT"
	case StateRendered:
		return "RENDERED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal (RENDERED or FAILED).
func (s State) IsTerminal() bool {
	return s == StateRendered || s == StateFailed
}

// Errors for invalid state transitions.
var (
	ErrRunFinished     = errors.New("run already finished")
	ErrPassOutOfOrder  = errors.New("pass out of order")
	ErrUnknownRunState = errors.New("unknown run state")
)

// Lifecycle enforces that the passes of a run complete strictly in order.
//
// State transitions:
//
//	PENDING → RESOLVED → BUILT → RENDERED
//	   │                           ▲
//	   └───────────────────────────┘  (non-diarized path skips RESOLVED and BUILT)
//
//	any non-terminal ── Fail() ──→ FAILED
type Lifecycle struct {
	mu    sync.RWMutex
	runID string
	state State
}

// NewLifecycle creates a run lifecycle in PENDING state.
func NewLifecycle(runID string) *Lifecycle {
	return &Lifecycle{runID: runID, state: StatePending}
}

// RunID returns the run identifier.
func (l *Lifecycle) RunID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.runID
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Advance moves the run to next. Allowed moves are the next pass in order, or
// PENDING → RENDERED for the non-diarized path.
func (l *Lifecycle) Advance(next State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.IsTerminal() {
		return ErrRunFinished
	}
	switch {
	case next == StateFailed:
		return fmt.Errorf("%w: use Fail to abandon a run", ErrPassOutOfOrder)
	case next == l.state+1:
	case l.state == StatePending && next == StateRendered:
	case next < StatePending || next > StateFailed:
		return fmt.Errorf("%w: %v", ErrUnknownRunState, next)
	default:
		return fmt.Errorf("%w: %s → %s", ErrPassOutOfOrder, l.state, next)
	}
	l.state = next
	return nil
}

// Fail transitions the run to FAILED.
// Returns true if the run was failed, false if already in a terminal state.
func (l *Lifecycle) Fail() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateFailed
	return true
}
