package scheduler

import "fmt"

// State is a step of the startup sync sequence.
type State string

const (
	Idle            State = "IDLE"
	Delaying        State = "DELAYING"
	SyncingConfig   State = "SYNCING_CONFIG"
	AnalyzingStores State = "ANALYZING_STORES"
	Importing       State = "IMPORTING"
	Validating      State = "VALIDATING"
	Done            State = "DONE"
	Failed          State = "FAILED"
)

// IsTerminal reports whether the sequence has finished.
func IsTerminal(s State) bool {
	return s == Done || s == Failed
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case Idle:
		return to == Delaying
	case Delaying:
		return to == SyncingConfig || to == Done || to == Failed
	case SyncingConfig:
		return to == AnalyzingStores || to == Failed
	case AnalyzingStores:
		return to == Importing || to == Done || to == Failed
	case Importing:
		return to == Validating || to == Failed
	case Validating:
		return to == Done || to == Failed
	default:
		return false
	}
}

// machine records the path taken. Failed remembers the stage it left.
type machine struct {
	current     State
	failedStage State
	history     []State
}

func newMachine() *machine {
	return &machine{current: Idle, history: []State{Idle}}
}

func (m *machine) transition(to State) error {
	if !isAllowedTransition(m.current, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", m.current, to)
	}
	if to == Failed {
		m.failedStage = m.current
	}
	m.current = to
	m.history = append(m.history, to)
	return nil
}
