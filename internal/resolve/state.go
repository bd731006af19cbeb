package resolve

import "fmt"

// State is a step of the conflict resolution state machine.
type State int

const (
	// StateAwaitingChoice waits for the user to pick an action.
	StateAwaitingChoice State = iota

	// StateViewingDiff shows a diff and returns to StateAwaitingChoice.
	StateViewingDiff

	// StateMerging walks the user through a section or block merge.
	StateMerging

	// StateResolved means the incoming content was written somewhere.
	StateResolved

	// StateSkipped means the existing content was left untouched.
	StateSkipped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAwaitingChoice:
		return "awaiting_choice"
	case StateViewingDiff:
		return "viewing_diff"
	case StateMerging:
		return "merging"
	case StateResolved:
		return "resolved"
	case StateSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether the machine stops in this state.
func (s State) Terminal() bool {
	return s == StateResolved || s == StateSkipped
}

// Action describes what a resolution did on disk.
type Action string

const (
	ActionOverwritten Action = "overwritten"
	ActionKept        Action = "kept"
	ActionDuplicated  Action = "duplicated"
	ActionMerged      Action = "merged"
)

// Outcome is the final result of resolving one conflict.
type Outcome struct {
	Item   string
	State  State
	Action Action

	// Path is where incoming content was written; empty when skipped.
	Path string

	// History lists every state entered, in order, ending with State.
	History []State

	// Warnings collects non-fatal problems such as permission restore failures.
	Warnings []string
}

// Imported reports whether the incoming content was written.
func (o *Outcome) Imported() bool {
	return o.State == StateResolved
}

// machine tracks the current state and its history for one item.
type machine struct {
	outcome *Outcome
}

func newMachine(item string) *machine {
	return &machine{outcome: &Outcome{Item: item, State: StateAwaitingChoice}}
}

func (m *machine) enter(s State) {
	m.outcome.State = s
	m.outcome.History = append(m.outcome.History, s)
}

func (m *machine) resolved(action Action, path string) *Outcome {
	m.enter(StateResolved)
	m.outcome.Action = action
	m.outcome.Path = path
	return m.outcome
}

func (m *machine) skipped() *Outcome {
	m.enter(StateSkipped)
	m.outcome.Action = ActionKept
	return m.outcome
}

func (m *machine) warn(msg string) {
	m.outcome.Warnings = append(m.outcome.Warnings, msg)
}
