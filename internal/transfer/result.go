package transfer

import (
	"fmt"
	"strings"

	"github.com/klauern/agenttransfer/internal/model"
)

// Action is what an import did with one incoming item.
type Action string

const (
	// ActionCreated means the item had no local counterpart and was copied.
	ActionCreated Action = "created"

	// ActionOverwritten means the local item was replaced.
	ActionOverwritten Action = "overwritten"

	// ActionMerged means the local item was merged with the incoming one.
	ActionMerged Action = "merged"

	// ActionDuplicated means the incoming item was saved under a new name.
	ActionDuplicated Action = "duplicated"

	// ActionKept means the resolver left the local item untouched.
	ActionKept Action = "kept"

	// ActionSkipped means the item was not imported for another reason,
	// such as a declined project directory.
	ActionSkipped Action = "skipped"

	// ActionIdentical means the local item already has the same content.
	ActionIdentical Action = "identical"

	// ActionNotSelected means the caller left the item out of the selection.
	ActionNotSelected Action = "not_selected"

	// ActionFailed means an error occurred while importing the item.
	ActionFailed Action = "failed"
)

// Imported reports whether the action wrote incoming content.
func (a Action) Imported() bool {
	switch a {
	case ActionCreated, ActionOverwritten, ActionMerged, ActionDuplicated:
		return true
	default:
		return false
	}
}

// ItemResult is the outcome for one incoming item.
type ItemResult struct {
	Name   string
	Kind   model.Kind
	Scope  model.Scope
	Action Action

	// Path is where incoming content was written, if anywhere.
	Path string

	// Conflict is set when the item had different local content.
	Conflict bool

	Warnings []string
	Err      error
}

// Result contains the complete outcome of an import.
type Result struct {
	Archive string
	Mode    model.ConflictMode
	Items   []ItemResult

	Imported    int
	Conflicts   int
	Skipped     int
	Identical   int
	NotSelected int
	Failed      int
}

func (r *Result) add(ir ItemResult) {
	r.Items = append(r.Items, ir)
	if ir.Conflict {
		r.Conflicts++
	}
	switch {
	case ir.Action.Imported():
		r.Imported++
	case ir.Action == ActionIdentical:
		r.Identical++
	case ir.Action == ActionNotSelected:
		r.NotSelected++
	case ir.Action == ActionFailed:
		r.Failed++
		r.Skipped++
	default:
		r.Skipped++
	}
}

// ByAction returns the item results with the given action.
func (r *Result) ByAction(a Action) []ItemResult {
	var out []ItemResult
	for _, ir := range r.Items {
		if ir.Action == a {
			out = append(out, ir)
		}
	}
	return out
}

// Total is the number of incoming items accounted for.
func (r *Result) Total() int {
	return len(r.Items)
}

// Success reports whether no item failed.
func (r *Result) Success() bool {
	return r.Failed == 0
}

// Summary returns a one-line human-readable summary.
func (r *Result) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Imported: %d, Conflicts: %d, Skipped: %d", r.Imported, r.Conflicts, r.Skipped)
	if r.Identical > 0 {
		fmt.Fprintf(&sb, ", Identical: %d", r.Identical)
	}
	if r.NotSelected > 0 {
		fmt.Fprintf(&sb, ", Not selected: %d", r.NotSelected)
	}
	if r.Failed > 0 {
		fmt.Fprintf(&sb, " (%d failed)", r.Failed)
	}
	return sb.String()
}
