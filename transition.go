package fsm

import (
	"fmt"
	"slices"
	"strings"
)

const (
	// StackNone leaves the history untouched.
	StackNone StackMode = iota
	// StackPush pushes the target state onto the history.
	StackPush
	// StackRewind pops back to the target if it is already in the history, and pushes it otherwise.
	StackRewind
)

func (m StackMode) String() string {
	switch m {
	case StackPush:
		return "push"
	case StackRewind:
		return "rewind"
	default:
		return "none"
	}
}

// ParseStackMode parses the textual stack mode used in definition documents.
func ParseStackMode(s string) (StackMode, error) {
	switch s {
	case "", "none":
		return StackNone, nil
	case "push":
		return StackPush, nil
	case "rewind":
		return StackRewind, nil
	}

	return 0, fmt.Errorf("fsm: unknown stack mode %q", s)
}

// IsAny reports whether t is checked from every state.
func (t Transition) IsAny() bool { return t.From == AnyState }

// IsUnconditional reports whether t has neither trigger nor conditions.
func (t Transition) IsUnconditional() bool { return t.Trigger == "" && len(t.Conditions) == 0 }

// clone returns a copy of t that shares no conditions with it.
func (t Transition) clone() Transition {
	t.Conditions = slices.Clone(t.Conditions)
	return t
}

// qualifies reports whether the trigger of t is pending and all its conditions hold.
// The trigger is not consumed here.
func (t Transition) qualifies(s *Store) (bool, error) {
	if t.Trigger != "" && !s.HasTrigger(t.Trigger) {
		return false, nil
	}

	for _, c := range t.Conditions {
		ok, err := Evaluate(c, s)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

// Label returns a short description of the guard of t.
func (t Transition) Label() string {
	parts := make([]string, 0, len(t.Conditions)+1)
	if t.Trigger != "" {
		parts = append(parts, "!"+string(t.Trigger))
	}

	for _, c := range t.Conditions {
		parts = append(parts, c.String())
	}

	return strings.Join(parts, " && ")
}

func (t Transition) String() string {
	if label := t.Label(); label != "" {
		return fmt.Sprintf("%s -> %s [%s]", t.From, t.To, label)
	}

	return fmt.Sprintf("%s -> %s", t.From, t.To)
}
