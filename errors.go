package fsm

import (
	"fmt"

	"github.com/enetx/g"
)

// ErrTypeMismatch is returned when a parameter is written, read or compared with
// a kind other than the one it was declared with. The stored value is left untouched.
type ErrTypeMismatch struct {
	Param g.String
	Want  Kind
	Got   Kind
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("fsm: parameter %q is %s, got %s", e.Param, e.Want, e.Got)
}

// ErrUndefinedParameter is returned when reading a parameter that was never set
// and has no declared default.
type ErrUndefinedParameter struct {
	Param g.String
}

func (e *ErrUndefinedParameter) Error() string {
	return fmt.Sprintf("fsm: parameter %q is not defined", e.Param)
}

// ErrDanglingReference is returned when a definition refers to a state it does not declare.
// It is fatal to building or loading that definition.
type ErrDanglingReference struct {
	From  State
	To    State
	State State
}

func (e *ErrDanglingReference) Error() string {
	if e.From == "" && e.To == "" {
		return fmt.Sprintf("fsm: start state %q is not declared", e.State)
	}

	return fmt.Sprintf("fsm: transition %q -> %q refers to undeclared state %q", e.From, e.To, e.State)
}

// ErrEmptyStack is returned by Pop when the history holds fewer than two entries.
type ErrEmptyStack struct {
	Len int
}

func (e *ErrEmptyStack) Error() string {
	return fmt.Sprintf("fsm: cannot pop history stack of length %d", e.Len)
}

// ErrInvalidOperator is returned when a condition uses an operator its value kind does not support.
type ErrInvalidOperator struct {
	Param g.String
	Op    Op
	Kind  Kind
}

func (e *ErrInvalidOperator) Error() string {
	return fmt.Sprintf("fsm: operator %s is not defined for %s condition on %q", e.Op, e.Kind, e.Param)
}

// ErrDuplicateState is returned when a definition declares the same state twice.
type ErrDuplicateState struct {
	State State
}

func (e *ErrDuplicateState) Error() string {
	return fmt.Sprintf("fsm: state %q declared more than once", e.State)
}

// ErrUnknownState is returned when restoring or reloading a player into a state
// the definition does not declare.
type ErrUnknownState struct {
	State State
}

func (e *ErrUnknownState) Error() string {
	return fmt.Sprintf("fsm: unknown state %q", e.State)
}

// ErrInvalidDefinition wraps any other problem found while building a definition.
type ErrInvalidDefinition struct {
	Reason string
	Err    error
}

func (e *ErrInvalidDefinition) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fsm: invalid definition: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("fsm: invalid definition: %s", e.Reason)
}

func (e *ErrInvalidDefinition) Unwrap() error { return e.Err }

// ErrCallback is returned when a listener panics or a state script fails.
// It wraps the original error, allowing it to be inspected using errors.Is and errors.As.
type ErrCallback struct {
	// HookType is the kind of callback where the error occurred (e.g. "OnUpdated", "Script").
	HookType string
	// State is the path-qualified state the callback ran for. It may be empty.
	State State
	// Err is the original error, or the error created after recovering from a panic.
	Err error
}

func (e *ErrCallback) Error() string {
	if e.State != "" {
		return fmt.Sprintf("fsm: error in %s callback for state %q: %v", e.HookType, e.State, e.Err)
	}

	return fmt.Sprintf("fsm: error in %s hook: %v", e.HookType, e.Err)
}

func (e *ErrCallback) Unwrap() error { return e.Err }

// ErrReentrantTick is returned when Tick is called from inside a running Tick,
// typically from a listener.
type ErrReentrantTick struct {
	State State
}

func (e *ErrReentrantTick) Error() string {
	return fmt.Sprintf("fsm: tick called re-entrantly while in state %q", e.State)
}
