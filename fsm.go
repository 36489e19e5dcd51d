// Package fsm provides a tick-driven finite state machine runtime for game
// entities. A Definition is an immutable graph of states and transitions built
// once with a Builder or loaded from a JSON or YAML document, and shared by any
// number of Players. Each Player owns its typed parameters, pending triggers,
// history stack and nested sub-players, and advances at most one transition per
// level on every Tick. It is built with types and utilities from the
// github.com/enetx/g library.
package fsm

// Must returns def and panics when err is not nil. It is meant for definitions
// that are known to be valid at init time.
func Must(def *Definition, err error) *Definition {
	if err != nil {
		panic(err)
	}

	return def
}
