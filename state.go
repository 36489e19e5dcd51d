package fsm

import "fmt"

const (
	MarkerNone Marker = iota
	MarkerEntry
	MarkerExit
)

func (m Marker) String() string {
	switch m {
	case MarkerEntry:
		return "entry"
	case MarkerExit:
		return "exit"
	default:
		return "none"
	}
}

// ParseMarker parses the textual marker used in definition documents.
func ParseMarker(s string) (Marker, error) {
	switch s {
	case "", "none":
		return MarkerNone, nil
	case "entry":
		return MarkerEntry, nil
	case "exit":
		return MarkerExit, nil
	}

	return 0, fmt.Errorf("fsm: unknown state marker %q", s)
}

// IsNested reports whether the state owns a sub-machine.
func (s StateDef) IsNested() bool { return s.Machine != nil }

// join builds the path-qualified name of a state below parent.
func join(parent, name State) State {
	if parent == "" {
		return name
	}

	return parent + "/" + name
}
