package fsm

import "github.com/enetx/g"

// NewStack returns a history holding the given entries, most recent last in the
// argument list: NewStack("A", "B") has "B" as its current entry.
func NewStack(entries ...State) *Stack {
	s := &Stack{entries: g.NewSlice[State]()}
	for _, e := range entries {
		s.entries.Push(e)
	}

	return s
}

// OnPushed registers a listener called after every push.
func (s *Stack) OnPushed(fn StateFunc) *Stack {
	s.onPushed.Push(fn)
	return s
}

// OnPopped registers a listener called after every pop with the removed entry.
func (s *Stack) OnPopped(fn StateFunc) *Stack {
	s.onPopped.Push(fn)
	return s
}

// Push makes name the current entry and emits Pushed.
func (s *Stack) Push(name State) {
	s.entries.Push(name)

	for _, fn := range s.onPushed {
		fn(name)
	}
}

// Pop removes the current entry and emits Popped. The bottom entry can never be
// popped: a stack with fewer than two entries fails with ErrEmptyStack.
func (s *Stack) Pop() (State, error) {
	if len(s.entries) < 2 {
		return "", &ErrEmptyStack{Len: len(s.entries)}
	}

	return s.pop(), nil
}

func (s *Stack) pop() State {
	last := len(s.entries) - 1
	removed := s.entries[last]
	s.entries = s.entries[:last]

	for _, fn := range s.onPopped {
		fn(removed)
	}

	return removed
}

// Reset pops entries until the entry at depth index (0 is the bottom) is current.
// A Popped event is emitted for each removed entry.
func (s *Stack) Reset(index int) {
	if index < 0 {
		index = 0
	}

	for len(s.entries) > index+1 {
		s.pop()
	}
}

// Rewind pops back to name if it is in the history and pushes it otherwise.
func (s *Stack) Rewind(name State) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i] == name {
			s.Reset(i)
			return
		}
	}

	s.Push(name)
}

// Current returns the most recent entry, or "" when the stack is empty.
func (s *Stack) Current() State {
	if len(s.entries) == 0 {
		return ""
	}

	return s.entries[len(s.entries)-1]
}

// Previous returns the entry below the current one, or "".
func (s *Stack) Previous() State {
	if len(s.entries) < 2 {
		return ""
	}

	return s.entries[len(s.entries)-2]
}

// Len returns the number of entries.
func (s *Stack) Len() int { return len(s.entries) }

// Entries returns a copy of the history, most recent first.
func (s *Stack) Entries() g.Slice[State] {
	out := make(g.Slice[State], 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i])
	}

	return out
}

// reset replaces the history with a single entry without emitting events.
func (s *Stack) reset(bottom State) {
	s.entries = g.SliceOf(bottom)
}
