package fsm

import "fmt"

// OnTransited registers a listener called after every transition, nested levels included.
// Nested state names are path-qualified ("Jump/Rise").
func (p *Player) OnTransited(fn TransitedFunc) *Player {
	p.hooks.onTransited.Push(fn)
	return p
}

// OnUpdated registers a listener called once per tick and level, after any transition.
func (p *Player) OnUpdated(fn UpdatedFunc) *Player {
	p.hooks.onUpdated.Push(fn)
	return p
}

// OnEntered registers a listener called when a state becomes current.
func (p *Player) OnEntered(fn StateFunc) *Player {
	p.hooks.onEntered.Push(fn)
	return p
}

// OnExited registers a listener called when a state stops being current.
func (p *Player) OnExited(fn StateFunc) *Player {
	p.hooks.onExited.Push(fn)
	return p
}

func (h *hooks) transited(from, to State) []error {
	var errs []error

	for _, fn := range h.onTransited {
		if err := safeCall("OnTransited", to, func() { fn(from, to) }); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func (h *hooks) updated(state State, delta float64) []error {
	var errs []error

	for _, fn := range h.onUpdated {
		if err := safeCall("OnUpdated", state, func() { fn(state, delta) }); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func (h *hooks) entered(state State) []error { return h.each("OnEntered", h.onEntered, state) }

func (h *hooks) exited(state State) []error { return h.each("OnExited", h.onExited, state) }

func (h *hooks) each(hookType string, fns []StateFunc, state State) []error {
	var errs []error

	for _, fn := range fns {
		if err := safeCall(hookType, state, func() { fn(state) }); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// safeCall runs a listener, turning a panic into an ErrCallback so the tick can complete.
func safeCall(hookType string, state State, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ErrCallback{HookType: hookType, State: state, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	fn()

	return nil
}
