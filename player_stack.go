package fsm

import "errors"

// PushState pushes name onto the history of this level. With WithStackEntry(true)
// the player also enters name, emitting Exited, Transited and Entered; otherwise
// pairing the push with a state change is left to the caller.
func (p *Player) PushState(name State) error {
	if !p.def.Has(name) {
		return &ErrUnknownState{State: name}
	}

	if p.opts.stackEntry && p.hooks.ticking {
		return &ErrReentrantTick{State: p.Path()}
	}

	p.stack.Push(name)

	if !p.opts.stackEntry {
		return nil
	}

	return errors.Join(p.change(p.current, name)...)
}

// PopState pops the history of this level and returns the removed entry.
// With WithStackEntry(true) the player then enters the uncovered entry.
func (p *Player) PopState() (State, error) {
	if p.opts.stackEntry && p.hooks.ticking {
		return "", &ErrReentrantTick{State: p.Path()}
	}

	removed, err := p.stack.Pop()
	if err != nil {
		return "", err
	}

	if !p.opts.stackEntry {
		return removed, nil
	}

	return removed, errors.Join(p.change(p.current, p.stack.Current())...)
}
