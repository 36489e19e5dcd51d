package fsm

import (
	"encoding/json"
	"fmt"

	"github.com/enetx/g"
	"github.com/enetx/g/cmp"
)

// PlayerState is a serializable representation of a player's runtime state.
// Global parameters and triggers are only carried by the root level.
type PlayerState struct {
	Current       State                       `json:"current"`
	Stack         g.Slice[State]              `json:"stack"`
	Params        g.Map[g.String, TypedValue] `json:"params,omitempty"`
	Triggers      g.Slice[Trigger]            `json:"triggers,omitempty"`
	Locals        g.Map[g.String, TypedValue] `json:"locals,omitempty"`
	LocalTriggers g.Slice[Trigger]            `json:"local_triggers,omitempty"`
	Nested        *PlayerState                `json:"nested,omitempty"`
}

// restoreState is a PlayerState whose values passed validation.
type restoreState struct {
	current       State
	stack         g.Slice[State]
	params        g.Map[g.String, Value]
	triggers      g.Slice[Trigger]
	locals        g.Map[g.String, Value]
	localTriggers g.Slice[Trigger]
	nested        *restoreState
}

// MarshalJSON implements the json.Marshaler interface.
func (p *Player) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.state(true))
}

func (p *Player) state(root bool) *PlayerState {
	st := &PlayerState{
		Current:       p.current,
		Stack:         p.stack.entries.Clone(),
		Locals:        encodeValues(p.store.local.values),
		LocalTriggers: setToSlice(p.store.local.triggers),
	}

	if root {
		st.Params = encodeValues(p.store.global.values)
		st.Triggers = setToSlice(p.store.global.triggers)
	}

	if p.nested != nil {
		st.Nested = p.nested.state(false)
	}

	return st
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// The whole document is validated against the definition before anything is
// applied: unknown states fail with ErrUnknownState, parameters whose kind
// conflicts with the definition fail with ErrTypeMismatch.
func (p *Player) UnmarshalJSON(data []byte) error {
	var st PlayerState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("failed to unmarshal player state: %w", err)
	}

	rs, err := decodeState(p.def, &st)
	if err != nil {
		return err
	}

	p.restore(rs, true)

	return nil
}

func decodeState(def *Definition, st *PlayerState) (*restoreState, error) {
	if !def.Has(st.Current) {
		return nil, &ErrUnknownState{State: st.Current}
	}

	for _, s := range st.Stack {
		if !def.Has(s) {
			return nil, &ErrUnknownState{State: s}
		}
	}

	rs := &restoreState{
		current:       st.Current,
		stack:         st.Stack.Clone(),
		triggers:      st.Triggers.Clone(),
		localTriggers: st.LocalTriggers.Clone(),
	}

	if len(rs.stack) == 0 {
		rs.stack = g.SliceOf(st.Current)
	}

	var err error

	if rs.params, err = decodeValues(def, st.Params); err != nil {
		return nil, err
	}

	if rs.locals, err = decodeValues(def, st.Locals); err != nil {
		return nil, err
	}

	sd, _ := def.Find(st.Current)

	switch {
	case st.Nested != nil && sd.Machine == nil:
		return nil, &ErrUnknownState{State: join(st.Current, st.Nested.Current)}
	case st.Nested != nil:
		if rs.nested, err = decodeState(sd.Machine, st.Nested); err != nil {
			return nil, err
		}
	}

	return rs, nil
}

func (p *Player) restore(rs *restoreState, root bool) {
	p.exitNested()
	p.current = rs.current
	p.stack.entries = rs.stack

	if root {
		for name, v := range rs.params {
			p.store.global.kinds[name] = v.kind
		}

		p.store.global.values = rs.params
		p.store.global.triggers = g.SetOf(rs.triggers...)
	}

	p.enterNested()
	p.store.local.reset()

	for name, v := range rs.locals {
		p.store.local.kinds[name] = v.kind
		p.store.local.values[name] = v
	}

	p.store.local.triggers = g.SetOf(rs.localTriggers...)

	if p.nested != nil && rs.nested != nil {
		p.nested.restore(rs.nested, false)
	}
}

func encodeValues(values g.Map[g.String, Value]) g.Map[g.String, TypedValue] {
	if len(values) == 0 {
		return nil
	}

	out := g.NewMap[g.String, TypedValue]()
	for name, v := range values {
		out[name] = typedValue(v)
	}

	return out
}

func decodeValues(def *Definition, in g.Map[g.String, TypedValue]) (g.Map[g.String, Value], error) {
	out := g.NewMap[g.String, Value]()

	for name, tv := range in {
		v, err := tv.value()
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}

		if k, ok := def.Kind(name); ok && k != v.kind {
			return nil, &ErrTypeMismatch{Param: name, Want: k, Got: v.kind}
		}

		out[name] = v
	}

	return out, nil
}

func setToSlice(set g.Set[Trigger]) g.Slice[Trigger] {
	if len(set) == 0 {
		return nil
	}

	out := set.ToSlice()
	out.SortBy(cmp.Cmp)

	return out
}
