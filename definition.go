package fsm

import (
	"cmp"
	"slices"

	"github.com/enetx/g"
)

// Start returns the state every player of d begins in.
func (d *Definition) Start() State { return d.start }

// Has reports whether d declares the state.
func (d *Definition) Has(name State) bool {
	_, ok := d.index[name]
	return ok
}

// Find returns the declaration of a state.
func (d *Definition) Find(name State) (StateDef, bool) {
	i, ok := d.index[name]
	if !ok {
		return StateDef{}, false
	}

	return d.states[i], true
}

// States returns the declared state names in declaration order.
func (d *Definition) States() g.Slice[State] {
	names := make(g.Slice[State], 0, len(d.states))
	for _, s := range d.states {
		names = append(names, s.Name)
	}

	return names
}

// StateDefs returns a copy of the state declarations in declaration order.
// Nested machines are shared; they are immutable as well.
func (d *Definition) StateDefs() g.Slice[StateDef] { return d.states.Clone() }

// Transitions returns a copy of every transition in declaration order.
func (d *Definition) Transitions() g.Slice[Transition] { return cloneTransitions(d.transitions) }

// Candidates returns the transitions checked while in state, in the order the resolver checks them.
func (d *Definition) Candidates(state State) g.Slice[Transition] {
	return cloneTransitions(d.candidates[state])
}

func cloneTransitions(ts g.Slice[Transition]) g.Slice[Transition] {
	out := make(g.Slice[Transition], 0, len(ts))
	for _, t := range ts {
		out = append(out, t.clone())
	}

	return out
}

// Params returns the declared parameters.
func (d *Definition) Params() g.Slice[ParamDecl] { return d.params.Clone() }

// Triggers returns the declared and referenced trigger names.
func (d *Definition) Triggers() g.Slice[Trigger] { return d.triggers.Clone() }

// Kind returns the kind a parameter is declared or compared with at this level,
// including references made by nested machines.
func (d *Definition) Kind(name g.String) (Kind, bool) {
	k, ok := d.kinds[name]
	return k, ok
}

func (d *Definition) declares(name g.String) bool {
	for _, p := range d.params {
		if p.Name == name {
			return true
		}
	}

	return false
}

// sortByPriority orders higher priorities first; equal priorities keep declaration order.
func sortByPriority(ts g.Slice[Transition]) {
	slices.SortStableFunc(ts, func(a, b Transition) int { return cmp.Compare(b.Priority, a.Priority) })
}
