package fsm

import (
	"fmt"

	"github.com/enetx/g"
)

// NewBuilder starts a definition whose players begin in start.
func NewBuilder(start State) *Builder {
	return &Builder{start: start}
}

// State declares a leaf state.
func (b *Builder) State(names ...State) *Builder {
	for _, name := range names {
		b.states.Push(StateDef{Name: name})
	}

	return b
}

// Nested declares a hierarchical state running machine while it is current.
func (b *Builder) Nested(name State, machine *Definition) *Builder {
	b.states.Push(StateDef{Name: name, Machine: machine})
	return b
}

// AddState declares a fully described state.
func (b *Builder) AddState(s StateDef) *Builder {
	b.states.Push(s)
	return b
}

// Mark sets the marker of an already declared state.
func (b *Builder) Mark(name State, m Marker) *Builder {
	return b.modify(name, func(s *StateDef) { s.Marker = m })
}

// Script sets the tengo update script of an already declared state.
func (b *Builder) Script(name State, src g.String) *Builder {
	return b.modify(name, func(s *StateDef) { s.Script = src })
}

func (b *Builder) modify(name State, fn func(*StateDef)) *Builder {
	for i := range b.states {
		if b.states[i].Name == name {
			fn(&b.states[i])
			return b
		}
	}

	if b.err == nil {
		b.err = &ErrInvalidDefinition{Reason: fmt.Sprintf("state %q must be declared before it is modified", name)}
	}

	return b
}

// Param declares a parameter; the kind of def becomes the parameter's fixed kind.
func (b *Builder) Param(name g.String, def Value) *Builder {
	b.params.Push(ParamDecl{Name: name, Default: def})
	return b
}

// Trigger declares trigger names so editors can list them before any transition uses them.
func (b *Builder) Trigger(names ...Trigger) *Builder {
	b.triggers.Push(names...)
	return b
}

// Transition adds an edge taken whenever all conds hold.
func (b *Builder) Transition(from, to State, conds ...Condition) *Builder {
	return b.Add(Transition{From: from, To: to, Conditions: conds})
}

// TransitionOn adds an edge that also requires trigger to be pending.
func (b *Builder) TransitionOn(from, to State, trigger Trigger, conds ...Condition) *Builder {
	return b.Add(Transition{From: from, To: to, Trigger: trigger, Conditions: conds})
}

// AnyTransition adds an edge checked from every state, after the state's own edges.
func (b *Builder) AnyTransition(to State, conds ...Condition) *Builder {
	return b.Add(Transition{From: AnyState, To: to, Conditions: conds})
}

// AnyTransitionOn is AnyTransition guarded by a trigger.
func (b *Builder) AnyTransitionOn(to State, trigger Trigger, conds ...Condition) *Builder {
	return b.Add(Transition{From: AnyState, To: to, Trigger: trigger, Conditions: conds})
}

// Add appends a fully described transition.
func (b *Builder) Add(t Transition) *Builder {
	b.transitions.Push(t.clone())

	return b
}

// Build validates the accumulated graph and returns an immutable Definition.
// Dangling state references, duplicate states, operator misuse, kind conflicts
// between declarations and conditions and script compile errors are all fatal.
func (b *Builder) Build() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}

	d := &Definition{
		start:       b.start,
		states:      g.NewSlice[StateDef](),
		index:       g.NewMap[State, int](),
		transitions: g.NewSlice[Transition](),
		candidates:  g.NewMap[State, g.Slice[Transition]](),
		params:      g.NewSlice[ParamDecl](),
		triggers:    g.NewSlice[Trigger](),
		kinds:       g.NewMap[g.String, Kind](),
	}

	if err := d.addStates(b.states); err != nil {
		return nil, err
	}

	if !d.Has(d.start) {
		return nil, &ErrDanglingReference{State: d.start}
	}

	if err := d.addParams(b.params); err != nil {
		return nil, err
	}

	for _, t := range b.triggers {
		d.addTrigger(t)
	}

	if err := d.addTransitions(b.transitions); err != nil {
		return nil, err
	}

	if err := d.inheritKinds(); err != nil {
		return nil, err
	}

	d.resolveCandidates()

	return d, nil
}

func (d *Definition) addStates(states g.Slice[StateDef]) error {
	for _, s := range states {
		switch {
		case s.Name == "" || s.Name == AnyState:
			return &ErrInvalidDefinition{Reason: fmt.Sprintf("invalid state name %q", s.Name)}
		case g.String(s.Name).Contains("/"):
			return &ErrInvalidDefinition{Reason: fmt.Sprintf("state name %q must not contain '/'", s.Name)}
		case d.Has(s.Name):
			return &ErrDuplicateState{State: s.Name}
		}

		if s.Script != "" {
			compiled, err := compileScript(s.Script)
			if err != nil {
				return &ErrInvalidDefinition{Reason: fmt.Sprintf("script of state %q", s.Name), Err: err}
			}

			s.compiled = compiled
		}

		d.index[s.Name] = len(d.states)
		d.states.Push(s)
	}

	return nil
}

func (d *Definition) addParams(params g.Slice[ParamDecl]) error {
	for _, p := range params {
		if p.Name == "" {
			return &ErrInvalidDefinition{Reason: "parameter without a name"}
		}

		if !p.Default.IsValid() {
			return &ErrInvalidDefinition{Reason: fmt.Sprintf("parameter %q has no default value", p.Name)}
		}

		if _, ok := d.kinds[p.Name]; ok {
			return &ErrInvalidDefinition{Reason: fmt.Sprintf("parameter %q declared more than once", p.Name)}
		}

		d.kinds[p.Name] = p.Default.kind
		d.params.Push(p)
	}

	return nil
}

func (d *Definition) addTrigger(t Trigger) {
	if !d.triggers.Contains(t) {
		d.triggers.Push(t)
	}
}

func (d *Definition) addTransitions(transitions g.Slice[Transition]) error {
	for _, t := range transitions {
		if t.From != AnyState && !d.Has(t.From) {
			return &ErrDanglingReference{From: t.From, To: t.To, State: t.From}
		}

		if !d.Has(t.To) {
			return &ErrDanglingReference{From: t.From, To: t.To, State: t.To}
		}

		for _, c := range t.Conditions {
			if err := c.validate(); err != nil {
				return err
			}

			if err := d.checkKind(c.Param, c.Value.kind); err != nil {
				return err
			}
		}

		if t.Trigger != "" {
			d.addTrigger(t.Trigger)
		}

		d.transitions.Push(t)
	}

	return nil
}

// checkKind records the kind a condition expects of name and rejects conflicts.
func (d *Definition) checkKind(name g.String, k Kind) error {
	if want, ok := d.kinds[name]; ok && want != k {
		return &ErrTypeMismatch{Param: name, Want: want, Got: k}
	}

	d.kinds[name] = k

	return nil
}

// inheritKinds folds the parameter kinds of nested machines into this level,
// so a sub-machine reading a global parameter agrees with its declaration.
func (d *Definition) inheritKinds() error {
	for _, s := range d.states {
		if s.Machine == nil {
			continue
		}

		for name, k := range s.Machine.kinds {
			if s.Machine.declares(name) {
				continue
			}

			if err := d.checkKind(name, k); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolveCandidates precomputes the ordered candidate list of every state:
// the state's own transitions first, then any-state transitions, each group
// ordered by descending priority and then by declaration order.
func (d *Definition) resolveCandidates() {
	global := g.NewSlice[Transition]()
	for _, t := range d.transitions {
		if t.IsAny() {
			global.Push(t)
		}
	}

	sortByPriority(global)

	for _, s := range d.states {
		local := g.NewSlice[Transition]()
		for _, t := range d.transitions {
			if t.From == s.Name {
				local.Push(t)
			}
		}

		sortByPriority(local)
		d.candidates[s.Name] = append(local, global...)
	}
}
