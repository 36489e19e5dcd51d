package fsm

import (
	"errors"
	"io"

	"github.com/d5/tengo/v2"
	"github.com/enetx/g"
	"github.com/sirupsen/logrus"
)

// WithLogger sets the logger transitions and evaluation problems are reported to.
// Players log nothing by default.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithStackEntry makes PushState and PopState also enter the state they expose.
func WithStackEntry(enter bool) Option {
	return func(o *options) { o.stackEntry = enter }
}

// WithScripts enables or disables state update scripts. They are enabled by default.
func WithScripts(enabled bool) Option {
	return func(o *options) { o.scripts = enabled }
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

// NewPlayer creates a player positioned at the start state of def,
// with the global scope seeded from the declared parameters.
func NewPlayer(def *Definition, opts ...Option) *Player {
	o := &options{log: discardLogger(), scripts: true}
	for _, opt := range opts {
		opt(o)
	}

	store := NewStore()
	store.global.declare(def.params)
	declareKinds(store, def)

	return newPlayer(def, "", store, new(hooks), o)
}

// declareKinds fixes in the global scope the kind of every parameter def
// compares against without declaring it, nested machines included.
func declareKinds(store *Store, def *Definition) {
	for name, k := range def.kinds {
		if def.declares(name) {
			continue
		}

		// Build already rejected conflicting kinds.
		_ = store.Declare(name, k)
	}
}

func newPlayer(def *Definition, path State, store *Store, h *hooks, o *options) *Player {
	p := &Player{
		def:     def,
		path:    path,
		current: def.start,
		store:   store,
		stack:   NewStack(def.start),
		scripts: g.NewMap[State, *tengo.Compiled](),
		hooks:   h,
		opts:    o,
	}

	p.enterNested()

	return p
}

// Definition returns the definition the player runs.
func (p *Player) Definition() *Definition { return p.def }

// Current returns the current state of this level.
func (p *Player) Current() State { return p.current }

// Path returns the path-qualified name of the deepest active state, e.g. "Jump/Rise".
func (p *Player) Path() State {
	if p.nested != nil {
		return p.nested.Path()
	}

	return join(p.path, p.current)
}

// Nested returns the player of the current hierarchical state, or nil.
func (p *Player) Nested() *Player { return p.nested }

// Store returns the parameter store of this level.
func (p *Player) Store() *Store { return p.store }

// Stack returns the history stack of this level.
func (p *Player) Stack() *Stack { return p.stack }

// Finished reports whether the current state is marked as an exit state.
func (p *Player) Finished() bool {
	s, _ := p.def.Find(p.current)
	return s.Marker == MarkerExit
}

// SetParameter writes a global parameter and returns its previous value.
func (p *Player) SetParameter(name g.String, v Value) (g.Option[Value], error) {
	return p.store.SetParameter(name, v)
}

// SetLocalParameter writes a parameter scoped to this level.
func (p *Player) SetLocalParameter(name g.String, v Value) (g.Option[Value], error) {
	return p.store.SetLocalParameter(name, v)
}

// GetParameter reads a parameter, local scope first.
func (p *Player) GetParameter(name g.String) (Value, error) { return p.store.GetParameter(name) }

// SetTrigger marks a trigger as pending until a transition requiring it fires.
func (p *Player) SetTrigger(name Trigger) { p.store.SetTrigger(name) }

// Tick runs one resolution pass: at most one transition at this level, then the
// nested player (if any), then the state script, then the Updated event.
// It always runs to completion; listener panics and script failures are
// collected into the returned error.
func (p *Player) Tick(delta float64) error {
	if p.hooks.ticking {
		return &ErrReentrantTick{State: p.Path()}
	}

	p.hooks.ticking = true
	defer func() { p.hooks.ticking = false }()

	return p.tick(delta)
}

func (p *Player) tick(delta float64) error {
	var errs []error

	if t, ok := p.resolve(); ok {
		errs = append(errs, p.transit(t)...)
	}

	if p.nested != nil {
		if err := p.nested.tick(delta); err != nil {
			errs = append(errs, err)
		}
	}

	state := join(p.path, p.current)

	if s, _ := p.def.Find(p.current); s.compiled != nil && p.opts.scripts {
		if err := p.runScript(s, delta); err != nil {
			errs = append(errs, &ErrCallback{HookType: "Script", State: state, Err: err})
		}
	}

	errs = append(errs, p.hooks.updated(state, delta)...)

	return errors.Join(errs...)
}

// resolve returns the first candidate of the current state that qualifies.
// A candidate whose conditions fail to evaluate is skipped.
func (p *Player) resolve() (Transition, bool) {
	for _, t := range p.def.candidates[p.current] {
		ok, err := t.qualifies(p.store)
		if err != nil {
			p.opts.log.WithFields(logrus.Fields{
				"path":       p.path,
				"transition": t.String(),
			}).WithError(err).Warn("fsm: skipping transition")

			continue
		}

		if ok {
			return t, true
		}
	}

	return Transition{}, false
}

func (p *Player) transit(t Transition) []error {
	if t.Trigger != "" {
		p.store.ConsumeTrigger(t.Trigger)
	}

	switch t.Stack {
	case StackPush:
		p.stack.Push(t.To)
	case StackRewind:
		p.stack.Rewind(t.To)
	}

	return p.change(p.current, t.To)
}

// change moves this level from one state to another, rebuilding the nested
// player, and emits Exited, Transited and Entered in that order.
func (p *Player) change(from, to State) []error {
	p.exitNested()
	p.current = to
	p.enterNested()

	qfrom, qto := join(p.path, from), join(p.path, to)

	p.opts.log.WithFields(logrus.Fields{"from": qfrom, "to": qto}).Debug("fsm: transition")

	var errs []error
	errs = append(errs, p.hooks.exited(qfrom)...)
	errs = append(errs, p.hooks.transited(qfrom, qto)...)
	errs = append(errs, p.hooks.entered(qto)...)

	return errs
}

// enterNested builds a fresh player for the current state when it owns a sub-machine.
// The sub-player shares the global scope and starts with its own declared locals.
func (p *Player) enterNested() {
	s, ok := p.def.Find(p.current)
	if !ok || s.Machine == nil {
		return
	}

	store := p.store.child()
	store.local.declare(s.Machine.params)
	declareKinds(store, s.Machine)

	p.nested = newPlayer(s.Machine, join(p.path, p.current), store, p.hooks, p.opts)
}

// exitNested clears the local scope of the nested player and drops it.
func (p *Player) exitNested() {
	if p.nested == nil {
		return
	}

	p.nested.exitNested()
	p.nested.store.Clear()
	p.nested = nil
}

// SetState forces the current state without evaluating transitions or emitting events.
// It is meant for restoring saved state.
func (p *Player) SetState(s State) error {
	if !p.def.Has(s) {
		return &ErrUnknownState{State: s}
	}

	p.exitNested()
	p.current = s
	p.enterNested()

	return nil
}

// Reset returns the player to the start state with default parameters,
// no pending triggers and a fresh history. No events are emitted.
func (p *Player) Reset() {
	p.exitNested()
	p.store.global.reset()
	p.store.local.reset()
	p.store.global.declare(p.def.params)
	p.current = p.def.start
	p.stack.reset(p.def.start)
	p.scripts = g.NewMap[State, *tengo.Compiled]()
	p.enterNested()
}

// Reload swaps the definition of a root player, keeping the current state,
// parameters and history. It fails with ErrUnknownState when the new definition
// does not declare the current state, leaving the player untouched.
func (p *Player) Reload(def *Definition) error {
	if !def.Has(p.current) {
		return &ErrUnknownState{State: p.current}
	}

	for _, s := range p.stack.entries {
		if !def.Has(s) {
			return &ErrUnknownState{State: s}
		}
	}

	for name, want := range def.kinds {
		if k, ok := p.store.global.kinds[name]; ok && k != want {
			return &ErrTypeMismatch{Param: name, Want: k, Got: want}
		}
	}

	p.exitNested()
	p.def = def

	for _, d := range def.params {
		p.store.global.kinds[d.Name] = d.Default.kind
		p.store.global.defaults[d.Name] = d.Default

		if _, ok := p.store.global.values[d.Name]; !ok {
			p.store.global.values[d.Name] = d.Default
		}
	}

	declareKinds(p.store, def)

	p.scripts = g.NewMap[State, *tengo.Compiled]()
	p.enterNested()

	p.opts.log.WithField("state", p.current).Info("fsm: definition reloaded")

	return nil
}
