package fsm

import "github.com/enetx/g"

// View is the read-only surface offered to inspectors and debug overlays.
// Nothing reachable through a View mutates the player it was taken from.
type View interface {
	Current() State
	Path() State
	Stack() g.Slice[State]
	Parameters() g.Map[g.String, Value]
	LocalParameters() g.Map[g.String, Value]
	Triggers() g.Slice[Trigger]
	Definition() *Definition
}

var _ View = (*Snapshot)(nil)

// Snapshot is a detached copy of a player's runtime state.
type Snapshot struct {
	current  State
	path     State
	stack    g.Slice[State]
	params   g.Map[g.String, Value]
	locals   g.Map[g.String, Value]
	triggers g.Slice[Trigger]
	def      *Definition
	nested   *Snapshot
}

// Snapshot copies the runtime state of p and of its nested players.
func (p *Player) Snapshot() *Snapshot {
	s := &Snapshot{
		current:  p.current,
		path:     p.Path(),
		stack:    p.stack.Entries(),
		params:   p.store.Parameters(),
		locals:   p.store.LocalParameters(),
		triggers: p.store.Triggers(),
		def:      p.def,
	}

	if p.nested != nil {
		s.nested = p.nested.Snapshot()
	}

	return s
}

func (s *Snapshot) Current() State                          { return s.current }
func (s *Snapshot) Path() State                             { return s.path }
func (s *Snapshot) Stack() g.Slice[State]                   { return s.stack.Clone() }
func (s *Snapshot) Parameters() g.Map[g.String, Value]      { return copyMap(s.params) }
func (s *Snapshot) LocalParameters() g.Map[g.String, Value] { return copyMap(s.locals) }
func (s *Snapshot) Triggers() g.Slice[Trigger]              { return s.triggers.Clone() }

// Definition returns the definition of the level the snapshot was taken from.
// Definitions are immutable, so sharing it is safe.
func (s *Snapshot) Definition() *Definition { return s.def }

// Nested returns the snapshot of the active sub-machine, or nil.
func (s *Snapshot) Nested() *Snapshot { return s.nested }

func copyMap(m g.Map[g.String, Value]) g.Map[g.String, Value] {
	out := g.NewMap[g.String, Value]()
	for k, v := range m {
		out[k] = v
	}

	return out
}
