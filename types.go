package fsm

import (
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/enetx/g"
	"github.com/sirupsen/logrus"
)

// AnyState is the source of transitions that are checked from every state.
const AnyState State = "*"

type (
	// State identifies a state inside one machine level.
	State g.String
	// Trigger is the name of a one-shot flag consumed by the transition that requires it.
	Trigger g.String

	// Kind is the declared type of a parameter or a condition value.
	Kind uint8
	// Op is a comparison operator used by a Condition.
	Op uint8
	// Marker tags a state as the entry or exit point of its machine.
	Marker uint8
	// StackMode controls how a transition touches the history stack.
	StackMode uint8

	// TransitedFunc is called after the player moved from one state to another.
	TransitedFunc func(from, to State)
	// UpdatedFunc is called once per tick after any transition has resolved.
	UpdatedFunc func(state State, delta float64)
	// StateFunc is called on state entry/exit and on stack push/pop.
	StateFunc func(state State)

	// Value is a tagged union over the parameter kinds.
	Value struct {
		kind Kind
		b    bool
		i    int64
		f    float64
		s    g.String
	}

	// Condition is a single typed predicate over one parameter.
	Condition struct {
		Param g.String
		Op    Op
		Value Value
	}

	// Transition is a guarded edge between two states.
	// All Conditions must hold, and Trigger (when set) must be pending.
	Transition struct {
		From       State
		To         State
		Conditions g.Slice[Condition]
		Trigger    Trigger
		Priority   int
		Stack      StackMode
	}

	// StateDef describes one state of a machine.
	StateDef struct {
		Name    State
		Machine *Definition
		Marker  Marker
		Script  g.String

		compiled *tengo.Compiled
	}

	// ParamDecl declares a parameter with its kind and default value.
	ParamDecl struct {
		Name    g.String
		Default Value
	}

	// Definition is an immutable graph of states and transitions.
	// It is built once and shared read-only by any number of players.
	Definition struct {
		start       State
		states      g.Slice[StateDef]
		index       g.Map[State, int]
		transitions g.Slice[Transition]
		candidates  g.Map[State, g.Slice[Transition]]
		params      g.Slice[ParamDecl]
		triggers    g.Slice[Trigger]
		kinds       g.Map[g.String, Kind]
	}

	// Builder accumulates states, transitions and parameter declarations
	// and validates them into a Definition.
	Builder struct {
		start       State
		states      g.Slice[StateDef]
		transitions g.Slice[Transition]
		params      g.Slice[ParamDecl]
		triggers    g.Slice[Trigger]
		err         error
	}

	// Store holds the global and local parameter scopes and the pending triggers.
	Store struct {
		global *scope
		local  *scope
	}

	scope struct {
		values   g.Map[g.String, Value]
		kinds    g.Map[g.String, Kind]
		defaults g.Map[g.String, Value]
		triggers g.Set[Trigger]
	}

	// Stack is an ordered history of states, most recent first.
	Stack struct {
		entries  g.Slice[State]
		onPushed g.Slice[StateFunc]
		onPopped g.Slice[StateFunc]
	}

	// Player runs a Definition: it owns the parameters, the current state,
	// the history stack and the nested player of a hierarchical state.
	Player struct {
		def     *Definition
		path    State
		current State
		store   *Store
		stack   *Stack
		nested  *Player
		scripts g.Map[State, *tengo.Compiled]

		hooks *hooks
		opts  *options
	}

	// hooks is shared by a player and all of its nested players.
	hooks struct {
		ticking     bool
		onTransited g.Slice[TransitedFunc]
		onUpdated   g.Slice[UpdatedFunc]
		onEntered   g.Slice[StateFunc]
		onExited    g.Slice[StateFunc]
	}

	options struct {
		log        logrus.FieldLogger
		stackEntry bool
		scripts    bool
	}

	// Option configures a Player.
	Option func(*options)

	// SyncPlayer is a thread-safe wrapper around a Player.
	// A single driver goroutine ticks and writes parameters through it while
	// inspectors read Snapshots concurrently.
	SyncPlayer struct {
		player *Player
		mu     sync.RWMutex
	}
)
