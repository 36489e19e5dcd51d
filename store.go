package fsm

import (
	"github.com/enetx/g"
	"github.com/enetx/g/cmp"
)

func newScope() *scope {
	return &scope{
		values:   g.NewMap[g.String, Value](),
		kinds:    g.NewMap[g.String, Kind](),
		defaults: g.NewMap[g.String, Value](),
		triggers: g.NewSet[Trigger](),
	}
}

// declare seeds a scope from definition declarations.
func (s *scope) declare(decls g.Slice[ParamDecl]) {
	for _, d := range decls {
		s.kinds[d.Name] = d.Default.kind
		s.defaults[d.Name] = d.Default
		s.values[d.Name] = d.Default
	}
}

func (s *scope) set(name g.String, v Value) (g.Option[Value], error) {
	if !v.IsValid() {
		return g.None[Value](), &ErrTypeMismatch{Param: name, Got: v.kind}
	}

	if k, ok := s.kinds[name]; ok && k != v.kind {
		return g.None[Value](), &ErrTypeMismatch{Param: name, Want: k, Got: v.kind}
	}

	s.kinds[name] = v.kind

	prev, ok := s.values[name]
	s.values[name] = v

	if ok {
		return g.Some(prev), nil
	}

	return g.None[Value](), nil
}

func (s *scope) lookup(name g.String) (Value, bool) {
	if v, ok := s.values[name]; ok {
		return v, true
	}

	v, ok := s.defaults[name]

	return v, ok
}

func (s *scope) reset() {
	s.values = g.NewMap[g.String, Value]()
	s.triggers = g.NewSet[Trigger]()

	for name, v := range s.defaults {
		s.values[name] = v
	}
}

func (s *scope) copyValues() g.Map[g.String, Value] {
	out := g.NewMap[g.String, Value]()
	for name, v := range s.values {
		out[name] = v
	}

	return out
}

// NewStore returns an empty store with fresh global and local scopes.
func NewStore() *Store {
	return &Store{global: newScope(), local: newScope()}
}

// child returns a store sharing the global scope of s with a fresh local scope.
func (s *Store) child() *Store {
	return &Store{global: s.global, local: newScope()}
}

// Declare fixes the kind of a global parameter without assigning it.
func (s *Store) Declare(name g.String, kind Kind) error {
	if k, ok := s.global.kinds[name]; ok && k != kind {
		return &ErrTypeMismatch{Param: name, Want: k, Got: kind}
	}

	s.global.kinds[name] = kind

	return nil
}

// SetParameter writes a global parameter and returns the previous value, if any.
// Writing a kind other than the declared one fails with ErrTypeMismatch and leaves
// the store unchanged.
func (s *Store) SetParameter(name g.String, v Value) (g.Option[Value], error) {
	if k, ok := s.local.kinds[name]; ok && k != v.kind {
		return g.None[Value](), &ErrTypeMismatch{Param: name, Want: k, Got: v.kind}
	}

	return s.global.set(name, v)
}

// SetLocalParameter writes a parameter into the local scope.
func (s *Store) SetLocalParameter(name g.String, v Value) (g.Option[Value], error) {
	if k, ok := s.global.kinds[name]; ok && k != v.kind {
		return g.None[Value](), &ErrTypeMismatch{Param: name, Want: k, Got: v.kind}
	}

	return s.local.set(name, v)
}

// GetParameter returns the value of name, looking at the local scope first.
func (s *Store) GetParameter(name g.String) (Value, error) {
	if v, ok := s.local.lookup(name); ok {
		return v, nil
	}

	if v, ok := s.global.lookup(name); ok {
		return v, nil
	}

	return Value{}, &ErrUndefinedParameter{Param: name}
}

// GetLocalParameter returns a value from the local scope only.
func (s *Store) GetLocalParameter(name g.String) (Value, error) {
	if v, ok := s.local.lookup(name); ok {
		return v, nil
	}

	return Value{}, &ErrUndefinedParameter{Param: name}
}

// HasParameter reports whether name currently holds a value in either scope.
func (s *Store) HasParameter(name g.String) bool {
	_, err := s.GetParameter(name)
	return err == nil
}

// EraseParameter removes the current value of name from both scopes.
// The declared kind is kept, and a declared default becomes visible again.
func (s *Store) EraseParameter(name g.String) {
	delete(s.local.values, name)
	delete(s.global.values, name)
}

// SetTrigger marks a trigger as pending. Setting it again before it is consumed has no effect.
func (s *Store) SetTrigger(name Trigger) { s.global.triggers.Insert(name) }

// SetLocalTrigger marks a trigger as pending in the local scope.
func (s *Store) SetLocalTrigger(name Trigger) { s.local.triggers.Insert(name) }

// HasTrigger reports whether name is pending in either scope.
func (s *Store) HasTrigger(name Trigger) bool {
	return s.local.triggers.Contains(name) || s.global.triggers.Contains(name)
}

// ConsumeTrigger removes a pending trigger and reports whether it was present.
// The local scope is consumed first.
func (s *Store) ConsumeTrigger(name Trigger) bool {
	if s.local.triggers.Contains(name) {
		delete(s.local.triggers, name)
		return true
	}

	if s.global.triggers.Contains(name) {
		delete(s.global.triggers, name)
		return true
	}

	return false
}

// ClearTrigger drops a pending trigger without firing anything.
func (s *Store) ClearTrigger(name Trigger) {
	delete(s.local.triggers, name)
	delete(s.global.triggers, name)
}

// ClearTriggers drops every pending trigger.
func (s *Store) ClearTriggers() {
	s.local.triggers = g.NewSet[Trigger]()
	s.global.triggers = g.NewSet[Trigger]()
}

// Clear resets the local scope back to its declared defaults.
// The global scope is untouched.
func (s *Store) Clear() { s.local.reset() }

// Parameters returns a copy of the global values.
func (s *Store) Parameters() g.Map[g.String, Value] { return s.global.copyValues() }

// LocalParameters returns a copy of the local values.
func (s *Store) LocalParameters() g.Map[g.String, Value] { return s.local.copyValues() }

// Triggers returns the pending triggers of both scopes, sorted.
func (s *Store) Triggers() g.Slice[Trigger] {
	out := make(g.Slice[Trigger], 0, len(s.local.triggers)+len(s.global.triggers))
	for t := range s.global.triggers {
		out = append(out, t)
	}

	for t := range s.local.triggers {
		if !s.global.triggers.Contains(t) {
			out = append(out, t)
		}
	}

	out.SortBy(cmp.Cmp)

	return out
}

// merged returns every visible value, local values shadowing global ones.
func (s *Store) merged() g.Map[g.String, Value] {
	out := s.global.copyValues()
	for name, v := range s.local.values {
		out[name] = v
	}

	return out
}

// Kind returns the fixed kind of name, looking at the local scope first.
func (s *Store) Kind(name g.String) (Kind, bool) {
	if k, ok := s.local.kinds[name]; ok {
		return k, true
	}

	k, ok := s.global.kinds[name]

	return k, ok
}

func (s *Store) isLocal(name g.String) bool {
	_, ok := s.local.kinds[name]
	return ok
}
