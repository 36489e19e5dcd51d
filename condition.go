package fsm

import (
	"fmt"

	"github.com/enetx/g"
)

const (
	OpEq Op = iota + 1
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var opNames = [...]string{OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">="}

func (op Op) String() string {
	if op >= OpEq && op <= OpGe {
		return opNames[op]
	}

	return "?"
}

// ParseOp parses the textual operator used in definition documents.
func ParseOp(s string) (Op, error) {
	for op := OpEq; op <= OpGe; op++ {
		if opNames[op] == s {
			return op, nil
		}
	}

	return 0, fmt.Errorf("fsm: unknown operator %q", s)
}

// Supports reports whether op is defined for values of kind k.
// Booleans and strings only compare for equality; numbers are ordered.
func (op Op) Supports(k Kind) bool {
	switch k {
	case KindBool, KindString:
		return op == OpEq || op == OpNe
	case KindInt, KindFloat:
		return op >= OpEq && op <= OpGe
	default:
		return false
	}
}

// When builds a condition comparing parameter param against v with op.
func When(param g.String, op Op, v Value) Condition {
	return Condition{Param: param, Op: op, Value: v}
}

// Kind returns the value type of the condition.
func (c Condition) Kind() Kind { return c.Value.kind }

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Param, c.Op, c.Value)
}

// validate checks the operator against the condition's value kind.
func (c Condition) validate() error {
	if !c.Value.IsValid() {
		return &ErrInvalidDefinition{Reason: fmt.Sprintf("condition on %q has no value", c.Param)}
	}

	if !c.Op.Supports(c.Value.kind) {
		return &ErrInvalidOperator{Param: c.Param, Op: c.Op, Kind: c.Value.kind}
	}

	return nil
}

// Evaluate reports whether c holds against the store.
// An unset parameter never satisfies a condition. A stored value of a different
// kind fails with ErrTypeMismatch.
func Evaluate(c Condition, s *Store) (bool, error) {
	v, err := s.GetParameter(c.Param)
	if err != nil {
		return false, nil
	}

	if v.kind != c.Value.kind {
		return false, &ErrTypeMismatch{Param: c.Param, Want: c.Value.kind, Got: v.kind}
	}

	switch v.kind {
	case KindBool:
		return compareEq(c.Op, v.b == c.Value.b), nil
	case KindString:
		return compareEq(c.Op, v.s == c.Value.s), nil
	case KindInt:
		return compareOrdered(c.Op, v.i, c.Value.i), nil
	case KindFloat:
		return compareOrdered(c.Op, v.f, c.Value.f), nil
	}

	return false, &ErrInvalidOperator{Param: c.Param, Op: c.Op, Kind: v.kind}
}

func compareEq(op Op, eq bool) bool {
	switch op {
	case OpEq:
		return eq
	case OpNe:
		return !eq
	default:
		return false
	}
}

// compareOrdered uses plain IEEE semantics for floats: == is exact and NaN
// compares unequal to everything.
func compareOrdered[T int64 | float64](op Op, a, b T) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	default:
		return false
	}
}
