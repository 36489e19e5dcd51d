package fsm_test

import (
	"math"
	"testing"

	"github.com/enetx/g"
	. "github.com/enetx/tickfsm"
)

func TestEvaluate(t *testing.T) {
	s := NewStore()

	for name, v := range map[string]Value{
		"grounded": Bool(true),
		"hp":       Int(10),
		"speed":    Float(1.5),
		"weapon":   Str("Sword"),
		"nan":      Float(math.NaN()),
	} {
		_, err := s.SetParameter(g.String(name), v)
		assertNoError(t, err)
	}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"bool eq", When("grounded", OpEq, Bool(true)), true},
		{"bool ne", When("grounded", OpNe, Bool(true)), false},
		{"int lt", When("hp", OpLt, Int(11)), true},
		{"int le", When("hp", OpLe, Int(10)), true},
		{"int gt", When("hp", OpGt, Int(10)), false},
		{"int ge", When("hp", OpGe, Int(10)), true},
		{"int ne", When("hp", OpNe, Int(3)), true},
		{"float exact eq", When("speed", OpEq, Float(1.5)), true},
		{"float no tolerance", When("speed", OpEq, Float(1.5000001)), false},
		{"float gt", When("speed", OpGt, Float(1)), true},
		{"nan never equal", When("nan", OpEq, Float(math.NaN())), false},
		{"nan ne", When("nan", OpNe, Float(0)), true},
		{"string eq", When("weapon", OpEq, Str("Sword")), true},
		{"string case sensitive", When("weapon", OpEq, Str("sword")), false},
		{"string ne", When("weapon", OpNe, Str("Bow")), true},
		{"unset parameter", When("missing", OpEq, Bool(true)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.cond, s)
			assertNoError(t, err)
			assertEqual(t, got, tt.want)
		})
	}
}

func TestEvaluate_TypeMismatch(t *testing.T) {
	s := NewStore()

	_, err := s.SetParameter("hp", Int(10))
	assertNoError(t, err)

	ok, err := Evaluate(When("hp", OpGt, Float(5)), s)
	assertFalse(t, ok)

	mismatch := assertErrorAs[*ErrTypeMismatch](t, err)
	assertEqual(t, mismatch.Want, KindFloat)
	assertEqual(t, mismatch.Got, KindInt)
}

func TestOp_Supports(t *testing.T) {
	assertTrue(t, OpEq.Supports(KindBool))
	assertTrue(t, OpNe.Supports(KindString))
	assertFalse(t, OpLt.Supports(KindBool))
	assertFalse(t, OpGe.Supports(KindString))
	assertTrue(t, OpLe.Supports(KindInt))
	assertTrue(t, OpGt.Supports(KindFloat))
}

func TestParseOp(t *testing.T) {
	for _, op := range []Op{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe} {
		parsed, err := ParseOp(op.String())
		assertNoError(t, err)
		assertEqual(t, parsed, op)
	}

	_, err := ParseOp("~=")
	assertError(t, err)
}

func TestCondition_String(t *testing.T) {
	assertEqual(t, When("speed", OpGe, Float(0.5)).String(), "speed >= 0.5")
	assertEqual(t, When("weapon", OpEq, Str("Bow")).String(), `weapon == "Bow"`)
}
