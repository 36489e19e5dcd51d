package fsm_test

import (
	"math"
	"testing"

	. "github.com/enetx/tickfsm"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		kind, text string
		want       Value
	}{
		{"bool", "true", Bool(true)},
		{"int", "-7", Int(-7)},
		{"integer", "42", Int(42)},
		{"float", "0.5", Float(0.5)},
		{"number", "3", Float(3)},
		{"string", "Bow", Str("Bow")},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.text, func(t *testing.T) {
			got, err := ParseValue(tt.kind, tt.text)
			assertNoError(t, err)
			assertTrue(t, got.Equal(tt.want))
		})
	}
}

func TestParseValue_Invalid(t *testing.T) {
	for _, in := range [][2]string{
		{"bool", "maybe"},
		{"int", "1.5"},
		{"float", "fast"},
		{"vector", "1,2"},
	} {
		_, err := ParseValue(in[0], in[1])
		assertError(t, err)
	}
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf(3)
	assertNoError(t, err)
	assertEqual(t, v.Kind(), KindInt)

	v, err = ValueOf("x")
	assertNoError(t, err)
	assertEqual(t, v.Kind(), KindString)

	_, err = ValueOf(uint64(math.MaxUint64))
	assertError(t, err)

	_, err = ValueOf([]int{1})
	assertError(t, err)
}

func TestValue_String(t *testing.T) {
	assertEqual(t, Bool(false).String(), "false")
	assertEqual(t, Int(3).String(), "3")
	assertEqual(t, Float(0.25).String(), "0.25")
	assertEqual(t, Str("a").String(), `"a"`)
	assertEqual(t, Value{}.String(), "<invalid>")
	assertFalse(t, Value{}.IsValid())
}
