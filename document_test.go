package fsm_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	. "github.com/enetx/tickfsm"
	"gopkg.in/yaml.v3"
)

const controllerYAML = `
start: Idle
params:
  - {name: on_floor, type: bool, default: true}
  - {name: walk, type: float, default: 0}
triggers: [space]
states:
  - name: Idle
  - name: Walk
  - name: Jump
    machine:
      start: Rise
      params:
        - {name: vy, type: float, default: -5}
      states:
        - name: Rise
          script: |
            set["vy"] = params["vy"] + 10 * delta
        - name: Apex
          marker: exit
      transitions:
        - from: Rise
          to: Apex
          conditions:
            - {param: vy, op: ">=", type: float, value: 0}
  - name: Fall
transitions:
  - from: Idle
    to: Walk
    conditions:
      - {param: walk, op: "!=", type: float, value: 0}
  - from: Walk
    to: Jump
    trigger: space
    priority: 2
    stack: push
    conditions:
      - {param: on_floor, op: "==", type: bool, value: true}
  - from: Jump
    to: Fall
    conditions:
      - {param: on_floor, op: "==", type: bool, value: false}
  - from: "*"
    to: Idle
    trigger: reset
    stack: rewind
`

func TestParseYAML(t *testing.T) {
	def, err := ParseYAML([]byte(controllerYAML))
	assertNoError(t, err)

	assertEqual(t, def.Start(), State("Idle"))
	assertSlice(t, def.States(), "Idle", "Walk", "Jump", "Fall")
	assertSlice(t, def.Triggers(), "space", "reset")

	kind, ok := def.Kind("walk")
	assertTrue(t, ok)
	assertEqual(t, kind, KindFloat)

	jump, ok := def.Find("Jump")
	assertTrue(t, ok)
	assertTrue(t, jump.IsNested())

	apex, ok := jump.Machine.Find("Apex")
	assertTrue(t, ok)
	assertEqual(t, apex.Marker, MarkerExit)

	walk := def.Candidates("Walk")
	assertEqual(t, walk[0].Priority, 2)
	assertEqual(t, walk[0].Stack, StackPush)
	assertEqual(t, walk[1].To, State("Idle"))
	assertEqual(t, walk[1].Stack, StackRewind)
}

func TestDefinition_JSONRoundTrip(t *testing.T) {
	def, err := ParseYAML([]byte(controllerYAML))
	assertNoError(t, err)

	first, err := json.Marshal(def)
	assertNoError(t, err)

	var decoded Definition
	assertNoError(t, json.Unmarshal(first, &decoded))

	second, err := json.Marshal(&decoded)
	assertNoError(t, err)
	assertEqual(t, string(second), string(first))

	// Whole floats keep their kind.
	kind, ok := decoded.Kind("walk")
	assertTrue(t, ok)
	assertEqual(t, kind, KindFloat)
}

func TestDefinition_YAMLRoundTrip(t *testing.T) {
	def, err := ParseYAML([]byte(controllerYAML))
	assertNoError(t, err)

	first, err := yaml.Marshal(def)
	assertNoError(t, err)

	var decoded Definition
	assertNoError(t, yaml.Unmarshal(first, &decoded))

	second, err := yaml.Marshal(&decoded)
	assertNoError(t, err)
	assertEqual(t, string(second), string(first))

	jump, ok := decoded.Find("Jump")
	assertTrue(t, ok)
	rise, ok := jump.Machine.Find("Rise")
	assertTrue(t, ok)
	assertTrue(t, rise.Script != "")
}

func TestDefinition_BuilderToDocument(t *testing.T) {
	def := controller(t)

	data, err := json.Marshal(def)
	assertNoError(t, err)

	parsed, err := ParseJSON(data)
	assertNoError(t, err)

	p := NewPlayer(parsed)
	_, err = p.SetParameter("walk", Float(1))
	assertNoError(t, err)
	assertNoError(t, p.Tick(1))
	assertEqual(t, p.Current(), State("Walk"))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"dangling", `{"start":"A","states":[{"name":"A"}],"transitions":[{"from":"A","to":"B"}]}`},
		{"bad type", `{"start":"A","params":[{"name":"x","type":"vector","default":1}],"states":[{"name":"A"}]}`},
		{"bad op", `{"start":"A","states":[{"name":"A"}],"transitions":[{"from":"A","to":"A","conditions":[{"param":"x","op":"=~","type":"int","value":1}]}]}`},
		{"bad marker", `{"start":"A","states":[{"name":"A","marker":"final"}]}`},
		{"bad stack", `{"start":"A","states":[{"name":"A"}],"transitions":[{"from":"A","to":"A","stack":"pop"}]}`},
		{"fractional int", `{"start":"A","params":[{"name":"x","type":"int","default":1.5}],"states":[{"name":"A"}]}`},
		{"malformed", `{"start":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.doc))
			assertError(t, err)
		})
	}

	var decoded Definition
	err := json.Unmarshal([]byte(tests[0].doc), &decoded)
	assertErrorAs[*ErrDanglingReference](t, err)
}

func TestLoadDefinition(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "controller.yaml")
	assertNoError(t, os.WriteFile(yamlPath, []byte(controllerYAML), 0o644))

	def, err := LoadDefinition(yamlPath)
	assertNoError(t, err)
	assertEqual(t, def.Start(), State("Idle"))

	data, err := json.Marshal(def)
	assertNoError(t, err)

	jsonPath := filepath.Join(dir, "controller.json")
	assertNoError(t, os.WriteFile(jsonPath, data, 0o644))

	def, err = LoadDefinition(jsonPath)
	assertNoError(t, err)
	assertEqual(t, def.Start(), State("Idle"))

	txtPath := filepath.Join(dir, "controller.txt")
	assertNoError(t, os.WriteFile(txtPath, data, 0o644))

	_, err = LoadDefinition(txtPath)
	assertError(t, err)

	_, err = LoadDefinition(filepath.Join(dir, "missing.yaml"))
	assertError(t, err)
}
