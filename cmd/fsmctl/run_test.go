package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	fsm "github.com/enetx/tickfsm"
)

const guardYAML = `start: Idle
params:
  - {name: speed, type: float, default: 0}
triggers: [hit]
states:
  - name: Idle
  - name: Run
  - name: Hurt
  - name: Dead
    marker: exit
transitions:
  - from: Idle
    to: Run
    conditions:
      - {param: speed, op: ">", type: float, value: 0}
  - from: "*"
    to: Hurt
    trigger: hit
    stack: push
  - from: Hurt
    to: Dead
`

func TestParseAssignment(t *testing.T) {
	a, err := parseAssignment("walk=float:1.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.name != "walk" || !a.value.Equal(fsm.Float(1.5)) {
		t.Fatalf("got %s=%s", a.name, a.value)
	}

	for _, in := range []string{"walk", "=float:1", "walk=1", "walk=float:x"} {
		if _, err := parseAssignment(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestParseSchedule(t *testing.T) {
	schedule, err := parseSchedule([]string{"2:space", "2:hit", "5:recover"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(schedule[2]) != 2 || schedule[2][1] != "hit" || schedule[5][0] != "recover" {
		t.Fatalf("unexpected schedule %v", schedule)
	}

	for _, in := range []string{"space", "0:space", "x:space", "3:"} {
		if _, err := parseSchedule([]string{in}); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestRunCommand(t *testing.T) {
	def, err := fsm.ParseYAML([]byte(guardYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cmd := &runCommand{
		Ticks:    4,
		Delta:    0.1,
		Set:      []string{"speed=float:1"},
		Triggers: []string{"2:hit"},
	}

	var out bytes.Buffer
	if err := cmd.run(&out, def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"   0 Idle",
		"   1 Run",
		"   2 Hurt  [Hurt < Idle]",
		"   3 Dead  [Hurt < Idle]  (finished)",
		"   4 Dead  [Hurt < Idle]  (finished)",
		"",
	}, "\n")

	if out.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRunCommand_RestoresState(t *testing.T) {
	def, err := fsm.ParseYAML([]byte(guardYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var saved bytes.Buffer
	if err := (&runCommand{Ticks: 1, Set: []string{"speed=float:1"}, JSON: true}).run(&saved, def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(saved.String()), "\n")
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(lines[len(lines)-1]), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := (&runCommand{Restore: path}).run(&out, def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.String() != "   0 Run\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunCommand_BadInput(t *testing.T) {
	def, err := fsm.ParseYAML([]byte(guardYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out bytes.Buffer
	if err := (&runCommand{Set: []string{"speed=int:1"}}).run(&out, def); err == nil {
		t.Fatal("expected type mismatch")
	}

	if err := (&runCommand{Triggers: []string{"hit"}}).run(&out, def); err == nil {
		t.Fatal("expected schedule error")
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")

	if err := os.WriteFile(good, []byte(guardYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("start: Nowhere\nstates: [{name: A}]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := validate(&out, []string{good}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "ok   "+good+" (4 states, 3 transitions)") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := validate(&out, []string{good, bad}); err == nil {
		t.Fatal("expected validation failure")
	}

	if !strings.Contains(out.String(), "FAIL "+bad) {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestExampleDefinitionsValidate(t *testing.T) {
	files, err := filepath.Glob("../../examples/definitions/*.yaml")
	if err != nil || len(files) == 0 {
		t.Fatalf("no example definitions found: %v", err)
	}

	var out bytes.Buffer
	if err := validate(&out, files); err != nil {
		t.Fatalf("%v\n%s", err, out.String())
	}
}
