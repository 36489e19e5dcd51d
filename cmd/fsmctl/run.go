package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/enetx/g"
	fsm "github.com/enetx/tickfsm"
	"github.com/sirupsen/logrus"
)

type runCommand struct {
	Ticks     int      `short:"n" long:"ticks" default:"10" description:"Number of ticks to run"`
	Delta     float64  `short:"d" long:"delta" default:"0.016" description:"Seconds passed to every tick"`
	Set       []string `short:"s" long:"set" value-name:"NAME=TYPE:VALUE" description:"Set a parameter before the first tick"`
	Triggers  []string `short:"t" long:"trigger" value-name:"TICK:NAME" description:"Set a trigger right before the given tick (1-based)"`
	Restore   string   `short:"r" long:"restore" value-name:"FILE" description:"Restore player state saved with --json"`
	NoScripts bool     `long:"no-scripts" description:"Do not run state scripts"`
	JSON      bool     `long:"json" description:"Print the final player state as JSON"`

	Args struct {
		File string `positional-arg-name:"FILE" required:"yes"`
	} `positional-args:"yes"`
}

type assignment struct {
	name  g.String
	value fsm.Value
}

// parseAssignment parses NAME=TYPE:VALUE.
func parseAssignment(s string) (assignment, error) {
	name, rest, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return assignment{}, fmt.Errorf("set %q: want NAME=TYPE:VALUE", s)
	}

	kind, text, ok := strings.Cut(rest, ":")
	if !ok {
		return assignment{}, fmt.Errorf("set %q: want NAME=TYPE:VALUE", s)
	}

	v, err := fsm.ParseValue(kind, text)
	if err != nil {
		return assignment{}, fmt.Errorf("set %q: %w", s, err)
	}

	return assignment{name: g.String(name), value: v}, nil
}

// parseSchedule parses TICK:NAME entries into trigger names keyed by tick.
func parseSchedule(entries []string) (map[int][]fsm.Trigger, error) {
	schedule := make(map[int][]fsm.Trigger)

	for _, s := range entries {
		at, name, ok := strings.Cut(s, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("trigger %q: want TICK:NAME", s)
		}

		tick, err := strconv.Atoi(at)
		if err != nil || tick < 1 {
			return nil, fmt.Errorf("trigger %q: tick must be a positive number", s)
		}

		schedule[tick] = append(schedule[tick], fsm.Trigger(name))
	}

	return schedule, nil
}

// stackLine lists the history most recent first.
func stackLine(s *fsm.Stack) string {
	entries := make([]string, 0, s.Len())
	for _, e := range s.Entries() {
		entries = append(entries, string(e))
	}

	return strings.Join(entries, " < ")
}

func (c *runCommand) Execute([]string) error {
	def, err := fsm.LoadDefinition(c.Args.File)
	if err != nil {
		return err
	}

	return c.run(os.Stdout, def)
}

func (c *runCommand) run(w io.Writer, def *fsm.Definition) error {
	var sets []assignment
	for _, s := range c.Set {
		a, err := parseAssignment(s)
		if err != nil {
			return err
		}
		sets = append(sets, a)
	}

	schedule, err := parseSchedule(c.Triggers)
	if err != nil {
		return err
	}

	p := fsm.NewPlayer(def, fsm.WithLogger(log), fsm.WithScripts(!c.NoScripts)).
		OnTransited(func(from, to fsm.State) {
			log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("transition")
		})

	if c.Restore != "" {
		data, err := os.ReadFile(c.Restore)
		if err != nil {
			return err
		}

		if err := p.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("restore %s: %w", c.Restore, err)
		}
	}

	for _, a := range sets {
		if _, err := p.SetParameter(a.name, a.value); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "%4d %s\n", 0, p.Path())

	for tick := 1; tick <= c.Ticks; tick++ {
		for _, t := range schedule[tick] {
			p.SetTrigger(t)
		}

		if err := p.Tick(c.Delta); err != nil {
			log.WithError(err).WithField("tick", tick).Warn("tick reported errors")
		}

		line := fmt.Sprintf("%4d %s", tick, p.Path())
		if p.Stack().Len() > 1 {
			line += "  [" + stackLine(p.Stack()) + "]"
		}

		if p.Finished() {
			line += "  (finished)"
		}

		fmt.Fprintln(w, line)
	}

	if !c.JSON {
		return nil
	}

	data, err := p.MarshalJSON()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
