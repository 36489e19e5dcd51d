package main

import (
	"fmt"
	"os"

	fsm "github.com/enetx/tickfsm"
)

type dotCommand struct {
	Current string `short:"c" long:"current" description:"Path of the state to highlight, e.g. Jump/Rise"`

	Args struct {
		File string `positional-arg-name:"FILE" required:"yes"`
	} `positional-args:"yes"`
}

func (c *dotCommand) Execute([]string) error {
	def, err := fsm.LoadDefinition(c.Args.File)
	if err != nil {
		return err
	}

	current := fsm.State(c.Current)
	if current == "" {
		current = def.Start()
	}

	_, err = fmt.Fprint(os.Stdout, def.ToDOT(current))
	return err
}
