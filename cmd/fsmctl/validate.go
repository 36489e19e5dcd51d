package main

import (
	"fmt"
	"io"
	"os"

	fsm "github.com/enetx/tickfsm"
)

type validateCommand struct {
	Args struct {
		Files []string `positional-arg-name:"FILE" required:"1"`
	} `positional-args:"yes"`
}

func (c *validateCommand) Execute([]string) error {
	return validate(os.Stdout, c.Args.Files)
}

// validate reports each file on its own line and fails if any is invalid.
func validate(w io.Writer, files []string) error {
	var failed int

	for _, path := range files {
		def, err := fsm.LoadDefinition(path)
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
			continue
		}

		fmt.Fprintf(w, "ok   %s (%d states, %d transitions)\n", path, def.States().Len(), def.Transitions().Len())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d definitions invalid", failed, len(files))
	}

	return nil
}
