// Command fsmctl validates, renders and dry-runs state machine definitions.
//
//	fsmctl validate examples/definitions/*.yaml
//	fsmctl dot examples/definitions/controller.yaml | dot -Tsvg > controller.svg
//	fsmctl run examples/definitions/controller.yaml -n 5 --set walk=float:1 --trigger 2:space
package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

type options struct {
	Verbose bool `short:"v" long:"verbose" description:"Log every transition and warning"`
}

var (
	opts options
	log  = logrus.New()
)

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.Default)

	parser.AddCommand("validate", "Check definition files",
		"Load every file and report the first error found in each.", &validateCommand{})
	parser.AddCommand("dot", "Render a definition as Graphviz DOT",
		"Print the DOT graph of a definition, optionally highlighting a state.", &dotCommand{})
	parser.AddCommand("run", "Tick a definition headlessly",
		"Drive a fresh player for a number of ticks and print the path after each one.", &runCommand{})

	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if opts.Verbose {
			log.SetLevel(logrus.DebugLevel)
		}

		return cmd.Execute(args)
	}

	return parser
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	if _, err := newParser().Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
