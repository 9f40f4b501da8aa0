/*
Command dicelang is a CLI for evaluating dice expressions.
*/
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli"

	"github.com/travis-g/dicelang/cmd/dicelang/command"
)

func main() {
	app := cli.NewApp()
	app.Name = "dicelang"
	app.Usage = "dice expression evaluator"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:   "format",
			Value:  "",
			Usage:  "output format: table, json, yaml",
			EnvVar: "FORMAT",
		},
		&cli.Uint64Flag{
			Name:   "recursion-limit",
			Value:  1000,
			Usage:  "maximum runtime rounds",
			EnvVar: "RECURSION_LIMIT",
		},
		&cli.Uint64Flag{
			Name:   "dice-count-limit",
			Value:  10000,
			Usage:  "maximum RNG draws across the whole evaluation",
			EnvVar: "DICE_COUNT_LIMIT",
		},
		&cli.Int64Flag{
			Name:   "seed",
			Value:  0,
			Usage:  "RNG seed; 0 draws a fresh one from the system CSPRNG",
			EnvVar: "SEED",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "run the server subcommand in debug mode",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "prettify the server subcommand's logs",
		},
	}

	serverFlags := []cli.Flag{
		&cli.IntFlag{
			Name:   "port",
			Value:  8000,
			Usage:  "HTTP port to listen on",
			EnvVar: "PORT",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:    "eval",
			Aliases: []string{"e"},
			Usage:   "evaluate a dice expression",
			Action:  command.EvalCommand,
		},
		{
			Name:    "validate",
			Aliases: []string{"v"},
			Usage:   "type-check a dice expression without rolling it",
			Action:  command.ValidateCommand,
		},
		{
			Name:   "repl",
			Usage:  "enter a REPL mode",
			Action: command.REPLCommand,
		},
		{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "start the HTTP evaluation API",
			Flags:   serverFlags,
			Action:  command.ServerCommand,
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
