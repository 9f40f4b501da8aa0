package command

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"

	dice "github.com/travis-g/dicelang"
)

const replPrompt = ">>> "

// REPLCommand reads expressions from stdin line by line, evaluating
// and printing each until EOF or a line reading "quit".
func REPLCommand(c *cli.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	opts := optionsFromContext(c)
	rng, _, err := dice.NewDefaultRNG()
	if err != nil {
		return fail(ExitRuntime, err)
	}

	in, _ := os.Stdin.Stat()
	interactive := (in.Mode() & os.ModeCharDevice) != 0

	for {
		if interactive {
			fmt.Fprint(os.Stderr, replPrompt)
		}
		if !scanner.Scan() {
			return nil
		}
		line := scanner.Text()
		if line == "quit" {
			return nil
		}
		if line == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		res, err := dice.Evaluate(ctx, line, opts, rng)
		cancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		out, err := dice.Output(dice.Render(res), c.GlobalString("format"))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Println(out)
	}
}
