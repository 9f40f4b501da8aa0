/*
Package command implements the dicelang CLI's subcommands.
*/
package command

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	dice "github.com/travis-g/dicelang"
)

// Exit codes distinguish a malformed expression (2) from a runtime
// failure during evaluation (3), so scripts can tell the two apart
// without scraping stderr.
const (
	ExitOK = iota
	_
	ExitInvalid
	ExitRuntime
)

func optionsFromContext(c *cli.Context) dice.Options {
	return dice.Options{
		RecursionLimit: uint(c.GlobalUint64("recursion-limit")),
		DiceCountLimit: uint(c.GlobalUint64("dice-count-limit")),
	}
}

func printResult(c *cli.Context, i interface{}) error {
	out, err := dice.Output(i, c.GlobalString("format"))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// fail prints err to stderr and exits the process with code, the way
// the teacher's CLI surfaces errors without wrapping cli.Exit's own
// %v formatting around a pkg/errors cause chain.
func fail(code int, err error) error {
	fmt.Fprintln(os.Stderr, errors.Cause(err))
	os.Exit(code)
	return nil
}

// failForEvalError picks ExitInvalid for a malformed expression that
// surfaced from Evaluate's internal parse/type/desugar stage, and
// ExitRuntime for everything past that (a runtime error, or a
// malformed Options precondition).
func failForEvalError(err error) error {
	switch errors.Cause(err).(type) {
	case *dice.ParseError, *dice.TypeError, *dice.DesugarError:
		return fail(ExitInvalid, err)
	default:
		return fail(ExitRuntime, err)
	}
}
