package command

import (
	"context"

	"github.com/urfave/cli"

	dice "github.com/travis-g/dicelang"
)

// EvalCommand evaluates the first argument as a dice expression and
// prints the result, or exits ExitInvalid/ExitRuntime on failure.
func EvalCommand(c *cli.Context) error {
	expr := c.Args().Get(0)
	opts := optionsFromContext(c)

	var rng dice.RNG
	if seed := c.GlobalInt64("seed"); seed != 0 {
		rng = dice.NewMathRand(seed)
	} else {
		var err error
		rng, _, err = dice.NewDefaultRNG()
		if err != nil {
			return fail(ExitRuntime, err)
		}
	}

	res, err := dice.Evaluate(context.Background(), expr, opts, rng)
	if err != nil {
		return failForEvalError(err)
	}
	return printResult(c, dice.Render(res))
}
