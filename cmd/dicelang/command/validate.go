package command

import (
	"github.com/urfave/cli"

	dice "github.com/travis-g/dicelang"
)

// ValidateCommand parses, type-checks, and compiles the first
// argument without rolling a single die, reporting node count on
// success and exiting ExitInvalid on any parse/type error.
func ValidateCommand(c *cli.Context) error {
	expr := c.Args().Get(0)
	opts := optionsFromContext(c)

	prog, err := dice.Validate(expr, opts)
	if err != nil {
		return fail(ExitInvalid, err)
	}
	return printResult(c, map[string]interface{}{
		"valid": true,
		"nodes": len(prog.Graph.Nodes),
	})
}
