package command

import (
	"os"

	"github.com/urfave/cli"

	"github.com/travis-g/dicelang/server"
)

// ServerCommand starts the HTTP evaluation API and blocks until
// shutdown.
func ServerCommand(c *cli.Context) error {
	exit, err := server.Serve(c.Int("port"), c.GlobalBool("debug"), c.GlobalBool("pretty"))
	if err != nil {
		return fail(exit, err)
	}
	os.Exit(exit)
	return nil
}
