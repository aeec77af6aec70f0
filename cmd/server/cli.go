package main

import (
	"context"

	"github.com/dmitrijs2005/eventfeed/internal/logging"
	"github.com/dmitrijs2005/eventfeed/internal/server/config"
	"github.com/urfave/cli/v2"
)

type runFunc func(ctx context.Context, cfg *config.Config, logger logging.Logger) error

type commands struct {
	serve   runFunc
	migrate runFunc
}

// configFlagsHelp lists the flags config.LoadConfig reads from the raw
// arguments.
const configFlagsHelp = `-a grpc addr, -w push addr, -d postgres DSN, -s JWT secret, -t token minutes,
   -u/-p S3 user/password, -b bucket, -g region, -e S3 endpoint, -i image base URL, -c config.json`

// newCLIApp builds the command tree. Subcommands skip flag parsing: the
// config package reads its own flags from the process arguments.
func newCLIApp(cmds commands, loadConfig func() *config.Config, logger logging.Logger) *cli.App {
	action := func(run runFunc) cli.ActionFunc {
		return func(c *cli.Context) error {
			return run(c.Context, loadConfig(), logger)
		}
	}

	app := &cli.App{
		Name:  "eventfeed-server",
		Usage: "Social event feed backend",
		Commands: []*cli.Command{
			{
				Name:            "serve",
				Usage:           "Run the gRPC API and the websocket push hub",
				Description:     configFlagsHelp,
				SkipFlagParsing: true,
				Action:          action(cmds.serve),
			},
			{
				Name:            "migrate",
				Usage:           "Apply database migrations and exit",
				Description:     configFlagsHelp,
				SkipFlagParsing: true,
				Action:          action(cmds.migrate),
			},
		},
		DefaultCommand: "serve",
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}
