package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/eventfeed/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string     address and port of the backend server
//	-p string     websocket URL of the push channel
//	-d string     local database file
//	-l int        page size
//	-t duration   request timeout, e.g. 5s
//
// Only the flags above are parsed; flagx.FilterArgs drops the rest.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-p", "-d", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.PushURL, "p", cfg.PushURL, "websocket URL for live updates")
	fs.StringVar(&cfg.DatabaseFile, "d", cfg.DatabaseFile, "local database file")
	fs.IntVar(&cfg.PageSize, "l", cfg.PageSize, "events per page")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
