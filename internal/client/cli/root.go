package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/eventfeed/internal/client/models"
)

func (a *App) getStatus() string {
	s := ""
	if a.session.Username != "" {
		s = a.session.Username + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if a.feed != nil {
		s = s + " [" + a.feed.Filter().String() + "]"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores a saved session, or asks to log in, and then runs the REPL
// until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to eventfeed CLI (type 'help' for commands)")

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}

	session, err := a.authService.Restore(ctx)
	if err != nil {
		a.logger.Warn(ctx, "could not restore session", "error", err)
	}
	a.setSession(session)

	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "Logged in as %s\n", a.session.Username)
		if err := a.openFeed(ctx, models.Filter{}); err != nil {
			a.printError(err)
		}
	} else {
		_ = a.Login(ctx)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
