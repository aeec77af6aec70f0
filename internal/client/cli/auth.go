package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/eventfeed/internal/client/client"
	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/eventfeed/internal/common"
)

// getSimpleText, getPassword, getMultiline, getList and getOptionalText are
// indirections used to facilitate testing. They point to interactive input
// helpers and can be swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getMultiline    = GetMultiline
	getList         = GetList
	getOptionalText = GetOptionalText
)

// Register prompts for a username, password and bio and creates a new
// account. The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	bio, err := getSimpleText(a.reader, "Tell something about yourself (optional)", a.out)
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, userName, string(password), bio); err != nil {
		a.printError(err)
		return err
	}

	fmt.Fprintln(a.out, "Success! You can log in now.")
	return nil
}

// Login prompts for credentials, authenticates and opens the unfiltered
// feed. A network failure switches the app to offline mode.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	session, err := a.authService.Login(ctx, userName, string(password))
	if err != nil {
		if errors.Is(err, client.ErrNetwork) {
			a.setMode(ModeOffline)
		}
		a.printError(err)
		return err
	}

	a.setSession(session)
	a.setMode(ModeOnline)
	a.logger.Info(ctx, "login successful", "user", session.Username)

	if err := a.openFeed(ctx, models.Filter{}); err != nil {
		a.printError(err)
	}
	return nil
}

// Logout closes the feed and forgets the saved session.
func (a *App) Logout(ctx context.Context) error {
	a.closeFeed()
	if err := a.authService.Logout(ctx); err != nil {
		a.printError(err)
		return err
	}
	a.setSession(metadata.Session{})
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
