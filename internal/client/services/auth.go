// Package services contains application services for the eventfeed client.
// This file defines the authentication service: login, register, session
// restore and logout.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eventfeed/internal/client/client"
	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/eventfeed/internal/dbx"
)

const minPasswordLength = 6

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and persist the session.
//   - Restore: load a saved session and hand its token to the client.
//   - Register: create a new user on the server.
//   - Logout: forget the session locally.
//   - Ping: check server liveness.
type AuthService interface {
	Login(ctx context.Context, username, password string) (metadata.Session, error)
	Restore(ctx context.Context) (metadata.Session, error)
	Register(ctx context.Context, username, password, bio string) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func validateCredentials(username, password string) error {
	fe := models.FieldErrors{}
	if strings.TrimSpace(username) == "" {
		fe["username"] = []string{"is required"}
	}
	if len(password) < minPasswordLength {
		fe["password"] = []string{fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	return fe.Err()
}

// Login authenticates against the server and stores the session in a
// single transaction.
func (a *authService) Login(ctx context.Context, username, password string) (metadata.Session, error) {
	if err := validateCredentials(username, password); err != nil {
		return metadata.Session{}, err
	}

	token, userID, err := a.client.Login(ctx, username, password)
	if err != nil {
		return metadata.Session{}, fmt.Errorf("login error: %w", err)
	}

	s := metadata.Session{AccessToken: token, Username: username, UserID: userID}
	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.SaveSession(ctx, a.getMetadataRepo(tx), s)
	})
	if err != nil {
		return metadata.Session{}, fmt.Errorf("session saving error: %w", err)
	}
	return s, nil
}

// Restore returns the saved session. A missing session is not an error;
// the returned Session is simply not LoggedIn.
func (a *authService) Restore(ctx context.Context) (metadata.Session, error) {
	s, err := metadata.LoadSession(ctx, a.getMetadataRepo(a.db))
	if err != nil {
		return metadata.Session{}, err
	}
	if s.LoggedIn() {
		a.client.SetAccessToken(s.AccessToken)
	}
	return s, nil
}

func (a *authService) Register(ctx context.Context, username, password, bio string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	if _, err := a.client.Register(ctx, username, password, bio); err != nil {
		return err
	}
	return nil
}

// Logout wipes the saved session and the client's token.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	return metadata.ClearSession(ctx, a.getMetadataRepo(a.db))
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
