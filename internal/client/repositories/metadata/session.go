package metadata

import (
	"context"
	"strconv"
)

const (
	KeyAccessToken = "access_token"
	KeyUsername    = "username"
	KeyUserID      = "user_id"
)

// Session is the persisted login state.
type Session struct {
	AccessToken string
	Username    string
	UserID      int64
}

func (s Session) LoggedIn() bool {
	return s.AccessToken != ""
}

// LoadSession reads the session; a missing session is the zero value.
func LoadSession(ctx context.Context, r Repository) (Session, error) {
	var s Session
	var err error
	if s.AccessToken, _, err = r.Get(ctx, KeyAccessToken); err != nil {
		return Session{}, err
	}
	if s.Username, _, err = r.Get(ctx, KeyUsername); err != nil {
		return Session{}, err
	}
	id, ok, err := r.Get(ctx, KeyUserID)
	if err != nil {
		return Session{}, err
	}
	if ok {
		s.UserID, _ = strconv.ParseInt(id, 10, 64)
	}
	return s, nil
}

func SaveSession(ctx context.Context, r Repository, s Session) error {
	if err := r.Set(ctx, KeyAccessToken, s.AccessToken); err != nil {
		return err
	}
	if err := r.Set(ctx, KeyUsername, s.Username); err != nil {
		return err
	}
	return r.Set(ctx, KeyUserID, strconv.FormatInt(s.UserID, 10))
}

func ClearSession(ctx context.Context, r Repository) error {
	return r.Delete(ctx, KeyAccessToken, KeyUsername, KeyUserID)
}
