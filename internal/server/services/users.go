package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventfeed/internal/common"
	"github.com/dmitrijs2005/eventfeed/internal/server/auth"
	"github.com/dmitrijs2005/eventfeed/internal/server/config"
	"github.com/dmitrijs2005/eventfeed/internal/server/models"
	"github.com/dmitrijs2005/eventfeed/internal/server/repositories/repomanager"
)

const minPasswordLength = 6

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func validateCredentials(username, password string) error {
	fe := models.FieldErrors{}
	if strings.TrimSpace(username) == "" {
		fe.Add("username", "must not be empty")
	}
	if len(password) < minPasswordLength {
		fe.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return fe.Err()
}

// Register stores a new account. A taken username yields
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, password, bio string) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		UserName:     strings.TrimSpace(username),
		PasswordHash: hash,
		Bio:          bio,
	}

	repo := s.repomanager.Users(s.db)

	user, err = repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login checks the credentials and issues an access token. Unknown users
// and wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (string, int64, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", 0, common.ErrorUnauthorized
		}
		return "", 0, common.ErrorInternal
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return "", 0, err
		}
		return "", 0, common.ErrorInternal
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", 0, common.ErrorInternal
	}

	return token, user.ID, nil
}
