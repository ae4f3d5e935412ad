// Package services contains server-side business logic: UserService for
// accounts and tokens, FileService for the file lifecycle.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/dmitrijs2005/gophbox/internal/cryptox"
	"github.com/dmitrijs2005/gophbox/internal/dbx"
	"github.com/dmitrijs2005/gophbox/internal/server/auth"
	"github.com/dmitrijs2005/gophbox/internal/server/config"
	"github.com/dmitrijs2005/gophbox/internal/server/models"
	"github.com/dmitrijs2005/gophbox/internal/server/repositories/repomanager"
)

const maxUserNameLen = 64

// UserService provides authentication-related operations:
// - Register: create users with the default storage limit
// - Login: verify credentials and mint an access token
// - Authenticate: resolve an access token to a user id
type UserService struct {
	db                          dbx.DBTX
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	defaultStorageLimit         int64
	hashParams                  cryptox.Params
	dummyHash                   string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db dbx.DBTX, m repomanager.RepositoryManager, cfg *config.Config) (*UserService, error) {
	s := &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		defaultStorageLimit:         cfg.DefaultStorageLimit,
		hashParams:                  cryptox.DefaultParams,
	}
	if s.defaultStorageLimit <= 0 {
		s.defaultStorageLimit = common.DefaultStorageLimitBytes
	}

	// verified against for unknown logins so both paths cost the same
	dummy, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	if s.dummyHash, err = cryptox.HashPassword(dummy, s.hashParams); err != nil {
		return nil, err
	}
	return s, nil
}

// Register creates a new account with storage_used = 0.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validateAccount(username, email, password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	exists, err := repo.ExistsByLoginOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("error checking user: %w", err)
	}
	if exists {
		return nil, common.ErrorAlreadyExists
	}

	hash, err := cryptox.HashPassword(password, s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{
		UserName:     username,
		Email:        email,
		PasswordHash: hash,
		StorageLimit: s.defaultStorageLimit,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the password and returns a signed access token.
// Unknown users and wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(s.dummyHash, password)
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return "", common.ErrorInternal
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Authenticate returns the user id carried by a valid access token.
func (s *UserService) Authenticate(token string) (int64, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func validateAccount(username, email, password string) error {
	var problems []string
	if username == "" {
		problems = append(problems, "username is required")
	} else if len(username) > maxUserNameLen {
		problems = append(problems, "username is too long")
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		problems = append(problems, "email is invalid")
	}
	if password == "" {
		problems = append(problems, "password is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(problems, "; "))
	}
	return nil
}
