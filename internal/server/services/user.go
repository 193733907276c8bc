// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, token verification and
// public profile lookups.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/logging"
	"github.com/dmitrijs2005/pixo/internal/server/auth"
	"github.com/dmitrijs2005/pixo/internal/server/cache"
	"github.com/dmitrijs2005/pixo/internal/server/config"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/dmitrijs2005/pixo/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// dummyPassword is hashed once and compared against when a login names an
// unknown user, so both failure paths cost one bcrypt comparison.
const dummyPassword = "pixo-timing-equaliser"

// UserService provides authentication-related operations:
// - Register: create users with bcrypt password hashes
// - Login: verify credentials and mint a session token
// - Verify: turn a bearer token back into an Identity
// - Profile: public user data, served through a ProfileCache
type UserService struct {
	repomanager           repomanager.RepositoryManager
	profiles              cache.ProfileCache
	logger                logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	bcryptCost            int
	storeTimeout          time.Duration

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService constructs a UserService using repositories and server config.
// A nil profiles cache disables caching.
func NewUserService(m repomanager.RepositoryManager, profiles cache.ProfileCache, logger logging.Logger, cfg *config.Config) *UserService {
	if profiles == nil {
		profiles = cache.Noop{}
	}
	return &UserService{
		repomanager:           m,
		profiles:              profiles,
		logger:                logger,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		bcryptCost:            cfg.BcryptCost,
		storeTimeout:          cfg.StoreTimeout,
	}
}

// Register creates a new user. The returned user carries no password material.
func (s *UserService) Register(ctx context.Context, username, password, picture string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalidInput("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, invalidInput("password is too long")
		}
		return nil, fmt.Errorf("%w: hashing password: %v", common.ErrInternal, err)
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	repo := s.repomanager.Users(s.repomanager.DB())
	u, err := repo.Create(ctx, &models.User{
		UserName:     username,
		PasswordHash: string(hash),
		Picture:      strings.TrimSpace(picture),
	})
	if err != nil {
		return nil, storeError(err)
	}

	u.PasswordHash = ""
	return u, nil
}

// Login verifies the password and returns a signed session token. Unknown
// users and wrong passwords fail identically with ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", invalidInput("username and password are required")
	}

	storeCtx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	repo := s.repomanager.Users(s.repomanager.DB())
	user, err := repo.GetUserByLogin(storeCtx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.getDummyHash(ctx), []byte(password))
			return "", common.ErrInvalidCredentials
		}
		return "", storeError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(models.Identity{UserID: user.ID, Username: user.UserName}, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: signing token: %v", common.ErrInternal, err)
	}
	return token, nil
}

// Verify checks a bearer token. An empty token is ErrMissingToken, anything
// that fails verification is ErrInvalidToken.
func (s *UserService) Verify(token string) (*models.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, common.ErrMissingToken
	}
	return auth.ParseToken(token, s.jwtSecret)
}

// Profile returns the public profile of username.
func (s *UserService) Profile(ctx context.Context, username string) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalidInput("username is required")
	}

	if p, ok, err := s.profiles.Get(ctx, username); err != nil {
		s.logger.Warn(ctx, "profile cache read failed", "username", username, "error", err)
	} else if ok {
		return p, nil
	}

	storeCtx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.repomanager.Users(s.repomanager.DB()).GetUserByLogin(storeCtx, username)
	if err != nil {
		return nil, storeError(err)
	}

	p := &models.Profile{Username: user.UserName, Picture: user.Picture}
	if err := s.profiles.Set(ctx, p); err != nil {
		s.logger.Warn(ctx, "profile cache write failed", "username", username, "error", err)
	}
	return p, nil
}

// getDummyHash falls back to bcrypt.DefaultCost when the configured cost is
// rejected, so unknown-user logins still pay for a comparison.
func (s *UserService) getDummyHash(ctx context.Context) []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), s.bcryptCost)
		if err != nil {
			s.logger.Error(ctx, "dummy hash with configured cost failed", "cost", s.bcryptCost, "error", err)
			hash, _ = bcrypt.GenerateFromPassword([]byte(dummyPassword), bcrypt.DefaultCost)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
