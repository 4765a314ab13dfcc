package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lukeeddleman/loadoutlab-site/internal/auth"
	"github.com/Lukeeddleman/loadoutlab-site/internal/errors"
	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/internal/metrics"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
	"github.com/Lukeeddleman/loadoutlab-site/internal/repository"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// AccountService handles sign-up, sign-in and profiles
type AccountService struct {
	log      logger.Logger
	repo     repository.UserRepository
	auth     *auth.Auth
	metrics  *metrics.Metrics
	hashCost int
}

// NewAccountService creates a new AccountService
func NewAccountService(log logger.Logger, repo repository.UserRepository, a *auth.Auth) *AccountService {
	return &AccountService{
		log:      log,
		repo:     repo,
		auth:     a,
		hashCost: bcrypt.DefaultCost,
	}
}

// SetMetrics attaches sign-in counters
func (s *AccountService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetHashCost overrides the bcrypt cost (tests use bcrypt.MinCost)
func (s *AccountService) SetHashCost(cost int) {
	s.hashCost = cost
}

// ProfileMetadata is the optional profile data collected at sign-up
type ProfileMetadata struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// ProfileUpdate holds the editable profile fields; nil fields are left unchanged
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Account is a user together with their profile
type Account struct {
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
}

// Session is the result of a successful sign-in
type Session struct {
	Account
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// SignUp creates an account and signs it in
func (s *AccountService) SignUp(ctx context.Context, email, password string, meta ProfileMetadata) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to hash password")
	}

	now := repository.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	profile := &models.Profile{
		ID:        user.ID,
		Email:     email,
		Username:  strings.TrimSpace(meta.Username),
		FullName:  strings.TrimSpace(meta.FullName),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateUser(ctx, user, profile); err != nil {
		if err == repository.ErrDuplicate {
			if _, lookupErr := s.repo.GetUserByEmail(ctx, email); lookupErr == nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.log.Info("Account created", "user_id", user.ID)
	return s.startSession(user, profile)
}

// SignIn checks credentials and issues a session token
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err == repository.ErrNotFound {
		s.metrics.RecordSignIn(false)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordSignIn(false)
		s.log.Debug("Sign-in rejected", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	profile, err := s.repo.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSignIn(true)
	return s.startSession(user, profile)
}

func (s *AccountService) startSession(user *models.User, profile *models.Profile) (*Session, error) {
	token, expires, err := s.auth.Issue(user.ID, user.Email)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to issue session")
	}
	return &Session{
		Account:   Account{User: user, Profile: profile},
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

// SignOut revokes a session token. Unknown or expired tokens are ignored.
func (s *AccountService) SignOut(token string) {
	if token == "" {
		return
	}
	s.auth.Revoke(token)
}

// CurrentUser returns the account of a signed-in user
func (s *AccountService) CurrentUser(ctx context.Context, userID string) (*Account, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Account{User: user, Profile: profile}, nil
}

// UpdateProfile applies the non-nil fields of update
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		profile.Username = strings.TrimSpace(*update.Username)
	}
	if update.FullName != nil {
		profile.FullName = strings.TrimSpace(*update.FullName)
	}
	if update.AvatarURL != nil {
		profile.AvatarURL = strings.TrimSpace(*update.AvatarURL)
	}
	profile.UpdatedAt = repository.Now()

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrUsernameTaken
		}
		if err == repository.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return profile, nil
}
