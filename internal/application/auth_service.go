package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/taskmaster/taskmaster-api/internal/domain/entity"
	repo "github.com/taskmaster/taskmaster-api/internal/domain/repository"
	"github.com/taskmaster/taskmaster-api/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionInvalid     = errors.New("refresh token has expired or the session is invalid")
)

// Service owns the auth core: credential checks, refresh-session lifecycle
// and access-token issuance. Project/task handlers never go through it; they
// only rely on the user id the middleware resolves.
type Service struct {
	Repo       repo.UserRepository
	JWT        *helpers.JWTManager
	RefreshTTL time.Duration
	Logger     *logrus.Logger
}

func NewService(userRepo repo.UserRepository, jwt *helpers.JWTManager, refreshTTL time.Duration, logger *logrus.Logger) *Service {
	return &Service{
		Repo:       userRepo,
		JWT:        jwt,
		RefreshTTL: refreshTTL,
		Logger:     logger,
	}
}

// TokenPair carries one freshly issued access/refresh credential pair.
type TokenPair struct {
	AccessToken  string
	AccessExpiry time.Time
	RefreshToken string
}

// NormalizeEmail lowercases and trims an email address before storage/lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a user with a bcrypt-hashed password and logs them straight
// in by issuing a session and token pair.
func (s *Service) Signup(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := &entity.User{
		Email:    NormalizeEmail(email),
		Password: hash,
		Sessions: []entity.Session{},
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Login validates email/password and issues a fresh session and token pair.
// Prior sessions stay untouched so other devices remain logged in.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil || u == nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// IssueTokens creates a refresh session for the user and signs an access token.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	refresh, err := s.CreateSession(ctx, u)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("create session failed")
		}
		return TokenPair{}, err
	}
	access, exp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessExpiry: exp, RefreshToken: refresh}, nil
}

// CreateSession appends a new refresh session to the user's list and persists
// it. Existing sessions are never removed or deduplicated here; multiple
// concurrent sessions per user are allowed by design.
func (s *Service) CreateSession(ctx context.Context, u *entity.User) (string, error) {
	token, err := helpers.GenerateRefreshToken()
	if err != nil {
		return "", err
	}
	u.Sessions = append(u.Sessions, entity.Session{
		Token:     token,
		ExpiresAt: time.Now().Add(s.RefreshTTL).UnixMilli(),
	})
	if err := s.Repo.UpdateSessions(ctx, u.ID, u.Sessions); err != nil {
		return "", err
	}
	return token, nil
}

// FindUserBySessionToken resolves the user a refresh token claims to belong
// to. Token validity is checked separately via IsSessionValid.
func (s *Service) FindUserBySessionToken(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// IsSessionValid scans the user's session list for a live session carrying
// the given refresh token. Expired or revoked entries never match, no matter
// how many other valid sessions exist.
func (s *Service) IsSessionValid(u *entity.User, refreshToken string) bool {
	now := time.Now()
	for _, sess := range u.Sessions {
		if sess.Token == refreshToken && sess.Live(now) {
			return true
		}
	}
	return false
}

// RevokeSession marks the session carrying the given refresh token as revoked
// and persists the list. Revocation is terminal, exactly like expiry.
func (s *Service) RevokeSession(ctx context.Context, u *entity.User, refreshToken string) error {
	found := false
	for i := range u.Sessions {
		if u.Sessions[i].Token == refreshToken {
			u.Sessions[i].Revoked = true
			found = true
		}
	}
	if !found {
		return ErrSessionInvalid
	}
	return s.Repo.UpdateSessions(ctx, u.ID, u.Sessions)
}

// GetProfile loads the user for the authenticated caller.
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
