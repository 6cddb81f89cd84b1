// Package service provides the business logic of the development backend,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atinyakov/shopfront/internal/models"
)

// ErrInvalidCredentials is returned when login credentials do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a presented token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// CreateUser registers a new account.
	CreateUser(ctx context.Context, email, password, firstName, lastName string) error
	// CheckUser verifies the credentials of a registered account.
	CheckUser(ctx context.Context, email, password string) (bool, error)
}

// AuthService mints and verifies HS256 token pairs for the development
// backend and manages accounts through a UserRepository.
type AuthService struct {
	repo   UserRepository
	secret []byte

	// accessTTL and refreshTTL bound the two token lifetimes.
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is the clock used for claims; overridable in tests.
	now func() time.Time
}

// NewAuthService constructs an AuthService signing with the given secret.
func NewAuthService(repo UserRepository, secret []byte) *AuthService {
	return &AuthService{
		repo:       repo,
		secret:     secret,
		accessTTL:  15 * time.Minute,
		refreshTTL: 30 * 24 * time.Hour,
		now:        time.Now,
	}
}

// Login verifies credentials and mints a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	ok, err := s.repo.CheckUser(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.mintPair(email)
}

// Signup registers an account and mints its first token pair, leaving the
// shopper signed in.
func (s *AuthService) Signup(ctx context.Context, email, password, firstName, lastName string) (*models.TokenPair, error) {
	if err := s.repo.CreateUser(ctx, email, password, firstName, lastName); err != nil {
		return nil, err
	}
	return s.mintPair(email)
}

// Refresh verifies a refresh token and mints a new access token for its
// subject. The refresh token itself stays valid until its own expiry.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	email, typ, err := s.verify(refreshToken)
	if err != nil {
		return "", err
	}
	if typ != "refresh" {
		return "", fmt.Errorf("%w: not a refresh token", ErrInvalidToken)
	}
	return s.mint(email, "access", s.accessTTL)
}

// VerifyAccess checks an access token and returns its subject email.
func (s *AuthService) VerifyAccess(accessToken string) (string, error) {
	email, typ, err := s.verify(accessToken)
	if err != nil {
		return "", err
	}
	if typ != "access" {
		return "", fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}
	return email, nil
}

func (s *AuthService) mintPair(email string) (*models.TokenPair, error) {
	access, err := s.mint(email, "access", s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.mint(email, "refresh", s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) mint(email, typ string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  email,
		"type": typ,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) verify(raw string) (email, typ string, err error) {
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	email, _ = claims["sub"].(string)
	typ, _ = claims["type"].(string)
	if email == "" {
		return "", "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return email, typ, nil
}
