package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nurpe/dumpster-rentals/internal/auth"
	"github.com/nurpe/dumpster-rentals/internal/model"
)

type Session struct {
	AccessToken string     `json:"accessToken"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	User        model.User `json:"user"`
}

// SessionService logs users in and out. Tokens are stateless except for the
// revocation list consulted by Authenticate.
type SessionService struct {
	users       *UserService
	issuer      *auth.Issuer
	parser      *auth.Parser
	revocations auth.Revocations
}

func NewSessionService(users *UserService, issuer *auth.Issuer, parser *auth.Parser, revocations auth.Revocations) *SessionService {
	return &SessionService{users: users, issuer: issuer, parser: parser, revocations: revocations}
}

func (s *SessionService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	token, err := s.issuer.Issue(*user)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token.Value, ExpiresAt: token.ExpiresAt, User: *user}, nil
}

// Authenticate resolves a bearer token into a principal and the token expiry.
func (s *SessionService) Authenticate(ctx context.Context, token string) (model.Principal, time.Time, error) {
	principal, expires, err := s.parser.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return model.Principal{}, time.Time{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return model.Principal{}, time.Time{}, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, principal.TokenID)
	if err != nil {
		return model.Principal{}, time.Time{}, err
	}
	if revoked {
		return model.Principal{}, time.Time{}, fmt.Errorf("%w: session ended", ErrUnauthorized)
	}
	return principal, expires, nil
}

// Me restores the session user for a still valid token.
func (s *SessionService) Me(ctx context.Context, principal model.Principal) (*model.User, error) {
	return s.users.Get(ctx, principal, principal.UserID)
}

func (s *SessionService) Logout(ctx context.Context, principal model.Principal, expires time.Time) error {
	return s.revocations.Revoke(ctx, principal.TokenID, expires)
}
