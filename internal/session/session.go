// Package session holds the bearer token used by every authenticated gateway call.
//
// The token lives in a [Store] under [TokenKey]. A [Session] is created once and passed to each gateway;
// nothing reads the store behind its back.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/subx/internal/shared"
	"golang.org/x/oauth2"
)

// TokenKey is the fixed storage key of the bearer token.
const TokenKey = "token"

// ErrNotFound is returned by a [Store] when a key is absent.
var ErrNotFound = errors.New("key not found")

// Store is persistent client-side key/value storage.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session reads and writes the bearer token. Reads are concurrent-safe; Login and Logout are the only writers.
type Session struct {
	store Store
}

// New creates a [Session] backed by store.
func New(store Store) *Session {
	return &Session{store: store}
}

// Token returns the stored bearer token, or [shared.ErrLoginRequired] when none is stored.
// There is no expiry check and no refresh.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, TokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", shared.ErrLoginRequired
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return "", shared.ErrLoginRequired
	}
	return token, nil
}

// LoggedIn reports whether a token is stored.
func (s *Session) LoggedIn(ctx context.Context) bool {
	_, err := s.Token(ctx)
	return err == nil
}

// Login stores token, replacing any previous one.
func (s *Session) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" || token == "undefined" || token == "null" {
		return fmt.Errorf("%w: token is empty", shared.ErrInvalidToken)
	}
	return s.store.Set(ctx, TokenKey, token)
}

// Logout removes the stored token. Logging out twice is not an error.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, TokenKey); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// OAuthToken returns the stored token as a Bearer [oauth2.Token].
func (s *Session) OAuthToken(ctx context.Context) (*oauth2.Token, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
