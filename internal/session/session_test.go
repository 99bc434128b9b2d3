package session

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/subx/internal/shared"
)

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) Set(context.Context, string, string) error   { return f.err }
func (f failingStore) Delete(context.Context, string) error        { return f.err }

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Token Absent", func(t *testing.T) {
		s := New(NewMemoryStore())
		_, err := s.Token(ctx)
		if !errors.Is(err, shared.ErrLoginRequired) {
			t.Errorf("expected ErrLoginRequired, got %v", err)
		}
		if s.LoggedIn(ctx) {
			t.Error("expected LoggedIn to be false")
		}
	})

	t.Run("Blank Stored Token Counts As Absent", func(t *testing.T) {
		s := New(NewMemoryStore(TokenKey, "  "))
		if _, err := s.Token(ctx); !errors.Is(err, shared.ErrLoginRequired) {
			t.Errorf("expected ErrLoginRequired, got %v", err)
		}
	})

	t.Run("Login Then Token", func(t *testing.T) {
		s := New(NewMemoryStore())
		if err := s.Login(ctx, " abc "); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		token, err := s.Token(ctx)
		if err != nil || token != "abc" {
			t.Errorf("Token() = %q, %v", token, err)
		}
	})

	t.Run("Login Rejects Placeholder Tokens", func(t *testing.T) {
		s := New(NewMemoryStore())
		for _, tok := range []string{"", "undefined", "null"} {
			if err := s.Login(ctx, tok); !errors.Is(err, shared.ErrInvalidToken) {
				t.Errorf("Login(%q) expected ErrInvalidToken, got %v", tok, err)
			}
		}
	})

	t.Run("Logout Is Idempotent", func(t *testing.T) {
		s := New(NewMemoryStore(TokenKey, "abc"))
		if err := s.Logout(ctx); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if err := s.Logout(ctx); err != nil {
			t.Fatalf("second Logout() error = %v", err)
		}
		if s.LoggedIn(ctx) {
			t.Error("expected LoggedIn to be false after logout")
		}
	})

	t.Run("Store Failure Is Not Login Required", func(t *testing.T) {
		s := New(failingStore{err: errors.New("disk full")})
		_, err := s.Token(ctx)
		if err == nil || errors.Is(err, shared.ErrLoginRequired) {
			t.Errorf("expected store error, got %v", err)
		}
	})

	t.Run("OAuthToken", func(t *testing.T) {
		s := New(NewMemoryStore(TokenKey, "abc"))
		tok, err := s.OAuthToken(ctx)
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if tok.AccessToken != "abc" || tok.Type() != "Bearer" {
			t.Errorf("unexpected token %+v", tok)
		}
	})
}
