package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/subx/internal/session"
	"github.com/desertthunder/subx/internal/shared"
	tu "github.com/desertthunder/subx/internal/testing"
)

func loggedIn(token string) *session.Session {
	return session.New(session.NewMemoryStore(session.TokenKey, token))
}

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient, nil)

			if srv.BaseURL() != "http://example.com" {
				t.Errorf("expected trailing slash trimmed, got %s", srv.BaseURL())
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil, nil)

			if srv.baseURL != DefaultAPIBaseURL {
				t.Errorf("expected default baseURL %s, got %s", DefaultAPIBaseURL, srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Authorization", func(t *testing.T) {
		t.Run("Bearer header is sent", func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, loggedIn("abc123"))
			if _, err := srv.Get(context.Background(), "/project/title"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "Bearer abc123" {
				t.Errorf("expected 'Bearer abc123', got %q", got)
			}
		})

		t.Run("Absent token sends nothing", func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, session.New(session.NewMemoryStore()))
			_, err := srv.Get(context.Background(), "/project/title")

			if !errors.Is(err, shared.ErrLoginRequired) {
				t.Errorf("expected ErrLoginRequired, got %v", err)
			}
			if hits.Load() != 0 {
				t.Errorf("expected no request, got %d", hits.Load())
			}
		})

		t.Run("No session means no header", func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, nil)
			if _, err := srv.Post(context.Background(), "/llm/check", []byte(`{}`)); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "" {
				t.Errorf("expected no Authorization header, got %q", got)
			}
		})
	})

	t.Run("Do", func(t *testing.T) {
		t.Run("Parses JSON bodies", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected JSON content type, got %q", r.Header.Get("Content-Type"))
				}
				w.WriteHeader(http.StatusAccepted)
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, nil)
			resp, err := srv.Do(context.Background(), http.MethodPost, "/x", []byte(`{"a":1}`), false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() || !resp.IsJSON {
				t.Errorf("expected OK JSON response, got %+v", resp)
			}
		})

		t.Run("Plain text bodies", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain text"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil, nil).Do(context.Background(), http.MethodGet, "/", nil, false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON || string(resp.Body) != "plain text" {
				t.Errorf("unexpected response %+v", resp)
			}
		})

		t.Run("Transport failure is a network error", func(t *testing.T) {
			rt := tu.NewMockRoundTripper(nil, errors.New("connection refused"))
			srv := NewAPIService("http://example.com", &http.Client{Transport: rt}, nil)

			_, err := srv.Do(context.Background(), http.MethodGet, "/", nil, false)
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != 0 {
				t.Errorf("expected APIError without status, got %v", err)
			}
		})

		t.Run("Body read failure is a network error", func(t *testing.T) {
			rt := tu.NewMockRoundTripper(&http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: &tu.FCloser{}}, nil)
			srv := NewAPIService("http://example.com", &http.Client{Transport: rt}, nil)

			_, err := srv.Do(context.Background(), http.MethodGet, "/", nil, false)
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
			if len(rt.Requests) != 1 {
				t.Errorf("expected one request, got %d", len(rt.Requests))
			}
		})

		t.Run("Cancelled context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := NewAPIService(server.URL, nil, nil).Do(ctx, http.MethodGet, "/", nil, false)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled in chain, got %v", err)
			}
		})
	})

	t.Run("call", func(t *testing.T) {
		tests := []struct {
			name    string
			status  int
			body    string
			kind    error
			message string
		}{
			{"unauthorized", http.StatusUnauthorized, `{"message":"토큰 만료"}`, shared.ErrAuth, "토큰 만료"},
			{"forbidden", http.StatusForbidden, ``, shared.ErrAuth, ""},
			{"validation", http.StatusBadRequest, `{"message":"제목이 필요합니다"}`, shared.ErrServerValidation, "제목이 필요합니다"},
			{"not found", http.StatusNotFound, `not json`, shared.ErrServerValidation, ""},
			{"fault", http.StatusInternalServerError, `{"message":"boom"}`, shared.ErrServerFault, "boom"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
				}))
				defer server.Close()

				_, err := NewAPIService(server.URL, nil, nil).call(context.Background(), http.MethodGet, "/x", false, nil)
				if !errors.Is(err, tt.kind) {
					t.Fatalf("expected %v, got %v", tt.kind, err)
				}

				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *APIError, got %T", err)
				}
				if apiErr.StatusCode != tt.status || apiErr.Message != tt.message {
					t.Errorf("unexpected APIError %+v", apiErr)
				}
			})
		}
	})
}

func TestUserMessage(t *testing.T) {
	const fallback = "서버 오류가 발생했습니다."

	t.Run("server message wins", func(t *testing.T) {
		err := &APIError{StatusCode: 400, Message: "이미 존재하는 프로젝트", Kind: shared.ErrServerValidation}
		if got := UserMessage(err, fallback); got != "이미 존재하는 프로젝트" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("fallback without message", func(t *testing.T) {
		err := &APIError{StatusCode: 500, Kind: shared.ErrServerFault}
		if got := UserMessage(err, fallback); got != fallback {
			t.Errorf("unexpected message %q", got)
		}
		if got := UserMessage(errors.New("other"), fallback); got != fallback {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("login required", func(t *testing.T) {
		if got := UserMessage(shared.ErrLoginRequired, fallback); !strings.Contains(got, "로그인") {
			t.Errorf("unexpected message %q", got)
		}
	})
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"7"`, "7"},
		{`7`, "7"},
		{`null`, ""},
		{`1.5`, "1.5"},
	}
	for _, tt := range tests {
		var f flexString
		if err := json.Unmarshal([]byte(tt.in), &f); err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if string(f) != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.in, tt.want, f)
		}
	}

	var f flexString
	if err := json.Unmarshal([]byte(`{}`), &f); err == nil {
		t.Error("expected error for object")
	}
}
