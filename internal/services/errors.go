package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/subx/internal/shared"
)

// APIError describes a failed request. It unwraps to one of [shared.ErrNetwork], [shared.ErrAuth],
// [shared.ErrServerValidation] or [shared.ErrServerFault].
type APIError struct {
	Method     string
	Path       string
	StatusCode int    // zero when the request never got a response
	Message    string // "message" field of the response body, if any
	Body       []byte
	Kind       error
	Err        error // transport error for [shared.ErrNetwork]
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v: %v", e.Method, e.Path, e.Kind, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %v (status %d): %s", e.Method, e.Path, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %v (status %d)", e.Method, e.Path, e.Kind, e.StatusCode)
}

func (e *APIError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// classify maps an HTTP status to the error taxonomy.
func classify(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return shared.ErrAuth
	case status >= 400 && status < 500:
		return shared.ErrServerValidation
	default:
		return shared.ErrServerFault
	}
}

// serverMessage extracts {"message": "..."} from an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		return strings.TrimSpace(payload.Message)
	}
	return ""
}

// LoginRequiredMessage is shown when no token is stored.
const LoginRequiredMessage = "로그인이 필요합니다."

// UserMessage returns the server-provided message carried by err, or fallback.
//
// This is what gets shown to the user after a failed create, delete or profile update.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, shared.ErrLoginRequired) {
		return LoginRequiredMessage
	}
	return fallback
}
