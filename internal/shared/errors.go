package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrLoginRequired = fmt.Errorf("login required")
	ErrInvalidToken  = fmt.Errorf("invalid token")

	// Request taxonomy. Every failed gateway call unwraps to exactly one of these.
	ErrNetwork          = fmt.Errorf("network error")
	ErrAuth             = fmt.Errorf("authentication rejected")
	ErrServerValidation = fmt.Errorf("request rejected by server")
	ErrServerFault      = fmt.Errorf("server fault")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrInvalidResponse    = fmt.Errorf("invalid response")
	ErrEmptyProfile       = fmt.Errorf("profile response is empty")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrProjectNotFound    = fmt.Errorf("project not found")
	ErrDraftNotFound      = fmt.Errorf("draft not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
