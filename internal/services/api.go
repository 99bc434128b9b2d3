// HTTP plumbing shared by every gateway: bearer auth, JSON bodies and error classification.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/subx/internal/session"
	"github.com/desertthunder/subx/internal/shared"
)

const (
	DefaultAPIBaseURL = "http://localhost:3000"
	DefaultLLMBaseURL = "http://localhost:4000"
)

// APIService performs HTTP requests against one backend base URL.
//
// When a [session.Session] is attached, authenticated requests carry `Authorization: Bearer <token>`;
// with no token stored they fail with [shared.ErrLoginRequired] before anything is sent.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
}

// NewAPIService creates a new API service instance. sess may be nil for unauthenticated backends.
func NewAPIService(baseURL string, client *http.Client, sess *session.Session) *APIService {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		session:    sess,
	}
}

// NewHTTPClient returns a client with the given timeout; zero means no timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// BaseURL returns the backend base URL.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Do performs a request and returns the raw response without judging its status.
// Transport failures and a missing token are the only errors.
func (a *APIService) Do(ctx context.Context, method, path string, body []byte, auth bool) (*APIResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	if auth {
		if err := a.authorize(ctx, req); err != nil {
			return nil, err
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Method: method, Path: path, Kind: shared.ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Method: method, Path: path, StatusCode: 0, Kind: shared.ErrNetwork, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	apiResp := &APIResponse{StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs an authenticated GET and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil, a.session != nil)
}

// Post performs an authenticated POST with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, data, a.session != nil)
}

// call sends payload as JSON and returns the body of a 2xx response; other statuses become an [*APIError].
func (a *APIService) call(ctx context.Context, method, path string, auth bool, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = data
	}

	resp, err := a.Do(ctx, method, path, body, auth)
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		return nil, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(resp.Body),
			Body:       resp.Body,
			Kind:       classify(resp.StatusCode),
		}
	}

	return resp.Body, nil
}

// callJSON is [APIService.call] decoding the response body into result.
func (a *APIService) callJSON(ctx context.Context, method, path string, auth bool, payload, result any) error {
	body, err := a.call(ctx, method, path, auth, payload)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrInvalidResponse, method, path, err)
	}
	return nil
}

func (a *APIService) authorize(ctx context.Context, req *http.Request) error {
	if a.session == nil {
		return shared.ErrLoginRequired
	}
	token, err := a.session.OAuthToken(ctx)
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)
	return nil
}

// decodeText reads a plain-text response. Bodies that are a JSON string are unquoted.
func decodeText(body []byte) string {
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}
	return string(body)
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = flexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexString(n.String())
	return nil
}
