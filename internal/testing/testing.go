// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/subx/internal/models"
)

// MockProjects is an in-memory test double for [services.ProjectGateway].
type MockProjects struct {
	mu        sync.Mutex
	Projects  []models.Project
	NextID    int
	ListErr   error
	CreateErr error
	DeleteErr error
	Calls     []string
}

func (m *MockProjects) ListProjects(ctx context.Context) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "list")
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]models.Project(nil), m.Projects...), nil
}

func (m *MockProjects) CreateProject(ctx context.Context, title, url string) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "create")
	if m.CreateErr != nil {
		return models.Project{}, m.CreateErr
	}
	m.NextID++
	p := models.Project{ID: strconv.Itoa(m.NextID), Title: title, URL: url}
	m.Projects = append(m.Projects, p)
	return p, nil
}

func (m *MockProjects) DeleteProject(ctx context.Context, project models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "delete")
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i, p := range m.Projects {
		if p.ID == project.ID {
			m.Projects = append(m.Projects[:i], m.Projects[i+1:]...)
			return nil
		}
	}
	return errors.New("project not found")
}

// CallCount returns how many times op ("list", "create", "delete") was called.
func (m *MockProjects) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// MockUsers is a test double for [services.UserGateway].
type MockUsers struct {
	mu        sync.Mutex
	Profile   models.UserProfile
	FetchErr  error
	UpdateErr error
	Updates   []models.ProfileUpdate
	Fetches   int
	// Block, when set, is waited on before FetchProfile returns.
	Block chan struct{}
}

func (m *MockUsers) FetchProfile(ctx context.Context) (models.UserProfile, error) {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return models.UserProfile{}, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetches++
	if m.FetchErr != nil {
		return models.UserProfile{}, m.FetchErr
	}
	return m.Profile, nil
}

func (m *MockUsers) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Updates = append(m.Updates, update)
	m.Profile = models.UserProfile{ID: update.UserID, Name: update.Name, Email: update.Email, Password: update.Password, Phone: update.Phone}
	return nil
}

// MockEditor is a test double for [services.EditorGateway].
type MockEditor struct {
	Link        string
	Subtitles   string
	LinkErr     error
	GenerateErr error
	ReadErr     error
	Generated   []string
	// Block, when set, is waited on before GenerateSubtitles returns.
	Block chan struct{}
	// Started receives the project id once GenerateSubtitles is waiting on Block.
	Started chan string
}

func (m *MockEditor) EditLink(ctx context.Context, projectID string) (string, error) {
	return m.Link, m.LinkErr
}

func (m *MockEditor) GenerateSubtitles(ctx context.Context, projectID string) error {
	if m.Block != nil {
		if m.Started != nil {
			m.Started <- projectID
		}
		select {
		case <-m.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.GenerateErr != nil {
		return m.GenerateErr
	}
	m.Generated = append(m.Generated, projectID)
	return nil
}

func (m *MockEditor) ReadSubtitles(ctx context.Context, projectID, language string) (string, error) {
	return m.Subtitles, m.ReadErr
}

// MockLLM is a test double for [services.LLMGateway].
type MockLLM struct {
	Checked        string
	Recommendation models.Recommendation
	Translation    string
	Err            error
	Contents       []string
}

func (m *MockLLM) Check(ctx context.Context, content string) (string, error) {
	m.Contents = append(m.Contents, content)
	return m.Checked, m.Err
}

func (m *MockLLM) Recommend(ctx context.Context, content string) (models.Recommendation, error) {
	m.Contents = append(m.Contents, content)
	return m.Recommendation, m.Err
}

func (m *MockLLM) Translate(ctx context.Context, content, language string) (string, error) {
	m.Contents = append(m.Contents, content)
	return m.Translation, m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	Requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
