package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/shared"
)

var _ ProjectGateway = (*ProjectService)(nil)

// ProjectService implements [ProjectGateway] against /project.
type ProjectService struct {
	api    *APIService
	logger *log.Logger
}

// NewProjectService creates a [ProjectService]. api must carry a session.
func NewProjectService(api *APIService) *ProjectService {
	return &ProjectService{api: api, logger: log.New(io.Discard)}
}

// WithLogger sets the logger used for responses that do not match the wire contract.
func (p *ProjectService) WithLogger(l *log.Logger) *ProjectService {
	if l != nil {
		p.logger = l
	}
	return p
}

type projectTitlesResponse struct {
	IDs   []flexString `json:"projectIDs"`
	Names []string     `json:"projectNames"`
}

type createProjectRequest struct {
	Title string `json:"project_title"`
	Name  string `json:"project_name"`
	URL   string `json:"project_url"`
}

type createProjectResponse struct {
	ID flexString `json:"id"`
}

type deleteProjectRequest struct {
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
}

// ListProjects calls GET /project/title and zips ids with names.
func (p *ProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	var resp projectTitlesResponse
	if err := p.api.callJSON(ctx, http.MethodGet, "/project/title", true, nil, &resp); err != nil {
		return nil, err
	}

	if len(resp.IDs) != len(resp.Names) {
		return nil, fmt.Errorf("%w: %d project ids for %d names", shared.ErrInvalidResponse, len(resp.IDs), len(resp.Names))
	}

	projects := make([]models.Project, len(resp.IDs))
	for i := range resp.IDs {
		projects[i] = models.Project{ID: string(resp.IDs[i]), Title: resp.Names[i]}
	}
	return projects, nil
}

// CreateProject calls POST /project. The server id is empty when the response carries none.
func (p *ProjectService) CreateProject(ctx context.Context, title, url string) (models.Project, error) {
	title, url = strings.TrimSpace(title), strings.TrimSpace(url)
	if title == "" || url == "" {
		return models.Project{}, fmt.Errorf("%w: project title and url are required", shared.ErrInvalidInput)
	}

	body, err := p.api.call(ctx, http.MethodPost, "/project", true, createProjectRequest{Title: title, Name: title, URL: url})
	if err != nil {
		return models.Project{}, err
	}

	var resp createProjectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		p.logger.Warn("create response carried no project id", "title", title, "error", err)
	} else if resp.ID == "" {
		p.logger.Warn("create response carried no project id", "title", title)
	}

	return models.Project{ID: string(resp.ID), Title: title, URL: url}, nil
}

// DeleteProject calls DELETE /project. The wire contract keys deletion by title, so both id and title are sent.
func (p *ProjectService) DeleteProject(ctx context.Context, project models.Project) error {
	if project.ID == "" {
		return fmt.Errorf("%w: project id is required", shared.ErrInvalidInput)
	}

	_, err := p.api.call(ctx, http.MethodDelete, "/project", true, deleteProjectRequest{ProjectID: project.ID, Title: project.Title})
	return err
}
