// package services defines the gateways to the subtitle backend over HTTP
//
// Account/project service (port 3000) and LLM service (port 4000)
package services

import (
	"context"

	"github.com/desertthunder/subx/internal/models"
)

// ProjectGateway lists, creates and deletes the signed-in user's projects.
type ProjectGateway interface {
	// ListProjects returns projects in server order.
	ListProjects(ctx context.Context) ([]models.Project, error)

	// CreateProject registers a video link. The returned project carries the server-assigned id.
	CreateProject(ctx context.Context, title, url string) (models.Project, error)

	// DeleteProject removes the project. Callers identify it by id.
	DeleteProject(ctx context.Context, project models.Project) error
}

// UserGateway reads and replaces the signed-in user's profile.
type UserGateway interface {
	FetchProfile(ctx context.Context) (models.UserProfile, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) error
}

// EditorGateway drives subtitle generation for a project.
type EditorGateway interface {
	// EditLink returns the embeddable video link of a project.
	EditLink(ctx context.Context, projectID string) (string, error)

	// GenerateSubtitles triggers generation; it returns once the backend has finished.
	GenerateSubtitles(ctx context.Context, projectID string) error

	// ReadSubtitles returns the generated SRT text in the given language.
	ReadSubtitles(ctx context.Context, projectID, language string) (string, error)
}

// LLMGateway wraps the LLM text operations.
type LLMGateway interface {
	Check(ctx context.Context, content string) (string, error)
	Recommend(ctx context.Context, content string) (models.Recommendation, error)
	Translate(ctx context.Context, content, language string) (string, error)
}
