package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/subx/internal/shared"
)

// SubtitleLanguage is the language code the backend uses for generated subtitles.
const SubtitleLanguage = "kr"

var _ EditorGateway = (*EditorService)(nil)

// EditorService implements [EditorGateway].
//
// /edit/{id} is authenticated; /work/generateSub and /files/readSRT are not.
type EditorService struct {
	api *APIService
}

// NewEditorService creates an [EditorService].
func NewEditorService(api *APIService) *EditorService {
	return &EditorService{api: api}
}

type projectContent struct {
	ProjectID string `json:"content_projectID"`
	Language  string `json:"content_language,omitempty"`
}

// EditLink calls GET /edit/{projectId}.
func (e *EditorService) EditLink(ctx context.Context, projectID string) (string, error) {
	if projectID == "" {
		return "", fmt.Errorf("%w: project id is required", shared.ErrInvalidInput)
	}
	body, err := e.api.call(ctx, http.MethodGet, "/edit/"+url.PathEscape(projectID), true, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(decodeText(body)), nil
}

// GenerateSubtitles calls POST /work/generateSub.
func (e *EditorService) GenerateSubtitles(ctx context.Context, projectID string) error {
	if projectID == "" {
		return fmt.Errorf("%w: project id is required", shared.ErrInvalidInput)
	}
	_, err := e.api.call(ctx, http.MethodPost, "/work/generateSub", false, projectContent{ProjectID: projectID})
	return err
}

// ReadSubtitles calls POST /files/readSRT.
func (e *EditorService) ReadSubtitles(ctx context.Context, projectID, language string) (string, error) {
	if language == "" {
		language = SubtitleLanguage
	}
	body, err := e.api.call(ctx, http.MethodPost, "/files/readSRT", false, projectContent{ProjectID: projectID, Language: language})
	if err != nil {
		return "", err
	}
	return decodeText(body), nil
}
