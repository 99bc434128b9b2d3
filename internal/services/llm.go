package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/shared"
	"golang.org/x/time/rate"
)

// Keys of the /llm/recommend response.
const (
	RecommendTitleKey      = "제목"
	RecommendHashtagPrefix = "해시태그"
)

var _ LLMGateway = (*LLMService)(nil)

// LLMService implements [LLMGateway] against the LLM service. Requests are paced by a token bucket.
type LLMService struct {
	api     *APIService
	limiter *rate.Limiter
}

// NewLLMService creates an [LLMService] allowing perSecond requests with the given burst.
// A non-positive perSecond disables pacing.
func NewLLMService(api *APIService, perSecond float64, burst int) *LLMService {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &LLMService{api: api, limiter: rate.NewLimiter(limit, burst)}
}

type contentRequest struct {
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

// Check calls POST /llm/check and returns the corrected subtitles (markdown text).
func (l *LLMService) Check(ctx context.Context, content string) (string, error) {
	body, err := l.post(ctx, "/llm/check", contentRequest{Content: content})
	if err != nil {
		return "", err
	}
	return decodeText(body), nil
}

// Recommend calls POST /llm/recommend.
//
// The title is the value under "제목"; tags are the values of keys starting with "해시태그", trimmed, in response order.
func (l *LLMService) Recommend(ctx context.Context, content string) (models.Recommendation, error) {
	body, err := l.post(ctx, "/llm/recommend", contentRequest{Content: content})
	if err != nil {
		return models.Recommendation{}, err
	}

	fields, err := decodeOrderedObject(body)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("%w: /llm/recommend: %v", shared.ErrInvalidResponse, err)
	}

	rec := models.Recommendation{Tags: []string{}}
	for _, f := range fields {
		switch {
		case f.key == RecommendTitleKey:
			rec.Title = strings.TrimSpace(f.value)
		case strings.HasPrefix(f.key, RecommendHashtagPrefix):
			rec.Tags = append(rec.Tags, strings.TrimSpace(f.value))
		}
	}
	return rec, nil
}

// Translate calls POST /llm/translate. language must be one of [models.Languages].
func (l *LLMService) Translate(ctx context.Context, content, language string) (string, error) {
	if _, ok := models.LookupLanguage(language); !ok {
		return "", fmt.Errorf("%w: unsupported language %q", shared.ErrInvalidArgument, language)
	}
	body, err := l.post(ctx, "/llm/translate", contentRequest{Content: content, Language: language})
	if err != nil {
		return "", err
	}
	return decodeText(body), nil
}

func (l *LLMService) post(ctx context.Context, path string, payload contentRequest) ([]byte, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	return l.api.call(ctx, http.MethodPost, path, false, payload)
}

type field struct {
	key   string
	value string
}

// decodeOrderedObject decodes a flat JSON object keeping key order. Non-string values are kept as their JSON text.
func decodeOrderedObject(body []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object")
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: decodeText(raw)})
	}
	return fields, nil
}
