package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/services"
	"github.com/desertthunder/subx/internal/shared"
)

// DraftSaver persists edit sessions (repositories.DraftRepository).
type DraftSaver interface {
	Save(ctx context.Context, draft *models.Draft) error
}

// EditState is a copy of an [EditSession]'s fields.
//
// Each operation has its own loading flag; operations may overlap.
type EditState struct {
	ProjectID   string
	Link        string
	Subtitles   string
	Checked     string
	Recommended models.Recommendation
	Translation string
	Language    string

	LoadingLink  bool
	Generating   bool
	Checking     bool
	Recommending bool
	Translating  bool
	Saving       bool

	Err string
}

// Busy reports whether any operation is in flight.
func (s EditState) Busy() bool {
	return s.LoadingLink || s.Generating || s.Checking || s.Recommending || s.Translating || s.Saving
}

// EditSession holds the edit panel of one project: video link, subtitles and LLM results.
type EditSession struct {
	projectID string

	mu       sync.Mutex
	state    EditState
	editor   services.EditorGateway
	llm      services.LLMGateway
	drafts   DraftSaver
	logger   *log.Logger
	progress chan<- ProgressUpdate
}

// EditSessionOpts holds the dependencies of an [EditSession]. Drafts and Progress are optional.
type EditSessionOpts struct {
	ProjectID string
	Editor    services.EditorGateway
	LLM       services.LLMGateway
	Drafts    DraftSaver
	Logger    *log.Logger
	Progress  chan<- ProgressUpdate
}

// NewEditSession creates an [EditSession] for opts.ProjectID.
func NewEditSession(opts EditSessionOpts) *EditSession {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &EditSession{
		projectID: opts.ProjectID,
		state:     EditState{ProjectID: opts.ProjectID},
		editor:    opts.Editor,
		llm:       opts.LLM,
		drafts:    opts.Drafts,
		logger:    shared.WithLogger(opts.Logger, "project", opts.ProjectID),
		progress:  opts.Progress,
	}
}

// State returns a copy of the session.
func (e *EditSession) State() EditState {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.Recommended.Tags = append([]string(nil), e.state.Recommended.Tags...)
	return s
}

func (e *EditSession) set(fn func(*EditState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.state)
}

// SetSubtitles replaces the subtitle text with the user's edit.
func (e *EditSession) SetSubtitles(text string) {
	e.set(func(s *EditState) { s.Subtitles = text })
}

// Restore loads a saved draft into the session.
func (e *EditSession) Restore(d *models.Draft) {
	e.set(func(s *EditState) {
		s.Subtitles = d.Subtitles
		s.Checked = d.Checked
		s.Recommended = models.Recommendation{Title: d.Recommended.Title, Tags: append([]string(nil), d.Recommended.Tags...)}
		s.Translation = d.Translation
		s.Language = d.Language
	})
}

// Draft returns the session contents as a draft.
func (e *EditSession) Draft() models.Draft {
	s := e.State()
	return models.Draft{
		ProjectID:   s.ProjectID,
		Subtitles:   s.Subtitles,
		Checked:     s.Checked,
		Recommended: s.Recommended,
		Translation: s.Translation,
		Language:    s.Language,
	}
}

// run wraps one operation: it toggles the operation's loading flag, reports progress and records the error.
// apply is only called when the result arrived before ctx was done.
func (e *EditSession) run(ctx context.Context, op Operation, flag func(*EditState) *bool, call func() error, apply func(*EditState)) error {
	e.set(func(s *EditState) {
		*flag(s) = true
		s.Err = ""
	})
	defer e.set(func(s *EditState) { *flag(s) = false })

	sendProgress(e.progress, loadingUpdate(op, 0, 1))
	err := call()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		e.logger.Error("operation failed", "op", op, "error", err)
		e.set(func(s *EditState) { s.Err = services.UserMessage(err, ServerErrorMessage) })
		sendProgress(e.progress, failedUpdate(op, err))
		return err
	}

	e.set(apply)
	sendProgress(e.progress, doneUpdate(op, op.String()))
	return nil
}

// LoadLink fetches the embeddable video link.
func (e *EditSession) LoadLink(ctx context.Context) (string, error) {
	var link string
	err := e.run(ctx, LoadLink,
		func(s *EditState) *bool { return &s.LoadingLink },
		func() (err error) {
			link, err = e.editor.EditLink(ctx, e.projectID)
			return err
		},
		func(s *EditState) { s.Link = link },
	)
	return link, err
}

// Generate triggers subtitle generation and reads back the result.
func (e *EditSession) Generate(ctx context.Context) (string, error) {
	var srt string
	err := e.run(ctx, GenerateSubtitles,
		func(s *EditState) *bool { return &s.Generating },
		func() error {
			if err := e.editor.GenerateSubtitles(ctx, e.projectID); err != nil {
				return err
			}
			var err error
			srt, err = e.editor.ReadSubtitles(ctx, e.projectID, services.SubtitleLanguage)
			return err
		},
		func(s *EditState) { s.Subtitles = srt },
	)
	return srt, err
}

func (e *EditSession) content() (string, error) {
	text := e.State().Subtitles
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no subtitles to send", shared.ErrInvalidInput)
	}
	return text, nil
}

// Check sends the subtitles for correction.
func (e *EditSession) Check(ctx context.Context) (string, error) {
	content, err := e.content()
	if err != nil {
		return "", err
	}

	var checked string
	err = e.run(ctx, CheckSubtitles,
		func(s *EditState) *bool { return &s.Checking },
		func() (err error) {
			checked, err = e.llm.Check(ctx, content)
			return err
		},
		func(s *EditState) { s.Checked = checked },
	)
	return checked, err
}

// Recommend asks for a video title and hashtags.
func (e *EditSession) Recommend(ctx context.Context) (models.Recommendation, error) {
	content, err := e.content()
	if err != nil {
		return models.Recommendation{}, err
	}

	var rec models.Recommendation
	err = e.run(ctx, RecommendTitle,
		func(s *EditState) *bool { return &s.Recommending },
		func() (err error) {
			rec, err = e.llm.Recommend(ctx, content)
			return err
		},
		func(s *EditState) { s.Recommended = rec },
	)
	return rec, err
}

// Translate translates the subtitles into language, one of [models.Languages].
func (e *EditSession) Translate(ctx context.Context, language string) (string, error) {
	if _, ok := models.LookupLanguage(language); !ok {
		return "", fmt.Errorf("%w: unsupported language %q", shared.ErrInvalidArgument, language)
	}
	content, err := e.content()
	if err != nil {
		return "", err
	}

	var translated string
	err = e.run(ctx, TranslateSubtitles,
		func(s *EditState) *bool { return &s.Translating },
		func() (err error) {
			translated, err = e.llm.Translate(ctx, content, language)
			return err
		},
		func(s *EditState) {
			s.Translation = translated
			s.Language = language
		},
	)
	return translated, err
}

// Save stores the session as the project's draft.
func (e *EditSession) Save(ctx context.Context) (*models.Draft, error) {
	if e.drafts == nil {
		return nil, fmt.Errorf("%w: no draft storage configured", shared.ErrServiceUnavailable)
	}

	draft := e.Draft()
	err := e.run(ctx, SaveDraft,
		func(s *EditState) *bool { return &s.Saving },
		func() error { return e.drafts.Save(ctx, &draft) },
		func(*EditState) {},
	)
	if err != nil {
		return nil, err
	}
	return &draft, nil
}
