package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/repositories"
	"github.com/desertthunder/subx/internal/services"
	"github.com/desertthunder/subx/internal/session"
	"github.com/desertthunder/subx/internal/shared"
	"github.com/desertthunder/subx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	session     *session.Session
	api         *services.APIService
	llmAPI      *services.APIService
	projects    services.ProjectGateway
	users       services.UserGateway
	editor      services.EditorGateway
	llm         services.LLMGateway
	drafts      *repositories.DraftRepository
	logger      *log.Logger
	output      io.Writer
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Gateways left nil are built from Config: API and LLMAPI from the base URLs, the gateways on top of them.
// Drafts is nil when no local database is available.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Session     *session.Session
	HTTPClient  *http.Client
	API         *services.APIService
	LLMAPI      *services.APIService
	Projects    services.ProjectGateway
	Users       services.UserGateway
	Editor      services.EditorGateway
	LLM         services.LLMGateway
	Drafts      *repositories.DraftRepository
	Logger      *log.Logger
	Output      io.Writer
	OpenBrowser func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Session == nil {
		opts.Session = session.New(session.NewMemoryStore())
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = services.NewHTTPClient(opts.Config.API.RequestTimeout())
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, opts.HTTPClient, opts.Session)
	}
	if opts.LLMAPI == nil {
		opts.LLMAPI = services.NewAPIService(opts.Config.LLM.BaseURL, opts.HTTPClient, nil)
	}
	if opts.Projects == nil {
		opts.Projects = services.NewProjectService(opts.API).WithLogger(shared.WithLogger(opts.Logger, "service", "projects"))
	}
	if opts.Users == nil {
		opts.Users = services.NewUserService(opts.API)
	}
	if opts.Editor == nil {
		opts.Editor = services.NewEditorService(opts.API)
	}
	if opts.LLM == nil {
		opts.LLM = services.NewLLMService(opts.LLMAPI, opts.Config.LLM.RateLimit, opts.Config.LLM.Burst)
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		session:     opts.Session,
		api:         opts.API,
		llmAPI:      opts.LLMAPI,
		projects:    opts.Projects,
		users:       opts.Users,
		editor:      opts.Editor,
		llm:         opts.LLM,
		drafts:      opts.Drafts,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, projectCommand, userCommand, editCommand, draftCommand, apiCommand, serverCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// newReconciler creates a reconciler over a fresh view state. progress may be nil.
func (r *Runner) newReconciler(progress chan<- tasks.ProgressUpdate) *tasks.Reconciler {
	return tasks.NewReconciler(tasks.ReconcilerOpts{
		Session:  r.session,
		Projects: r.projects,
		Users:    r.users,
		Logger:   r.logger,
		Progress: progress,
	})
}

// newEditSession creates the edit panel of projectID and restores its saved draft, if any.
func (r *Runner) newEditSession(ctx context.Context, projectID string, progress chan<- tasks.ProgressUpdate) *tasks.EditSession {
	opts := tasks.EditSessionOpts{
		ProjectID: projectID,
		Editor:    r.editor,
		LLM:       r.llm,
		Logger:    r.logger,
		Progress:  progress,
	}
	if r.drafts == nil {
		return tasks.NewEditSession(opts)
	}

	opts.Drafts = r.drafts
	e := tasks.NewEditSession(opts)
	if d, err := r.drafts.GetByProject(ctx, projectID); err == nil {
		e.Restore(d)
		r.logger.Debug("restored draft", "project", projectID, "draft", d.ID)
	}
	return e
}

// requireDrafts fails when no local database is available.
func (r *Runner) requireDrafts() error {
	if r.drafts == nil {
		return fmt.Errorf("%w: local database not available, run `subx setup database`", shared.ErrServiceUnavailable)
	}
	return nil
}

// userError prefixes err with the message a user would see for it.
func userError(err error, fallback string) error {
	return fmt.Errorf("%s: %w", services.UserMessage(err, fallback), err)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

func (r *Runner) writeEntries(entries []models.SubtitleEntry) {
	for _, e := range entries {
		r.writePlain("[%s] %s  %s  (%s)\n", e.ID, e.Title, e.Summary, e.DisplayDate())
	}
}
