package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/services"
	"github.com/desertthunder/subx/internal/session"
	"github.com/desertthunder/subx/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Alert texts used when the server gives no message.
const (
	ServerErrorMessage   = "서버 오류가 발생했습니다."
	ProfileUpdateFailure = "회원정보 수정 실패. 다시 시도해 주세요."
	MissingProjectID     = "프로젝트 ID가 없습니다. 목록을 새로고침해 주세요."
)

// Reconciler applies server results to a [Store].
//
// Each call takes a context; a result that arrives after its context is done is dropped without touching the store.
type Reconciler struct {
	store    *Store
	session  *session.Session
	projects services.ProjectGateway
	users    services.UserGateway
	logger   *log.Logger
	progress chan<- ProgressUpdate
}

// ReconcilerOpts holds the dependencies of a [Reconciler]. Session and Progress are optional.
type ReconcilerOpts struct {
	Store    *Store
	Session  *session.Session
	Projects services.ProjectGateway
	Users    services.UserGateway
	Logger   *log.Logger
	Progress chan<- ProgressUpdate
}

// NewReconciler creates a [Reconciler]. A nil Store gets a fresh one.
func NewReconciler(opts ReconcilerOpts) *Reconciler {
	if opts.Store == nil {
		opts.Store = NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Reconciler{
		store:    opts.Store,
		session:  opts.Session,
		projects: opts.Projects,
		users:    opts.Users,
		logger:   opts.Logger,
		progress: opts.Progress,
	}
}

// Store returns the view state the reconciler writes to.
func (r *Reconciler) Store() *Store { return r.store }

// requireLogin moves the view to [PhaseLoginRequired] when no token is stored, before any request is made.
func (r *Reconciler) requireLogin(ctx context.Context) error {
	if r.session == nil || r.session.LoggedIn(ctx) {
		return nil
	}
	r.store.SetPhase(PhaseLoginRequired)
	return shared.ErrLoginRequired
}

func isAuthFailure(err error) bool {
	return errors.Is(err, shared.ErrLoginRequired) || errors.Is(err, shared.ErrAuth)
}

// Load fetches the profile and the project list concurrently.
//
// Each slice is stored as soon as it resolves. The phase becomes [PhaseReady] only when both succeed.
// Failures are logged and not alerted; a failed list is told apart from an empty one by ProjectsStatus.
func (r *Reconciler) Load(ctx context.Context) error {
	if err := r.requireLogin(ctx); err != nil {
		return err
	}

	r.store.update(func(st *Snapshot) {
		st.Phase = PhaseLoading
		st.ProfileStatus = StatusLoading
		st.ProjectsStatus = StatusLoading
	})

	var g errgroup.Group
	g.Go(func() error {
		sendProgress(r.progress, loadingUpdate(LoadProfile, 0, 1))
		profile, err := r.users.FetchProfile(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			r.store.SetProfileStatus(StatusError)
			r.logger.Error("failed to load profile", "error", err)
			sendProgress(r.progress, failedUpdate(LoadProfile, err))
			return fmt.Errorf("profile: %w", err)
		}
		r.store.SetProfile(profile)
		sendProgress(r.progress, profileLoadedUpdate(1, 1, profile))
		return nil
	})
	g.Go(func() error {
		sendProgress(r.progress, loadingUpdate(LoadProjects, 0, 1))
		projects, err := r.projects.ListProjects(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			r.store.SetProjectsStatus(StatusError)
			r.logger.Error("failed to load projects", "error", err)
			sendProgress(r.progress, failedUpdate(LoadProjects, err))
			return fmt.Errorf("projects: %w", err)
		}
		r.store.SetProjects(projects)
		sendProgress(r.progress, projectsLoadedUpdate(1, 1, projects))
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	switch {
	case err == nil:
		r.store.SetPhase(PhaseReady)
	case isAuthFailure(err):
		r.store.SetPhase(PhaseLoginRequired)
	default:
		r.store.SetPhase(PhaseError)
	}
	return err
}

// SetForm records the add-project dialog input.
func (r *Reconciler) SetForm(title, url string) {
	r.store.SetForm(models.ModalFormState{Title: title, URL: url})
}

// CancelForm closes the add-project dialog without submitting.
func (r *Reconciler) CancelForm() {
	r.store.ResetForm()
}

// Create submits the add-project form.
//
// On success the list is re-fetched; if that fails the created project is appended locally.
// The form is reset only on success.
func (r *Reconciler) Create(ctx context.Context) (models.Project, error) {
	form := r.store.Snapshot().Form
	if err := form.Validate(); err != nil {
		r.store.SetAlert(err.Error())
		return models.Project{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := r.requireLogin(ctx); err != nil {
		r.store.SetAlert(services.UserMessage(err, ServerErrorMessage))
		return models.Project{}, err
	}

	project, err := r.projects.CreateProject(ctx, form.Title, form.URL)
	if ctx.Err() != nil {
		return models.Project{}, ctx.Err()
	}
	if err != nil {
		r.fail(CreateProject, err, ServerErrorMessage)
		return models.Project{}, err
	}
	sendProgress(r.progress, projectCreatedUpdate(project))

	r.refetch(ctx, CreateProject, func() { r.store.AppendEntry(project) })
	if ctx.Err() != nil {
		return project, ctx.Err()
	}

	r.store.ResetForm()
	sendProgress(r.progress, doneUpdate(CreateProject, project.Title))
	return project, nil
}

// Delete removes the project with id on the server, then locally.
//
// On failure the list is left as it was and the alert holds the server's message.
// An entry without a server id cannot be deleted until the list is re-fetched.
func (r *Reconciler) Delete(ctx context.Context, id string) error {
	if id == "" {
		r.store.SetAlert(MissingProjectID)
		return fmt.Errorf("%w: project id is required", shared.ErrInvalidInput)
	}
	entry, ok := r.store.Entry(id)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrProjectNotFound, id)
	}
	if err := r.requireLogin(ctx); err != nil {
		r.store.SetAlert(services.UserMessage(err, ServerErrorMessage))
		return err
	}

	project := models.Project{ID: entry.ID, Title: entry.Summary}
	err := r.projects.DeleteProject(ctx, project)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		r.fail(DeleteProject, err, ServerErrorMessage)
		return err
	}
	sendProgress(r.progress, projectDeletedUpdate(project))

	r.store.RemoveEntry(id)
	r.refetch(ctx, DeleteProject, nil)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	sendProgress(r.progress, doneUpdate(DeleteProject, project.Title))
	return nil
}

// UpdateProfile replaces the profile on the server and re-fetches it.
func (r *Reconciler) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	if err := update.Validate(); err != nil {
		r.store.SetAlert(ProfileUpdateFailure)
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := r.requireLogin(ctx); err != nil {
		r.store.SetAlert(services.UserMessage(err, ProfileUpdateFailure))
		return err
	}

	err := r.users.UpdateProfile(ctx, update)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		r.fail(UpdateProfile, err, ProfileUpdateFailure)
		return err
	}

	profile, err := r.users.FetchProfile(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		r.logger.Warn("failed to re-fetch profile after update", "error", err)
		profile = models.UserProfile{ID: update.UserID, Name: update.Name, Email: update.Email, Password: update.Password, Phone: update.Phone}
	}
	r.store.SetProfile(profile)

	sendProgress(r.progress, doneUpdate(UpdateProfile, profile.Name))
	return nil
}

// Logout forgets the token and the loaded view state.
func (r *Reconciler) Logout(ctx context.Context) error {
	if r.session != nil {
		if err := r.session.Logout(ctx); err != nil {
			return err
		}
	}
	r.store.Reset(PhaseLoginRequired)
	return nil
}

// DismissAlert clears the current alert.
func (r *Reconciler) DismissAlert() {
	r.store.ClearAlert()
}

// refetch reloads the project list after a mutation. When the reload fails, fallback (if any) patches the list locally.
func (r *Reconciler) refetch(ctx context.Context, op Operation, fallback func()) {
	sendProgress(r.progress, refetchUpdate(op))

	projects, err := r.projects.ListProjects(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		r.logger.Warn("failed to re-fetch projects", "op", op, "error", err)
		if fallback != nil {
			fallback()
		}
		return
	}
	r.store.SetProjects(projects)
}

// fail records a user-initiated failure: logged, alerted, and reported on the progress channel.
func (r *Reconciler) fail(op Operation, err error, fallback string) {
	r.logger.Error("operation failed", "op", op, "error", err)
	r.store.SetAlert(services.UserMessage(err, fallback))
	if isAuthFailure(err) {
		r.store.SetPhase(PhaseLoginRequired)
	}
	sendProgress(r.progress, failedUpdate(op, err))
}
