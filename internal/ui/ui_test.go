package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/services"
	"github.com/desertthunder/subx/internal/session"
	"github.com/desertthunder/subx/internal/shared"
	"github.com/desertthunder/subx/internal/tasks"
	tu "github.com/desertthunder/subx/internal/testing"
)

type fixture struct {
	projects *tu.MockProjects
	users    *tu.MockUsers
	editor   *tu.MockEditor
	llm      *tu.MockLLM
	session  *session.Session
}

func newFixture() *fixture {
	return &fixture{
		projects: &tu.MockProjects{
			Projects: []models.Project{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}},
			NextID:   2,
		},
		users: &tu.MockUsers{Profile: models.UserProfile{
			ID:       "u1",
			Name:     "유튜브",
			Email:    "youtube@gmail.com",
			Password: "pw",
			Phone:    "010-0000-0000",
		}},
		editor:  &tu.MockEditor{Link: "https://www.youtube.com/embed/abc", Subtitles: "1\n00:00:00,000 --> 00:00:01,000\n안녕\n"},
		llm:     &tu.MockLLM{Checked: "**검사 완료**", Recommendation: models.Recommendation{Title: "추천", Tags: []string{"#a"}}, Translation: "Hello"},
		session: session.New(session.NewMemoryStore(session.TokenKey, "tok")),
	}
}

func (f *fixture) model(progress <-chan tasks.ProgressUpdate) *Model {
	logger := shared.NewLogger(io.Discard)
	r := tasks.NewReconciler(tasks.ReconcilerOpts{
		Session:  f.session,
		Projects: f.projects,
		Users:    f.users,
		Logger:   logger,
	})
	m := NewModel(context.Background(), Options{
		Reconciler: r,
		NewEditSession: func(id string) *tasks.EditSession {
			return tasks.NewEditSession(tasks.EditSessionOpts{ProjectID: id, Editor: f.editor, LLM: f.llm, Logger: logger})
		},
		Progress: progress,
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// exec runs cmd and feeds its result back into the model, as the bubbletea runtime would.
// Only commands created by this package are run; widget commands such as cursor blinks are not.
func exec(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(Msg)
	if !ok {
		t.Fatal("expected a ui.Msg")
	}
	m.Update(msg)
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyPress(k))
	}
	return cmd
}

func loaded(t *testing.T, f *fixture) *Model {
	m := f.model(nil)
	exec(t, m, m.load())
	return m
}

func TestMyPage(t *testing.T) {
	t.Run("renders profile and list", func(t *testing.T) {
		m := loaded(t, newFixture())

		view := m.View()
		for _, want := range []string{"유튜브", "youtube@gmail.com", "자막 1", "자막 2", "B"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
		if m.pending != 0 {
			t.Errorf("expected no pending commands, got %d", m.pending)
		}
	})

	t.Run("failed list is not shown as empty", func(t *testing.T) {
		f := newFixture()
		f.projects.ListErr = &services.APIError{StatusCode: 500, Kind: shared.ErrServerFault}
		m := loaded(t, f)

		view := m.View()
		if !strings.Contains(view, "불러오지 못했습니다") {
			t.Errorf("expected load failure notice:\n%s", view)
		}
		if strings.Contains(view, "등록된 프로젝트가 없습니다") {
			t.Error("failed list rendered as empty")
		}
	})

	t.Run("empty list", func(t *testing.T) {
		f := newFixture()
		f.projects.Projects = nil
		m := loaded(t, f)

		if view := m.View(); !strings.Contains(view, "등록된 프로젝트가 없습니다") {
			t.Errorf("expected empty notice:\n%s", view)
		}
	})

	t.Run("login required", func(t *testing.T) {
		f := newFixture()
		f.session = session.New(session.NewMemoryStore())
		m := loaded(t, f)

		if view := m.View(); !strings.Contains(view, services.LoginRequiredMessage) {
			t.Errorf("expected login prompt:\n%s", view)
		}
		if f.users.Fetches != 0 || f.projects.CallCount("list") != 0 {
			t.Error("expected no requests without a token")
		}

		cmd := press(m, "q")
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("progress updates", func(t *testing.T) {
		progress := make(chan tasks.ProgressUpdate, 1)
		m := newFixture().model(progress)

		progress <- tasks.ProgressUpdate{Message: "Projects loaded: 2"}
		exec(t, m, m.waitForProgress())
		if m.status != "Projects loaded: 2" {
			t.Errorf("unexpected status %q", m.status)
		}

		close(progress)
		exec(t, m, m.waitForProgress())
		if m.progress != nil || m.waitForProgress() != nil {
			t.Error("expected progress listener stopped")
		}
	})

	t.Run("logout", func(t *testing.T) {
		f := newFixture()
		m := loaded(t, f)

		exec(t, m, press(m, "L"))
		if f.session.LoggedIn(context.Background()) {
			t.Error("expected token removed")
		}
		if view := m.View(); !strings.Contains(view, services.LoginRequiredMessage) {
			t.Errorf("expected login prompt:\n%s", view)
		}
	})
}

func TestAddProject(t *testing.T) {
	t.Run("submits and refreshes", func(t *testing.T) {
		f := newFixture()
		m := loaded(t, f)

		press(m, "a")
		if m.view != AddProjectView {
			t.Fatalf("expected add dialog, got view %d", m.view)
		}
		press(m, "My Video", "tab", "https://youtu.be/abc")
		exec(t, m, press(m, "enter"))

		if m.view != MyPageView {
			t.Errorf("expected dialog closed, got view %d", m.view)
		}
		entries := m.reconciler.Store().Snapshot().Entries
		if len(entries) != 3 || entries[2].Summary != "My Video" || entries[2].Title != "자막 3" {
			t.Errorf("unexpected entries %+v", entries)
		}
		if len(m.entries.Items()) != 3 {
			t.Errorf("expected list widget synced, got %d items", len(m.entries.Items()))
		}
	})

	t.Run("failure keeps the dialog and shows the server message", func(t *testing.T) {
		f := newFixture()
		f.projects.CreateErr = &services.APIError{StatusCode: 400, Message: "이미 존재하는 프로젝트입니다.", Kind: shared.ErrServerValidation}
		m := loaded(t, f)

		press(m, "a", "A", "tab", "http://x")
		exec(t, m, press(m, "enter"))

		if m.view != AddProjectView {
			t.Errorf("expected dialog kept open, got view %d", m.view)
		}
		if view := m.View(); !strings.Contains(view, "이미 존재하는 프로젝트입니다.") {
			t.Errorf("expected alert:\n%s", view)
		}

		press(m, "enter")
		if alert := m.reconciler.Store().Snapshot().Alert; alert != "" {
			t.Errorf("expected alert dismissed, got %q", alert)
		}
		if m.form[0].Value() != "A" {
			t.Errorf("expected input kept, got %q", m.form[0].Value())
		}
	})

	t.Run("cancel", func(t *testing.T) {
		f := newFixture()
		m := loaded(t, f)

		press(m, "a", "draft", "esc")
		if m.view != MyPageView {
			t.Errorf("expected my page, got view %d", m.view)
		}
		if !m.reconciler.Store().Snapshot().Form.Empty() {
			t.Error("expected form reset")
		}
		if f.projects.CallCount("create") != 0 {
			t.Error("expected no create call")
		}
	})
}

func TestDeleteProject(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		f := newFixture()
		m := loaded(t, f)

		press(m, "j", "d")
		if m.view != ConfirmDeleteView || m.deleting == nil || m.deleting.ID != "2" {
			t.Fatalf("expected confirmation for project 2, got view %d %+v", m.view, m.deleting)
		}
		if view := m.View(); !strings.Contains(view, "'B'") {
			t.Errorf("expected project name in confirmation:\n%s", view)
		}

		exec(t, m, press(m, "y"))
		entries := m.reconciler.Store().Snapshot().Entries
		if len(entries) != 1 || entries[0].ID != "1" {
			t.Errorf("unexpected entries %+v", entries)
		}
	})

	t.Run("declined", func(t *testing.T) {
		f := newFixture()
		m := loaded(t, f)

		press(m, "d", "n")
		if m.view != MyPageView || m.deleting != nil {
			t.Errorf("expected confirmation closed, got view %d", m.view)
		}
		if f.projects.CallCount("delete") != 0 {
			t.Error("expected no delete call")
		}
	})
}

func TestProfileForm(t *testing.T) {
	f := newFixture()
	m := loaded(t, f)

	press(m, "p")
	if m.view != ProfileView {
		t.Fatalf("expected profile form, got view %d", m.view)
	}
	if m.profileForm[0].Value() != "유튜브" || m.profileForm[3].Value() != "010-0000-0000" {
		t.Error("expected form seeded from the profile")
	}

	press(m, "tab", "tab", "tab", "-1")
	exec(t, m, press(m, "enter"))

	if len(f.users.Updates) != 1 {
		t.Fatalf("expected one update, got %d", len(f.users.Updates))
	}
	update := f.users.Updates[0]
	if update.UserID != "u1" || update.Phone != "010-0000-0000-1" || update.Password != "pw" {
		t.Errorf("unexpected update %+v", update)
	}
	if m.view != MyPageView {
		t.Errorf("expected my page after save, got view %d", m.view)
	}
}

func TestEditView(t *testing.T) {
	f := newFixture()
	m := loaded(t, f)

	exec(t, m, press(m, "enter"))
	if m.view != EditView || m.edit == nil {
		t.Fatalf("expected edit view, got %d", m.view)
	}
	if !strings.Contains(m.View(), "https://www.youtube.com/embed/abc") {
		t.Errorf("expected video link:\n%s", m.View())
	}

	t.Run("LLM calls need subtitles", func(t *testing.T) {
		exec(t, m, press(m, "c"))
		if m.edit.notice == "" {
			t.Error("expected notice for empty subtitles")
		}
		if len(f.llm.Contents) != 0 {
			t.Error("expected no LLM call")
		}
	})

	t.Run("generate fills the editor", func(t *testing.T) {
		exec(t, m, press(m, "g"))
		if got := m.edit.textarea.Value(); !strings.Contains(got, "안녕") {
			t.Errorf("expected generated subtitles in textarea, got %q", got)
		}
	})

	t.Run("check recommend translate", func(t *testing.T) {
		exec(t, m, press(m, "c"))
		exec(t, m, press(m, "m"))
		press(m, "right")
		exec(t, m, press(m, "t"))

		state := m.edit.session.State()
		if state.Checked != "**검사 완료**" || state.Recommended.Title != "추천" {
			t.Errorf("unexpected state %+v", state)
		}
		if state.Language != "es" || state.Translation != "Hello" {
			t.Errorf("expected Spanish translation, got %q %q", state.Language, state.Translation)
		}
		view := m.View()
		for _, want := range []string{"검사 결과", "#a", "[스페인어]", "Hello"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("save without storage", func(t *testing.T) {
		exec(t, m, press(m, "s"))
		if !strings.Contains(m.edit.notice, "no draft storage") {
			t.Errorf("unexpected notice %q", m.edit.notice)
		}
	})

	t.Run("open video", func(t *testing.T) {
		var opened string
		m.openBrowser = func(link string) error {
			opened = link
			return nil
		}
		press(m, "o")
		if opened != "https://www.youtube.com/embed/abc" {
			t.Errorf("unexpected link opened %q", opened)
		}
	})

	t.Run("back", func(t *testing.T) {
		press(m, "esc")
		if m.view != MyPageView || m.edit != nil {
			t.Errorf("expected my page, got view %d", m.view)
		}
	})
}

func TestEditViewClose(t *testing.T) {
	t.Run("cancels requests in flight", func(t *testing.T) {
		f := newFixture()
		f.editor.Block = make(chan struct{})
		f.editor.Started = make(chan string, 1)
		m := loaded(t, f)

		exec(t, m, press(m, "enter"))
		projectID := m.edit.entry.ID

		cmd := press(m, "g")
		if cmd == nil {
			t.Fatal("expected a generate command")
		}
		done := make(chan tea.Msg, 1)
		go func() { done <- cmd() }()

		select {
		case <-f.editor.Started:
		case <-time.After(time.Second):
			t.Fatal("generate never reached the editor")
		}
		press(m, "esc")
		if m.view != MyPageView || m.edit != nil {
			t.Fatalf("expected my page, got view %d", m.view)
		}

		select {
		case msg := <-done:
			r := msg.(Msg).data.(editResult)
			if r.projectID != projectID || !errors.Is(r.err, context.Canceled) {
				t.Errorf("expected cancelled result for %q, got %+v", projectID, r)
			}
			m.Update(msg)
			if m.edit != nil {
				t.Error("expected late result to be dropped")
			}
		case <-time.After(time.Second):
			t.Fatal("generate was not cancelled when the view closed")
		}
		if len(f.editor.Generated) != 0 {
			t.Errorf("expected no generation, got %v", f.editor.Generated)
		}
	})

	t.Run("drops results for another project", func(t *testing.T) {
		m := loaded(t, newFixture())
		exec(t, m, press(m, "enter"))

		m.Update(editDoneMsg("other", tasks.SaveDraft, errors.New("boom")))
		if m.edit.notice != "" {
			t.Errorf("expected no notice from another project, got %q", m.edit.notice)
		}

		m.Update(editDoneMsg(m.edit.entry.ID, tasks.SaveDraft, nil))
		if m.edit.notice != "임시 저장되었습니다." {
			t.Errorf("expected save notice, got %q", m.edit.notice)
		}
	})

	t.Run("logout cancels the open view", func(t *testing.T) {
		m := loaded(t, newFixture())
		exec(t, m, press(m, "enter"))
		ctx := m.edit.ctx

		m.Update(loggedOutMsg(nil))
		if m.edit != nil || ctx.Err() == nil {
			t.Error("expected edit view closed and its context cancelled")
		}
	})
}
