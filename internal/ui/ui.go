package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/services"
	"github.com/desertthunder/subx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MyPageView ViewState = iota
	AddProjectView
	ConfirmDeleteView
	ProfileView
	EditView
)

// EditSessionFactory opens the edit panel of a project. It may restore a saved draft.
type EditSessionFactory func(projectID string) *tasks.EditSession

// Options holds the dependencies of a [Model]. Progress and OpenBrowser are optional.
type Options struct {
	Reconciler     *tasks.Reconciler
	NewEditSession EditSessionFactory
	Progress       <-chan tasks.ProgressUpdate
	OpenBrowser    func(link string) error
}

// Model represents the TUI application state.
//
// Server-backed state lives in the reconciler's [tasks.Store]; the model only keeps widgets and navigation.
type Model struct {
	ctx         context.Context
	view        ViewState
	reconciler  *tasks.Reconciler
	newEdit     EditSessionFactory
	openBrowser func(string) error
	progress    <-chan tasks.ProgressUpdate
	status      string
	pending     int
	width       int
	height      int
	entries     list.Model
	spinner     spinner.Model
	form        []textinput.Model
	profileForm []textinput.Model
	focus       int
	deleting    *models.SubtitleEntry
	edit        *editModel
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ok

	return &Model{
		ctx:         ctx,
		view:        MyPageView,
		reconciler:  opts.Reconciler,
		newEdit:     opts.NewEditSession,
		openBrowser: opts.OpenBrowser,
		progress:    opts.Progress,
		entries:     newEntryList(nil, 0, 0),
		spinner:     s,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init loads the profile and the project list and starts listening for progress.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(), m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.entries.SetSize(msg.Width-4, max(msg.Height-14, 5))
		if m.edit != nil {
			m.edit.setSize(msg.Width, msg.Height)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.kind {
	case MsgLoaded:
		m.pending--
	case MsgProjectCreated:
		m.pending--
		if msg.Err() == nil {
			m.view = MyPageView
			m.form = nil
		}
	case MsgProjectDeleted:
		m.pending--
		m.deleting = nil
	case MsgProfileUpdated:
		m.pending--
		if msg.Err() == nil {
			m.view = MyPageView
			m.profileForm = nil
		}
	case MsgLoggedOut:
		m.pending--
		m.view = MyPageView
		m.closeEdit()
	case MsgEditDone:
		// Results of a closed view, or of another project's view, are dropped.
		if r := msg.data.(editResult); m.edit != nil && r.projectID == m.edit.entry.ID {
			m.edit.done(r)
		}
	case MsgProgressUpdate:
		m.status = msg.data.(tasks.ProgressUpdate).Message
		cmd = m.waitForProgress()
	case MsgProgressClosed:
		m.progress = nil
	}

	m.syncEntries()
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	snap := m.reconciler.Store().Snapshot()
	if snap.Alert != "" {
		if key.Matches(msg, m.keys.enter, m.keys.back) || msg.String() == " " {
			m.reconciler.DismissAlert()
		}
		return m, nil
	}

	if snap.Phase == tasks.PhaseLoginRequired {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.refresh):
			return m, m.load()
		}
		return m, nil
	}

	switch m.view {
	case AddProjectView:
		return m.handleFormKeys(msg)
	case ConfirmDeleteView:
		return m.handleConfirmKeys(msg)
	case ProfileView:
		return m.handleProfileKeys(msg)
	case EditView:
		cmd, closed := m.edit.handleKeys(msg, m.keys, m.openBrowser)
		if closed {
			m.closeEdit()
			m.view = MyPageView
		}
		return m, cmd
	}
	return m.handleMyPageKeys(msg, snap)
}

func (m *Model) handleMyPageKeys(msg tea.KeyMsg, snap tasks.Snapshot) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.add):
		return m, m.openForm(snap.Form)
	case key.Matches(msg, m.keys.remove):
		if e, ok := m.selected(); ok {
			m.deleting = &e
			m.view = ConfirmDeleteView
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if e, ok := m.selected(); ok && m.newEdit != nil {
			return m, m.openEdit(e)
		}
		return m, nil
	case key.Matches(msg, m.keys.profile):
		if snap.Profile != nil {
			return m, m.openProfile(*snap.Profile)
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.load()
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.reconciler.CancelForm()
		m.form = nil
		m.view = MyPageView
		return m, nil
	case key.Matches(msg, m.keys.tab):
		return m, m.cycleFocus(m.form, msg.String() == "shift+tab")
	case msg.Type == tea.KeyEnter:
		if m.pending > 0 {
			return m, nil
		}
		m.reconciler.SetForm(m.form[0].Value(), m.form[1].Value())
		return m, m.create()
	}
	return m.updateInputs(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = MyPageView
		if m.deleting == nil {
			return m, nil
		}
		return m, m.remove(m.deleting.ID)
	case key.Matches(msg, m.keys.no, m.keys.back, m.keys.quit):
		m.deleting = nil
		m.view = MyPageView
	}
	return m, nil
}

func (m *Model) handleProfileKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.profileForm = nil
		m.view = MyPageView
		return m, nil
	case key.Matches(msg, m.keys.tab):
		return m, m.cycleFocus(m.profileForm, msg.String() == "shift+tab")
	case msg.Type == tea.KeyEnter:
		if m.pending > 0 {
			return m, nil
		}
		return m, m.updateProfile(m.profileUpdate())
	}
	return m.updateInputs(msg)
}

// updateInputs forwards msg to whichever widget owns the current view.
func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var inputs []textinput.Model
	switch m.view {
	case AddProjectView:
		inputs = m.form
	case ProfileView:
		inputs = m.profileForm
	case EditView:
		if m.edit != nil {
			return m, m.edit.updateWidgets(msg)
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.entries, cmd = m.entries.Update(msg)
		return m, cmd
	}

	cmds := make([]tea.Cmd, len(inputs))
	for i := range inputs {
		inputs[i], cmds[i] = inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) cycleFocus(inputs []textinput.Model, backwards bool) tea.Cmd {
	if len(inputs) == 0 {
		return nil
	}
	if backwards {
		m.focus = (m.focus + len(inputs) - 1) % len(inputs)
	} else {
		m.focus = (m.focus + 1) % len(inputs)
	}

	var cmd tea.Cmd
	for i := range inputs {
		if i == m.focus {
			cmd = inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) selected() (models.SubtitleEntry, bool) {
	item, ok := m.entries.SelectedItem().(entryItem)
	if !ok {
		return models.SubtitleEntry{}, false
	}
	return item.entry, true
}

// syncEntries copies the store's entries into the list widget, keeping the cursor in range.
func (m *Model) syncEntries() {
	entries := m.reconciler.Store().Snapshot().Entries
	m.entries.SetItems(entryItems(entries))
	if idx := m.entries.Index(); idx >= len(entries) && len(entries) > 0 {
		m.entries.Select(len(entries) - 1)
	}
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(value)
	ti.CharLimit = 256
	ti.Width = 40
	return ti
}

// openForm shows the add-project dialog, seeded with any unsubmitted input.
func (m *Model) openForm(form models.ModalFormState) tea.Cmd {
	m.form = []textinput.Model{
		newInput("프로젝트 이름", form.Title),
		newInput("https://www.youtube.com/watch?v=...", form.URL),
	}
	m.focus = 0
	m.view = AddProjectView
	return m.form[0].Focus()
}

func (m *Model) openProfile(p models.UserProfile) tea.Cmd {
	password := newInput("비밀번호", p.Password)
	password.EchoMode = textinput.EchoPassword

	m.profileForm = []textinput.Model{
		newInput("이름", p.Name),
		newInput("이메일", p.Email),
		password,
		newInput("전화번호", p.Phone),
	}
	m.focus = 0
	m.view = ProfileView
	return m.profileForm[0].Focus()
}

// profileUpdate builds a full replacement from the current profile and the form.
func (m *Model) profileUpdate() models.ProfileUpdate {
	var current models.UserProfile
	if p := m.reconciler.Store().Snapshot().Profile; p != nil {
		current = *p
	}
	update := models.UpdateFromProfile(current)
	update.Name = m.profileForm[0].Value()
	update.Email = m.profileForm[1].Value()
	update.Password = m.profileForm[2].Value()
	update.Phone = m.profileForm[3].Value()
	return update
}

func (m *Model) openEdit(e models.SubtitleEntry) tea.Cmd {
	m.closeEdit()
	m.edit = newEditModel(m.ctx, m.newEdit(e.ID), e, m.width, m.height)
	m.view = EditView
	return m.edit.init()
}

func (m *Model) closeEdit() {
	if m.edit != nil {
		m.edit.close()
		m.edit = nil
	}
}

func (m *Model) load() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return loadedMsg(m.reconciler.Load(m.ctx))
	}
}

func (m *Model) create() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		project, err := m.reconciler.Create(m.ctx)
		return projectCreatedMsg(project, err)
	}
}

func (m *Model) remove(id string) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return projectDeletedMsg(id, m.reconciler.Delete(m.ctx, id))
	}
}

func (m *Model) updateProfile(update models.ProfileUpdate) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return profileUpdatedMsg(m.reconciler.UpdateProfile(m.ctx, update))
	}
}

func (m *Model) logout() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return loggedOutMsg(m.reconciler.Logout(m.ctx))
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	if m.progress == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-m.progress
		if !ok {
			return progressClosedMsg()
		}
		return progressUpdateMsg(update)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	snap := m.reconciler.Store().Snapshot()

	var body string
	if snap.Phase == tasks.PhaseLoginRequired {
		body = m.renderLoginRequired()
	} else {
		switch m.view {
		case AddProjectView:
			body = m.renderForm()
		case ConfirmDeleteView:
			body = m.renderConfirm()
		case ProfileView:
			body = m.renderProfileForm()
		case EditView:
			body = m.edit.view(m.spinner.View(), m.help, m.keys)
		default:
			body = m.renderMyPage(snap)
		}
	}

	if snap.Alert != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", m.renderAlert(snap.Alert))
	}
	return body
}

func (m *Model) renderLoginRequired() string {
	title := styles.title.Render("마이페이지")
	msg := styles.err.Render(services.LoginRequiredMessage)
	hint := "subx auth login --token <token> 으로 로그인한 뒤 다시 불러오세요."
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, msg, hint, m.help.ShortHelpView([]key.Binding{m.keys.refresh, m.keys.quit}))
}

func (m *Model) renderMyPage(snap tasks.Snapshot) string {
	var b strings.Builder
	b.WriteString(styles.title.Render("마이페이지"))
	b.WriteString("\n")

	switch snap.ProfileStatus {
	case tasks.StatusLoading:
		fmt.Fprintf(&b, "%s 회원정보를 불러오는 중...\n", m.spinner.View())
	case tasks.StatusError:
		b.WriteString(styles.warn.Render("회원정보를 불러오지 못했습니다."))
		b.WriteString("\n")
	default:
		if snap.Profile != nil {
			fmt.Fprintf(&b, "%s%s\n", styles.label.Render("이름"), snap.Profile.Name)
			fmt.Fprintf(&b, "%s%s\n", styles.label.Render("이메일"), snap.Profile.Email)
		}
	}
	b.WriteString("\n")

	switch {
	case snap.ProjectsStatus == tasks.StatusLoading:
		fmt.Fprintf(&b, "%s 자막 목록을 불러오는 중...\n", m.spinner.View())
	case snap.ProjectsStatus == tasks.StatusError:
		b.WriteString(styles.warn.Render("자막 목록을 불러오지 못했습니다. r 키로 다시 시도하세요."))
		b.WriteString("\n")
	case snap.Empty():
		b.WriteString(styles.help.Render("등록된 프로젝트가 없습니다. a 키로 추가하세요."))
		b.WriteString("\n")
	default:
		b.WriteString(m.entries.View())
		b.WriteString("\n")
	}

	if m.status != "" {
		fmt.Fprintf(&b, "\n%s", styles.help.Render(m.status))
	}
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView(m.keys.myPageKeys()))
	return b.String()
}

func (m *Model) renderForm() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("프로젝트 추가"))
	b.WriteString("\n")
	for i, label := range []string{"제목", "링크"} {
		fmt.Fprintf(&b, "%s%s\n", styles.label.Render(label), m.form[i].View())
	}
	if m.pending > 0 {
		fmt.Fprintf(&b, "\n%s 등록 중...", m.spinner.View())
	}

	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit"))
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView([]key.Binding{submit, m.keys.tab, m.keys.back}))
	return styles.modal.Render(b.String())
}

func (m *Model) renderConfirm() string {
	if m.deleting == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("'%s'을(를) 삭제할까요?", m.deleting.Summary))
	info := fmt.Sprintf("%s (ID: %s)", m.deleting.Title, m.deleting.ID)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return styles.modal.Render(fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView))
}

func (m *Model) renderProfileForm() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("회원정보 수정"))
	b.WriteString("\n")
	for i, label := range []string{"이름", "이메일", "비밀번호", "전화번호"} {
		fmt.Fprintf(&b, "%s%s\n", styles.label.Render(label), m.profileForm[i].View())
	}
	if m.pending > 0 {
		fmt.Fprintf(&b, "\n%s 저장 중...", m.spinner.View())
	}

	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save"))
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView([]key.Binding{submit, m.keys.tab, m.keys.back}))
	return b.String()
}

func (m *Model) renderAlert(alert string) string {
	dismiss := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ok"))
	return styles.alert.Render(fmt.Sprintf("%s\n\n%s", styles.err.Render(alert), m.help.ShortHelpView([]key.Binding{dismiss})))
}
