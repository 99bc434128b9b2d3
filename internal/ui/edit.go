package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/services"
	"github.com/desertthunder/subx/internal/tasks"
)

// editModel is the edit view of one project: video link, editable subtitles and LLM results.
//
// Results live in the [tasks.EditSession]; the textarea is pushed to the session when editing ends
// and before each LLM call. Requests run on ctx, which is cancelled when the view closes.
type editModel struct {
	ctx      context.Context
	cancel   context.CancelFunc
	session  *tasks.EditSession
	entry    models.SubtitleEntry
	textarea textarea.Model
	lang     int
	notice   string
}

func newEditModel(ctx context.Context, session *tasks.EditSession, entry models.SubtitleEntry, width, height int) *editModel {
	state := session.State()

	ta := textarea.New()
	ta.Placeholder = "자막을 생성하거나 직접 입력하세요."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetValue(state.Subtitles)

	ctx, cancel := context.WithCancel(ctx)
	e := &editModel{ctx: ctx, cancel: cancel, session: session, entry: entry, textarea: ta}
	for i, l := range models.Languages {
		if l.Code == state.Language {
			e.lang = i
		}
	}
	e.setSize(width, height)
	return e
}

func (e *editModel) setSize(width, height int) {
	if width > 8 {
		e.textarea.SetWidth(width - 4)
	}
	if height > 0 {
		e.textarea.SetHeight(max(height/3, 5))
	} else {
		e.textarea.SetHeight(10)
	}
}

func (e *editModel) init() tea.Cmd {
	return e.run(tasks.LoadLink, func(ctx context.Context) error {
		_, err := e.session.LoadLink(ctx)
		return err
	})
}

func (e *editModel) language() models.Language {
	return models.Languages[e.lang]
}

func (e *editModel) run(op tasks.Operation, fn func(context.Context) error) tea.Cmd {
	e.notice = ""
	ctx, projectID := e.ctx, e.entry.ID
	return func() tea.Msg {
		return editDoneMsg(projectID, op, fn(ctx))
	}
}

// close cancels every request still in flight for this view.
func (e *editModel) close() {
	e.cancel()
}

// done reacts to a finished operation. Gateway failures are already recorded in the session state.
func (e *editModel) done(r editResult) {
	switch {
	case r.err != nil:
		if e.session.State().Err == "" {
			e.notice = services.UserMessage(r.err, r.err.Error())
		}
	case r.op == tasks.GenerateSubtitles:
		e.textarea.SetValue(e.session.State().Subtitles)
	case r.op == tasks.SaveDraft:
		e.notice = "임시 저장되었습니다."
	}
}

// commit pushes the textarea into the session.
func (e *editModel) commit() {
	e.session.SetSubtitles(e.textarea.Value())
}

// handleKeys returns closed=true when the user leaves the edit view.
func (e *editModel) handleKeys(msg tea.KeyMsg, keys keyMap, open func(string) error) (tea.Cmd, bool) {
	if e.textarea.Focused() {
		if key.Matches(msg, keys.back) {
			e.textarea.Blur()
			e.commit()
			return nil, false
		}
		var cmd tea.Cmd
		e.textarea, cmd = e.textarea.Update(msg)
		return cmd, false
	}

	switch {
	case key.Matches(msg, keys.back):
		e.commit()
		return nil, true
	case key.Matches(msg, keys.quit):
		return tea.Quit, false
	case key.Matches(msg, keys.enter) || msg.String() == "i":
		return e.textarea.Focus(), false
	case key.Matches(msg, keys.generate):
		return e.run(tasks.GenerateSubtitles, func(ctx context.Context) error {
			_, err := e.session.Generate(ctx)
			return err
		}), false
	case key.Matches(msg, keys.check):
		e.commit()
		return e.run(tasks.CheckSubtitles, func(ctx context.Context) error {
			_, err := e.session.Check(ctx)
			return err
		}), false
	case key.Matches(msg, keys.recommend):
		e.commit()
		return e.run(tasks.RecommendTitle, func(ctx context.Context) error {
			_, err := e.session.Recommend(ctx)
			return err
		}), false
	case key.Matches(msg, keys.translate):
		e.commit()
		code := e.language().Code
		return e.run(tasks.TranslateSubtitles, func(ctx context.Context) error {
			_, err := e.session.Translate(ctx, code)
			return err
		}), false
	case key.Matches(msg, keys.save):
		e.commit()
		return e.run(tasks.SaveDraft, func(ctx context.Context) error {
			_, err := e.session.Save(ctx)
			return err
		}), false
	case key.Matches(msg, keys.language):
		step := 1
		if s := msg.String(); s == "left" || s == "h" {
			step = -1
		}
		e.lang = (e.lang + step + len(models.Languages)) % len(models.Languages)
	case key.Matches(msg, keys.open):
		link := e.session.State().Link
		if link == "" || open == nil {
			e.notice = "영상 링크가 없습니다."
			return nil, false
		}
		if err := open(link); err != nil {
			e.notice = err.Error()
		}
	}
	return nil, false
}

func (e *editModel) updateWidgets(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.textarea, cmd = e.textarea.Update(msg)
	return cmd
}

func (e *editModel) view(spin string, h help.Model, keys keyMap) string {
	s := e.session.State()

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("%s · %s", e.entry.Title, e.entry.Summary)))
	b.WriteString("\n")

	switch {
	case s.LoadingLink:
		fmt.Fprintf(&b, "%s 영상 링크를 불러오는 중...\n", spin)
	case s.Link != "":
		fmt.Fprintf(&b, "%s%s\n", styles.label.Render("영상"), s.Link)
	}

	section := func(name string, loading bool) {
		b.WriteString("\n")
		b.WriteString(styles.section.Render(name))
		if loading {
			b.WriteString(" " + spin)
		}
		b.WriteString("\n")
	}

	section("자막", s.Generating)
	b.WriteString(e.textarea.View())
	b.WriteString("\n")

	if s.Checking || s.Checked != "" {
		section("검사 결과", s.Checking)
		b.WriteString(s.Checked)
		b.WriteString("\n")
	}

	if s.Recommending || s.Recommended.Title != "" {
		section("추천", s.Recommending)
		if s.Recommended.Title != "" {
			fmt.Fprintf(&b, "%s%s\n", styles.label.Render("제목"), s.Recommended.Title)
			fmt.Fprintf(&b, "%s%s\n", styles.label.Render("해시태그"), strings.Join(s.Recommended.Tags, " "))
		}
	}

	section("번역", s.Translating)
	labels := make([]string, len(models.Languages))
	for i, l := range models.Languages {
		if i == e.lang {
			labels[i] = styles.ok.Render("[" + l.Label + "]")
		} else {
			labels[i] = styles.help.Render(l.Label)
		}
	}
	b.WriteString(strings.Join(labels, " "))
	b.WriteString("\n")
	if s.Translation != "" {
		b.WriteString(s.Translation)
		b.WriteString("\n")
	}

	if s.Err != "" {
		fmt.Fprintf(&b, "\n%s\n", styles.err.Render(s.Err))
	}
	if e.notice != "" {
		fmt.Fprintf(&b, "\n%s\n", styles.warn.Render(e.notice))
	}

	var bindings []key.Binding
	if e.textarea.Focused() {
		bindings = []key.Binding{key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done editing"))}
	} else {
		edit := key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "edit subtitles"))
		bindings = append([]key.Binding{edit}, keys.editKeys()...)
	}
	fmt.Fprintf(&b, "\n%s", h.ShortHelpView(bindings))
	return b.String()
}
