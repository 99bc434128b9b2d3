package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/subx/internal/models"
)

var (
	_ list.Item = entryItem{}
)

// entryItem wraps [models.SubtitleEntry] to implement [list.Item].
type entryItem struct {
	entry models.SubtitleEntry
}

func (i entryItem) FilterValue() string { return i.entry.Summary }
func (i entryItem) Title() string       { return i.entry.Title }
func (i entryItem) Description() string {
	return fmt.Sprintf("%s • %s", i.entry.Summary, i.entry.DisplayDate())
}

func entryItems(entries []models.SubtitleEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	return items
}

func newEntryList(entries []models.SubtitleEntry, width, height int) list.Model {
	l := list.New(entryItems(entries), list.NewDefaultDelegate(), width, height)
	l.Title = "자막 목록"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("project", "projects")
	return l
}
