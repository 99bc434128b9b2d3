package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	tab       key.Binding
	yes       key.Binding
	no        key.Binding
	add       key.Binding
	remove    key.Binding
	profile   key.Binding
	refresh   key.Binding
	logout    key.Binding
	generate  key.Binding
	check     key.Binding
	recommend key.Binding
	translate key.Binding
	language  key.Binding
	save      key.Binding
	open      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:       key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		remove:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		profile:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		generate:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),
		check:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "check")),
		recommend: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "recommend")),
		translate: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "translate")),
		language:  key.NewBinding(key.WithKeys("left", "right", "h", "l"), key.WithHelp("←/→", "language")),
		save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save draft")),
		open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open video")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.add, k.remove, k.profile, k.refresh},
		{k.generate, k.check, k.recommend, k.translate, k.save},
		{k.back, k.logout, k.quit},
	}
}

// myPageKeys are shown under the project list.
func (k keyMap) myPageKeys() []key.Binding {
	return []key.Binding{k.enter, k.add, k.remove, k.profile, k.refresh, k.logout, k.quit}
}

// editKeys are shown in the edit view while the textarea is not focused.
func (k keyMap) editKeys() []key.Binding {
	return []key.Binding{k.generate, k.check, k.recommend, k.translate, k.language, k.save, k.open, k.back}
}
