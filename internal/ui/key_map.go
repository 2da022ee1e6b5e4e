package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the dashboard.
type keyMap struct {
	enter   key.Binding
	back    key.Binding
	create  key.Binding
	remove  key.Binding
	view    key.Binding
	refresh key.Binding
	yes     key.Binding
	no      key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		create:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new folder")),
		remove:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		view:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.enter, k.back, k.refresh},
		{k.create, k.remove, k.view},
		{k.yes, k.no, k.quit},
	}
}

// recorderKeyMap defines the bindings for [RecorderModel].
type recorderKeyMap struct {
	pause    key.Binding
	resume   key.Binding
	stop     key.Binding
	language key.Binding
	quit     key.Binding
}

func newRecorderKeyMap() recorderKeyMap {
	return recorderKeyMap{
		pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		resume:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record/resume")),
		stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		language: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "language")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
