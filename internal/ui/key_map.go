package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next    key.Binding
	mode    key.Binding
	submit  key.Binding
	save    key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		mode:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "switch mode")),
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate")),
		save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new prompt")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.mode, k.submit},
		{k.save, k.restart, k.quit},
	}
}
