package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	toggle     key.Binding
	selectAll  key.Binding
	invert     key.Binding
	export     key.Binding
	migrate    key.Binding
	migrateOne key.Binding
	update     key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle:     key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle")),
		selectAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		invert:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invert")),
		export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		migrate:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "migrate selected")),
		migrateOne: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "migrate")),
		update:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run update")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.selectAll, k.export, k.migrate, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.selectAll, k.invert},
		{k.migrate, k.migrateOne, k.export},
		{k.update, k.quit},
	}
}
