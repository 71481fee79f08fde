package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab    key.Binding
	PrevTab    key.Binding
	Search     key.Binding
	Add        key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Register   key.Binding
	Unregister key.Binding
	Assign     key.Binding
	Save       key.Binding
	Load       key.Binding
	Export     key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab:    key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next tab")),
		PrevTab:    key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev tab")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Register:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "register")),
		Unregister: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unregister")),
		Assign:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "assign")),
		Save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Load:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "load")),
		Export:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export csv")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.NextTab, k.Search, k.Add, k.Edit, k.Delete, k.Register, k.Unregister,
		k.Assign, k.Save, k.Load, k.Export, k.Quit}
}
