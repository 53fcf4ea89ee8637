package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Reject  key.Binding
	Accept  key.Binding
	Flip    key.Binding
	Related key.Binding
	Open    key.Binding
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Back    key.Binding
	Retry   key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Reject:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pass")),
		Accept:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "keep")),
		Flip:    key.NewBinding(key.WithKeys(" ", "f"), key.WithHelp("space", "flip")),
		Related: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "related")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Back:    key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// cardHelp lists the bindings shown under a presenting card.
func (k keyMap) cardHelp(hasRelated bool) []key.Binding {
	out := []key.Binding{k.Reject, k.Accept, k.Flip}
	if hasRelated {
		out = append(out, k.Related, k.Open)
	}
	return append(out, k.Quit)
}

func (k keyMap) dialogHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back}
}
