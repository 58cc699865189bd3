package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Continue key.Binding
	Yes      key.Binding
	No       key.Binding
	Dismiss  key.Binding
	Music    key.Binding
	Save     key.Binding
	Share    key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Continue: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open your gift")),
		Yes:      key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		No:       key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
		Dismiss:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "let me think")),
		Music:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "music")),
		Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save the date")),
		Share:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "share")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap with the bindings enabled for the
// current view.
func (k keyMap) ShortHelp() []key.Binding {
	var out []key.Binding
	for _, b := range []key.Binding{k.Continue, k.Yes, k.No, k.Dismiss, k.Save, k.Share, k.Music, k.Quit} {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
