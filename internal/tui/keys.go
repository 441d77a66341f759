package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the bindings active while a push runs.
type KeyMap struct {
	Cancel key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Cancel: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "cancel push"),
		),
	}
}

// HelpText renders the enabled bindings as "keys description" pairs.
func (k KeyMap) HelpText() string {
	var parts []string
	for _, b := range []key.Binding{k.Cancel} {
		if b.Enabled() {
			parts = append(parts, b.Help().Key+" "+b.Help().Desc)
		}
	}
	return strings.Join(parts, "  ")
}
