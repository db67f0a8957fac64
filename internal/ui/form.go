package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func newInput(placeholder string, limit int, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Prompt = "> "
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

// focusInput focuses inputs[idx] and blurs the rest.
func focusInput(inputs []textinput.Model, idx int) tea.Cmd {
	var cmd tea.Cmd
	for i := range inputs {
		if i == idx {
			cmd = inputs[i].Focus()
			continue
		}
		inputs[i].Blur()
	}
	return cmd
}

// cycleFocus moves focus forward or back, wrapping around.
func cycleFocus(focus, n int, back bool) int {
	if back {
		return (focus - 1 + n) % n
	}
	return (focus + 1) % n
}

// updateInputs passes msg to the focused input only.
func updateInputs(inputs []textinput.Model, focus int, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	inputs[focus], cmd = inputs[focus].Update(msg)
	return cmd
}

func renderField(b *strings.Builder, label string, input textinput.Model, fieldErr string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString("\n")
	b.WriteString(input.View())
	b.WriteString("\n")
	if fieldErr != "" {
		b.WriteString(errorStyle.Render(fieldErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
