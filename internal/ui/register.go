package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/ai-chat/internal/validation"
)

const registeredNotice = "Account created successfully! Please login."

type registerDoneMsg struct {
	err error
}

type registerModel struct {
	inputs    []textinput.Model
	focus     int
	fieldErrs validation.Errors
	err       string
	busy      bool
}

var registerFields = []string{validation.FieldUsername, validation.FieldEmail, validation.FieldPassword}

func newRegisterModel() registerModel {
	return registerModel{
		inputs: []textinput.Model{
			newInput("username", validation.UsernameMaxLen, false),
			newInput("you@gmail.com", 254, false),
			newInput("password", 128, true),
		},
	}
}

func (m *registerModel) init() tea.Cmd {
	return focusInput(m.inputs, m.focus)
}

func (m registerModel) update(msg tea.Msg, api API) (registerModel, tea.Cmd) {
	if done, ok := msg.(registerDoneMsg); ok {
		m.busy = false
		if done.err != nil {
			m.err = done.err.Error()
			return m, nil
		}
		return m, navigate(screenLogin, registeredNotice)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, updateInputs(m.inputs, m.focus, msg)
	}
	if m.busy {
		return m, nil
	}

	switch key.String() {
	case "esc":
		return m, navigate(screenLogin, "")
	case "tab", "down":
		m.focus = cycleFocus(m.focus, len(m.inputs), false)
		return m, focusInput(m.inputs, m.focus)
	case "shift+tab", "up":
		m.focus = cycleFocus(m.focus, len(m.inputs), true)
		return m, focusInput(m.inputs, m.focus)
	case "enter":
		if m.focus < len(m.inputs)-1 {
			m.focus++
			return m, focusInput(m.inputs, m.focus)
		}
		return m.submit(api)
	}

	cmd := updateInputs(m.inputs, m.focus, msg)
	// Editing a field clears its stale message.
	if m.fieldErrs != nil {
		delete(m.fieldErrs, registerFields[m.focus])
	}
	return m, cmd
}

func (m registerModel) submit(api API) (registerModel, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[0].Value())
	email := strings.TrimSpace(m.inputs[1].Value())
	password := m.inputs[2].Value()

	m.err = ""
	m.fieldErrs = validation.ValidateRegistration(username, email, password)
	if !m.fieldErrs.Empty() {
		return m, nil
	}

	m.busy = true
	return m, func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		_, err := api.Register(ctx, username, email, password)
		return registerDoneMsg{err: err}
	}
}

func (m registerModel) view(busy string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Create Account"))
	b.WriteString("\n")
	labels := []string{"Username", "Email", "Password"}
	for i, input := range m.inputs {
		renderField(&b, labels[i], input, m.fieldErrs[registerFields[i]])
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString(busy + " Creating account...\n")
	}
	b.WriteString(helpStyle.Render("enter: register • tab: next field • esc: back to sign in • ctrl+c: quit"))
	return formStyle.Render(b.String())
}
