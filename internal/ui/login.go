package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var errLoginRequired = errors.New("Username and password are required")

type loginDoneMsg struct {
	token string
	err   error
}

type loginModel struct {
	inputs []textinput.Model
	focus  int
	err    string
	notice string
	busy   bool
}

func newLoginModel(notice string) loginModel {
	return loginModel{
		inputs: []textinput.Model{
			newInput("username", 50, false),
			newInput("password", 128, true),
		},
		notice: notice,
	}
}

func (m *loginModel) init() tea.Cmd {
	return focusInput(m.inputs, m.focus)
}

func (m loginModel) update(msg tea.Msg, api API) (loginModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, updateInputs(m.inputs, m.focus, msg)
	}
	if m.busy {
		return m, nil
	}

	switch key.String() {
	case "ctrl+r":
		return m, navigate(screenRegister, "")
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

	return m, updateInputs(m.inputs, m.focus, msg)
}

func (m loginModel) submit(api API) (loginModel, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[0].Value())
	password := m.inputs[1].Value()
	m.notice = ""
	if username == "" || password == "" {
		m.err = errLoginRequired.Error()
		return m, nil
	}

	m.err = ""
	m.busy = true
	return m, func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		token, err := api.Login(ctx, username, password)
		return loginDoneMsg{token: token, err: err}
	}
}

func (m loginModel) view(busy string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in"))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n\n")
	}
	renderField(&b, "Username", m.inputs[0], "")
	renderField(&b, "Password", m.inputs[1], "")
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString(busy + " Signing in...\n")
	}
	b.WriteString(helpStyle.Render("enter: sign in • tab: next field • ctrl+r: create account • ctrl+c: quit"))
	return formStyle.Render(b.String())
}
