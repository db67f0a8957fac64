package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/ai-chat/internal/model/chat"
)

const (
	chatChromeHeight = 6
	defaultWidth     = 80
	defaultHeight    = 24
)

type messagesMsg struct {
	gen      int
	messages []chat.Message
	err      error
}

type sentMsg struct {
	gen int
	err error
}

type pollMsg struct {
	gen int
}

type chatModel struct {
	gen      int
	viewport viewport.Model
	input    textinput.Model
	messages []chat.Message
	err      string
	sending  bool
	width    int
}

func newChatModel(gen, width, height int) chatModel {
	input := newInput("Type your message...", 4000, false)
	m := chatModel{
		gen:      gen,
		viewport: viewport.New(defaultWidth, defaultHeight-chatChromeHeight),
		input:    input,
	}
	m.setSize(width, height)
	return m
}

func (m *chatModel) setSize(width, height int) {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = max(height-chatChromeHeight, 3)
	m.input.Width = max(width-4, 10)
	m.refresh()
}

func (m *chatModel) init(api API, poll time.Duration) tea.Cmd {
	return tea.Batch(m.input.Focus(), fetchMessages(api, m.gen), schedulePoll(poll, m.gen))
}

func fetchMessages(api API, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		messages, err := api.Messages(ctx)
		return messagesMsg{gen: gen, messages: messages, err: err}
	}
}

func schedulePoll(every time.Duration, gen int) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return pollMsg{gen: gen}
	})
}

func (m chatModel) update(msg tea.Msg, api API, poll time.Duration) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pollMsg:
		// Ticks from an earlier visit to this screen stop here.
		if msg.gen != m.gen {
			return m, nil
		}
		return m, tea.Batch(fetchMessages(api, m.gen), schedulePoll(poll, m.gen))

	case messagesMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.messages = msg.messages
		m.refresh()
		return m, nil

	case sentMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.sending = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.input.Reset()
		return m, fetchMessages(api, m.gen)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+l":
			return m, func() tea.Msg { return logoutMsg{} }
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "enter":
			content := strings.TrimSpace(m.input.Value())
			if content == "" || m.sending {
				return m, nil
			}
			m.sending = true
			gen := m.gen
			return m, func() tea.Msg {
				ctx, cancel := withTimeout()
				defer cancel()
				_, err := api.Send(ctx, content)
				return sentMsg{gen: gen, err: err}
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) refresh() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(renderMessages(m.messages, m.width))
	if atBottom || m.viewport.YOffset == 0 {
		m.viewport.GotoBottom()
	}
}

func (m chatModel) view(busy string) string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	if m.sending {
		b.WriteString(" " + busy)
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send • pgup/pgdown: scroll • ctrl+l: logout • ctrl+c: quit"))
	return b.String()
}

// renderMessages lays out the conversation, assistant turns on the left and
// the user's own on the right.
func renderMessages(messages []chat.Message, width int) string {
	if len(messages) == 0 {
		return helpStyle.Render("No messages yet. Say hello!")
	}

	bubbleWidth := max(width*3/4, 20)
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		stamp := timestampStyle.Render(msg.Timestamp.Local().Format("2006-01-02 15:04:05"))
		if msg.FromAssistant() {
			body := aiMessageStyle.Width(bubbleWidth).Render(msg.Content)
			b.WriteString(lipgloss.JoinVertical(lipgloss.Left, body, stamp))
			continue
		}
		body := userMessageStyle.Width(bubbleWidth).Render(msg.Content)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right,
			lipgloss.JoinVertical(lipgloss.Right, body, stamp)))
	}
	return b.String()
}
