package ui

import "github.com/charmbracelet/lipgloss"

var (
	brandPrimary   = lipgloss.Color("#2196F3")
	brandSecondary = lipgloss.Color("#21CBF3")
	brandError     = lipgloss.Color("#EF4444")
	brandSuccess   = lipgloss.Color("#10B981")
	textMuted      = lipgloss.Color("#6B7280")
	bubbleUser     = lipgloss.Color("#E3F2FD")
	bubbleAI       = lipgloss.Color("#F5F5F5")

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(brandPrimary).
			Bold(true).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(textMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(brandError).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(brandSuccess)

	helpStyle = lipgloss.NewStyle().
			Foreground(textMuted).
			Italic(true)

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandPrimary).
			Padding(1, 2)

	userMessageStyle = lipgloss.NewStyle().
				Background(bubbleUser).
				Foreground(lipgloss.Color("#0D47A1")).
				Padding(0, 1)

	aiMessageStyle = lipgloss.NewStyle().
			Background(bubbleAI).
			Foreground(lipgloss.Color("#212121")).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(brandSecondary).
			Padding(0, 1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(textMuted).
			Faint(true)
)
