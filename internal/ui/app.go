// Package ui is the terminal front end: login, registration and chat screens
// behind a small router.
package ui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/ai-chat/internal/model/chat"
	"github.com/zhouzirui/ai-chat/internal/model/user"
)

const requestTimeout = 30 * time.Second

// API is the subset of the HTTP client the screens use.
type API interface {
	SetToken(token string)
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, email, password string) (user.Public, error)
	Messages(ctx context.Context) ([]chat.Message, error)
	Send(ctx context.Context, content string) (chat.Message, error)
}

// Session persists the access token between runs.
type Session interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenChat
)

func (s screen) String() string {
	switch s {
	case screenLogin:
		return "login"
	case screenRegister:
		return "register"
	case screenChat:
		return "chat"
	default:
		return "unknown"
	}
}

type navigateMsg struct {
	to     screen
	notice string
}

func navigate(to screen, notice string) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{to: to, notice: notice}
	}
}

type logoutMsg struct{}

// App routes between the three screens.
type App struct {
	api     API
	session Session
	poll    time.Duration

	current  screen
	login    loginModel
	register registerModel
	chat     chatModel
	chatGen  int
	spinner  spinner.Model
	width    int
	height   int
}

// NewApp starts on the chat screen when a token is saved, else on login.
func NewApp(api API, session Session, poll time.Duration) (*App, error) {
	token, err := session.Load()
	if err != nil {
		return nil, err
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = labelStyle

	a := &App{
		api:     api,
		session: session,
		poll:    poll,
		current: screenLogin,
		spinner: s,
	}
	if token != "" {
		api.SetToken(token)
		a.current = screenChat
	}
	return a, nil
}

// Screen names the active screen.
func (a *App) Screen() string {
	return a.current.String()
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.enter(a.current, ""))
}

func (a *App) enter(to screen, notice string) tea.Cmd {
	a.current = to
	switch to {
	case screenRegister:
		a.register = newRegisterModel()
		return a.register.init()
	case screenChat:
		a.chatGen++
		a.chat = newChatModel(a.chatGen, a.width, a.height)
		return a.chat.init(a.api, a.poll)
	default:
		a.login = newLoginModel(notice)
		return a.login.init()
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.chat.setSize(msg.Width, msg.Height)
		return a, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case navigateMsg:
		return a, a.enter(msg.to, msg.notice)
	case loginDoneMsg:
		if msg.err != nil {
			a.login.busy = false
			a.login.err = msg.err.Error()
			return a, nil
		}
		if err := a.session.Save(msg.token); err != nil {
			log.Printf("[ui] failed to save token: %v", err)
		}
		return a, a.enter(screenChat, "")
	case logoutMsg:
		if err := a.session.Clear(); err != nil {
			log.Printf("[ui] failed to clear token: %v", err)
		}
		a.api.SetToken("")
		return a, a.enter(screenLogin, "")
	}

	var cmd tea.Cmd
	switch a.current {
	case screenLogin:
		a.login, cmd = a.login.update(msg, a.api)
	case screenRegister:
		a.register, cmd = a.register.update(msg, a.api)
	case screenChat:
		a.chat, cmd = a.chat.update(msg, a.api, a.poll)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	header := headerStyle.Render("AI Chat Assistant")
	busy := a.spinner.View()
	switch a.current {
	case screenRegister:
		return header + "\n\n" + a.register.view(busy)
	case screenChat:
		return header + "\n" + a.chat.view(busy)
	default:
		return header + "\n\n" + a.login.view(busy)
	}
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
