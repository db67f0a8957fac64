package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/zhouzirui/ai-chat/internal/client"
	"github.com/zhouzirui/ai-chat/internal/model/chat"
	"github.com/zhouzirui/ai-chat/internal/ui"
	"github.com/zhouzirui/ai-chat/internal/validation"
)

const usage = `usage: chatctl [-config path] <command> [flags]

commands:
  tui        interactive terminal client (default)
  login      sign in and save the access token
  register   create an account
  logout     forget the saved token
  send       send a message and print the reply
  messages   print the conversation
  watch      stream new messages over websocket
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	// Load .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	configPath := flag.String("config", client.DefaultConfigPath(), "client config file (TOML)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := client.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	command := "tui"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	api := client.New(cfg.BaseURL)
	tokens := client.NewTokenStore(cfg.TokenPath)

	if err := run(ctx, command, args, cfg, api, tokens); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, cfg client.Config, api *client.Client, tokens *client.TokenStore) error {
	switch command {
	case "tui":
		return runTUI(cfg, api, tokens)
	case "login":
		return runLogin(ctx, args, api, tokens)
	case "register":
		return runRegister(ctx, args, api)
	case "logout":
		if err := tokens.Clear(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	case "send", "messages", "watch":
		if err := loadToken(api, tokens); err != nil {
			return err
		}
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	switch command {
	case "send":
		content := strings.TrimSpace(strings.Join(args, " "))
		if content == "" {
			return errors.New("usage: chatctl send <message>")
		}
		if _, err := api.Send(ctx, content); err != nil {
			return err
		}
		// The reply is stored with the message; show the latest exchange.
		messages, err := api.Messages(ctx)
		if err != nil {
			return err
		}
		if n := len(messages); n > 0 {
			printMessage(messages[n-1])
		}
		return nil
	case "messages":
		messages, err := api.Messages(ctx)
		if err != nil {
			return err
		}
		for _, msg := range messages {
			printMessage(msg)
		}
		return nil
	default:
		return api.Watch(ctx, printMessage)
	}
}

func runTUI(cfg client.Config, api *client.Client, tokens *client.TokenStore) error {
	// The screen owns the terminal; logs go to a file only when asked for.
	if path := os.Getenv("CHATCTL_LOG"); path != "" {
		f, err := tea.LogToFile(path, "chatctl")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	app, err := ui.NewApp(api, tokens, cfg.PollInterval)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

func runLogin(ctx context.Context, args []string, api *client.Client, tokens *client.TokenStore) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		*username = prompt("Username: ")
	}
	if *password == "" {
		p, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		*password = p
	}

	token, err := api.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	if err := tokens.Save(token); err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", *username)
	return nil
}

func runRegister(ctx context.Context, args []string, api *client.Client) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	password := fs.String("p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		*username = prompt("Username: ")
	}
	if *email == "" {
		*email = prompt("Email: ")
	}
	if *password == "" {
		p, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		*password = p
	}
	if err := checkRegistration(*username, *email, *password); err != nil {
		return err
	}

	created, err := api.Register(ctx, *username, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("account %s created, run `chatctl login -u %s`\n", created.Username, created.Username)
	return nil
}

func loadToken(api *client.Client, tokens *client.TokenStore) error {
	token, err := tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return errors.New("not logged in, run `chatctl login` first")
	}
	api.SetToken(token)
	return nil
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Print(label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptPassword reads without echo on a terminal and falls back to a plain
// line read when stdin is piped.
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label), nil
	}

	fmt.Print(label)
	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// checkRegistration applies the server's rules before any request is made.
func checkRegistration(username, email, password string) error {
	errs := validation.ValidateRegistration(username, email, password)
	if errs.Empty() {
		return nil
	}
	return &client.RegistrationError{Messages: errs.Messages()}
}

func printMessage(msg chat.Message) {
	who := "you"
	if msg.FromAssistant() {
		who = "ai"
	}
	fmt.Printf("[%s] %-3s %s\n", msg.Timestamp.Local().Format(time.DateTime), who, msg.Content)
}
