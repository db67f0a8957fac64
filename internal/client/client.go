// Package client talks to the chat HTTP API on behalf of the terminal front end.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/zhouzirui/ai-chat/internal/model/chat"
	"github.com/zhouzirui/ai-chat/internal/model/user"
)

// User-facing failures. Callers show these strings as-is.
var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrFetchMessages      = errors.New("Failed to fetch messages")
	ErrSendMessage        = errors.New("Failed to send message")
	ErrRegistration       = errors.New("Registration failed")
)

// RegistrationError is a rejected registration with the server's explanation.
type RegistrationError struct {
	Messages []string
}

func (e *RegistrationError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// TokenResponse mirrors the /token payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Client is a thin API wrapper; one request per call, no retries.
type Client struct {
	baseURL string
	http    *resty.Client
	token   string
}

// New creates a client for the API at baseURL.
func New(baseURL string) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30*time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// SetToken sets the bearer token used by authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for an access token and keeps it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var tok TokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": username,
			"password": password,
		}).
		SetResult(&tok).
		Post("/token")
	if err != nil {
		log.Printf("[client] login request failed: %v", err)
		return "", ErrInvalidCredentials
	}
	if resp.IsError() || tok.AccessToken == "" {
		return "", ErrInvalidCredentials
	}

	c.token = tok.AccessToken
	return tok.AccessToken, nil
}

// Register creates an account. Validation failures come back as a
// *RegistrationError holding the server messages.
func (c *Client) Register(ctx context.Context, username, email, password string) (user.Public, error) {
	var created user.Public
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"username": username,
			"email":    email,
			"password": password,
		}).
		SetResult(&created).
		Post("/register")
	if err != nil {
		log.Printf("[client] register request failed: %v", err)
		return user.Public{}, ErrRegistration
	}
	if resp.IsError() {
		return user.Public{}, registrationError(resp.Body())
	}
	return created, nil
}

// registrationError prefers a 422 msg list, then a plain detail string.
func registrationError(body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ErrRegistration
	}

	var fields []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(eb.Detail, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, f.Msg)
		}
		if len(msgs) > 0 {
			return &RegistrationError{Messages: msgs}
		}
		return ErrRegistration
	}

	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err == nil && detail != "" {
		return &RegistrationError{Messages: []string{detail}}
	}
	return ErrRegistration
}

// Messages fetches the caller's conversation, oldest first.
func (c *Client) Messages(ctx context.Context) ([]chat.Message, error) {
	var messages []chat.Message
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetResult(&messages).
		Get("/messages")
	if err != nil || resp.IsError() {
		return nil, ErrFetchMessages
	}
	return messages, nil
}

// Send posts a message. The server stores the assistant reply alongside it.
func (c *Client) Send(ctx context.Context, content string) (chat.Message, error) {
	var stored chat.Message
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(map[string]string{"content": content}).
		SetResult(&stored).
		Post("/chat")
	if err != nil || resp.IsError() {
		return chat.Message{}, ErrSendMessage
	}
	return stored, nil
}
