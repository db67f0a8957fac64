package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/zhouzirui/ai-chat/internal/model/user"
	"github.com/zhouzirui/ai-chat/internal/store"
	"github.com/zhouzirui/ai-chat/internal/validation"
)

var (
	ErrUsernameTaken      = errors.New("Username already registered")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Incorrect username or password")
	ErrTooManyAttempts    = errors.New("Too many failed attempts. Try again later.")
)

// ValidationError carries per-field rule failures for a registration.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid registration: %v", e.Fields.Messages())
}

// Service handles accounts and access tokens.
type Service struct {
	store   store.Store
	tokens  *TokenIssuer
	lockout *Lockout
	cost    int

	// dummyHash is compared for unknown usernames so both paths cost one bcrypt check.
	dummyOnce sync.Once
	dummyHash []byte
}

// NewService wires the auth service to its store, token issuer and lockout.
func NewService(st store.Store, tokens *TokenIssuer, lockout *Lockout) *Service {
	return &Service{
		store:   st,
		tokens:  tokens,
		lockout: lockout,
		cost:    bcrypt.DefaultCost,
	}
}

// Register validates and creates a new account.
func (s *Service) Register(ctx context.Context, username, email, password string) (user.User, error) {
	if errs := validation.ValidateRegistration(username, email, password); !errs.Empty() {
		return user.User{}, &ValidationError{Fields: errs}
	}

	if _, err := s.store.UserByUsername(ctx, username); err == nil {
		return user.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return user.User{}, err
	}

	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		return user.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return user.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.CreateUser(ctx, user.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		return user.User{}, ErrUsernameTaken
	case errors.Is(err, store.ErrEmailTaken):
		return user.User{}, ErrEmailTaken
	case err != nil:
		return user.User{}, err
	}

	log.Printf("[auth] registered user id=%d username=%s", created.ID, created.Username)
	return created, nil
}

// Login checks credentials for clientKey and returns a fresh access token.
func (s *Service) Login(ctx context.Context, clientKey, username, password string) (string, error) {
	if s.lockout.Blocked(clientKey) {
		return "", ErrTooManyAttempts
	}

	u, err := s.store.UserByUsername(ctx, username)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		return "", err
	}
	hash := []byte(u.PasswordHash)
	if err != nil {
		hash = s.unknownUserHash()
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || err != nil {
		s.lockout.Fail(clientKey)
		log.Printf("[auth] failed login for username=%s from=%s", username, clientKey)
		return "", ErrInvalidCredentials
	}

	s.lockout.Reset(clientKey)
	return s.tokens.Issue(u.Username)
}

func (s *Service) unknownUserHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("unknown-user-placeholder"), s.cost)
		if err != nil {
			log.Printf("[auth] failed to build placeholder hash: %v", err)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (user.User, error) {
	username, err := s.tokens.Subject(token)
	if err != nil {
		return user.User{}, err
	}

	u, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrUserNotFound) {
		return user.User{}, ErrInvalidToken
	}
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}
