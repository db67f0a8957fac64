// Package store persists accounts and chat history.
package store

import (
	"context"
	"errors"

	"github.com/zhouzirui/ai-chat/internal/model/chat"
	"github.com/zhouzirui/ai-chat/internal/model/user"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")
)

// Store is the persistence boundary used by the auth and chat services.
type Store interface {
	// CreateUser inserts u and returns it with ID and CreatedAt set.
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UserByUsername(ctx context.Context, username string) (user.User, error)
	UserByEmail(ctx context.Context, email string) (user.User, error)
	// AppendMessages stores all messages or none, returning them with IDs assigned.
	AppendMessages(ctx context.Context, messages []chat.Message) ([]chat.Message, error)
	// MessagesByUser returns the user's messages in insertion order.
	MessagesByUser(ctx context.Context, userID int64) ([]chat.Message, error)
	Close() error
}
