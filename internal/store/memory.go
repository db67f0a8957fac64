package store

import (
	"context"
	"sync"
	"time"

	"github.com/zhouzirui/ai-chat/internal/model/chat"
	"github.com/zhouzirui/ai-chat/internal/model/user"
)

// MemoryStore keeps everything in process memory. Used by tests and for
// DATABASE_URL=memory.
type MemoryStore struct {
	mu       sync.RWMutex
	users    []user.User
	messages map[int64][]chat.Message
	nextUser int64
	nextMsg  int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[int64][]chat.Message)}
}

func (s *MemoryStore) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return user.User{}, ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return user.User{}, ErrEmailTaken
		}
	}

	s.nextUser++
	u.ID = s.nextUser
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users = append(s.users, u)
	return u, nil
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (user.User, error) {
	return s.find(func(u user.User) bool { return u.Username == username })
}

func (s *MemoryStore) UserByEmail(_ context.Context, email string) (user.User, error) {
	return s.find(func(u user.User) bool { return u.Email == email })
}

func (s *MemoryStore) find(match func(user.User) bool) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return user.User{}, ErrUserNotFound
}

func (s *MemoryStore) AppendMessages(_ context.Context, messages []chat.Message) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]chat.Message, len(messages))
	for i, msg := range messages {
		s.nextMsg++
		msg.ID = s.nextMsg
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now().UTC()
		}
		stored[i] = msg
	}
	for _, msg := range stored {
		s.messages[msg.UserID] = append(s.messages[msg.UserID], msg)
	}
	return stored, nil
}

func (s *MemoryStore) MessagesByUser(_ context.Context, userID int64) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[userID]
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

func (s *MemoryStore) Close() error { return nil }
