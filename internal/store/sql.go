package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/zhouzirui/ai-chat/internal/model/chat"
	"github.com/zhouzirui/ai-chat/internal/model/user"
)

// Dialect selects driver-specific SQL.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DefaultSQLitePath is used when no DATABASE_URL is configured.
const DefaultSQLitePath = "chat.db"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		sent_at BIGINT NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		content TEXT NOT NULL,
		sent_at BIGINT NOT NULL,
		user_id BIGINT NOT NULL REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, id)`,
}

// SQLStore implements Store on database/sql for SQLite and PostgreSQL.
// Timestamps are stored as unix microseconds so both dialects share one layout.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// Open picks a backend from a DATABASE_URL style string:
// "memory", "postgres://...", "sqlite://path", or a bare SQLite file path.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	raw := strings.TrimSpace(databaseURL)
	if raw == "memory" {
		return NewMemoryStore(), nil
	}

	dialect, dsn := DialectSQLite, raw
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		dialect = DialectPostgres
	case strings.HasPrefix(raw, "sqlite://"):
		dsn = strings.TrimPrefix(raw, "sqlite://")
	case raw == "":
		dsn = DefaultSQLitePath
	}

	s, err := OpenSQL(ctx, dialect, dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OpenSQL opens the database and applies the schema.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectSQLite:
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
			db.SetMaxOpenConns(1)
		}
	case DialectPostgres:
		db, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	s := &SQLStore{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("[store] %s database ready", dialect)
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.dialect == DialectPostgres {
		schema = postgresSchema
	}
	if s.dialect == DialectSQLite {
		if _, err := s.db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			return fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $N for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	query := s.rebind(`INSERT INTO users (username, email, hashed_password, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	err := s.db.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.CreatedAt.UnixMicro()).Scan(&u.ID)
	if err != nil {
		if uniqueErr := classifyUnique(err); uniqueErr != nil {
			return user.User{}, uniqueErr
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *SQLStore) UserByUsername(ctx context.Context, username string) (user.User, error) {
	return s.queryUser(ctx, `SELECT id, username, email, hashed_password, created_at FROM users WHERE username = ?`, username)
}

func (s *SQLStore) UserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.queryUser(ctx, `SELECT id, username, email, hashed_password, created_at FROM users WHERE email = ?`, email)
}

func (s *SQLStore) queryUser(ctx context.Context, query string, arg any) (user.User, error) {
	var (
		u       user.User
		created int64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(query), arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, ErrUserNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = time.UnixMicro(created).UTC()
	return u, nil
}

func (s *SQLStore) AppendMessages(ctx context.Context, messages []chat.Message) ([]chat.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := s.rebind(`INSERT INTO messages (content, sent_at, user_id) VALUES (?, ?, ?) RETURNING id`)
	stored := make([]chat.Message, len(messages))
	for i, msg := range messages {
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now().UTC()
		}
		// Round-trip precision matches what a later read returns.
		msg.Timestamp = time.UnixMicro(msg.Timestamp.UnixMicro()).UTC()
		if err := tx.QueryRowContext(ctx, query, msg.Content, msg.Timestamp.UnixMicro(), msg.UserID).Scan(&msg.ID); err != nil {
			return nil, fmt.Errorf("insert message: %w", err)
		}
		stored[i] = msg
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit messages: %w", err)
	}
	return stored, nil
}

func (s *SQLStore) MessagesByUser(ctx context.Context, userID int64) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, content, sent_at, user_id FROM messages WHERE user_id = ? ORDER BY id`), userID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]chat.Message, 0, 16)
	for rows.Next() {
		var (
			msg  chat.Message
			sent int64
		)
		if err := rows.Scan(&msg.ID, &msg.Content, &sent, &msg.UserID); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Timestamp = time.UnixMicro(sent).UTC()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// classifyUnique maps unique-constraint violations of either driver to the
// store's sentinel errors. It returns nil for any other error.
func classifyUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != "23505" {
			return nil
		}
		if strings.Contains(pqErr.Constraint, "email") {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}

	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(msg, "users.email") {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}
