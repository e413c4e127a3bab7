// Package persistence is the sqlite-backed store for chats, messages
// and sealed credentials.
package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/repolingo/repolingo/internal/vault"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Chat is one conversation anchored to a GitHub resource.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Mode      string    `json:"mode"`
	SourceURL string    `json:"source_url"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one turn in a chat.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

// PutCredentials stores a user's sealed credential set.
func (s *SQLiteStore) PutCredentials(ctx context.Context, userID string, creds vault.StoredCredentials) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO credentials (user_id, provider, openrouter_key_enc, gemini_key_enc, deepl_key_enc, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			provider=excluded.provider,
			openrouter_key_enc=excluded.openrouter_key_enc,
			gemini_key_enc=excluded.gemini_key_enc,
			deepl_key_enc=excluded.deepl_key_enc,
			updated_at=excluded.updated_at`,
		userID,
		creds.Provider,
		creds.OpenRouterKeyEnc,
		creds.GeminiKeyEnc,
		creds.DeepLKeyEnc,
		time.Now().UTC(),
	)
	return err
}

// GetCredentials loads a user's sealed credential set. The boolean is
// false when the user has never saved any.
func (s *SQLiteStore) GetCredentials(ctx context.Context, userID string) (vault.StoredCredentials, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT provider, openrouter_key_enc, gemini_key_enc, deepl_key_enc
		 FROM credentials
		 WHERE user_id = ?`,
		userID,
	)
	var ret vault.StoredCredentials
	if err := row.Scan(&ret.Provider, &ret.OpenRouterKeyEnc, &ret.GeminiKeyEnc, &ret.DeepLKeyEnc); err != nil {
		if err == sql.ErrNoRows {
			return vault.StoredCredentials{}, false, nil
		}
		return vault.StoredCredentials{}, false, err
	}
	return ret, true, nil
}

func (s *SQLiteStore) CreateChat(ctx context.Context, chat Chat) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO chats (id, user_id, title, mode, source_url, language, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		chat.ID,
		chat.UserID,
		chat.Title,
		chat.Mode,
		chat.SourceURL,
		chat.Language,
		chat.CreatedAt.UTC(),
		chat.UpdatedAt.UTC(),
	)
	return err
}

func (s *SQLiteStore) GetChat(ctx context.Context, chatID string) (Chat, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, title, mode, source_url, language, created_at, updated_at
		 FROM chats
		 WHERE id = ?`,
		chatID,
	)
	var ret Chat
	if err := row.Scan(&ret.ID, &ret.UserID, &ret.Title, &ret.Mode, &ret.SourceURL, &ret.Language, &ret.CreatedAt, &ret.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Chat{}, false, nil
		}
		return Chat{}, false, err
	}
	return ret, true, nil
}

// ListChats returns a user's chats, most recently touched first.
func (s *SQLiteStore) ListChats(ctx context.Context, userID string) ([]Chat, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, title, mode, source_url, language, created_at, updated_at
		 FROM chats
		 WHERE user_id = ?
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]Chat, 0)
	for rows.Next() {
		var item Chat
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Mode, &item.SourceURL, &item.Language, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// DeleteChat removes a chat and, via the foreign key, its messages.
func (s *SQLiteStore) DeleteChat(ctx context.Context, chatID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, chatID)
	return err
}

// AppendMessage stores a message and bumps the chat's updated_at so
// recency ordering in ListChats stays correct.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(
		ctx,
		`INSERT INTO messages (id, chat_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID,
		msg.ChatID,
		msg.Role,
		msg.Content,
		msg.CreatedAt.UTC(),
	); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE chats SET updated_at = ? WHERE id = ?`, msg.CreatedAt.UTC(), msg.ChatID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListMessages(ctx context.Context, chatID string) ([]Message, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, chat_id, role, content, created_at
		 FROM messages
		 WHERE chat_id = ?
		 ORDER BY created_at ASC`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]Message, 0)
	for rows.Next() {
		var item Message
		if err := rows.Scan(&item.ID, &item.ChatID, &item.Role, &item.Content, &item.CreatedAt); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
