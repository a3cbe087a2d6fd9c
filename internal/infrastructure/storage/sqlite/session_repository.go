package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/moviehub/catalog-client/internal/core/domain"
)

// Fixed storage keys, matching the names the session has always been
// persisted under.
const (
	keyToken    = "token"
	keyIdentity = "user"
)

// SessionRepository persists the credential and its decoded identity in a
// local sqlite database. It is the client's only cross-restart state.
type SessionRepository struct {
	db *sql.DB
}

// Open opens (creating if needed) the session database at path.
func Open(path string) (*SessionRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	const schema = `
    CREATE TABLE IF NOT EXISTS session (
        key   TEXT PRIMARY KEY,
        value TEXT NOT NULL
    )`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session db: %w", err)
	}

	return &SessionRepository{db: db}, nil
}

func (r *SessionRepository) Close() error {
	return r.db.Close()
}

// Save stores the token and identity under their fixed keys in one
// transaction so a reload never observes one without the other.
func (r *SessionRepository) Save(ctx context.Context, token string, identity *domain.Identity) error {
	encoded, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("save session: encode identity: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
    INSERT INTO session (key, value) VALUES (?, ?)
    ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.ExecContext(ctx, upsert, keyToken, token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, keyIdentity, string(encoded)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored token and identity. An empty store yields an empty
// token and nil identity with no error.
func (r *SessionRepository) Load(ctx context.Context) (string, *domain.Identity, error) {
	token, err := r.get(ctx, keyToken)
	if err != nil {
		return "", nil, fmt.Errorf("load session: %w", err)
	}
	if token == "" {
		return "", nil, nil
	}

	encoded, err := r.get(ctx, keyIdentity)
	if err != nil {
		return "", nil, fmt.Errorf("load session: %w", err)
	}

	var identity *domain.Identity
	if encoded != "" {
		identity = &domain.Identity{}
		if err := json.Unmarshal([]byte(encoded), identity); err != nil {
			return "", nil, fmt.Errorf("load session: decode identity: %w", err)
		}
	}
	return token, identity, nil
}

// Clear wipes the stored session entirely.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepository) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
