package out

import (
	"context"
	"database/sql"
	"fmt"

	"yuki/internal/modules/account/domain"
	accountout "yuki/internal/modules/account/port/out"
	"yuki/internal/platform/sqlitedb"
)

// SQLiteCredentialStore keeps the link credentials as saved values: one row
// per key, surviving restarts.
type SQLiteCredentialStore struct {
	db *sql.DB
}

func NewSQLiteCredentialStore(dbPath string) (accountout.CredentialStore, error) {
	db, err := sqlitedb.Open(dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteCredentialStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteCredentialStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS saved_values (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create saved_values table: %w", err)
	}
	return nil
}

func (s *SQLiteCredentialStore) Load(ctx context.Context) (domain.LinkState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM saved_values WHERE key IN (?, ?)`, domain.KeyAuthToken, domain.KeyDisplayName)
	if err != nil {
		return domain.LinkState{}, fmt.Errorf("load credentials: %w", err)
	}
	defer rows.Close()
	state := domain.LinkState{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.LinkState{}, fmt.Errorf("scan credentials: %w", err)
		}
		switch key {
		case domain.KeyAuthToken:
			state.AuthToken = value
		case domain.KeyDisplayName:
			state.DisplayName = value
		}
	}
	if err := rows.Err(); err != nil {
		return domain.LinkState{}, fmt.Errorf("iterate credentials: %w", err)
	}
	return state, nil
}

func (s *SQLiteCredentialStore) Save(ctx context.Context, state domain.LinkState) error {
	return s.put(ctx, state.AuthToken, state.DisplayName)
}

func (s *SQLiteCredentialStore) Clear(ctx context.Context) error {
	return s.put(ctx, "", "")
}

func (s *SQLiteCredentialStore) put(ctx context.Context, token, displayName string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin credentials tx: %w", err)
	}
	const stmt = `
INSERT INTO saved_values (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value;
`
	for _, kv := range [][2]string{{domain.KeyAuthToken, token}, {domain.KeyDisplayName, displayName}} {
		if _, err := tx.ExecContext(ctx, stmt, kv[0], kv[1]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save %s: %w", kv[0], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit credentials: %w", err)
	}
	return nil
}
