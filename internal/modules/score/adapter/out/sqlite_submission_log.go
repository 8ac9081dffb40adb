package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"yuki/internal/modules/score/domain"
	scoreout "yuki/internal/modules/score/port/out"
	"yuki/internal/platform/sqlitedb"
)

type SQLiteSubmissionLog struct {
	db *sql.DB
}

func NewSQLiteSubmissionLog(dbPath string) (scoreout.SubmissionLog, error) {
	db, err := sqlitedb.Open(dbPath)
	if err != nil {
		return nil, err
	}
	l := &SQLiteSubmissionLog{db: db}
	if err := l.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *SQLiteSubmissionLog) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS submissions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL,
  level_id INTEGER NOT NULL,
  level_name TEXT NOT NULL,
  level_creator TEXT NOT NULL,
  percentage INTEGER NOT NULL,
  attempts INTEGER NOT NULL,
  passed INTEGER NOT NULL,
  is_practice INTEGER NOT NULL,
  coins TEXT NOT NULL,
  status TEXT NOT NULL,
  detail TEXT NOT NULL,
  submitted_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS submissions_submitted_at ON submissions (submitted_at);
`
	if _, err := l.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create submissions table: %w", err)
	}
	return nil
}

func (l *SQLiteSubmissionLog) Append(ctx context.Context, entry domain.Entry) error {
	coins, err := json.Marshal(entry.Record.Coins)
	if err != nil {
		return fmt.Errorf("encode coins: %w", err)
	}
	r := entry.Record
	_, err = l.db.ExecContext(ctx, `
INSERT INTO submissions (session_id, level_id, level_name, level_creator, percentage, attempts, passed, is_practice, coins, status, detail, submitted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.LevelID, r.LevelName, r.LevelCreator, r.Percentage, r.Attempts, r.Passed, r.Practice,
		string(coins), string(entry.Status), entry.Detail, entry.SubmittedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (l *SQLiteSubmissionLog) Recent(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
SELECT id, session_id, level_id, level_name, level_creator, percentage, attempts, passed, is_practice, coins, status, detail, submitted_at
FROM submissions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		var (
			e         domain.Entry
			coins     string
			status    string
			submitted string
		)
		if err := rows.Scan(&e.ID, &e.Record.SessionID, &e.Record.LevelID, &e.Record.LevelName, &e.Record.LevelCreator,
			&e.Record.Percentage, &e.Record.Attempts, &e.Record.Passed, &e.Record.Practice,
			&coins, &status, &e.Detail, &submitted); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal([]byte(coins), &e.Record.Coins); err != nil {
			return nil, fmt.Errorf("decode coins: %w", err)
		}
		e.Status = domain.Status(status)
		if e.SubmittedAt, err = time.Parse(time.RFC3339Nano, submitted); err != nil {
			return nil, fmt.Errorf("decode submitted_at: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}
