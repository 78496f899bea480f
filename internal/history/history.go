// Package history persists run records and recency data so consecutive
// videos do not repeat hooks, scenes, topics, or stock clips.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shortsmith/shortsmith/internal/script"
)

// Cooldown windows, tuned so a daily channel rotates material for about a
// week before anything repeats.
const (
	SignatureWindow = 14 * 24 * time.Hour
	TopicWindow     = 7 * 24 * time.Hour
	ClipWindow      = 5 * 24 * time.Hour
	KeywordWindow   = 3 * 24 * time.Hour
)

// Run is one completed pipeline execution.
type Run struct {
	ID        string
	Channel   string
	Topic     string
	Title     string
	Score     int
	Attempts  int
	Rewrites  int
	APICalls  int
	VideoPath string
	CreatedAt time.Time
}

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// Single writer; sqlite locks the file per connection.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			channel TEXT NOT NULL,
			topic TEXT NOT NULL,
			title TEXT NOT NULL,
			score INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			rewrites INTEGER NOT NULL,
			api_calls INTEGER NOT NULL,
			video_path TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS signatures (
			kind TEXT NOT NULL,
			signature TEXT NOT NULL,
			channel TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signatures_lookup ON signatures (channel, kind, created_at)`,
		`CREATE TABLE IF NOT EXISTS clip_usage (
			clip_id TEXT NOT NULL,
			channel TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS keyword_usage (
			keyword TEXT NOT NULL,
			channel TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("history: migrate: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// RecordRun stores the run and the hook/scene signatures of its script.
func (s *Store) RecordRun(ctx context.Context, run Run, sc script.Script) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, channel, topic, title, score, attempts, rewrites, api_calls, video_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Channel, run.Topic, run.Title, run.Score,
		run.Attempts, run.Rewrites, run.APICalls, run.VideoPath, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}
	for i, text := range sc.SceneTexts() {
		kind := "scene"
		if i == 0 {
			kind = "hook"
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO signatures (kind, signature, channel, created_at) VALUES (?, ?, ?, ?)`,
			kind, script.Signature(text), run.Channel, run.CreatedAt)
		if err != nil {
			return fmt.Errorf("history: insert signature: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

// RecentSignatures returns the signature set of the given kind for a channel
// inside the cooldown window.
func (s *Store) RecentSignatures(ctx context.Context, channel, kind string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT signature FROM signatures WHERE channel = ? AND kind = ? AND created_at > ?`,
		channel, kind, time.Now().Add(-SignatureWindow))
	if err != nil {
		return nil, fmt.Errorf("history: query signatures: %w", err)
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var sig string
		if err := rows.Scan(&sig); err != nil {
			return nil, fmt.Errorf("history: scan signature: %w", err)
		}
		out[sig] = true
	}
	return out, rows.Err()
}

// TopicUsedRecently reports whether the channel covered the topic inside the
// topic cooldown window.
func (s *Store) TopicUsedRecently(ctx context.Context, channel, topic string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM runs WHERE channel = ? AND topic = ? AND created_at > ?`,
		channel, topic, time.Now().Add(-TopicWindow)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("history: query topic: %w", err)
	}
	return n > 0, nil
}

// MarkClipUsed records a stock clip so closely spaced runs vary footage.
func (s *Store) MarkClipUsed(ctx context.Context, channel, clipID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clip_usage (clip_id, channel, created_at) VALUES (?, ?, ?)`,
		clipID, channel, time.Now())
	if err != nil {
		return fmt.Errorf("history: mark clip: %w", err)
	}
	return nil
}

// ClipOnCooldown reports whether the clip was used recently on the channel.
func (s *Store) ClipOnCooldown(ctx context.Context, channel, clipID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clip_usage WHERE channel = ? AND clip_id = ? AND created_at > ?`,
		channel, clipID, time.Now().Add(-ClipWindow)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("history: query clip: %w", err)
	}
	return n > 0, nil
}

// MarkKeywords records search keywords for the keyword cooldown.
func (s *Store) MarkKeywords(ctx context.Context, channel string, keywords []string) error {
	now := time.Now()
	for _, kw := range keywords {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO keyword_usage (keyword, channel, created_at) VALUES (?, ?, ?)`,
			kw, channel, now)
		if err != nil {
			return fmt.Errorf("history: mark keyword: %w", err)
		}
	}
	return nil
}

// KeywordsOnCooldown returns the subset of keywords used recently.
func (s *Store) KeywordsOnCooldown(ctx context.Context, channel string, keywords []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, kw := range keywords {
		var n int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM keyword_usage WHERE channel = ? AND keyword = ? AND created_at > ?`,
			channel, kw, time.Now().Add(-KeywordWindow)).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("history: query keyword: %w", err)
		}
		if n > 0 {
			out[kw] = true
		}
	}
	return out, nil
}

// RecentRuns returns up to limit runs for the channel, newest first. An empty
// channel matches all channels.
func (s *Store) RecentRuns(ctx context.Context, channel string, limit int) ([]Run, error) {
	query := `SELECT id, channel, topic, title, score, attempts, rewrites, api_calls, video_path, created_at
		FROM runs`
	args := []any{}
	if channel != "" {
		query += ` WHERE channel = ?`
		args = append(args, channel)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Channel, &r.Topic, &r.Title, &r.Score,
			&r.Attempts, &r.Rewrites, &r.APICalls, &r.VideoPath, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
