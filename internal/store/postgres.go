package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// pgStore backs every store interface with one shared *sql.DB.
//
// The user and session tables are owned by the external auth provider;
// this service only reads sessions and reads/updates profile fields.
// post_history and platform_stats are owned here and created on first
// use.
type pgStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func openPostgres(dsn string) (*Stores, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &pgStore{db: db}
	return &Stores{
		Profiles: s,
		History:  s,
		Stats:    s,
		Sessions: s,
		closer:   db.Close,
	}, nil
}

func (s *pgStore) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS post_history (
  id SERIAL PRIMARY KEY,
  user_id TEXT NOT NULL,
  tweet_content TEXT NOT NULL,
  analysis JSONB NOT NULL,
  image_data TEXT,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_post_history_user_id ON post_history (user_id);
CREATE INDEX IF NOT EXISTS idx_post_history_created_at ON post_history (created_at DESC);

CREATE TABLE IF NOT EXISTS platform_stats (
  key TEXT PRIMARY KEY,
  value BIGINT NOT NULL DEFAULT 0
);
`)
	})
	return s.schemaErr
}

// Profiles

func (s *pgStore) Get(ctx context.Context, userID string) (Profile, bool, error) {
	id := strings.TrimSpace(userID)
	if id == "" {
		return Profile{}, false, nil
	}
	row := s.db.QueryRowContext(ctx, `
SELECT id, COALESCE(name,''), COALESCE(image,''), COALESCE(bio,''),
       COALESCE(target_audience,''), COALESCE(ai_context,''),
       COALESCE(x_handle,''), COALESCE(leaderboard_mode,'none')
FROM "user" WHERE id = $1`, id)
	var p Profile
	err := row.Scan(&p.ID, &p.Name, &p.Image, &p.Bio, &p.TargetAudience,
		&p.AIContext, &p.XHandle, &p.LeaderboardMode)
	if err == sql.ErrNoRows {
		return Profile{}, false, nil
	}
	if err != nil {
		return Profile{}, false, err
	}
	return p, true, nil
}

func (s *pgStore) Update(ctx context.Context, p Profile) error {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return fmt.Errorf("user id is required")
	}
	_, err := s.db.ExecContext(ctx, `
UPDATE "user"
SET name = $2, image = $3, bio = $4, target_audience = $5,
    ai_context = $6, x_handle = $7, leaderboard_mode = $8,
    updated_at = NOW()
WHERE id = $1`,
		id, p.Name, p.Image, p.Bio, p.TargetAudience,
		p.AIContext, p.XHandle, p.LeaderboardMode)
	return err
}

// History

func (s *pgStore) Insert(ctx context.Context, e HistoryEntry) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	analysis := e.Analysis
	if len(analysis) == 0 {
		analysis = json.RawMessage("{}")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO post_history (user_id, tweet_content, analysis, image_data, created_at)
VALUES ($1, $2, $3, NULLIF($4,''), NOW())`,
		e.UserID, e.TweetContent, string(analysis), e.ImageData)
	return err
}

func (s *pgStore) ListByUser(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, tweet_content, analysis, COALESCE(image_data,''), created_at
FROM post_history
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`, strings.TrimSpace(userID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var e HistoryEntry
		var analysis []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.TweetContent, &analysis, &e.ImageData, &e.CreatedAt); err != nil {
			continue
		}
		e.Analysis = json.RawMessage(analysis)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *pgStore) Delete(ctx context.Context, id int64, userID string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM post_history WHERE id = $1 AND user_id = $2`,
		id, strings.TrimSpace(userID))
	return err
}

func (s *pgStore) RecentWithUsers(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT h.id, h.user_id, h.tweet_content, h.analysis, h.created_at,
       COALESCE(u.name,''), COALESCE(u.image,''),
       COALESCE(u.x_handle,''), COALESCE(u.leaderboard_mode,'none')
FROM post_history h
JOIN "user" u ON u.id = h.user_id
ORDER BY h.created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var e HistoryEntry
		var u HistoryUser
		var analysis []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.TweetContent, &analysis, &e.CreatedAt,
			&u.Name, &u.Image, &u.XHandle, &u.LeaderboardMode); err != nil {
			continue
		}
		e.Analysis = json.RawMessage(analysis)
		e.User = &u
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats

func (s *pgStore) Increment(ctx context.Context, key string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	// Atomic at the storage layer; never read-modify-write in app code.
	_, err := s.db.ExecContext(ctx, `
INSERT INTO platform_stats (key, value) VALUES ($1, 1)
ON CONFLICT (key) DO UPDATE SET value = platform_stats.value + 1`, key)
	return err
}

func (s *pgStore) Value(ctx context.Context, key string) (int64, error) {
	if err := s.ensureSchema(); err != nil {
		return 0, err
	}
	var v int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM platform_stats WHERE key = $1`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return v, err
}

// Sessions

func (s *pgStore) UserIDForToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil
	}
	var userID string
	err := s.db.QueryRowContext(ctx, `
SELECT user_id FROM session WHERE token = $1 AND expires_at > NOW()`, token).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
