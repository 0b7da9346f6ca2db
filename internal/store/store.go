// Package store persists profiles, history rows and platform stats.
// Each store has a Postgres backend (the external Supabase database)
// and an in-memory fallback for local runs without a DSN.
package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Profile is the per-user persona and leaderboard configuration, owned
// by the external auth provider's user table. This service reads it and
// updates the profile fields only.
type Profile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Image           string `json:"image"`
	Bio             string `json:"bio"`
	TargetAudience  string `json:"target_audience"`
	AIContext       string `json:"ai_context"`
	XHandle         string `json:"x_handle"`
	LeaderboardMode string `json:"leaderboard_mode"`
}

// Leaderboard participation modes.
const (
	LeaderboardModeNone      = "none"
	LeaderboardModePublic    = "public"
	LeaderboardModeAnonymous = "anonymous"
)

// HistoryEntry is one simulated post in a user's history. Analysis holds
// the prediction JSON as produced by the simulation core. User is
// populated only by RecentWithUsers.
type HistoryEntry struct {
	ID           int64           `json:"id"`
	UserID       string          `json:"user_id"`
	TweetContent string          `json:"tweet_content"`
	Analysis     json.RawMessage `json:"analysis"`
	ImageData    string          `json:"image_data,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	User         *HistoryUser    `json:"user,omitempty"`
}

// HistoryUser is the joined author snapshot used by the leaderboard.
type HistoryUser struct {
	Name            string `json:"name"`
	Image           string `json:"image"`
	XHandle         string `json:"x_handle"`
	LeaderboardMode string `json:"leaderboard_mode"`
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (Profile, bool, error)
	Update(ctx context.Context, p Profile) error
}

type HistoryStore interface {
	Insert(ctx context.Context, e HistoryEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]HistoryEntry, error)
	Delete(ctx context.Context, id int64, userID string) error
	RecentWithUsers(ctx context.Context, limit int) ([]HistoryEntry, error)
}

type StatsStore interface {
	// Increment must be atomic at the storage layer: concurrent requests
	// increment without coordination.
	Increment(ctx context.Context, key string) error
	Value(ctx context.Context, key string) (int64, error)
}

type SessionStore interface {
	// UserIDForToken resolves a session token issued by the external
	// auth provider. Empty string means no valid session.
	UserIDForToken(ctx context.Context, token string) (string, error)
}

// Stores bundles the per-domain stores behind one factory.
type Stores struct {
	Profiles ProfileStore
	History  HistoryStore
	Stats    StatsStore
	Sessions SessionStore

	closer func() error
}

// Open picks the Postgres backend when a DSN is configured and falls
// back to in-memory stores otherwise.
func Open(dsn string) (*Stores, error) {
	if strings.TrimSpace(dsn) != "" {
		return openPostgres(dsn)
	}
	return openMemory(), nil
}

func (s *Stores) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}
