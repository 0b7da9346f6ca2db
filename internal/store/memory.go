package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// memStore keeps everything in process memory. Used when no DATABASE_URL
// is configured (local runs, tests).
type memStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	history  []HistoryEntry
	stats    map[string]int64
	sessions map[string]string
	nextID   int64
}

func openMemory() *Stores {
	s := &memStore{
		profiles: make(map[string]Profile),
		stats:    make(map[string]int64),
		sessions: make(map[string]string),
		nextID:   1,
	}
	return &Stores{Profiles: s, History: s, Stats: s, Sessions: s}
}

// NewMemoryStores exposes the in-memory backend for tests.
func NewMemoryStores() *Stores { return openMemory() }

// SeedSession registers a token for tests and local runs.
func (s *Stores) SeedSession(token, userID string) {
	if m, ok := s.Sessions.(*memStore); ok {
		m.mu.Lock()
		m.sessions[token] = userID
		m.mu.Unlock()
	}
}

// SeedProfile registers a profile for tests and local runs.
func (s *Stores) SeedProfile(p Profile) {
	if m, ok := s.Profiles.(*memStore); ok {
		m.mu.Lock()
		m.profiles[p.ID] = p
		m.mu.Unlock()
	}
}

func (s *memStore) Get(ctx context.Context, userID string) (Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[strings.TrimSpace(userID)]
	return p, ok, nil
}

func (s *memStore) Update(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return nil
}

func (s *memStore) Insert(ctx context.Context, e HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.history = append(s.history, e)
	return nil
}

func (s *memStore) ListByUser(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HistoryEntry, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		if s.history[i].UserID == userID {
			out = append(out, s.history[i])
		}
	}
	return out, nil
}

func (s *memStore) Delete(ctx context.Context, id int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.history {
		if e.ID == id && e.UserID == userID {
			s.history = append(s.history[:i], s.history[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) RecentWithUsers(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HistoryEntry, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.history[i]
		if p, ok := s.profiles[e.UserID]; ok {
			e.User = &HistoryUser{
				Name:            p.Name,
				Image:           p.Image,
				XHandle:         p.XHandle,
				LeaderboardMode: p.LeaderboardMode,
			}
		} else {
			e.User = &HistoryUser{LeaderboardMode: LeaderboardModeNone}
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) Increment(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[key]++
	return nil
}

func (s *memStore) Value(ctx context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats[key], nil
}

func (s *memStore) UserIDForToken(ctx context.Context, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[strings.TrimSpace(token)], nil
}
