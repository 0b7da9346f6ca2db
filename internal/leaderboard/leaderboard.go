// Package leaderboard ranks recent simulated posts by predicted
// engagement. Scoring is a stateless arithmetic pass over history rows;
// participation and anonymity follow each author's leaderboard_mode.
package leaderboard

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"tweetlab/internal/simulation"
	"tweetlab/internal/store"
)

const (
	topLimit = 50
	cacheKey = "top"
	cacheTTL = 30 * time.Second
)

// Entry is one ranked row as served to clients.
type Entry struct {
	ID              int64           `json:"id"`
	TweetContent    string          `json:"tweet_content"`
	CreatedAt       time.Time       `json:"created_at"`
	Analysis        json.RawMessage `json:"analysis"`
	CalculatedScore int             `json:"calculated_score"`
	User            EntryUser       `json:"user"`
}

type EntryUser struct {
	Name        string `json:"name"`
	Handle      string `json:"handle"`
	Image       string `json:"image"`
	IsAnonymous bool   `json:"is_anonymous"`
}

type cached struct {
	entries   []Entry
	fetchedAt time.Time
}

type Service struct {
	history store.HistoryStore
	cache   *lru.Cache[string, cached]
	now     func() time.Time
}

func New(history store.HistoryStore) (*Service, error) {
	cache, err := lru.New[string, cached](8)
	if err != nil {
		return nil, err
	}
	return &Service{history: history, cache: cache, now: time.Now}, nil
}

// Top returns the ranked, privacy-filtered leaderboard. Reads go through
// a short-lived cache since every visitor hits this endpoint.
func (s *Service) Top(ctx context.Context) ([]Entry, error) {
	if c, ok := s.cache.Get(cacheKey); ok && s.now().Sub(c.fetchedAt) < cacheTTL {
		return c.entries, nil
	}

	rows, err := s.history.RecentWithUsers(ctx, topLimit)
	if err != nil {
		return nil, err
	}
	entries := Rank(rows)

	s.cache.Add(cacheKey, cached{entries: entries, fetchedAt: s.now()})
	return entries, nil
}

// Rank scores, filters and anonymizes history rows. Exported separately
// so the pass stays testable without a store.
func Rank(rows []store.HistoryEntry) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		mode := store.LeaderboardModeNone
		user := row.User
		if user != nil && user.LeaderboardMode != "" {
			mode = user.LeaderboardMode
		}
		if mode == store.LeaderboardModeNone {
			continue
		}
		anonymous := mode == store.LeaderboardModeAnonymous

		e := Entry{
			ID:              row.ID,
			TweetContent:    row.TweetContent,
			CreatedAt:       row.CreatedAt,
			Analysis:        row.Analysis,
			CalculatedScore: Score(row.Analysis),
			User: EntryUser{
				Name:        "Anonymous User",
				IsAnonymous: anonymous,
			},
		}
		if !anonymous {
			e.User.Name = "Simulated User"
			if user != nil {
				if user.Name != "" {
					e.User.Name = user.Name
				}
				e.User.Handle = user.XHandle
				e.User.Image = user.Image
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CalculatedScore > entries[j].CalculatedScore
	})
	if len(entries) > topLimit {
		entries = entries[:topLimit]
	}
	return entries
}

// Score maps a prediction to 0-100: likes weigh 1, retweets 2, replies
// 3, views 0.01, scaled down by 100 and capped.
func Score(analysis json.RawMessage) int {
	var p simulation.Prediction
	if err := json.Unmarshal(analysis, &p); err != nil {
		return 0
	}
	score := (float64(p.PredictedLikes)*1 +
		float64(p.PredictedRetweets)*2 +
		float64(p.PredictedReplies)*3 +
		float64(p.PredictedViews)*0.01) / 100
	n := int(math.Round(score))
	if n > 100 {
		return 100
	}
	if n < 0 {
		return 0
	}
	return n
}
