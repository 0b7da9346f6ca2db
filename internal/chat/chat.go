// Package chat runs the companion assistant: free-form advice about a
// draft tweet, with an append-only in-memory transcript per session.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tweetlab/internal/llm"
	"tweetlab/internal/simulation"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a chat session. Transcripts live in memory for
// the session lifetime only.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Service struct {
	client llm.Client

	mu       sync.Mutex
	sessions map[string][]Message
	seq      int64
}

func NewService(client llm.Client) *Service {
	return &Service{client: client, sessions: make(map[string][]Message)}
}

// Reply answers one user message, optionally grounded in the tweet the
// user is currently drafting. The turn is recorded under sessionID when
// one is provided.
func (s *Service) Reply(ctx context.Context, sessionID, message, tweetContext string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("chat: message is required")
	}

	prompt := simulation.BuildChatPrompt(message, tweetContext)
	reply, err := s.client.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat: model invocation: %w", err)
	}
	if sessionID != "" {
		s.record(sessionID, RoleUser, message)
		s.record(sessionID, RoleAssistant, reply)
	}
	return reply, nil
}

// Transcript returns a copy of the session's messages in order.
func (s *Service) Transcript(sessionID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.sessions[sessionID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

func (s *Service) record(sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.sessions[sessionID] = append(s.sessions[sessionID], Message{
		ID:        fmt.Sprintf("msg-%d", s.seq),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}
