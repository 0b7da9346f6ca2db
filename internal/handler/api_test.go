package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tweetlab/internal/llm"
	"tweetlab/internal/store"
)

func TestHandleChat(t *testing.T) {
	h, _ := newTestHandler(t, &llm.FakeClient{ChatReply: "shorten the opener"})

	rec := httptest.NewRecorder()
	h.HandleChat(rec, postJSON("/api/chat", `{"message":"thoughts?","tweetContext":"my draft"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["response"] != "shorten the opener" {
		t.Fatalf("unexpected reply: %v", resp)
	}

	rec = httptest.NewRecorder()
	h.HandleChat(rec, postJSON("/api/chat", `{"message":"  "}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank messages are rejected, got %d", rec.Code)
	}
}

func TestHandleHistory_RequiresSession(t *testing.T) {
	h, _ := newTestHandler(t, &llm.FakeClient{Response: validModelJSON})

	rec := httptest.NewRecorder()
	h.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestHandleHistory_ListAndDelete(t *testing.T) {
	h, stores := newTestHandler(t, &llm.FakeClient{Response: validModelJSON})
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	if err := stores.History.Insert(ctx, store.HistoryEntry{UserID: "u1", TweetContent: "old post", Analysis: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.HandleHistory(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "old post") {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}

	var listed struct {
		History []store.HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}

	del := postJSON("/api/history", `{"id":`+jsonInt(listed.History[0].ID)+`}`)
	del.Method = http.MethodDelete
	del.Header.Set("Authorization", "Bearer tok")
	rec = httptest.NewRecorder()
	h.HandleHistory(rec, del)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete got %d: %s", rec.Code, rec.Body.String())
	}

	rows, _ := stores.History.ListByUser(ctx, "u1", 10)
	if len(rows) != 0 {
		t.Fatalf("row should be gone, got %+v", rows)
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestHandleStats(t *testing.T) {
	h, stores := newTestHandler(t, &llm.FakeClient{Response: validModelJSON})
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	for i := 0; i < 3; i++ {
		_ = stores.Stats.Increment(ctx, store.StatKeySimulations)
	}

	rec := httptest.NewRecorder()
	h.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	var resp map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["total_simulations"] != 3 {
		t.Fatalf("got %v", resp)
	}
}

func TestHandleLeaderboard(t *testing.T) {
	h, stores := newTestHandler(t, &llm.FakeClient{Response: validModelJSON})
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	if err := stores.History.Insert(ctx, store.HistoryEntry{
		UserID:       "u1",
		TweetContent: "ranked post",
		Analysis:     json.RawMessage(`{"predicted_likes":500,"predicted_views":10000}`),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := httptest.NewRecorder()
	h.HandleLeaderboard(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ranked post") {
		t.Fatalf("public rows should rank: %s", rec.Body.String())
	}
}

func TestHandleMeAndUpdate(t *testing.T) {
	h, _ := newTestHandler(t, &llm.FakeClient{Response: validModelJSON})

	rec := httptest.NewRecorder()
	h.HandleMe(rec, httptest.NewRequest(http.MethodGet, "/api/user/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me got %d", rec.Code)
	}

	update := postJSON("/api/user/update", `{"name":"Grace","bio":"compiler person","leaderboard_mode":"anonymous"}`)
	update.Header.Set("Authorization", "Bearer tok")
	rec = httptest.NewRecorder()
	h.HandleProfileUpdate(rec, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update got %d: %s", rec.Code, rec.Body.String())
	}

	me := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	me.Header.Set("Authorization", "Bearer tok")
	rec = httptest.NewRecorder()
	h.HandleMe(rec, me)
	if rec.Code != http.StatusOK {
		t.Fatalf("me got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User store.Profile `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Name != "Grace" || resp.User.LeaderboardMode != store.LeaderboardModeAnonymous {
		t.Fatalf("profile update did not stick: %+v", resp.User)
	}
}
