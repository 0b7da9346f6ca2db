package app

import (
	"context"
	"fmt"
	"log"

	"tweetlab/internal/chat"
	"tweetlab/internal/config"
	"tweetlab/internal/handler"
	"tweetlab/internal/identity"
	"tweetlab/internal/leaderboard"
	"tweetlab/internal/llm"
	"tweetlab/internal/server"
	"tweetlab/internal/simulation"
	"tweetlab/internal/store"
	"tweetlab/internal/store/imagestore"
)

type App struct {
	srv    *server.Server
	stores *store.Stores
	client llm.Client
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	stores, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL not set; using in-memory stores")
	}

	client, err := newModelClient(cfg)
	if err != nil {
		return nil, err
	}

	effects := &store.Effects{
		Stats:   stores.Stats,
		History: stores.History,
		Images:  newImageStore(cfg),
	}

	orchestrator := simulation.NewOrchestrator(client, store.Personas{Profiles: stores.Profiles}, effects)

	board, err := leaderboard.New(stores.History)
	if err != nil {
		return nil, fmt.Errorf("init leaderboard: %w", err)
	}

	h := &handler.Handler{
		Orchestrator: orchestrator,
		Chat:         chat.NewService(client),
		Stores:       stores,
		Identity:     &identity.Resolver{Sessions: stores.Sessions},
		Leaderboard:  board,
	}

	return &App{
		srv:    server.New(cfg.Port, server.NewMux(h)),
		stores: stores,
		client: client,
	}, nil
}

func (a *App) Start() error { return a.srv.Start() }

func (a *App) Shutdown(ctx context.Context) error {
	err := a.srv.Shutdown(ctx)
	_ = a.client.Close()
	_ = a.stores.Close()
	return err
}

func newModelClient(cfg *config.Config) (llm.Client, error) {
	if cfg.Gemini.APIKey == "" {
		log.Printf("GEMINI_API_KEY not set; using fake model client")
		return &llm.FakeClient{
			Response:  offlineSample,
			ChatReply: "Tighten the hook in your first line and drop the filler words.",
		}, nil
	}
	client, err := llm.NewGeminiClient(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.RPS, cfg.Gemini.Burst)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return client, nil
}

func newImageStore(cfg *config.Config) *imagestore.S3Store {
	if !cfg.Image.Enabled {
		return nil
	}
	s3, err := imagestore.NewS3Store(imagestore.S3Config{
		Endpoint:  cfg.Image.Endpoint,
		Region:    cfg.Image.Region,
		AccessKey: cfg.Image.AccessKey,
		SecretKey: cfg.Image.SecretKey,
		Bucket:    cfg.Image.Bucket,
		UseSSL:    cfg.Image.UseSSL,
	})
	if err != nil {
		log.Printf("image store disabled: %v", err)
		return nil
	}
	log.Printf("image store: s3 bucket=%s endpoint=%s", cfg.Image.Bucket, cfg.Image.Endpoint)
	return s3
}

// offlineSample keeps local runs usable without an API key.
const offlineSample = `{
  "tweet": "offline sample",
  "predicted_likes": 120,
  "predicted_retweets": 18,
  "predicted_replies": 9,
  "predicted_quotes": 3,
  "predicted_views": 8200,
  "engagement_outlook": "Medium",
  "engagement_justification": "A clear announcement tends to draw steady but unspectacular engagement.",
  "image_analysis": null,
  "analysis": [
    "Hook strength: opens with the news itself, which tends to hold attention",
    "Clarity: one idea, plainly stated",
    "Emotional trigger: mild; curiosity does most of the work",
    "Novelty factor: familiar framing, likely to blend in",
    "Authority signal: first-person shipping note reads as credible",
    "Visual appeal: No image attached"
  ],
  "suggestions": [
    {"version": "Curiosity", "tweet": "We almost didn't ship this feature. Here's what changed our minds.", "reason": "An open loop often lifts click-through and replies.", "audience_reactions": ["What changed?", "Go on..."]},
    {"version": "Authority", "tweet": "After 6 weeks of testing, the new feature is live. The numbers that convinced us to ship it:", "reason": "Specifics tend to signal competence and earn retweets.", "audience_reactions": ["Love the transparency"]},
    {"version": "Controversy", "tweet": "Most teams ship features nobody asked for. We killed three ideas to ship this one.", "reason": "A mild contrarian take often provokes quote tweets.", "audience_reactions": ["Hot take", "Which three?"]}
  ]
}`
