package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"tweetlab/internal/simulation"
	"tweetlab/internal/store/imagestore"
	"tweetlab/internal/util/jsonutil"
)

// StatKeySimulations is the global simulation tally.
const StatKeySimulations = "total_simulations"

// Effects implements simulation.SideEffects against the stores. Images
// is optional; when present the raw attachment bytes are also copied to
// the object store, best effort.
type Effects struct {
	Stats   StatsStore
	History HistoryStore
	Images  *imagestore.S3Store
}

func (e *Effects) IncrementSimulations(ctx context.Context) error {
	if e == nil || e.Stats == nil {
		return nil
	}
	return e.Stats.Increment(ctx, StatKeySimulations)
}

func (e *Effects) SaveHistory(ctx context.Context, userID, tweet, imageDataURI string, p simulation.Prediction) error {
	if e == nil || e.History == nil {
		return nil
	}
	analysis, err := jsonutil.MarshalNoEscape(p)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	entry := HistoryEntry{
		UserID:       userID,
		TweetContent: tweet,
		Analysis:     analysis,
		ImageData:    imageDataURI,
	}
	if err := e.History.Insert(ctx, entry); err != nil {
		return err
	}
	if e.Images != nil && imageDataURI != "" {
		if err := e.putImage(ctx, userID, imageDataURI); err != nil {
			log.Printf("image store write failed for %s: %v", userID, err)
		}
	}
	return nil
}

func (e *Effects) putImage(ctx context.Context, userID, dataURI string) error {
	mimeType, payload, ok := strings.Cut(strings.TrimPrefix(dataURI, "data:"), ";base64,")
	if !ok {
		return fmt.Errorf("not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("decode image payload: %w", err)
	}
	return e.Images.Put(ctx, userID, mimeType, data)
}

// Personas adapts the profile store to the orchestrator's PersonaSource.
type Personas struct {
	Profiles ProfileStore
}

func (s Personas) Persona(ctx context.Context, userID string) (*simulation.Persona, error) {
	if s.Profiles == nil {
		return nil, nil
	}
	p, ok, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &simulation.Persona{
		Bio:             p.Bio,
		TargetAudience:  p.TargetAudience,
		BehavioralNotes: p.AIContext,
	}, nil
}
