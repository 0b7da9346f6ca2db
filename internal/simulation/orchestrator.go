package simulation

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"tweetlab/internal/llm"
)

// PersonaSource resolves persona context for a caller identity.
// The profile store implements this; absence of a profile is not an
// error.
type PersonaSource interface {
	Persona(ctx context.Context, userID string) (*Persona, error)
}

// SideEffects receives the best-effort writes that follow a successful
// prediction. Implementations must tolerate failure: the orchestrator
// logs and swallows every error here.
type SideEffects interface {
	IncrementSimulations(ctx context.Context) error
	SaveHistory(ctx context.Context, userID, tweet, imageDataURI string, p Prediction) error
}

// Orchestrator runs the end-to-end lifecycle of one simulation request:
// resolve persona, build the prompt, invoke the model, parse, then fire
// the side effects. It produces at most one Prediction per request and
// never retries the pipeline.
type Orchestrator struct {
	client   llm.Client
	personas PersonaSource
	effects  SideEffects

	// spawn runs side effects off the critical path. Tests replace it
	// with a synchronous runner.
	spawn func(fn func())
}

func NewOrchestrator(client llm.Client, personas PersonaSource, effects SideEffects) *Orchestrator {
	return &Orchestrator{
		client:   client,
		personas: personas,
		effects:  effects,
		spawn:    func(fn func()) { go fn() },
	}
}

// SetSpawner overrides how side effects are scheduled. Intended for
// tests that need them to run synchronously.
func (o *Orchestrator) SetSpawner(spawn func(fn func())) {
	if spawn != nil {
		o.spawn = spawn
	}
}

// Simulate runs the whole-response pipeline. The returned error is
// non-nil only when the model invocation itself failed; unusable model
// output comes back as a degraded Prediction with a nil error.
func (o *Orchestrator) Simulate(ctx context.Context, userID string, in TweetInput) (Prediction, error) {
	prompt := BuildSimulationPrompt(in, o.resolvePersona(ctx, userID))

	raw, err := o.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return Prediction{}, fmt.Errorf("simulate: model invocation: %w", err)
	}

	p := ParsePrediction(raw, in.Image != nil)
	o.sideEffects(userID, in, p)
	return p, nil
}

// SimulateStream runs the streaming pipeline. onProgress receives the
// running concatenated text after every fragment; it is raw, unparsed
// progress for display only. Parsing happens exactly once, on the full
// text, after the fragment sequence is exhausted.
func (o *Orchestrator) SimulateStream(ctx context.Context, userID string, in TweetInput, onProgress func(partial string)) (Prediction, error) {
	prompt := BuildSimulationPrompt(in, o.resolvePersona(ctx, userID))

	var partial string
	raw, err := o.client.GenerateJSONStream(ctx, prompt, func(fragment string) {
		partial += fragment
		if onProgress != nil {
			onProgress(partial)
		}
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("simulate: model invocation: %w", err)
	}

	p := ParsePrediction(raw, in.Image != nil)
	o.sideEffects(userID, in, p)
	return p, nil
}

// resolvePersona degrades silently: no identity, no stored profile, or
// a fetch error all mean "no persona".
func (o *Orchestrator) resolvePersona(ctx context.Context, userID string) *Persona {
	if o.personas == nil || userID == "" {
		return nil
	}
	persona, err := o.personas.Persona(ctx, userID)
	if err != nil {
		log.Printf("persona fetch failed for %s: %v", userID, err)
		return nil
	}
	return persona
}

// sideEffects schedules the stat increment and history write after a
// non-degraded prediction. Fire and forget: the response is already
// computed, so failures are logged and never surface to the caller. A
// background context detaches the writes from the request's lifetime.
func (o *Orchestrator) sideEffects(userID string, in TweetInput, p Prediction) {
	if o.effects == nil || p.Degraded() {
		return
	}
	o.spawn(func() {
		ctx := context.Background()
		if err := o.effects.IncrementSimulations(ctx); err != nil {
			log.Printf("stat increment failed: %v", err)
		}
		if userID == "" {
			return
		}
		if err := o.effects.SaveHistory(ctx, userID, in.Text, imageDataURI(in.Image), p); err != nil {
			log.Printf("history save failed for %s: %v", userID, err)
		}
	})
}

func imageDataURI(img *llm.ImagePart) string {
	if img == nil {
		return ""
	}
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
