package simulation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tweetlab/internal/llm"
)

type recordingEffects struct {
	increments int
	histories  []savedHistory
}

type savedHistory struct {
	userID, tweet, imageDataURI string
	prediction                  Prediction
}

func (r *recordingEffects) IncrementSimulations(ctx context.Context) error {
	r.increments++
	return nil
}

func (r *recordingEffects) SaveHistory(ctx context.Context, userID, tweet, imageDataURI string, p Prediction) error {
	r.histories = append(r.histories, savedHistory{userID, tweet, imageDataURI, p})
	return nil
}

type staticPersonas struct{ p *Persona }

func (s staticPersonas) Persona(ctx context.Context, userID string) (*Persona, error) {
	return s.p, nil
}

func syncOrchestrator(client llm.Client, personas PersonaSource, effects SideEffects) *Orchestrator {
	o := NewOrchestrator(client, personas, effects)
	o.SetSpawner(func(fn func()) { fn() })
	return o
}

const validModelJSON = `{"tweet":"hi","predicted_likes":50,"predicted_views":1000,"engagement_outlook":"Medium","suggestions":[]}`

func TestSimulate_WholeMode(t *testing.T) {
	fake := &llm.FakeClient{Response: validModelJSON}
	effects := &recordingEffects{}
	o := syncOrchestrator(fake, nil, effects)

	p, err := o.Simulate(context.Background(), "user-1", TweetInput{Text: "hi"})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if p.Degraded() {
		t.Fatalf("unexpected degraded prediction: %s", p.Error)
	}
	if effects.increments != 1 {
		t.Fatalf("expected one stat increment, got %d", effects.increments)
	}
	if len(effects.histories) != 1 || effects.histories[0].userID != "user-1" {
		t.Fatalf("expected one history row for user-1, got %+v", effects.histories)
	}
}

func TestSimulate_NoIdentitySkipsHistory(t *testing.T) {
	fake := &llm.FakeClient{Response: validModelJSON}
	effects := &recordingEffects{}
	o := syncOrchestrator(fake, nil, effects)

	if _, err := o.Simulate(context.Background(), "", TweetInput{Text: "hi"}); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if effects.increments != 1 {
		t.Fatalf("counter still increments for anonymous callers")
	}
	if len(effects.histories) != 0 {
		t.Fatalf("no history without identity")
	}
}

func TestSimulate_DegradedSkipsSideEffects(t *testing.T) {
	fake := &llm.FakeClient{Response: "not json"}
	effects := &recordingEffects{}
	o := syncOrchestrator(fake, nil, effects)

	p, err := o.Simulate(context.Background(), "user-1", TweetInput{Text: "hi"})
	if err != nil {
		t.Fatalf("degraded parse must not be a request failure: %v", err)
	}
	if !p.Degraded() {
		t.Fatalf("expected degraded prediction")
	}
	if effects.increments != 0 || len(effects.histories) != 0 {
		t.Fatalf("side effects must not run for degraded output")
	}
}

func TestSimulate_InvocationErrorPropagates(t *testing.T) {
	boom := errors.New("service down")
	fake := &llm.FakeClient{Err: boom}
	o := syncOrchestrator(fake, nil, &recordingEffects{})

	_, err := o.Simulate(context.Background(), "", TweetInput{Text: "hi"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected invocation error, got %v", err)
	}
}

func TestSimulateStream_ReconstructionMatchesWholeMode(t *testing.T) {
	whole := &llm.FakeClient{Response: validModelJSON}
	streamed := &llm.FakeClient{Response: validModelJSON}

	wholeOrch := syncOrchestrator(whole, nil, nil)
	streamOrch := syncOrchestrator(streamed, nil, nil)

	pw, err := wholeOrch.Simulate(context.Background(), "", TweetInput{Text: "hi"})
	if err != nil {
		t.Fatalf("whole: %v", err)
	}

	var last string
	ps, err := streamOrch.SimulateStream(context.Background(), "", TweetInput{Text: "hi"}, func(partial string) {
		if !strings.HasPrefix(partial, last) {
			t.Fatalf("progress must concatenate, not replace: %q then %q", last, partial)
		}
		last = partial
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	if last != validModelJSON {
		t.Fatalf("concatenated fragments must equal the whole-mode text")
	}
	if pw.PredictedLikes != ps.PredictedLikes || pw.EngagementOutlook != ps.EngagementOutlook {
		t.Fatalf("streamed and whole predictions diverge")
	}
}

func TestSimulate_PersonaReachesPrompt(t *testing.T) {
	fake := &llm.FakeClient{Response: validModelJSON}
	personas := staticPersonas{p: &Persona{Bio: "indie hacker"}}
	o := syncOrchestrator(fake, personas, nil)

	if _, err := o.Simulate(context.Background(), "user-1", TweetInput{Text: "hi"}); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(fake.Calls) != 1 || !strings.Contains(fake.Calls[0].Text, "indie hacker") {
		t.Fatalf("persona bio should be rendered into the prompt")
	}
}

func TestSimulate_ImageDataURISaved(t *testing.T) {
	fake := &llm.FakeClient{Response: validModelJSON}
	effects := &recordingEffects{}
	o := syncOrchestrator(fake, nil, effects)

	img := &llm.ImagePart{MIMEType: "image/png", Data: []byte{1, 2, 3}}
	if _, err := o.Simulate(context.Background(), "user-1", TweetInput{Text: "hi", Image: img}); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(effects.histories) != 1 {
		t.Fatalf("expected history row")
	}
	uri := effects.histories[0].imageDataURI
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("expected data URI, got %q", uri)
	}
}
