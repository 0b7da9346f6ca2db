package simulation

import (
	"strings"
	"testing"

	"tweetlab/internal/llm"
)

func TestBuildSimulationPrompt_NoPersona(t *testing.T) {
	in := TweetInput{Text: "Just shipped a new feature!"}
	p := BuildSimulationPrompt(in, nil)

	if p.Image != nil {
		t.Fatalf("expected no image part")
	}
	if !strings.HasPrefix(p.Text, simulationPrompt) {
		t.Fatalf("prompt should start with the base template")
	}
	if !strings.HasSuffix(p.Text, "\nTweet: \"Just shipped a new feature!\"") {
		t.Fatalf("prompt should end with the quoted tweet, got tail %q", p.Text[len(p.Text)-60:])
	}
	if strings.Contains(p.Text, "Persona") && strings.Contains(p.Text, "Bio:") {
		t.Fatalf("no persona block expected")
	}
}

func TestBuildSimulationPrompt_EmptyPersonaEqualsBaseline(t *testing.T) {
	in := TweetInput{Text: "hello"}
	baseline := BuildSimulationPrompt(in, nil)
	withEmpty := BuildSimulationPrompt(in, &Persona{})

	if baseline.Text != withEmpty.Text {
		t.Fatalf("all-empty persona must render byte-for-byte like no persona")
	}
}

func TestBuildSimulationPrompt_PartialPersonaOmitsEmptyFields(t *testing.T) {
	in := TweetInput{Text: "hello"}
	p := BuildSimulationPrompt(in, &Persona{TargetAudience: "Investors"})

	if !strings.Contains(p.Text, "- Target Audience: Investors") {
		t.Fatalf("expected target audience line")
	}
	if strings.Contains(p.Text, "- Bio:") {
		t.Fatalf("empty bio must be omitted")
	}
	if strings.Contains(p.Text, "undefined") || strings.Contains(p.Text, "null\n") {
		t.Fatalf("placeholder literals must never render into the prompt")
	}
	if !strings.Contains(p.Text, "CRITICAL INSTRUCTION") {
		t.Fatalf("persona block must carry the bias instruction")
	}
}

func TestBuildSimulationPrompt_ImageOrdering(t *testing.T) {
	img := &llm.ImagePart{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	p := BuildSimulationPrompt(TweetInput{Text: "look at this", Image: img}, nil)

	if p.Image != img {
		t.Fatalf("image part must be carried through for the invoker to send first")
	}
	if !strings.Contains(p.Text, "image-text synergy") {
		t.Fatalf("prompt must include the image-synergy instructions")
	}
}

func TestBuildChatPrompt(t *testing.T) {
	withCtx := BuildChatPrompt("make it punchier", "my draft tweet")
	if !strings.Contains(withCtx, "\"my draft tweet\"") {
		t.Fatalf("tweet context should be quoted into the prompt")
	}
	without := BuildChatPrompt("general advice?", "")
	if !strings.Contains(without, "None") {
		t.Fatalf("missing context should render as None")
	}
}
