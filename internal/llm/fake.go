package llm

import (
	"context"
	"strings"
)

// FakeClient returns deterministic payloads for offline use and tests.
// When Fragments is set, GenerateJSONStream yields exactly those
// fragments; otherwise it chops Response into fixed-size pieces so the
// streamed concatenation always equals the whole-mode output.
type FakeClient struct {
	Response  string
	ChatReply string
	Fragments []string
	Err       error

	// Calls records the prompts seen, most recent last.
	Calls []Prompt
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, p Prompt) (string, error) {
	f.Calls = append(f.Calls, p)
	if f.Err != nil {
		return "", f.Err
	}
	if f.Response == "" {
		return "", ErrEmptyResponse
	}
	return f.Response, nil
}

func (f *FakeClient) GenerateJSONStream(ctx context.Context, p Prompt, onFragment func(fragment string)) (string, error) {
	f.Calls = append(f.Calls, p)
	if f.Err != nil {
		return "", f.Err
	}
	frags := f.Fragments
	if len(frags) == 0 {
		frags = chop(f.Response, 16)
	}
	var full strings.Builder
	for _, frag := range frags {
		full.WriteString(frag)
		if onFragment != nil {
			onFragment(frag)
		}
	}
	if full.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return full.String(), nil
}

func (f *FakeClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if f.ChatReply == "" {
		return "", ErrEmptyResponse
	}
	return f.ChatReply, nil
}

func chop(s string, n int) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s)/n+1)
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	return append(out, s)
}
