package llm

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the model call succeeded but the
	// response carried no usable text.
	ErrEmptyResponse = errors.New("llm: empty response from model")
)

// ImagePart is a binary attachment sent alongside the prompt text.
type ImagePart struct {
	MIMEType string
	Data     []byte
}

// Prompt is a fully rendered model input. When Image is set, the image
// part is sent before the text part so the model sees the visual context
// before the textual ask.
type Prompt struct {
	Text  string
	Image *ImagePart
}

// Client abstracts the generative model service.
//
// GenerateJSON asks for an application/json response and returns the raw
// model text in one piece. GenerateJSONStream does the same but invokes
// onFragment for every incremental text fragment as it arrives; fragments
// concatenate (never replace) and the full concatenation is returned.
// The fragment sequence is finite, non-restartable, and consumed exactly
// once by the immediate caller.
//
// Neither mode retries internally: one model invocation per call. Each
// invocation is billed and latency-charged, so failures surface upward
// instead of being retried transparently.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, p Prompt) (string, error)
	GenerateJSONStream(ctx context.Context, p Prompt, onFragment func(fragment string)) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}
