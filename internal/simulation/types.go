package simulation

import "tweetlab/internal/llm"

// TweetInput is the subject of a simulation. Text is assumed to be
// pre-validated by the caller (non-empty after trimming; the 280-char
// cap is enforced at the request boundary, not here).
type TweetInput struct {
	Text  string
	Image *llm.ImagePart
}

// Persona biases predictions and rewrites toward a specific author.
// Every field is optional; empty fields are omitted from the prompt.
type Persona struct {
	Bio             string
	TargetAudience  string
	BehavioralNotes string
}

func (p *Persona) empty() bool {
	return p == nil || (p.Bio == "" && p.TargetAudience == "" && p.BehavioralNotes == "")
}

// Variant is one AI-rewritten alternative tweet.
type Variant struct {
	Version           string   `json:"version"`
	Tweet             string   `json:"tweet"`
	Reason            string   `json:"reason"`
	AudienceReactions []string `json:"audience_reactions"`
}

// Prediction is the structured engagement forecast for one tweet.
// A non-empty Error marks a degraded prediction: the model replied but
// its output did not parse as the expected JSON shape.
type Prediction struct {
	Tweet                   string    `json:"tweet"`
	PredictedLikes          int       `json:"predicted_likes"`
	PredictedRetweets       int       `json:"predicted_retweets"`
	PredictedReplies        int       `json:"predicted_replies"`
	PredictedQuotes         int       `json:"predicted_quotes"`
	PredictedViews          int       `json:"predicted_views"`
	EngagementOutlook       string    `json:"engagement_outlook"`
	EngagementJustification string    `json:"engagement_justification"`
	ImageAnalysis           *string   `json:"image_analysis"`
	Analysis                []string  `json:"analysis"`
	Suggestions             []Variant `json:"suggestions"`
	Error                   string    `json:"error,omitempty"`
}

// Degraded reports whether this value carries the parse-failure marker
// instead of a usable forecast.
func (p *Prediction) Degraded() bool { return p != nil && p.Error != "" }

// Engagement outlook values the prompt allows.
const (
	OutlookLow    = "Low"
	OutlookMedium = "Medium"
	OutlookHigh   = "High"
)

// Variant versions, in the order the prompt requests them.
const (
	VersionCuriosity   = "Curiosity"
	VersionAuthority   = "Authority"
	VersionControversy = "Controversy"
)
