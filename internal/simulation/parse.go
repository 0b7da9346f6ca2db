package simulation

import (
	"math"
	"strings"

	"tweetlab/internal/util/jsonutil"
)

// Numeric ranges the prompt instructs the model to respect. The model is
// instructed, not guaranteed, so the parser clamps defensively.
const (
	maxLikes    = 10000
	maxRetweets = 2000
	maxReplies  = 500
	maxQuotes   = 200
	minViews    = 100
	maxViews    = 1000000

	maxAudienceReactions = 3
)

// degradedMessage is the error marker carried by a Prediction when the
// model replied but its text did not parse as the expected shape.
const degradedMessage = "Failed to parse response"

// rawPrediction mirrors the model's JSON loosely: numbers as float64 so
// fractional or out-of-range values survive decoding, everything else
// optional.
type rawPrediction struct {
	Tweet                   string       `json:"tweet"`
	PredictedLikes          *float64     `json:"predicted_likes"`
	PredictedRetweets       *float64     `json:"predicted_retweets"`
	PredictedReplies        *float64     `json:"predicted_replies"`
	PredictedQuotes         *float64     `json:"predicted_quotes"`
	PredictedViews          *float64     `json:"predicted_views"`
	EngagementOutlook       string       `json:"engagement_outlook"`
	EngagementJustification string       `json:"engagement_justification"`
	ImageAnalysis           *string      `json:"image_analysis"`
	Analysis                []string     `json:"analysis"`
	Suggestions             []rawVariant `json:"suggestions"`
}

type rawVariant struct {
	Version           string   `json:"version"`
	Tweet             string   `json:"tweet"`
	Reason            string   `json:"reason"`
	AudienceReactions []string `json:"audience_reactions"`
}

// ParsePrediction converts raw model text into a validated Prediction.
//
// On parse failure it does not return an error: it returns a degraded
// Prediction carrying an error marker, so the request boundary can keep
// its 200/complete-stream contract and the client can distinguish
// "model gave unusable output" from a service failure.
//
// Suggestions are passed through exactly as parsed: missing or
// misordered variants are not backfilled or reordered, since inventing
// content here would be worse than reporting what the model produced.
func ParsePrediction(raw string, hadImage bool) Prediction {
	var rp rawPrediction
	if err := jsonutil.UnmarshalFlex([]byte(raw), &rp); err != nil {
		return Prediction{Error: degradedMessage}
	}

	p := Prediction{
		Tweet:                   rp.Tweet,
		PredictedLikes:          clampInt(rp.PredictedLikes, 0, maxLikes),
		PredictedRetweets:       clampInt(rp.PredictedRetweets, 0, maxRetweets),
		PredictedReplies:        clampInt(rp.PredictedReplies, 0, maxReplies),
		PredictedQuotes:         clampInt(rp.PredictedQuotes, 0, maxQuotes),
		PredictedViews:          clampInt(rp.PredictedViews, minViews, maxViews),
		EngagementOutlook:       normalizeOutlook(rp.EngagementOutlook),
		EngagementJustification: rp.EngagementJustification,
		Analysis:                rp.Analysis,
		Suggestions:             make([]Variant, 0, len(rp.Suggestions)),
	}
	if p.Analysis == nil {
		p.Analysis = []string{}
	}

	if hadImage && rp.ImageAnalysis != nil && *rp.ImageAnalysis != "" && *rp.ImageAnalysis != "null" {
		p.ImageAnalysis = rp.ImageAnalysis
	}

	for _, s := range rp.Suggestions {
		reactions := s.AudienceReactions
		if reactions == nil {
			reactions = []string{}
		}
		if len(reactions) > maxAudienceReactions {
			reactions = reactions[:maxAudienceReactions]
		}
		p.Suggestions = append(p.Suggestions, Variant{
			Version:           s.Version,
			Tweet:             s.Tweet,
			Reason:            s.Reason,
			AudienceReactions: reactions,
		})
	}

	return p
}

// clampInt coerces an optional float into [lo, hi]. Missing and
// non-finite values land on lo, so no NaN or negative count ever
// propagates.
func clampInt(v *float64, lo, hi int) int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return lo
	}
	n := int(math.Round(*v))
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func normalizeOutlook(s string) string {
	switch s {
	case OutlookLow, OutlookMedium, OutlookHigh:
		return s
	}
	switch {
	case strings.EqualFold(s, OutlookLow):
		return OutlookLow
	case strings.EqualFold(s, OutlookHigh):
		return OutlookHigh
	default:
		return OutlookMedium
	}
}
