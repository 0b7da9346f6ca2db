package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrediction_WellFormed(t *testing.T) {
	raw := `{
		"tweet": "x",
		"predicted_likes": 100,
		"predicted_retweets": 20,
		"predicted_replies": 5,
		"predicted_quotes": 2,
		"predicted_views": 5000,
		"engagement_outlook": "High",
		"engagement_justification": "solid hook",
		"image_analysis": null,
		"analysis": ["Hook strength: strong"],
		"suggestions": [
			{"version": "Curiosity", "tweet": "a", "reason": "r", "audience_reactions": ["wow"]},
			{"version": "Authority", "tweet": "b", "reason": "r"},
			{"version": "Controversy", "tweet": "c", "reason": "r"}
		]
	}`
	p := ParsePrediction(raw, false)

	require.False(t, p.Degraded())
	assert.Equal(t, 100, p.PredictedLikes)
	assert.Equal(t, 5000, p.PredictedViews)
	assert.Equal(t, OutlookHigh, p.EngagementOutlook)
	require.Len(t, p.Suggestions, 3)
	assert.Equal(t, VersionCuriosity, p.Suggestions[0].Version)
	// omitted reactions default to an empty sequence, not nil
	assert.NotNil(t, p.Suggestions[1].AudienceReactions)
	assert.Empty(t, p.Suggestions[1].AudienceReactions)
}

func TestParsePrediction_ClampsRanges(t *testing.T) {
	raw := `{
		"tweet": "x",
		"predicted_likes": -5,
		"predicted_retweets": 999999999,
		"predicted_replies": 3.7,
		"predicted_views": 7,
		"engagement_outlook": "medium"
	}`
	p := ParsePrediction(raw, false)

	require.False(t, p.Degraded())
	assert.Equal(t, 0, p.PredictedLikes, "negative counts clamp to zero")
	assert.Equal(t, 2000, p.PredictedRetweets, "oversized counts clamp to the documented cap")
	assert.Equal(t, 4, p.PredictedReplies, "fractional counts round")
	assert.Equal(t, 100, p.PredictedViews, "views clamp to the documented floor")
	assert.Equal(t, OutlookMedium, p.EngagementOutlook)
}

func TestParsePrediction_MissingNumericsDefault(t *testing.T) {
	p := ParsePrediction(`{"tweet":"x","predicted_likes":100}`, false)

	require.False(t, p.Degraded())
	assert.Equal(t, 0, p.PredictedQuotes)
	assert.Equal(t, 100, p.PredictedViews)
	assert.Nil(t, p.ImageAnalysis)
	assert.NotNil(t, p.Analysis)
}

func TestParsePrediction_Degraded(t *testing.T) {
	p := ParsePrediction("not json", false)

	require.True(t, p.Degraded())
	assert.NotEmpty(t, p.Error)
}

func TestParsePrediction_VariantsPassThrough(t *testing.T) {
	// The validator reports exactly what was present: a single Curiosity
	// entry stays a single entry. Completeness is a best-effort contract
	// of the prompt, not a post-hoc guarantee here.
	raw := `{"tweet":"x","suggestions":[{"version":"Curiosity","tweet":"a","reason":"r"}]}`
	p := ParsePrediction(raw, false)

	require.False(t, p.Degraded())
	require.Len(t, p.Suggestions, 1)
	assert.Equal(t, VersionCuriosity, p.Suggestions[0].Version)
}

func TestParsePrediction_ReactionsTruncated(t *testing.T) {
	raw := `{"tweet":"x","suggestions":[{"version":"Curiosity","tweet":"a","reason":"r","audience_reactions":["1","2","3","4","5"]}]}`
	p := ParsePrediction(raw, false)

	require.Len(t, p.Suggestions, 1)
	assert.Len(t, p.Suggestions[0].AudienceReactions, 3)
}

func TestParsePrediction_ImageAnalysis(t *testing.T) {
	raw := `{"tweet":"x","image_analysis":"bright product shot"}`

	withImage := ParsePrediction(raw, true)
	require.NotNil(t, withImage.ImageAnalysis)
	assert.Equal(t, "bright product shot", *withImage.ImageAnalysis)

	// without an attached image the field is forced back to null
	withoutImage := ParsePrediction(raw, false)
	assert.Nil(t, withoutImage.ImageAnalysis)
}

func TestParsePrediction_FencedJSON(t *testing.T) {
	raw := "```json\n{\"tweet\":\"x\",\"predicted_likes\":10}\n```"
	p := ParsePrediction(raw, false)

	require.False(t, p.Degraded())
	assert.Equal(t, 10, p.PredictedLikes)
}
