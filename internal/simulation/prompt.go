package simulation

import (
	"strings"

	"tweetlab/internal/llm"
)

// simulationPrompt is the base instruction template. It names the output
// schema field by field with type and range hints, states the tone and
// content guidelines, and covers image handling when an attachment is
// present.
const simulationPrompt = `You are TweetLab, an advanced AI that simulates how a tweet might perform on Twitter (X). You have deep knowledge of viral content patterns, engagement psychology, and social media dynamics.

Given a tweet text (and optionally an attached image), analyze it thoroughly and output a JSON object with the following structure:

{
  "tweet": "the original tweet text",
  "predicted_likes": <integer 0-10000>,
  "predicted_retweets": <integer 0-2000>,
  "predicted_replies": <integer 0-500>,
  "predicted_quotes": <integer 0-200>,
  "predicted_views": <integer 100-1000000>,
  "engagement_outlook": "Low" | "Medium" | "High",
  "engagement_justification": "2-3 sentence explanation of why this tweet would perform this way",
  "image_analysis": "If an image is attached, describe its content, quality, and how it affects engagement. Otherwise set to null",
  "analysis": [
    "Hook strength: <insight>",
    "Clarity: <insight>",
    "Emotional trigger: <insight>",
    "Novelty factor: <insight>",
    "Authority signal: <insight>",
    "Visual appeal: <insight about attached image, or 'No image attached'>"
  ],
  "suggestions": [
    {
      "version": "Curiosity",
      "tweet": "rewritten tweet optimized for curiosity",
      "reason": "why this version might perform better",
      "audience_reactions": ["up to 3 short quoted reactions this version might draw"]
    },
    {
      "version": "Authority",
      "tweet": "rewritten tweet optimized for authority",
      "reason": "why this version might perform better",
      "audience_reactions": ["up to 3 short quoted reactions this version might draw"]
    },
    {
      "version": "Controversy",
      "tweet": "rewritten tweet optimized for controversy",
      "reason": "why this version might perform better",
      "audience_reactions": ["up to 3 short quoted reactions this version might draw"]
    }
  ]
}

Guidelines:
- Use probabilistic language like "likely", "tends to", "often performs"
- Never claim certainty about results
- Base predictions on tweet content quality, not follower count (assume average creator)
- Be constructive with criticism
- Make alternative tweets genuinely better, not just different
- Keep alternative tweets under 280 characters
- Preserve the original tweet's structural formatting (line breaks, emoji, bullets) in alternatives
- Do not generate hashtags
- If an image is attached, analyze how the image content, quality, and relevance affects engagement
- Consider image-text synergy: does the image enhance or distract from the message?
- Output ONLY valid JSON, no additional text or markdown

Now simulate the following tweet:`

// chatPrompt frames the companion assistant.
const chatPrompt = `You are TweetLab's AI assistant, helping users refine their tweets for maximum engagement. You're friendly, concise, and focused on actionable advice.

When the user asks you to modify a tweet:
- Give them the improved version immediately
- Explain briefly why it's better
- Keep your responses short (2-3 sentences max unless asked for detail)

If they ask general questions about Twitter/X strategy, be helpful but concise.

Current tweet context (if any): `

// BuildSimulationPrompt renders the complete model input for one tweet.
// Pure and total: it never fails and performs no I/O. Empty persona
// fields are omitted individually so partial persona data never renders
// placeholder literals into the prompt.
func BuildSimulationPrompt(in TweetInput, persona *Persona) llm.Prompt {
	var b strings.Builder
	b.WriteString(simulationPrompt)

	if !persona.empty() {
		b.WriteString("\n\nUser Persona Context:\n")
		if persona.Bio != "" {
			b.WriteString("- Bio: " + persona.Bio + "\n")
		}
		if persona.TargetAudience != "" {
			b.WriteString("- Target Audience: " + persona.TargetAudience + "\n")
		}
		if persona.BehavioralNotes != "" {
			b.WriteString("- Additional Behaviors/Context: " + persona.BehavioralNotes + "\n")
		}
		b.WriteString(`
CRITICAL INSTRUCTION: Adjust your analysis ("likely", "tends to") and SUGGESTIONS based on this specific persona.
For example, if the audience is "Investors", prioritize authority and clarity. If "Gen Z", prioritize novelty and memes.
`)
	}

	b.WriteString("\nTweet: \"" + in.Text + "\"")

	return llm.Prompt{Text: b.String(), Image: in.Image}
}

// BuildChatPrompt renders the assistant prompt for one chat turn.
func BuildChatPrompt(message, tweetContext string) string {
	if strings.TrimSpace(tweetContext) == "" {
		return chatPrompt + "None\n\nUser: " + message
	}
	return chatPrompt + "\"" + tweetContext + "\"\n\nUser: " + message
}
