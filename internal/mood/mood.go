// Package mood derives a coarse emotional profile for a playlist from
// its track titles and artists. Pure keyword scoring, no external
// calls.
package mood

import (
	"strings"

	"github.com/sonicsync/sonicsync/internal/model"
)

// maxSampledTracks caps how many tracks feed the keyword scan.
const maxSampledTracks = 20

// moodKeywords maps each mood to the tokens that vote for it.
var moodKeywords = map[string][]string{
	"energetic": {"dance", "party", "energy", "pump", "power", "rock", "metal", "beat"},
	"romantic":  {"love", "heart", "kiss", "romantic", "valentine", "baby", "darling"},
	"sad":       {"sad", "cry", "tears", "alone", "miss", "goodbye", "sorry", "hurt"},
	"peaceful":  {"calm", "peace", "quiet", "soft", "gentle", "relax", "meditation"},
	"happy":     {"happy", "joy", "smile", "sunshine", "celebration", "fun", "good"},
	"nostalgic": {"memory", "remember", "old", "past", "childhood", "yesterday"},
}

// descriptions are the base blurbs per mood.
var descriptions = map[string]string{
	"energetic": "This playlist is full of high-energy tracks perfect for workouts or parties!",
	"romantic":  "A lovely collection of romantic songs perfect for special moments.",
	"sad":       "A melancholic playlist that captures deep emotions and feelings.",
	"peaceful":  "A calming collection ideal for relaxation and meditation.",
	"happy":     "An uplifting playlist that's sure to brighten your day!",
	"nostalgic": "A trip down memory lane with songs that evoke the past.",
	"mixed":     "A diverse playlist with a variety of moods and styles.",
	"unknown":   "An interesting collection of songs.",
}

// Analysis is the mood profile of a playlist.
type Analysis struct {
	Mood        string         `json:"mood"`
	Confidence  float64        `json:"confidence"`
	Breakdown   map[string]int `json:"mood_breakdown,omitempty"`
	Description string         `json:"description"`
}

// Analyze scores the playlist against the keyword table and returns
// the dominant mood. An empty playlist is "unknown" with zero
// confidence.
func Analyze(tracks []model.TrackDescriptor) Analysis {
	if len(tracks) == 0 {
		return Analysis{Mood: "unknown", Description: descriptions["unknown"]}
	}

	sample := tracks
	if len(sample) > maxSampledTracks {
		sample = sample[:maxSampledTracks]
	}

	var sb strings.Builder
	for _, t := range sample {
		sb.WriteString(t.Query())
		sb.WriteString(" ")
	}
	text := strings.ToLower(sb.String())

	breakdown := make(map[string]int, len(moodKeywords))
	dominant, maxScore := "mixed", 0
	for mood, keywords := range moodKeywords {
		score := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		breakdown[mood] = score
		if score > maxScore || (score == maxScore && score > 0 && mood < dominant) {
			dominant, maxScore = mood, score
		}
	}

	confidence := 0.5
	if maxScore > 0 {
		confidence = float64(maxScore) / float64(len(tracks))
		if confidence > 1 {
			confidence = 1
		}
	} else {
		dominant = "mixed"
	}

	return Analysis{
		Mood:        dominant,
		Confidence:  confidence,
		Breakdown:   breakdown,
		Description: describe(dominant, confidence),
	}
}

func describe(mood string, confidence float64) string {
	desc, ok := descriptions[mood]
	if !ok {
		desc = descriptions["unknown"]
	}

	switch {
	case confidence > 0.7:
		desc += " The mood is very consistent throughout."
	case confidence > 0.4:
		desc += " The mood is fairly consistent."
	default:
		desc += " The playlist has a varied emotional range."
	}
	return desc
}
