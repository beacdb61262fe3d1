package intent

import (
	"regexp"

	"github.com/Veraticus/nova/internal/model"
)

// Scores maps intents to a confidence in [0, 1].
type Scores map[model.Intent]float64

// patterns holds the keyword pattern for every scored intent.
var patterns = map[model.Intent]*regexp.Regexp{
	model.IntentWeather: regexp.MustCompile(`(?i)\b(weather|temperature|rain|forecast|cold|hot|sunny|cloudy|umbrella|degrees|jacket)\b`),
	model.IntentEvents:  regexp.MustCompile(`(?i)\b(calendar|meeting|event|schedule|appointment|busy|free|available)\b`),
	model.IntentTodos:   regexp.MustCompile(`(?i)\b(todo|task|reminder|to-do|tasks|checklist)\b`),
	model.IntentRefresh: regexp.MustCompile(`(?i)\b(refresh|update|latest|check again|refetch|reload)\b`),
}

// scoreRegex scores each intent by its keyword matches: one match gives
// cfg.SingleMatch, more give cfg.MultiMatch. Unmatched intents are absent.
func scoreRegex(message string, cfg Config) Scores {
	scores := make(Scores)
	for _, i := range model.ScoredIntents {
		switch n := len(patterns[i].FindAllStringIndex(message, -1)); {
		case n == 1:
			scores[i] = cfg.SingleMatch
		case n > 1:
			scores[i] = cfg.MultiMatch
		}
	}
	return scores
}

// DetectSimple is regex-only detection: every intent with at least one
// keyword match, or {general}.
func DetectSimple(message string) model.IntentSet {
	set := model.NewIntentSet()
	for _, i := range model.ScoredIntents {
		if patterns[i].MatchString(message) {
			set[i] = struct{}{}
		}
	}
	if len(set) == 0 {
		return model.NewIntentSet(model.IntentGeneral)
	}
	return set
}

// fuse takes the per-intent maximum of a and b.
func fuse(a, b Scores) Scores {
	out := make(Scores, len(model.ScoredIntents))
	for _, i := range model.ScoredIntents {
		out[i] = max(a[i], b[i])
	}
	return out
}

// filter returns the intents at or above threshold, or {general}.
func filter(scores Scores, threshold float64) model.IntentSet {
	set := model.NewIntentSet()
	for i, conf := range scores {
		if i != model.IntentGeneral && conf >= threshold {
			set[i] = struct{}{}
		}
	}
	if len(set) == 0 {
		return model.NewIntentSet(model.IntentGeneral)
	}
	return set
}
