package intent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/Veraticus/nova/internal/model"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripFences returns the body of the first markdown code fence, or the
// trimmed text when there is none.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// parseScores reads an {"intent": probability} object. Malformed JSON gets
// one repair attempt. Unknown intents, non-numeric values and values outside
// [0, 1] are dropped.
func parseScores(text string) (Scores, error) {
	body := stripFences(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(body)
		if repairErr != nil {
			return nil, fmt.Errorf("failed to parse classification: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse repaired classification: %w", err)
		}
	}

	scores := make(Scores)
	for name, value := range raw {
		i, ok := model.ParseIntent(name)
		if !ok || i == model.IntentGeneral {
			continue
		}
		p, ok := value.(float64)
		if !ok || p < 0 || p > 1 {
			continue
		}
		scores[i] = p
	}
	return scores, nil
}
