package model

import (
	"fmt"
	"sort"
	"strings"
)

// Intent is a domain the user's message is about.
type Intent int

// Supported intents. IntentGeneral is only produced as a fallback when no
// other intent clears the inclusion threshold.
const (
	IntentGeneral Intent = iota
	IntentWeather
	IntentEvents
	IntentTodos
	IntentRefresh
)

// ScoredIntents lists every intent a classifier may score, in a stable order.
var ScoredIntents = []Intent{IntentWeather, IntentEvents, IntentTodos, IntentRefresh}

var intentNames = map[Intent]string{
	IntentGeneral: "general",
	IntentWeather: "weather",
	IntentEvents:  "events",
	IntentTodos:   "todos",
	IntentRefresh: "refresh",
}

// String returns the wire name used in LLM prompts and JSON payloads.
func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return fmt.Sprintf("intent(%d)", int(i))
}

// ParseIntent maps a wire name back to an Intent.
func ParseIntent(s string) (Intent, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for intent, name := range intentNames {
		if name == s {
			return intent, true
		}
	}
	return IntentGeneral, false
}

// IntentSet is an unordered set of intents.
type IntentSet map[Intent]struct{}

// NewIntentSet builds a set from the given intents.
func NewIntentSet(intents ...Intent) IntentSet {
	s := make(IntentSet, len(intents))
	for _, i := range intents {
		s[i] = struct{}{}
	}
	return s
}

// Has reports whether i is in the set.
func (s IntentSet) Has(i Intent) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the members in declaration order.
func (s IntentSet) Sorted() []Intent {
	out := make([]Intent, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Names returns the wire names of the members in declaration order.
func (s IntentSet) Names() []string {
	sorted := s.Sorted()
	names := make([]string, len(sorted))
	for i, intent := range sorted {
		names[i] = intent.String()
	}
	return names
}
