package intent

import (
	"fmt"
	"strings"
)

const fewShotExamples = `EXAMPLES:
User: "What's the weather like?"
→ {"weather": 0.95, "events": 0.0, "todos": 0.0, "refresh": 0.0}

User: "Do I have any meetings tomorrow?"
→ {"weather": 0.0, "events": 0.95, "todos": 0.0, "refresh": 0.0}

User: "Do I need an umbrella for my meeting?"
→ {"weather": 0.8, "events": 0.6, "todos": 0.0, "refresh": 0.0}

User: "What tasks do I need to finish today?"
→ {"weather": 0.0, "events": 0.25, "todos": 0.95, "refresh": 0.0}

User: "Get me the latest weather"
→ {"weather": 0.9, "events": 0.0, "todos": 0.0, "refresh": 0.7}

User: "Am I free at 3pm?"
→ {"weather": 0.0, "events": 0.9, "todos": 0.0, "refresh": 0.0}

User: "Should I bring a jacket to my appointment?"
→ {"weather": 0.85, "events": 0.7, "todos": 0.0, "refresh": 0.0}

User: "Refresh my calendar"
→ {"weather": 0.0, "events": 0.5, "todos": 0.0, "refresh": 0.95}
`

// buildPrompt asks for a JSON object of per-intent probabilities.
func buildPrompt(message string) string {
	var b strings.Builder
	b.WriteString("Classify the user's intent. Return a JSON object with probabilities (0.0-1.0) for each intent.\n\n")
	b.WriteString("Intents:\n")
	b.WriteString("- weather: Questions about weather, temperature, rain, if they need umbrella/jacket\n")
	b.WriteString("- events: Questions about calendar, meetings, schedule, availability\n")
	b.WriteString("- todos: Questions about tasks, to-do items, reminders\n")
	b.WriteString("- refresh: Requests to update/refresh data\n\n")
	b.WriteString(fewShotExamples)
	b.WriteString("\nNOW CLASSIFY:\n")
	fmt.Fprintf(&b, "User: %q\n→ ", message)
	return b.String()
}
