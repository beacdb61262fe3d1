package transcoder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/nova/internal/model"
)

// Todos renders tasks grouped by due date, undated tasks last, followed by
// a total.
func (t *Transcoder) Todos(todos []model.Todo) string {
	if len(todos) == 0 {
		return NoTodos
	}

	byDay := make(map[string][]model.Todo)
	var undated []model.Todo
	for _, todo := range todos {
		if day := todo.DueDate(); day != "" {
			byDay[day] = append(byDay[day], todo)
		} else {
			undated = append(undated, todo)
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	var lines []string
	for _, day := range days {
		relative, full := t.label(day)
		if relative != "" {
			lines = append(lines, fmt.Sprintf("TASKS FOR %s (%s):", relative, full))
		} else {
			lines = append(lines, fmt.Sprintf("TASKS FOR %s:", full))
		}
		for _, todo := range byDay[day] {
			lines = append(lines, todoLine(todo))
		}
		lines = append(lines, "")
	}

	if len(undated) > 0 {
		lines = append(lines, "TASKS (no due date):")
		for _, todo := range undated {
			lines = append(lines, todoLine(todo))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "Total: "+plural(len(todos), "task"))
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// todoLine prefixes the task with its priority marker. High and medium
// priorities are also spelled out.
func todoLine(todo model.Todo) string {
	content := todo.Content
	if content == "" {
		content = "Untitled task"
	}

	switch todo.Priority {
	case model.PriorityHigh:
		return "  [!] " + content + " (high priority)"
	case model.PriorityMedium:
		return "  [-] " + content + " (medium priority)"
	default:
		return "  [ ] " + content
	}
}
