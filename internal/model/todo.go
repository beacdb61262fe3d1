package model

// Todo priorities follow Todoist: 4 is the most urgent, 1 is none.
const (
	PriorityNone   = 1
	PriorityLow    = 2
	PriorityMedium = 3
	PriorityHigh   = 4
)

// Due describes when a todo is due.
type Due struct {
	Date   string `json:"date"`
	String string `json:"string,omitempty"`
}

// Todo is a task from the task tracker.
type Todo struct {
	ID       string `json:"id,omitempty"`
	Content  string `json:"content"`
	Priority int    `json:"priority"`
	Due      *Due   `json:"due,omitempty"`
}

// DueDate returns the due date or "" when the todo has none.
func (t Todo) DueDate() string {
	if t.Due == nil {
		return ""
	}
	return t.Due.Date
}
