package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/nova/internal/model"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil, nil)

	tests := []struct {
		name string
		want model.CalendarType
	}{
		{"Birthdays", model.CalendarBirthdays},
		{"Family bdays", model.CalendarBirthdays},
		{"Food", model.CalendarSocial},
		{"Coffee with friends", model.CalendarSocial},
		{"Work", model.CalendarWork},
		{"OFFICE", model.CalendarWork},
		{"My Stuff", model.CalendarPersonal},
		{"Chores", model.CalendarRecurring},
		{"Bills", model.CalendarRecurring},
		{"Workout", model.CalendarUnknown},
		{"Holidays in United States", model.CalendarUnknown},
		{"", model.CalendarUnknown},
		// Earlier patterns win.
		{"Work birthdays", model.CalendarBirthdays},
		{"Work lunch", model.CalendarSocial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.name))
		})
	}
}

func TestClassifyOverridePrecedence(t *testing.T) {
	c := NewClassifier(map[string]model.CalendarType{
		"Work":   model.CalendarPersonal,
		"GYM":    model.CalendarRecurring,
		"family": model.CalendarSocial,
	}, nil)

	assert.Equal(t, model.CalendarPersonal, c.Classify("work"))
	assert.Equal(t, model.CalendarRecurring, c.Classify("Gym"))
	assert.Equal(t, model.CalendarSocial, c.Classify("Family"))
	assert.Equal(t, model.CalendarWork, c.Classify("Work Meetings"), "overrides match the full name only")
}

func TestParseOverrides(t *testing.T) {
	tests := []struct {
		want map[string]model.CalendarType
		name string
		raw  string
	}{
		{
			name: "valid",
			raw:  `{"Gym": "recurring", "Team": "WORK"}`,
			want: map[string]model.CalendarType{"gym": model.CalendarRecurring, "team": model.CalendarWork},
		},
		{
			name: "unknown type skipped",
			raw:  `{"Gym": "fitness", "Team": "work"}`,
			want: map[string]model.CalendarType{"team": model.CalendarWork},
		},
		{name: "malformed", raw: `{"Gym": `, want: map[string]model.CalendarType{}},
		{name: "wrong shape", raw: `["gym"]`, want: map[string]model.CalendarType{}},
		{name: "empty", raw: "  ", want: map[string]model.CalendarType{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOverrides(tt.raw, nil))
		})
	}
}

func TestClassifyAll(t *testing.T) {
	c := NewClassifier(ParseOverrides(`{"Errands": "personal"}`, nil), nil)

	got := c.ClassifyAll([]string{"Birthdays", "Errands", "Misc"})

	assert.Equal(t, map[string]model.CalendarType{
		"Birthdays": model.CalendarBirthdays,
		"Errands":   model.CalendarPersonal,
		"Misc":      model.CalendarUnknown,
	}, got)
}
