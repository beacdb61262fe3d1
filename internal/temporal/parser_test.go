package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Wednesday.
var ref = date(2024, time.December, 11)

func TestParse(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name      string
		message   string
		wantStart time.Time
		wantEnd   time.Time
		pattern   Pattern
	}{
		{"today", "What's on today?", ref, ref, PatternToday},
		{"tomorrow", "Any meetings tomorrow?", date(2024, 12, 12), date(2024, 12, 12), PatternTomorrow},
		{"yesterday", "what happened yesterday", date(2024, 12, 10), date(2024, 12, 10), PatternYesterday},
		{"this week", "What's happening this week?", date(2024, 12, 9), date(2024, 12, 15), PatternThisWeek},
		{"next week", "Anything next week?", date(2024, 12, 16), date(2024, 12, 22), PatternNextWeek},
		{"next n days", "events for the next 3 days", ref, date(2024, 12, 13), PatternNextNDays},
		{"next 1 day", "next 1 day please", ref, ref, PatternNextNDays},
		{"weekday later this week", "What do I have on Friday?", date(2024, 12, 13), date(2024, 12, 13), PatternSpecificWeekday},
		{"weekday already passed", "Anything Monday?", date(2024, 12, 16), date(2024, 12, 16), PatternSpecificWeekday},
		{"same weekday", "meetings on wednesday", ref, ref, PatternSpecificWeekday},
		{"next monday", "What about next Monday?", date(2024, 12, 16), date(2024, 12, 16), PatternSpecificWeekday},
		{"next friday skips this week", "dinner next friday", date(2024, 12, 20), date(2024, 12, 20), PatternSpecificWeekday},
		{"case insensitive", "TOMORROW", date(2024, 12, 12), date(2024, 12, 12), PatternTomorrow},
		{"next n days wins over today", "today and the next 2 days", ref, date(2024, 12, 12), PatternNextNDays},
		{"tomorrow wins over weekday", "tomorrow or friday", date(2024, 12, 12), date(2024, 12, 12), PatternTomorrow},
		{"next week wins over this week", "this week or next week", date(2024, 12, 16), date(2024, 12, 22), PatternNextWeek},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parser.Parse(tt.message, ref)
			require.True(t, ok)
			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantEnd, got.End)
			assert.Equal(t, tt.pattern, got.Pattern)
			assert.False(t, got.Start.After(got.End))
		})
	}
}

func TestParseNoExpression(t *testing.T) {
	parser := NewParser()

	for _, msg := range []string{"What's the weather like?", "", "weekdays are long", "todayish"} {
		_, ok := parser.Parse(msg, ref)
		assert.False(t, ok, msg)
	}
}

func TestParseNextNDaysCap(t *testing.T) {
	t.Run("default cap", func(t *testing.T) {
		got, ok := NewParser().Parse("next 90 days", ref)
		require.True(t, ok)
		assert.Equal(t, DefaultMaxDays, got.Days())
		assert.Equal(t, "next 30 days", got.Description)
	})

	t.Run("configured cap", func(t *testing.T) {
		got, ok := NewParser(WithMaxDays(7)).Parse("next 10 days", ref)
		require.True(t, ok)
		assert.Equal(t, 7, got.Days())
	})

	t.Run("zero days is one day", func(t *testing.T) {
		got, ok := NewParser().Parse("next 0 days", ref)
		require.True(t, ok)
		assert.True(t, got.IsSingleDay())
	})
}

func TestParseWeekdayDescription(t *testing.T) {
	got, ok := NewParser().Parse("friday", ref)
	require.True(t, ok)
	assert.Equal(t, "Friday", got.Description)

	got, ok = NewParser().Parse("next sunday", ref)
	require.True(t, ok)
	assert.Equal(t, "next Sunday", got.Description)
	assert.Equal(t, date(2024, 12, 22), got.Start)
}

func TestParseSundayReference(t *testing.T) {
	sunday := date(2024, 12, 15)

	got, ok := NewParser().Parse("this week", sunday)
	require.True(t, ok)
	assert.Equal(t, date(2024, 12, 9), got.Start)
	assert.Equal(t, date(2024, 12, 15), got.End)

	got, ok = NewParser().Parse("next week", sunday)
	require.True(t, ok)
	assert.Equal(t, date(2024, 12, 16), got.Start)

	got, ok = NewParser().Parse("monday", sunday)
	require.True(t, ok)
	assert.Equal(t, date(2024, 12, 16), got.Start)
}

func TestDetectTemporalIntent(t *testing.T) {
	assert.True(t, DetectTemporalIntent("anything tomorrow?"))
	assert.True(t, DetectTemporalIntent("next 5 days"))
	assert.True(t, DetectTemporalIntent("on Saturday"))
	assert.True(t, DetectTemporalIntent("THIS WEEK"))
	assert.False(t, DetectTemporalIntent("what's the weather"))
}

func TestTimeRange(t *testing.T) {
	single := Today(ref)
	assert.True(t, single.IsSingleDay())
	assert.Equal(t, 1, single.Days())
	assert.Equal(t, "2024-12-11", single.StartDate())

	week := ThisWeek(ref)
	assert.False(t, week.IsSingleDay())
	assert.Equal(t, 7, week.Days())
	assert.True(t, week.Contains("2024-12-15"))
	assert.False(t, week.Contains("2024-12-16"))

	n := NextNDays(ref, 5)
	assert.Equal(t, date(2024, 12, 15), n.End)
	assert.Equal(t, "next 5 days", n.Description)

	_, err := NewTimeRange(date(2024, 12, 12), ref, "backwards", PatternNone)
	require.Error(t, err)

	r, err := NewTimeRange(ref, ref.Add(5*time.Hour), "today", PatternToday)
	require.NoError(t, err)
	assert.True(t, r.IsSingleDay())
}

func TestFactoriesNormalizeTime(t *testing.T) {
	afternoon := time.Date(2024, 12, 11, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, ref, Today(afternoon).Start)
	assert.Equal(t, date(2024, 12, 12), Tomorrow(afternoon).Start)
	assert.Equal(t, date(2024, 12, 10), Yesterday(afternoon).Start)
	assert.Equal(t, date(2024, 12, 16), NextWeek(afternoon).Start)
}
