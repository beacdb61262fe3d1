package transcoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var refTime = time.Date(2025, 12, 9, 8, 0, 0, 0, time.UTC)

func newTestTranscoder(cfg Config) *Transcoder {
	return New(cfg, WithClock(func() time.Time { return refTime }))
}

func TestDaySuffix(t *testing.T) {
	tests := []struct {
		day  int
		want string
	}{
		{1, "st"}, {2, "nd"}, {3, "rd"}, {4, "th"},
		{11, "th"}, {12, "th"}, {13, "th"},
		{21, "st"}, {22, "nd"}, {23, "rd"}, {30, "th"}, {31, "st"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, daySuffix(tt.day), "day %d", tt.day)
	}
}

func TestFormatDate(t *testing.T) {
	tc := newTestTranscoder(DefaultConfig())

	assert.Equal(t, "Tuesday, December 9th, 2025", tc.FormatDateFull("2025-12-09"))
	assert.Equal(t, "Thursday, January 1st, 2026", tc.FormatDateFull("2026-01-01T10:00:00Z"))
	assert.Equal(t, "Dec 9", tc.FormatDateShort("2025-12-09"))
	assert.Equal(t, "garbage", tc.FormatDateFull("garbage"))
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name  string
		value string
		h24   bool
		want  string
	}{
		{"morning with offset", "2025-12-09T09:30:00-05:00", false, "9:30 AM"},
		{"afternoon utc", "2025-12-09T15:05:00Z", false, "3:05 PM"},
		{"minutes only", "2025-12-09T07:12", false, "7:12 AM"},
		{"24 hour", "2025-12-09T15:05:00Z", true, "15:05"},
		{"all day", "2025-12-09", false, "All day"},
		{"unparseable", "2025-12-09Tnope", false, "2025-12-09Tnope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.TimeFormat24h = tt.h24
			assert.Equal(t, tt.want, newTestTranscoder(cfg).FormatTime(tt.value))
		})
	}
}

func TestRelativeLabel(t *testing.T) {
	tc := newTestTranscoder(DefaultConfig())

	assert.Equal(t, LabelToday, tc.RelativeLabel("2025-12-09"))
	assert.Equal(t, LabelTomorrow, tc.RelativeLabel("2025-12-10T09:00:00Z"))
	assert.Empty(t, tc.RelativeLabel("2025-12-11"))
	assert.Empty(t, tc.RelativeLabel("2025-12-08"))
	assert.Empty(t, tc.RelativeLabel("not a date"))
}
