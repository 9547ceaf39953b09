package calendar

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/validation"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Writer: io.Discard, Format: "json"})
}

func sampleDocument() *Document {
	return &Document{
		Events: map[string][]Event{
			"12-25": {
				{
					Title:       "The Birth of Jesus",
					Description: "Celebrating the nativity",
					Verses: []Verse{
						{Reference: "Luke 2:11", Text: "For unto you is born this day in the city of David a Saviour, which is Christ the Lord."},
						{Reference: "Matthew 1:21", Text: "And she shall bring forth a son, and thou shalt call his name JESUS: for he shall save his people from their sins."},
					},
				},
			},
		},
		WeeklyThemes: map[string][]Event{
			"sunday": {
				{
					Title: "Day of Rest and Worship",
					Verses: []Verse{
						{Reference: "Psalm 118:24", Text: "This is the day which the LORD hath made; we will rejoice and be glad in it."},
					},
				},
			},
		},
		MonthlyThemes: map[string][]Event{
			"june": {
				{
					Title: "Month of Growth",
					Verses: []Verse{
						{Reference: "2 Peter 3:18", Text: "But grow in grace, and in the knowledge of our Lord and Saviour Jesus Christ."},
					},
				},
			},
		},
		SeasonalThemes: map[string][]Event{
			"summer": {
				{
					Title: "Season of Abundance",
					Verses: []Verse{
						{Reference: "John 15:5", Text: "I am the vine, ye are the branches."},
					},
				},
			},
		},
	}
}

func TestSelectExactDateWins(t *testing.T) {
	s := NewSelectorFromDocument(sampleDocument(), testLogger())

	// December 25, 2026 is a Friday; only the exact-date tier may match.
	sel, ok := s.Select(time.Date(2026, time.December, 25, 10, 0, 0, 0, time.UTC))
	require.True(t, ok)

	assert.Equal(t, MatchExact, sel.Match)
	assert.Equal(t, "The Birth of Jesus", sel.Event.Title)
	assert.Equal(t, "1 of 1", sel.EventCycle)
}

func TestSelectWeekdayTierWithoutExactDate(t *testing.T) {
	s := NewSelectorFromDocument(sampleDocument(), testLogger())

	// June 7, 2026 is a Sunday. The weekday tier wins even though monthly
	// and seasonal tiers would also match.
	sel, ok := s.Select(time.Date(2026, time.June, 7, 9, 30, 0, 0, time.UTC))
	require.True(t, ok)

	assert.Equal(t, MatchWeek, sel.Match)
	assert.Equal(t, "Day of Rest and Worship", sel.Event.Title)
}

func TestSelectMonthTier(t *testing.T) {
	s := NewSelectorFromDocument(sampleDocument(), testLogger())

	// June 8, 2026 is a Monday; no weekday theme, so the month tier wins.
	sel, ok := s.Select(time.Date(2026, time.June, 8, 9, 30, 0, 0, time.UTC))
	require.True(t, ok)

	assert.Equal(t, MatchMonth, sel.Match)
	assert.Equal(t, "Month of Growth", sel.Event.Title)
}

func TestSelectSeasonTier(t *testing.T) {
	doc := sampleDocument()
	delete(doc.MonthlyThemes, "june")
	s := NewSelectorFromDocument(doc, testLogger())

	sel, ok := s.Select(time.Date(2026, time.June, 22, 9, 30, 0, 0, time.UTC))
	require.True(t, ok)

	assert.Equal(t, MatchSeason, sel.Match)
	assert.Equal(t, "Season of Abundance", sel.Event.Title)
}

func TestSelectNothingMatches(t *testing.T) {
	s := NewSelectorFromDocument(&Document{}, testLogger())

	_, ok := s.Select(time.Date(2026, time.June, 8, 9, 30, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestSelectCyclesVersesByMinute(t *testing.T) {
	s := NewSelectorFromDocument(sampleDocument(), testLogger())
	day := time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)

	// Two verses on the Christmas event: even minute slots pick the first,
	// odd slots the second.
	even, ok := s.Select(day.Add(10 * time.Minute))
	require.True(t, ok)
	odd, ok := s.Select(day.Add(11 * time.Minute))
	require.True(t, ok)

	assert.Equal(t, "Luke 2:11", even.Verse.Reference)
	assert.Equal(t, "Matthew 1:21", odd.Verse.Reference)
	assert.Equal(t, "1 of 2", even.VerseCycle)
	assert.Equal(t, "2 of 2", odd.VerseCycle)

	// Same minute always yields the same selection.
	again, ok := s.Select(day.Add(10 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, even, again)
}

func TestSeason(t *testing.T) {
	tests := []struct {
		month time.Month
		day   int
		want  string
	}{
		{time.March, 19, SeasonWinter},
		{time.March, 20, SeasonSpring},
		{time.June, 20, SeasonSpring},
		{time.June, 21, SeasonSummer},
		{time.September, 21, SeasonSummer},
		{time.September, 22, SeasonAutumn},
		{time.December, 20, SeasonAutumn},
		{time.December, 21, SeasonWinter},
		{time.January, 15, SeasonWinter},
	}
	for _, tt := range tests {
		got := Season(time.Date(2026, tt.month, tt.day, 12, 0, 0, 0, time.UTC))
		assert.Equal(t, tt.want, got, "%s %d", tt.month, tt.day)
	}
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		ref     string
		book    string
		chapter int
		verse   int
	}{
		{"John 3:16", "John", 3, 16},
		{"1 John 4:19", "1 John", 4, 19},
		{"Song of Solomon 2:1", "Song of Solomon", 2, 1},
		{"Psalm 23:1", "Psalm", 23, 1},
		{"Jude 1", "Jude 1", 1, 1},
		{"", "", 1, 1},
	}
	for _, tt := range tests {
		book, chapter, verse := ParseReference(tt.ref)
		assert.Equal(t, tt.book, book, tt.ref)
		assert.Equal(t, tt.chapter, chapter, tt.ref)
		assert.Equal(t, tt.verse, verse, tt.ref)
	}
}

func TestLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	content := `{
	  "biblical_events_calendar": {
	    "events": {
	      "01-01": [{"title": "New Beginnings", "verses": [{"reference": "Isaiah 43:19", "text": "Behold, I will do a new thing."}]}]
	    },
	    "weekly_themes": {},
	    "monthly_themes": {},
	    "seasonal_themes": {}
	  }
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := LoadDocument(path, validation.New())
	require.NoError(t, err)
	require.Len(t, doc.Events["01-01"], 1)
	assert.Equal(t, "New Beginnings", doc.Events["01-01"][0].Title)
}

func TestLoadDocumentRejectsBadDateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	content := `{"events": {"13-40": [{"title": "Impossible", "verses": []}]}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadDocument(path, validation.New())
	assert.Error(t, err)
}

func TestSelectorReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	first := `{"weekly_themes": {"monday": [{"title": "First Title", "verses": [{"reference": "John 1:1", "text": "In the beginning was the Word."}]}]}}`
	require.NoError(t, os.WriteFile(path, []byte(first), 0o644))

	s, err := NewSelector(path, validation.New(), testLogger())
	require.NoError(t, err)

	monday := time.Date(2026, time.June, 8, 9, 0, 0, 0, time.UTC)
	sel, ok := s.Select(monday)
	require.True(t, ok)
	assert.Equal(t, "First Title", sel.Event.Title)

	second := `{"weekly_themes": {"monday": [{"title": "Second Title", "verses": [{"reference": "John 1:1", "text": "In the beginning was the Word."}]}]}}`
	require.NoError(t, os.WriteFile(path, []byte(second), 0o644))
	require.NoError(t, s.Reload())

	sel, ok = s.Select(monday)
	require.True(t, ok)
	assert.Equal(t, "Second Title", sel.Event.Title)

	// A broken rewrite keeps the last good document.
	require.NoError(t, os.WriteFile(path, []byte(`{{`), 0o644))
	assert.Error(t, s.Reload())

	sel, ok = s.Select(monday)
	require.True(t, ok)
	assert.Equal(t, "Second Title", sel.Event.Title)
}
