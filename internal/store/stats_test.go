package store

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibleclock/bibleclock-server/internal/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), logger.New(logger.Config{Writer: io.Discard, Format: "json"}))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordDisplayCounts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.June, 8, 10, 15, 0, 0, time.UTC)

	require.NoError(t, s.RecordDisplay(ctx, "time", "John", "kjv", now))
	require.NoError(t, s.RecordDisplay(ctx, "time", "Psalms", "kjv", now.Add(time.Minute)))
	require.NoError(t, s.RecordDisplay(ctx, "date", "", "kjv", now.Add(2*time.Minute)))

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.VersesDisplayed)
	assert.Equal(t, 3, stats.VersesToday)
	assert.Equal(t, 2, stats.ModeUsage["time"])
	assert.Equal(t, 1, stats.ModeUsage["date"])
	assert.Equal(t, 3, stats.TranslationUsage["kjv"])
	assert.ElementsMatch(t, []string{"John", "Psalms"}, stats.BooksAccessed)
	assert.Equal(t, 3, stats.DailyActivity["2026-06-08"])
}

func TestRecordDisplayDailyReset(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	day1 := time.Date(2026, time.June, 8, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, time.June, 9, 0, 1, 0, 0, time.UTC)

	require.NoError(t, s.RecordDisplay(ctx, "time", "John", "kjv", day1))
	require.NoError(t, s.RecordDisplay(ctx, "time", "John", "kjv", day1))
	require.NoError(t, s.RecordDisplay(ctx, "time", "John", "kjv", day2))

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.VersesDisplayed, "lifetime counter never resets")
	assert.Equal(t, 1, stats.VersesToday, "daily counter resets at midnight")
}

func TestDailyActivityRotation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	start := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

	for day := 0; day < maxDailyActivityDays+10; day++ {
		require.NoError(t, s.RecordDisplay(ctx, "time", "John", "kjv", start.AddDate(0, 0, day)))
	}

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)

	assert.Len(t, stats.DailyActivity, maxDailyActivityDays)
	// Oldest days fell off; the newest survives.
	assert.NotContains(t, stats.DailyActivity, "2026-01-01")
	assert.Contains(t, stats.DailyActivity, start.AddDate(0, 0, maxDailyActivityDays+9).Format("2006-01-02"))
}

func TestTranslationUsageRotation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.June, 8, 10, 0, 0, 0, time.UTC)

	// "kjv" is recorded most, then a long tail of one-off codes.
	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordDisplay(ctx, "time", "John", "kjv", now))
	}
	for i := 0; i < maxTranslationUsage+5; i++ {
		require.NoError(t, s.RecordDisplay(ctx, "time", "John", fmt.Sprintf("tr%02d", i), now))
	}

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(stats.TranslationUsage), maxTranslationUsage)
	assert.Equal(t, 5, stats.TranslationUsage["kjv"], "heaviest-used translation survives rotation")
}

func TestStatisticsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	log := logger.New(logger.Config{Writer: io.Discard, Format: "json"})
	ctx := context.Background()
	now := time.Date(2026, time.June, 8, 10, 0, 0, 0, time.UTC)

	s, err := Open(dir, log)
	require.NoError(t, err)
	require.NoError(t, s.RecordDisplay(ctx, "time", "John", "kjv", now))
	require.NoError(t, s.Close())

	reopened, err := Open(dir, log)
	require.NoError(t, err)
	defer reopened.Close()

	stats, err := reopened.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VersesDisplayed)
}
