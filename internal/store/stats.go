package store

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bibleclock/bibleclock-server/internal/errors"
)

var statsKey = []byte("statistics")

// Rotation caps keep the statistics blob bounded on long-lived devices.
const (
	maxDailyActivityDays = 30
	maxBooksAccessed     = 50
	maxTranslationUsage  = 20
)

// Statistics is the aggregate usage record.
type Statistics struct {
	VersesDisplayed  int            `json:"verses_displayed"`
	VersesToday      int            `json:"verses_today"`
	LastResetDate    string         `json:"last_reset_date"`
	BooksAccessed    []string       `json:"books_accessed"`
	TranslationUsage map[string]int `json:"translation_usage"`
	ModeUsage        map[string]int `json:"mode_usage"`
	DailyActivity    map[string]int `json:"daily_activity"`
}

func newStatistics() *Statistics {
	return &Statistics{
		TranslationUsage: make(map[string]int),
		ModeUsage:        map[string]int{"time": 0, "date": 0, "random": 0},
		DailyActivity:    make(map[string]int),
	}
}

// RecordDisplay updates the statistics for one displayed verse: total and
// per-day counters, mode usage, books accessed, and translation usage, each
// rotated to its cap.
func (s *Store) RecordDisplay(ctx context.Context, mode, book, translation string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.loadStats()
	if err != nil {
		return err
	}

	today := now.Format("2006-01-02")
	if stats.LastResetDate != today {
		stats.VersesToday = 0
		stats.LastResetDate = today
	}

	stats.VersesDisplayed++
	stats.VersesToday++
	stats.DailyActivity[today]++
	rotateDailyActivity(stats)

	stats.ModeUsage[mode]++

	if book != "" && !slices.Contains(stats.BooksAccessed, book) {
		stats.BooksAccessed = append(stats.BooksAccessed, book)
		if len(stats.BooksAccessed) > maxBooksAccessed {
			stats.BooksAccessed = stats.BooksAccessed[len(stats.BooksAccessed)-maxBooksAccessed:]
		}
	}

	if translation != "" {
		stats.TranslationUsage[translation]++
		rotateTranslationUsage(stats)
	}

	return s.set(statsKey, stats)
}

// Statistics returns the current aggregate record.
func (s *Store) Statistics(ctx context.Context) (*Statistics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadStats()
}

func (s *Store) loadStats() (*Statistics, error) {
	stats := newStatistics()
	err := s.get(statsKey, stats)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return newStatistics(), nil
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "load statistics")
	}
	if stats.TranslationUsage == nil {
		stats.TranslationUsage = make(map[string]int)
	}
	if stats.ModeUsage == nil {
		stats.ModeUsage = make(map[string]int)
	}
	if stats.DailyActivity == nil {
		stats.DailyActivity = make(map[string]int)
	}
	return stats, nil
}

// rotateDailyActivity drops the oldest dates beyond the cap. Keys sort
// chronologically because they are ISO dates.
func rotateDailyActivity(stats *Statistics) {
	if len(stats.DailyActivity) <= maxDailyActivityDays {
		return
	}
	dates := make([]string, 0, len(stats.DailyActivity))
	for d := range stats.DailyActivity {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates[:len(dates)-maxDailyActivityDays] {
		delete(stats.DailyActivity, d)
	}
}

// rotateTranslationUsage keeps the most-used translations when the map
// outgrows its cap.
func rotateTranslationUsage(stats *Statistics) {
	if len(stats.TranslationUsage) <= maxTranslationUsage {
		return
	}
	type usage struct {
		code  string
		count int
	}
	all := make([]usage, 0, len(stats.TranslationUsage))
	for code, count := range stats.TranslationUsage {
		all = append(all, usage{code, count})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].count > all[j].count })

	kept := make(map[string]int, maxTranslationUsage)
	for _, u := range all[:maxTranslationUsage] {
		kept[u.code] = u.count
	}
	stats.TranslationUsage = kept
}
