package calendar

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/validation"
)

// Match names the tier that produced a selection.
type Match string

const (
	MatchExact    Match = "exact"
	MatchWeek     Match = "week"
	MatchMonth    Match = "month"
	MatchSeason   Match = "season"
	MatchFallback Match = "fallback"
)

// Selection is one picked (event, verse) pair with its cycle positions.
type Selection struct {
	Event      Event
	Verse      Verse
	Match      Match
	EventCycle string // "2 of 5"
	VerseCycle string // "1 of 3"
}

// Selector picks the event and verse for a moment in time. The document can
// be swapped at runtime, so reads and reloads are lock-guarded.
type Selector struct {
	mu        sync.RWMutex
	path      string
	doc       *Document
	validator *validation.Validator
	logger    *logger.Logger
}

// NewSelector loads the calendar document and returns a selector over it.
func NewSelector(path string, v *validation.Validator, log *logger.Logger) (*Selector, error) {
	doc, err := LoadDocument(path, v)
	if err != nil {
		return nil, err
	}
	log.Info("events calendar loaded",
		"path", path,
		"dates", len(doc.Events),
		"weekly", len(doc.WeeklyThemes),
		"monthly", len(doc.MonthlyThemes),
		"seasonal", len(doc.SeasonalThemes),
	)
	return &Selector{path: path, doc: doc, validator: v, logger: log}, nil
}

// NewSelectorFromDocument builds a selector over an in-memory document.
func NewSelectorFromDocument(doc *Document, log *logger.Logger) *Selector {
	return &Selector{doc: doc, logger: log}
}

// Path returns the document path this selector watches.
func (s *Selector) Path() string {
	return s.path
}

// Reload re-reads the document from disk. On failure the previous document
// stays active.
func (s *Selector) Reload() error {
	doc, err := LoadDocument(s.path, s.validator)
	if err != nil {
		s.logger.WithError(err).Warn("calendar reload failed, keeping previous document", "path", s.path)
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	s.logger.Info("events calendar reloaded", "path", s.path)
	return nil
}

// Select walks the tiers for the given moment and cycles within the winning
// tier by minutes since midnight. Returns false when no tier produced a
// usable (event, verse) pair; the caller then falls back to a random verse.
func (s *Selector) Select(now time.Time) (Selection, bool) {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()

	events, match := tierEvents(doc, now)
	if len(events) == 0 {
		return Selection{}, false
	}

	slot := now.Hour()*60 + now.Minute()
	eventIndex := slot % len(events)
	event := events[eventIndex]

	if len(event.Verses) == 0 {
		return Selection{}, false
	}
	verseIndex := slot % len(event.Verses)

	return Selection{
		Event:      event,
		Verse:      event.Verses[verseIndex],
		Match:      match,
		EventCycle: fmt.Sprintf("%d of %d", eventIndex+1, len(events)),
		VerseCycle: fmt.Sprintf("%d of %d", verseIndex+1, len(event.Verses)),
	}, true
}

// tierEvents returns the first non-empty tier for the date: exact date,
// then weekday, month, season. Lower tiers are never consulted once a tier
// matches.
func tierEvents(doc *Document, now time.Time) ([]Event, Match) {
	dateKey := fmt.Sprintf("%02d-%02d", int(now.Month()), now.Day())
	if events := doc.Events[dateKey]; len(events) > 0 {
		return events, MatchExact
	}

	weekday := strings.ToLower(now.Weekday().String())
	if events := doc.WeeklyThemes[weekday]; len(events) > 0 {
		return events, MatchWeek
	}

	month := strings.ToLower(now.Month().String())
	if events := doc.MonthlyThemes[month]; len(events) > 0 {
		return events, MatchMonth
	}

	if events := doc.SeasonalThemes[Season(now)]; len(events) > 0 {
		return events, MatchSeason
	}
	return nil, MatchFallback
}
