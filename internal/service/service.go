// Package service orchestrates verse resolution: it maps the current moment
// to a record according to the configured display mode and decorates it with
// parallel text, display context, and usage statistics.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bibleclock/bibleclock-server/internal/calendar"
	"github.com/bibleclock/bibleclock-server/internal/canon"
	"github.com/bibleclock/bibleclock-server/internal/clock"
	"github.com/bibleclock/bibleclock-server/internal/domain"
	"github.com/bibleclock/bibleclock-server/internal/id"
	"github.com/bibleclock/bibleclock-server/internal/logger"
	"github.com/bibleclock/bibleclock-server/internal/resolver"
	"github.com/bibleclock/bibleclock-server/internal/sources"
	"github.com/bibleclock/bibleclock-server/internal/store"
)

// Display modes.
const (
	ModeTime   = "time"
	ModeDate   = "date"
	ModeRandom = "random"
)

// Config holds the display settings the service resolves under.
type Config struct {
	Mode                 string
	TimeFormat           string
	Translation          string
	Parallel             bool
	SecondaryTranslation string
}

// VerseResolutionService produces exactly one VerseRecord per call,
// whatever fails underneath.
type VerseResolutionService struct {
	cfg       Config
	index     *canon.Index
	summaries *canon.Summaries
	resolver  *resolver.Resolver
	calendar  *calendar.Selector
	fallback  *resolver.FallbackSet
	stats     *store.Store
	logger    *logger.Logger

	now func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	// Minute-00 summary, memoized so repeated calls within the visible
	// minute show the same book. Keyed on the full minute slot: minute
	// alone would collide across hours and freeze the record.
	summaryMu     sync.Mutex
	summarySlot   int
	summaryRecord *domain.VerseRecord
}

// New creates the resolution service. stats may be nil; statistics recording
// is then skipped.
func New(cfg Config, index *canon.Index, summaries *canon.Summaries, res *resolver.Resolver, cal *calendar.Selector, fallback *resolver.FallbackSet, stats *store.Store, log *logger.Logger) *VerseResolutionService {
	if cfg.Mode == "" {
		cfg.Mode = ModeTime
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = clock.Format12
	}
	if cfg.Translation == "" {
		cfg.Translation = "kjv"
	}
	return &VerseResolutionService{
		cfg:         cfg,
		index:       index,
		summaries:   summaries,
		resolver:    res,
		calendar:    cal,
		fallback:    fallback,
		stats:       stats,
		logger:      log,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		summarySlot: -1,
	}
}

// CurrentVerse resolves the record for the current moment under the
// configured mode.
func (s *VerseResolutionService) CurrentVerse(ctx context.Context) (*domain.VerseRecord, error) {
	now := s.now()

	var (
		rec *domain.VerseRecord
		err error
	)
	switch s.cfg.Mode {
	case ModeDate:
		rec, err = s.dateVerse(now)
	case ModeRandom:
		rec, err = s.randomVerse()
	default:
		rec, err = s.timeVerse(ctx, now)
	}
	if err != nil {
		return nil, err
	}

	if rec.ID == "" {
		rec.ID = id.MustGenerate("res")
	}
	rec.TimeFormat = s.cfg.TimeFormat
	if rec.CurrentTime == "" {
		rec.CurrentTime = clock.Display(now, s.cfg.TimeFormat)
	}
	rec.CurrentDate = now.Format("January 02, 2006")

	if s.cfg.Parallel && rec.Kind != domain.KindDateEvent {
		s.addParallel(ctx, rec)
	}

	if s.stats != nil {
		if err := s.stats.RecordDisplay(ctx, s.cfg.Mode, rec.Book, resolver.Normalize(s.cfg.Translation), now); err != nil {
			s.logger.WithError(err).Warn("statistics recording failed")
		}
	}
	return rec, nil
}

// timeVerse implements time mode: chapter and verse come from the clock,
// minute 00 shows a book summary, and a coordinate no book contains
// degrades to a summary or a fallback verse.
func (s *VerseResolutionService) timeVerse(ctx context.Context, now time.Time) (*domain.VerseRecord, error) {
	reading := clock.Map(now, s.cfg.TimeFormat)
	if reading.Summary {
		return s.minuteSummary(now)
	}

	chapter, verse := reading.Coordinate.Chapter, reading.Coordinate.Verse
	candidates := s.index.Candidates(chapter, verse)
	if len(candidates) == 0 {
		// No book carries this chapter at all.
		return s.fallbackVerseRecord()
	}

	exactCount := 0
	for _, c := range candidates {
		if !c.Exact {
			break
		}
		exactCount++
	}

	if exactCount == 0 {
		// Books have the chapter but none reaches the verse; a summary of a
		// time-selected candidate is more honest than a clamped verse.
		book := candidates[canon.SelectIndex(now.Hour(), now.Minute(), len(candidates))].Book
		return s.noVerseSummary(book, chapter, verse, now)
	}

	chosen := candidates[canon.SelectIndex(now.Hour(), now.Minute(), exactCount)]
	res := s.resolver.Resolve(ctx, chosen.Book, chapter, chosen.EffectiveVerse, s.cfg.Translation)

	rec, err := domain.NewVerse(res.Book, res.Chapter, res.Verse, res.Text)
	if err != nil {
		return nil, err
	}
	rec.Reference = res.Reference
	rec.Translation = res.Translation
	rec.Source = string(res.Source)
	return rec, nil
}

// minuteSummary returns the minute-00 book summary, generating a new random
// book at most once per minute.
func (s *VerseResolutionService) minuteSummary(now time.Time) (*domain.VerseRecord, error) {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()

	slot := clock.MinuteSlot(now)
	if s.summaryRecord != nil && s.summarySlot == slot {
		cp := *s.summaryRecord
		return &cp, nil
	}

	book := s.randomSummaryBook()
	rec, err := domain.NewSummary(book, s.summaries.For(book), clock.Display(now, s.cfg.TimeFormat), domain.SummaryRandom)
	if err != nil {
		return nil, err
	}
	rec.ID = id.MustGenerate("res")
	rec.Translation = strings.ToUpper(resolver.Normalize(s.cfg.Translation))

	s.summaryRecord = rec
	s.summarySlot = slot
	s.logger.Debug("book summary selected", "book", book, "slot", slot)

	cp := *rec
	return &cp, nil
}

// randomSummaryBook prefers books with real summaries, falling back to the
// whole canon.
func (s *VerseResolutionService) randomSummaryBook() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	if books := s.summaries.Books(); len(books) > 0 {
		return books[s.rng.Intn(len(books))]
	}
	return canon.Books[s.rng.Intn(len(canon.Books))]
}

// noVerseSummary builds the summary shown when no book contains the
// requested coordinate.
func (s *VerseResolutionService) noVerseSummary(book string, chapter, verse int, now time.Time) (*domain.VerseRecord, error) {
	rec, err := domain.NewSummary(book, s.summaries.For(book), clock.Display(now, s.cfg.TimeFormat), domain.SummaryNoVerse)
	if err != nil {
		return nil, err
	}
	rec.Translation = strings.ToUpper(resolver.Normalize(s.cfg.Translation))
	rec.RequestedTime = fmt.Sprintf("%02d:%02d", chapter, verse)
	rec.SummaryReason = fmt.Sprintf("No Bible book contains Chapter %02d, Verse %02d", chapter, verse)
	return rec, nil
}

// fallbackVerseRecord serves a random verse from the offline collection.
func (s *VerseResolutionService) fallbackVerseRecord() (*domain.VerseRecord, error) {
	s.rngMu.Lock()
	fb := s.fallback.Pick(s.rng)
	s.rngMu.Unlock()

	rec, err := domain.NewVerse(fb.Book, fb.Chapter, fb.Verse, fb.Text)
	if err != nil {
		return nil, err
	}
	rec.Reference = fb.Reference
	rec.Translation = strings.ToUpper(resolver.Normalize(s.cfg.Translation))
	rec.Source = string(sources.KindFallback)
	return rec, nil
}

// randomVerse implements random mode.
func (s *VerseResolutionService) randomVerse() (*domain.VerseRecord, error) {
	return s.fallbackVerseRecord()
}

// dateVerse implements date mode: the calendar selector picks the event and
// verse; with nothing on the calendar a fallback verse is dressed as a
// daily blessing.
func (s *VerseResolutionService) dateVerse(now time.Time) (*domain.VerseRecord, error) {
	if sel, ok := s.calendar.Select(now); ok {
		book, chapter, verse := calendar.ParseReference(sel.Verse.Reference)
		rec, err := domain.NewDateEvent(sel.Verse.Reference, sel.Verse.Text, book, chapter, verse, string(sel.Match))
		if err != nil {
			return nil, err
		}
		rec.EventTitle = sel.Event.Title
		rec.EventDescription = sel.Event.Description
		if rec.EventDescription == "" {
			rec.EventDescription = "Biblical wisdom for today"
		}
		rec.EventCycle = sel.EventCycle
		rec.VerseCycle = sel.VerseCycle
		rec.Translation = strings.ToUpper(resolver.Normalize(s.cfg.Translation))
		return rec, nil
	}

	s.rngMu.Lock()
	fb := s.fallback.Pick(s.rng)
	s.rngMu.Unlock()

	rec, err := domain.NewDateEvent(fb.Reference, fb.Text, fb.Book, fb.Chapter, fb.Verse, string(calendar.MatchFallback))
	if err != nil {
		return nil, err
	}
	rec.EventTitle = "Daily Blessing for " + now.Format("January 02")
	rec.EventDescription = "God's word for today"
	rec.EventCycle = "1 of 1"
	rec.VerseCycle = "1 of 1"
	rec.Translation = strings.ToUpper(resolver.Normalize(s.cfg.Translation))
	return rec, nil
}

// addParallel fills the secondary translation column. Summaries show the
// same text in both columns; verses resolve the secondary translation
// through the same chains, so even a failing secondary source yields a
// bracketed placeholder and parallel mode stays on.
func (s *VerseResolutionService) addParallel(ctx context.Context, rec *domain.VerseRecord) {
	secondary := resolver.Normalize(s.cfg.SecondaryTranslation)

	rec.Parallel = true
	rec.SecondaryTranslation = strings.ToUpper(secondary)

	if rec.IsSummary {
		rec.SecondaryText = rec.Text
		return
	}

	res := s.resolver.Resolve(ctx, rec.Book, rec.Chapter, rec.Verse, secondary)
	rec.SecondaryText = res.Text
}
