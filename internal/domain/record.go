// Package domain defines the core types shared across the verse clock server.
package domain

import (
	"fmt"

	"github.com/bibleclock/bibleclock-server/internal/errors"
)

// RecordKind tags a VerseRecord with the variant it represents.
// Consumers switch on the kind instead of probing optional fields.
type RecordKind string

// Record kinds.
const (
	KindVerse     RecordKind = "verse"
	KindSummary   RecordKind = "summary"
	KindDateEvent RecordKind = "date_event"
)

// SummaryType distinguishes why a summary record was produced.
type SummaryType string

// Summary types.
const (
	// SummaryRandom is the minute-00 book overview.
	SummaryRandom SummaryType = "random"
	// SummaryNoVerse is shown when no book contains the requested verse.
	SummaryNoVerse SummaryType = "fallback"
)

// VerseRecord is the single output contract toward rendering collaborators.
// Exactly one record is produced per resolution; the caller owns it.
type VerseRecord struct {
	ID        string     `json:"id"`
	Kind      RecordKind `json:"kind"`
	Reference string     `json:"reference"`
	Text      string     `json:"text"`
	Book      string     `json:"book"`
	Chapter   int        `json:"chapter"`
	Verse     int        `json:"verse"`

	// Translation is the display label, e.g. "KJV" or "AMP (fallback: KJV)".
	Translation string `json:"translation,omitempty"`
	// Source names the fetcher that produced the text, for diagnostics.
	Source string `json:"source,omitempty"`

	IsSummary   bool `json:"is_summary"`
	IsDateEvent bool `json:"is_date_event"`

	// Summary fields (Kind == KindSummary).
	SummaryType   SummaryType `json:"summary_type,omitempty"`
	SummaryReason string      `json:"summary_reason,omitempty"`
	RequestedTime string      `json:"requested_time,omitempty"`

	// Date-event fields (Kind == KindDateEvent).
	EventTitle       string `json:"event_name,omitempty"`
	EventDescription string `json:"event_description,omitempty"`
	DateTier         string `json:"date_match,omitempty"`
	EventCycle       string `json:"event_cycle_position,omitempty"`
	VerseCycle       string `json:"verse_cycle_position,omitempty"`

	// Parallel (side-by-side) secondary translation, optional in any kind.
	Parallel             bool   `json:"parallel_mode,omitempty"`
	SecondaryText        string `json:"secondary_text,omitempty"`
	SecondaryTranslation string `json:"secondary_translation,omitempty"`

	// Display context for the renderer.
	TimeFormat  string `json:"time_format,omitempty"`
	CurrentTime string `json:"current_time,omitempty"`
	CurrentDate string `json:"current_date,omitempty"`
}

// NewVerse builds a verse-kind record. Text must be non-empty: the resolver
// guarantees a displayable text even on total chain exhaustion, so an empty
// text here is a programming error, not a data condition.
func NewVerse(book string, chapter, verse int, text string) (*VerseRecord, error) {
	if book == "" {
		return nil, errors.Validation("verse record requires a book")
	}
	if text == "" {
		return nil, errors.Validation("verse record requires non-empty text")
	}
	return &VerseRecord{
		Kind:      KindVerse,
		Reference: FormatReference(book, chapter, verse),
		Text:      text,
		Book:      book,
		Chapter:   chapter,
		Verse:     verse,
	}, nil
}

// NewSummary builds a summary-kind record. The reference shows the current
// time rather than a scripture coordinate; chapter and verse are zero.
func NewSummary(book, text, timeDisplay string, typ SummaryType) (*VerseRecord, error) {
	if text == "" {
		return nil, errors.Validation("summary record requires non-empty text")
	}
	return &VerseRecord{
		Kind:        KindSummary,
		Reference:   timeDisplay,
		Text:        text,
		Book:        book,
		IsSummary:   true,
		SummaryType: typ,
		CurrentTime: timeDisplay,
	}, nil
}

// NewDateEvent builds a date-event-kind record.
func NewDateEvent(reference, text, book string, chapter, verse int, tier string) (*VerseRecord, error) {
	if text == "" {
		return nil, errors.Validation("date event record requires non-empty text")
	}
	return &VerseRecord{
		Kind:        KindDateEvent,
		Reference:   reference,
		Text:        text,
		Book:        book,
		Chapter:     chapter,
		Verse:       verse,
		IsDateEvent: true,
		DateTier:    tier,
	}, nil
}

// FormatReference renders the canonical zero-padded reference, e.g.
// "John 03:16". The padding mirrors the clock-face origin of the coordinate.
func FormatReference(book string, chapter, verse int) string {
	return fmt.Sprintf("%s %02d:%02d", book, chapter, verse)
}
