// Package calendar selects date-based events and verses: exact-date events
// first, then weekday themes, monthly themes, and seasonal themes, cycling
// through the winning tier's entries minute by minute.
package calendar

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/validation"
)

// Verse is one displayable verse attached to an event.
type Verse struct {
	Reference string `json:"reference" validate:"required"`
	Text      string `json:"text" validate:"required"`
}

// Event is a calendar entry: an exact-date event or a recurring theme.
type Event struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Verses      []Verse `json:"verses" validate:"dive"`
}

// Document is the full events calendar. Events is keyed by MM-DD date,
// WeeklyThemes by lowercase weekday name, MonthlyThemes by lowercase month
// name, SeasonalThemes by season name.
type Document struct {
	Events         map[string][]Event `json:"events" validate:"dive,dive"`
	WeeklyThemes   map[string][]Event `json:"weekly_themes" validate:"dive,dive"`
	MonthlyThemes  map[string][]Event `json:"monthly_themes" validate:"dive,dive"`
	SeasonalThemes map[string][]Event `json:"seasonal_themes" validate:"dive,dive"`
}

// fileDocument matches the on-disk shape, which wraps the calendar in a
// top-level key. Bare documents without the wrapper are also accepted.
type fileDocument struct {
	Calendar *Document `json:"biblical_events_calendar"`
}

// LoadDocument reads and validates the calendar document.
func LoadDocument(path string, v *validation.Validator) (*Document, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- path comes from config
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeNotFound, "read calendar document %s", path)
	}

	var wrapped fileDocument
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "parse calendar document")
	}

	doc := wrapped.Calendar
	if doc == nil {
		doc = &Document{}
		if err := json.Unmarshal(raw, doc); err != nil {
			return nil, errors.Wrap(err, errors.CodeValidation, "parse calendar document")
		}
	}

	if err := validateDateKeys(doc.Events); err != nil {
		return nil, err
	}
	if err := v.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// validateDateKeys checks that every exact-date key is a plausible MM-DD.
func validateDateKeys(events map[string][]Event) error {
	for key := range events {
		parts := strings.SplitN(key, "-", 2)
		if len(parts) != 2 {
			return errors.Validationf("calendar date key %q is not MM-DD", key)
		}
		month, err1 := strconv.Atoi(parts[0])
		day, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
			return errors.Validationf("calendar date key %q is not a valid date", key)
		}
	}
	return nil
}

// ParseReference splits "1 John 3:16" into its book, chapter, and verse.
// Malformed chapter or verse parts degrade to 1 so the reference is still
// usable for display.
func ParseReference(ref string) (book string, chapter, verse int) {
	chapter, verse = 1, 1

	fields := strings.Fields(ref)
	if len(fields) == 0 {
		return "", chapter, verse
	}

	last := fields[len(fields)-1]
	if strings.Contains(last, ":") {
		book = strings.Join(fields[:len(fields)-1], " ")
		parts := strings.SplitN(last, ":", 2)
		if n, err := strconv.Atoi(parts[0]); err == nil && n > 0 {
			chapter = n
		}
		if n, err := strconv.Atoi(parts[1]); err == nil && n > 0 {
			verse = n
		}
		return book, chapter, verse
	}
	return strings.Join(fields, " "), chapter, verse
}
