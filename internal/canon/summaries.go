package canon

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/bibleclock/bibleclock-server/internal/errors"
)

// Summaries holds the per-book overview texts shown at minute 00 and when
// no book contains the requested verse.
type Summaries struct {
	byBook map[string]string
	books  []string // sorted, for deterministic iteration
}

// LoadSummaries reads the summaries document: a JSON mapping
// book -> summary text. Missing books are tolerated; For synthesizes a
// basic summary for them.
func LoadSummaries(path string) (*Summaries, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- path comes from config
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeNotFound, "read summaries document %s", path)
	}

	var doc map[string]string
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "parse summaries document")
	}

	return NewSummaries(doc), nil
}

// NewSummaries builds the summary table from an in-memory map.
func NewSummaries(byBook map[string]string) *Summaries {
	books := make([]string, 0, len(byBook))
	for book, text := range byBook {
		if text != "" {
			books = append(books, book)
		}
	}
	sort.Strings(books)
	return &Summaries{byBook: byBook, books: books}
}

// For returns the summary for a book, synthesizing a generic one when the
// document has no entry so callers always get displayable text.
func (s *Summaries) For(book string) string {
	if text := s.byBook[book]; text != "" {
		return text
	}
	return fmt.Sprintf("%s is a book of the Bible containing wisdom and spiritual guidance.", book)
}

// Books returns the books that have real (non-synthesized) summaries,
// sorted alphabetically.
func (s *Summaries) Books() []string {
	return s.books
}

// Len returns how many real summaries are loaded.
func (s *Summaries) Len() int {
	return len(s.books)
}
