// Package canon holds the canonical Bible structure: book ordering, the
// chapter/verse-count index, candidate-book selection, and book summaries.
package canon

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/bibleclock/bibleclock-server/internal/errors"
)

// Index is the canonical table of every book's chapters and each chapter's
// verse count. It is loaded once at startup and read-only afterwards, so
// lookups need no locking.
type Index struct {
	books map[string]map[int]int // book -> chapter -> max verse
	total int
}

// LoadIndex reads the structure document: a JSON mapping
// book -> chapter (string key) -> max verse (int).
func LoadIndex(path string) (*Index, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- path comes from config
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeNotFound, "read structure document %s", path)
	}

	var doc map[string]map[string]int
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "parse structure document")
	}

	books := make(map[string]map[int]int, len(doc))
	for book, chapters := range doc {
		if !IsCanonical(book) {
			return nil, errors.Validationf("structure document contains unknown book %q", book)
		}
		m := make(map[int]int, len(chapters))
		for chapterStr, maxVerse := range chapters {
			chapter, err := strconv.Atoi(chapterStr)
			if err != nil || chapter < 1 {
				return nil, errors.Validationf("invalid chapter key %q in %s", chapterStr, book)
			}
			if maxVerse < 1 {
				return nil, errors.Validationf("invalid verse count %d for %s %s", maxVerse, book, chapterStr)
			}
			m[chapter] = maxVerse
		}
		books[book] = m
	}

	return NewIndex(books), nil
}

// NewIndex builds an index from an in-memory structure table.
func NewIndex(books map[string]map[int]int) *Index {
	total := 0
	for _, chapters := range books {
		for _, maxVerse := range chapters {
			total += maxVerse
		}
	}
	return &Index{books: books, total: total}
}

// HasChapter reports whether the book contains the chapter.
// Absence of a (book, chapter) pair means the chapter does not exist.
func (ix *Index) HasChapter(book string, chapter int) bool {
	_, ok := ix.books[book][chapter]
	return ok
}

// MaxVerse returns the highest verse number of (book, chapter),
// or false when the book has no such chapter.
func (ix *Index) MaxVerse(book string, chapter int) (int, bool) {
	maxVerse, ok := ix.books[book][chapter]
	return maxVerse, ok
}

// TotalVerses returns the verse count of the whole canon, the denominator
// of every cache completion percentage.
func (ix *Index) TotalVerses() int {
	return ix.total
}

// BookCount returns how many books the index covers.
func (ix *Index) BookCount() int {
	return len(ix.books)
}

// BooksWithChapter returns, in canonical order, every book containing
// the chapter.
func (ix *Index) BooksWithChapter(chapter int) []string {
	var out []string
	for _, book := range Books {
		if ix.HasChapter(book, chapter) {
			out = append(out, book)
		}
	}
	return out
}
