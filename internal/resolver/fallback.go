package resolver

import (
	"encoding/json"
	"math/rand"
	"os"

	"github.com/bibleclock/bibleclock-server/internal/errors"
)

// FallbackVerse is one entry of the offline fallback collection, shown when
// every source in a chain has failed.
type FallbackVerse struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
	Book      string `json:"book"`
	Chapter   int    `json:"chapter"`
	Verse     int    `json:"verse"`
}

// FallbackSet is the loaded fallback collection.
type FallbackSet struct {
	verses []FallbackVerse
}

// defaultFallbackVerses back the set when the document is missing or broken.
var defaultFallbackVerses = []FallbackVerse{
	{
		Reference: "John 3:16",
		Text:      "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life.",
		Book:      "John", Chapter: 3, Verse: 16,
	},
	{
		Reference: "Psalm 23:1",
		Text:      "The LORD is my shepherd; I shall not want.",
		Book:      "Psalms", Chapter: 23, Verse: 1,
	},
	{
		Reference: "Romans 8:28",
		Text:      "And we know that all things work together for good to them that love God, to them who are the called according to his purpose.",
		Book:      "Romans", Chapter: 8, Verse: 28,
	},
}

// LoadFallbackSet reads the fallback verse document. A missing or malformed
// document degrades to the built-in defaults rather than failing startup;
// the set exists precisely for when everything else is broken.
func LoadFallbackSet(path string) (*FallbackSet, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- path comes from config
	if err != nil {
		return &FallbackSet{verses: defaultFallbackVerses}, errors.Wrapf(err, errors.CodeNotFound, "read fallback verses %s", path)
	}

	var verses []FallbackVerse
	if err := json.Unmarshal(raw, &verses); err != nil {
		return &FallbackSet{verses: defaultFallbackVerses}, errors.Wrap(err, errors.CodeValidation, "parse fallback verses")
	}

	valid := verses[:0]
	for _, v := range verses {
		if v.Text != "" && v.Book != "" {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		valid = defaultFallbackVerses
	}
	return &FallbackSet{verses: valid}, nil
}

// NewFallbackSet builds a set from in-memory verses, defaulting when empty.
func NewFallbackSet(verses []FallbackVerse) *FallbackSet {
	if len(verses) == 0 {
		verses = defaultFallbackVerses
	}
	return &FallbackSet{verses: verses}
}

// Pick returns a random verse from the set.
func (s *FallbackSet) Pick(rng *rand.Rand) FallbackVerse {
	return s.verses[rng.Intn(len(s.verses))]
}

// Len returns the number of verses in the set.
func (s *FallbackSet) Len() int {
	return len(s.verses)
}
