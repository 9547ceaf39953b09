package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structureFixture() *Index {
	return NewIndex(map[string]map[int]int{
		"Genesis": {3: 24, 4: 26},
		"Exodus":  {3: 22, 4: 31},
		"Psalms":  {3: 8, 4: 8},
		"John":    {3: 36},
		"Jude":    {1: 25},
	})
}

func TestBooksIsCanonical(t *testing.T) {
	assert.Len(t, Books, 66)
	assert.Equal(t, "Genesis", Books[0])
	assert.Equal(t, "Revelation", Books[65])

	assert.True(t, IsCanonical("Song of Solomon"))
	assert.False(t, IsCanonical("Enoch"))
	assert.False(t, IsCanonical("genesis"))
}

func TestIndexLookups(t *testing.T) {
	ix := structureFixture()

	assert.True(t, ix.HasChapter("Genesis", 3))
	assert.False(t, ix.HasChapter("Genesis", 51))
	assert.False(t, ix.HasChapter("Enoch", 1))

	maxVerse, ok := ix.MaxVerse("John", 3)
	require.True(t, ok)
	assert.Equal(t, 36, maxVerse)

	_, ok = ix.MaxVerse("John", 4)
	assert.False(t, ok)

	assert.Equal(t, 24+26+22+31+8+8+36+25, ix.TotalVerses())
	assert.Equal(t, 5, ix.BookCount())
}

func TestBooksWithChapterFollowsCanonicalOrder(t *testing.T) {
	ix := structureFixture()
	assert.Equal(t, []string{"Genesis", "Exodus", "Psalms", "John"}, ix.BooksWithChapter(3))
	assert.Empty(t, ix.BooksWithChapter(99))
}

func TestCandidatesExactBeforeClamped(t *testing.T) {
	ix := structureFixture()

	// Chapter 3 verse 25: only John (36 verses) holds it exactly; the
	// others clamp to their chapter maximum, in canonical order.
	got := ix.Candidates(3, 25)
	require.Len(t, got, 4)

	assert.Equal(t, Candidate{Book: "John", EffectiveVerse: 25, Exact: true}, got[0])
	assert.Equal(t, Candidate{Book: "Genesis", EffectiveVerse: 24, Exact: false}, got[1])
	assert.Equal(t, Candidate{Book: "Exodus", EffectiveVerse: 22, Exact: false}, got[2])
	assert.Equal(t, Candidate{Book: "Psalms", EffectiveVerse: 8, Exact: false}, got[3])
}

func TestCandidatesAllExact(t *testing.T) {
	ix := structureFixture()

	got := ix.Candidates(3, 5)
	require.Len(t, got, 4)
	for _, c := range got {
		assert.True(t, c.Exact)
		assert.Equal(t, 5, c.EffectiveVerse)
	}
	// Canonical order preserved inside the exact group.
	assert.Equal(t, []string{"Genesis", "Exodus", "Psalms", "John"},
		[]string{got[0].Book, got[1].Book, got[2].Book, got[3].Book})
}

func TestCandidatesEffectiveVerseNeverExceedsMax(t *testing.T) {
	ix := structureFixture()
	for _, c := range ix.Candidates(3, 59) {
		maxVerse, ok := ix.MaxVerse(c.Book, 3)
		require.True(t, ok)
		assert.LessOrEqual(t, c.EffectiveVerse, maxVerse)
	}
}

func TestCandidatesNoSuchChapter(t *testing.T) {
	assert.Empty(t, structureFixture().Candidates(99, 15))
}

func TestSelectIndex(t *testing.T) {
	tests := []struct {
		name                 string
		hour, minute, n, exp int
	}{
		{"wraps modulo n", 10, 30, 7, (10 + 30) % 7},
		{"single candidate", 23, 59, 1, 0},
		{"zero candidates", 5, 5, 0, 0},
		{"negative guard", 5, 5, -3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, SelectIndex(tt.hour, tt.minute, tt.n))
		})
	}
}

func TestSelectIndexStableWithinMinute(t *testing.T) {
	a := SelectIndex(14, 27, 5)
	b := SelectIndex(14, 27, 5)
	assert.Equal(t, a, b)
	assert.Less(t, a, 5)
	assert.GreaterOrEqual(t, a, 0)
}

func TestSummariesFallbackText(t *testing.T) {
	s := NewSummaries(map[string]string{
		"Genesis": "The book of beginnings.",
		"Empty":   "",
	})

	assert.Equal(t, "The book of beginnings.", s.For("Genesis"))
	assert.Equal(t,
		"Jude is a book of the Bible containing wisdom and spiritual guidance.",
		s.For("Jude"))

	assert.Equal(t, []string{"Genesis"}, s.Books())
	assert.Equal(t, 1, s.Len())
}
