package canon

// Candidate is a book that contains the requested chapter, annotated with
// the verse that can actually be displayed there.
type Candidate struct {
	Book string
	// EffectiveVerse is the requested verse clamped to the chapter's
	// maximum; never exceeds MaxVerse(Book, chapter).
	EffectiveVerse int
	// Exact is true iff EffectiveVerse equals the requested verse.
	Exact bool
}

// Candidates returns every book containing the requested chapter, each with
// its effective verse. Exact matches come first, ties broken by canonical
// book order. An empty result means no book has the chapter; the caller
// must fall back.
func (ix *Index) Candidates(chapter, verse int) []Candidate {
	var exact, clamped []Candidate
	for _, book := range Books {
		maxVerse, ok := ix.MaxVerse(book, chapter)
		if !ok {
			continue
		}
		effective := verse
		if effective > maxVerse {
			effective = maxVerse
		}
		c := Candidate{Book: book, EffectiveVerse: effective, Exact: effective == verse}
		if c.Exact {
			exact = append(exact, c)
		} else {
			clamped = append(clamped, c)
		}
	}
	return append(exact, clamped...)
}

// SelectIndex is the deterministic pick among same-priority candidates:
// (hour + minute) mod n. The displayed book is stable for the whole visible
// minute yet varies across a full day. Returns 0 for n <= 0 so callers can
// guard on emptiness separately.
func SelectIndex(hour, minute, n int) int {
	if n <= 0 {
		return 0
	}
	return (hour + minute) % n
}
