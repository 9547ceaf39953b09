package canon

// Books is the canonical 66-book ordering. Candidate selection and
// completion accounting both iterate in this order.
var Books = []string{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy",
	"Joshua", "Judges", "Ruth", "1 Samuel", "2 Samuel",
	"1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles",
	"Ezra", "Nehemiah", "Esther", "Job", "Psalms", "Proverbs",
	"Ecclesiastes", "Song of Solomon", "Isaiah", "Jeremiah",
	"Lamentations", "Ezekiel", "Daniel", "Hosea", "Joel",
	"Amos", "Obadiah", "Jonah", "Micah", "Nahum", "Habakkuk",
	"Zephaniah", "Haggai", "Zechariah", "Malachi",
	"Matthew", "Mark", "Luke", "John", "Acts", "Romans",
	"1 Corinthians", "2 Corinthians", "Galatians", "Ephesians",
	"Philippians", "Colossians", "1 Thessalonians", "2 Thessalonians",
	"1 Timothy", "2 Timothy", "Titus", "Philemon", "Hebrews",
	"James", "1 Peter", "2 Peter", "1 John", "2 John", "3 John",
	"Jude", "Revelation",
}

// bookOrder maps book name to its canonical position for sorting.
var bookOrder = func() map[string]int {
	m := make(map[string]int, len(Books))
	for i, b := range Books {
		m[b] = i
	}
	return m
}()

// IsCanonical reports whether name is one of the 66 canonical books.
func IsCanonical(name string) bool {
	_, ok := bookOrder[name]
	return ok
}
