package sources

import "strings"

// usfmCodes maps canonical book names to their USFM 3-letter identifiers as
// the CDN dataset spells them. scripture.api.bible spells two books
// differently and overrides them in its own client.
var usfmCodes = map[string]string{
	"Genesis": "GEN", "Exodus": "EXO", "Leviticus": "LEV", "Numbers": "NUM",
	"Deuteronomy": "DEU", "Joshua": "JOS", "Judges": "JDG", "Ruth": "RUT",
	"1 Samuel": "1SA", "2 Samuel": "2SA", "1 Kings": "1KI", "2 Kings": "2KI",
	"1 Chronicles": "1CH", "2 Chronicles": "2CH", "Ezra": "EZR", "Nehemiah": "NEH",
	"Esther": "EST", "Job": "JOB", "Psalms": "PSA", "Proverbs": "PRO",
	"Ecclesiastes": "ECC", "Song of Solomon": "SNG", "Isaiah": "ISA",
	"Jeremiah": "JER", "Lamentations": "LAM", "Ezekiel": "EZE", "Daniel": "DAN",
	"Hosea": "HOS", "Joel": "JOL", "Amos": "AMO", "Obadiah": "OBA",
	"Jonah": "JON", "Micah": "MIC", "Nahum": "NAH", "Habakkuk": "HAB",
	"Zephaniah": "ZEP", "Haggai": "HAG", "Zechariah": "ZEC", "Malachi": "MAL",
	"Matthew": "MAT", "Mark": "MRK", "Luke": "LUK", "John": "JHN",
	"Acts": "ACT", "Romans": "ROM", "1 Corinthians": "1CO", "2 Corinthians": "2CO",
	"Galatians": "GAL", "Ephesians": "EPH", "Philippians": "PHP", "Colossians": "COL",
	"1 Thessalonians": "1TH", "2 Thessalonians": "2TH", "1 Timothy": "1TI",
	"2 Timothy": "2TI", "Titus": "TIT", "Philemon": "PHM", "Hebrews": "HEB",
	"James": "JAS", "1 Peter": "1PE", "2 Peter": "2PE", "1 John": "1JN",
	"2 John": "2JN", "3 John": "3JN", "Jude": "JUD", "Revelation": "REV",
}

// USFMCode returns the 3-letter identifier for a canonical book name.
// Unknown names degrade to the uppercased first three letters.
func USFMCode(book string) string {
	if code, ok := usfmCodes[book]; ok {
		return code
	}
	upper := strings.ToUpper(book)
	if len(upper) > 3 {
		upper = upper[:3]
	}
	return upper
}
