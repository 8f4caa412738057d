package model

import (
	"slices"
	"strings"
)

// categories is the closed set of tags the random feed can filter on.
var categories = []string{
	"anxiety",
	"encouragement",
	"forgiveness",
	"healing",
	"hope",
	"peace",
	"stress",
}

// DefaultCategory is used by the feed when no tag is configured.
const DefaultCategory = "encouragement"

// Categories returns the category catalog in alphabetical order.
func Categories() []string {
	return slices.Clone(categories)
}

// IsCategory reports whether tag is in the catalog, ignoring case and
// surrounding whitespace.
func IsCategory(tag string) bool {
	return slices.Contains(categories, NormalizeCategory(tag))
}

// NormalizeCategory returns the catalog spelling of tag.
func NormalizeCategory(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Testament splits the book catalog in two.
type Testament int

const (
	OldTestament Testament = iota
	NewTestament
)

func (t Testament) String() string {
	if t == NewTestament {
		return "New Testament"
	}
	return "Old Testament"
}

var oldTestamentBooks = []string{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy",
	"Joshua", "Judges", "Ruth", "1 Samuel", "2 Samuel",
	"1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles", "Ezra",
	"Nehemiah", "Esther", "Job", "Psalms", "Proverbs",
	"Ecclesiastes", "Song of Solomon", "Isaiah", "Jeremiah", "Lamentations",
	"Ezekiel", "Daniel", "Hosea", "Joel", "Amos",
	"Obadiah", "Jonah", "Micah", "Nahum", "Habakkuk",
	"Zephaniah", "Haggai", "Zechariah", "Malachi",
}

var newTestamentBooks = []string{
	"Matthew", "Mark", "Luke", "John", "Acts",
	"Romans", "1 Corinthians", "2 Corinthians", "Galatians", "Ephesians",
	"Philippians", "Colossians", "1 Thessalonians", "2 Thessalonians",
	"1 Timothy", "2 Timothy", "Titus", "Philemon", "Hebrews",
	"James", "1 Peter", "2 Peter", "1 John", "2 John",
	"3 John", "Jude", "Revelation",
}

// Books returns the books of a testament in canonical order.
func Books(t Testament) []string {
	if t == NewTestament {
		return slices.Clone(newTestamentBooks)
	}
	return slices.Clone(oldTestamentBooks)
}

// AllBooks returns all 66 books in canonical order.
func AllBooks() []string {
	return slices.Concat(oldTestamentBooks, newTestamentBooks)
}

// LookupBook finds the catalog spelling of name, ignoring case.
func LookupBook(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, b := range AllBooks() {
		if strings.EqualFold(b, name) {
			return b, true
		}
	}
	return "", false
}
