// Package genre maps free-text category and subject vocabulary from
// external book-data providers onto a fixed genre taxonomy.
package genre

import (
	"strings"
)

// Genre is one value from the library's genre taxonomy. The classifier
// can also pass an unmapped provider label straight through, so the type
// stays a plain string rather than a closed enum.
type Genre string

// Taxonomy values.
const (
	Fiction    Genre = "Fiction"
	Science    Genre = "Science"
	History    Genre = "History"
	Technology Genre = "Technology"
	Biography  Genre = "Biography"
	Design     Genre = "Design"
	Philosophy Genre = "Philosophy"
	Art        Genre = "Art"
	Business   Genre = "Business"
	Health     Genre = "Health"
	Travel     Genre = "Travel"
	Children   Genre = "Children"
	Other      Genre = "Other"
)

// keywordEntry associates a genre with its keyword substrings. Both the
// entry order and the keyword order are tie-breakers: the first keyword
// of the first entry that matches any input wins.
type keywordEntry struct {
	genre    Genre
	keywords []string
}

var keywordTable = []keywordEntry{
	{Fiction, []string{
		"fiction", "novel", "literary fiction", "contemporary fiction",
		"historical fiction", "romance", "mystery", "thriller", "crime",
		"fantasy", "science fiction", "horror", "adventure",
	}},
	{Science, []string{
		"science", "physics", "chemistry", "biology", "mathematics",
		"astronomy", "medicine", "engineering", "technology", "research",
	}},
	{History, []string{
		"history", "historical", "biography", "autobiography", "memoir",
		"world history", "american history", "european history", "ancient history",
	}},
	{Business, []string{
		"business", "economics", "finance", "management", "marketing",
		"entrepreneurship", "leadership", "investing", "career",
	}},
	{Technology, []string{
		"computer science", "programming", "software", "technology",
		"internet", "web development", "artificial intelligence", "data",
	}},
	{Philosophy, []string{
		"philosophy", "ethics", "logic", "metaphysics", "political philosophy",
		"moral philosophy", "eastern philosophy", "western philosophy",
	}},
	{Art, []string{
		"art", "painting", "sculpture", "photography", "design",
		"architecture", "music", "film", "theater", "dance",
	}},
	{Health, []string{
		"health", "fitness", "nutrition", "diet", "wellness",
		"mental health", "psychology", "self-help", "medical",
	}},
	{Travel, []string{
		"travel", "geography", "culture", "guidebook", "adventure travel",
	}},
	{Children, []string{
		"children", "juvenile", "young adult", "picture book",
		"educational", "kids",
	}},
}

// FromCategories maps a list of free-text category strings to a genre.
// Matching is case-insensitive substring containment, scanned in declared
// table order. When nothing matches, the first category is returned as-is
// instead of Other, so callers may see a raw provider label.
func FromCategories(categories []string) Genre {
	if len(categories) == 0 {
		return Other
	}

	lower := make([]string, len(categories))
	for i, cat := range categories {
		lower[i] = strings.ToLower(cat)
	}

	for _, entry := range keywordTable {
		for _, keyword := range entry.keywords {
			for _, cat := range lower {
				if strings.Contains(cat, keyword) {
					return entry.genre
				}
			}
		}
	}

	if categories[0] == "" {
		return Other
	}
	return Genre(categories[0])
}

// FromSubjects maps provider subject strings to a genre. Subjects use the
// same keyword scan as categories.
func FromSubjects(subjects []string) Genre {
	return FromCategories(subjects)
}

// FromDewey maps a Dewey Decimal class number (0-999) to a genre.
// The code is parsed up to the first non-digit, so "813.54" classifies
// as 813. Non-numeric or out-of-range codes map to Other.
func FromDewey(code string) Genre {
	n, ok := leadingInt(strings.TrimSpace(code))
	if !ok {
		return Other
	}

	switch {
	case n >= 0 && n < 300:
		return Philosophy
	case n < 400:
		return Business
	case n < 500:
		return Other
	case n < 600:
		return Science
	case n < 700:
		return Technology
	case n < 800:
		return Art
	case n < 900:
		return Fiction
	case n < 1000:
		return History
	default:
		return Other
	}
}

// leadingInt parses the leading run of decimal digits.
func leadingInt(s string) (int, bool) {
	i := 0
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		if n > 9999 {
			return n, true
		}
		i++
	}
	if i == 0 {
		return 0, false
	}
	return n, true
}
