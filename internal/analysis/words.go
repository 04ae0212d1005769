package analysis

import (
	"regexp"
	"strings"
)

// wordPattern extracts alphanumeric word tokens the way a word-boundary split
// would, covering non-Latin scripts.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// stopWords are discarded before ranking word frequencies. The chat corpus is
// mixed Russian/English/Kazakh, so all three lists are carried.
var stopWords = map[string]struct{}{
	// Russian
	"и": {}, "в": {}, "на": {}, "с": {}, "к": {}, "а": {}, "о": {}, "у": {},
	"я": {}, "ты": {}, "мы": {}, "вы": {}, "он": {}, "она": {}, "они": {},
	"это": {}, "как": {}, "так": {}, "что": {}, "для": {}, "от": {}, "до": {},
	"за": {}, "из": {}, "же": {}, "бы": {}, "ли": {}, "то": {}, "но": {},
	"да": {}, "нет": {}, "не": {}, "ж": {}, "ну": {}, "вот": {}, "там": {}, "тут": {},
	// English
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "have": {},
	"has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	// Kazakh
	"мен": {}, "сен": {}, "ол": {}, "біз": {}, "сіз": {}, "олар": {},
	"бен": {}, "менен": {}, "менің": {}, "сенің": {}, "оның": {},
}

// WordStats ranks the vocabulary of the chat.
type WordStats struct {
	TotalUniqueWords int    `json:"total_unique_words"`
	TopWords         []Pair `json:"top_words"`
}

// WordStats computes the word report with default tuning.
func (a *Analyzer) WordStats() WordStats {
	return a.WordStatsWith(DefaultMinWordLength, DefaultTopWords)
}

// WordStatsWith lower-cases every message, splits it into word tokens,
// discards tokens shorter than minWordLength or contained in the stop-word
// set, and returns the unique-word count plus the topN most frequent words
// (ties in first-seen order).
func (a *Analyzer) WordStatsWith(minWordLength, topN int) WordStats {
	words := newCounter()

	for _, m := range a.messages {
		for _, w := range tokenize(m.Text) {
			if runeLen(w) < minWordLength {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			words.add(w, 1)
		}
	}

	return WordStats{
		TotalUniqueWords: words.len(),
		TopWords:         words.top(topN),
	}
}

// tokenize lower-cases s and returns its word tokens in order.
func tokenize(s string) []string {
	return wordPattern.FindAllString(strings.ToLower(s), -1)
}
