package analysis

import (
	"sort"
	"strings"
)

// BasicStats summarizes volume: message, word and character totals, the active
// date span, and per-author contribution counts.
type BasicStats struct {
	TotalMessages      int            `json:"total_messages"`
	TotalChars         int            `json:"total_chars"`
	TotalWords         int            `json:"total_words"`
	FirstDate          string         `json:"first_date"`
	LastDate           string         `json:"last_date"`
	DaysActive         int            `json:"days_active"`
	AvgMessageLength   float64        `json:"avg_message_length"`
	AvgWordsPerMessage float64        `json:"avg_words_per_message"`
	MessagesPerDay     float64        `json:"messages_per_day"`
	AuthorStats        map[string]int `json:"author_stats"`
	AuthorChars        map[string]int `json:"author_chars"`
}

// BasicStats computes the basic volume report. The active-day span is
// (last date - first date) + 1 calendar days.
func (a *Analyzer) BasicStats() BasicStats {
	total := len(a.messages)
	if total == 0 {
		return BasicStats{}
	}

	firstDate := a.messages[0].Date
	lastDate := a.messages[0].Date
	authorStats := make(map[string]int)
	authorChars := make(map[string]int)
	totalChars := 0
	totalWords := 0

	for _, m := range a.messages {
		if m.Date < firstDate {
			firstDate = m.Date
		}
		if m.Date > lastDate {
			lastDate = m.Date
		}
		chars := runeLen(m.Text)
		authorStats[m.Author]++
		authorChars[m.Author] += chars
		totalChars += chars
		totalWords += len(strings.Fields(m.Text))
	}

	daysActive := dateSpanDays(firstDate, lastDate)

	stats := BasicStats{
		TotalMessages:      total,
		TotalChars:         totalChars,
		TotalWords:         totalWords,
		FirstDate:          firstDate,
		LastDate:           lastDate,
		DaysActive:         daysActive,
		AvgMessageLength:   round2(float64(totalChars) / float64(total)),
		AvgWordsPerMessage: round2(float64(totalWords) / float64(total)),
		AuthorStats:        authorStats,
		AuthorChars:        authorChars,
	}
	if daysActive > 0 {
		stats.MessagesPerDay = round2(float64(total) / float64(daysActive))
	}
	return stats
}

// LengthStats describes the character-length distribution of messages.
type LengthStats struct {
	MinLength        int                `json:"min_length"`
	MaxLength        int                `json:"max_length"`
	AvgLength        float64            `json:"avg_length"`
	MedianLength     int                `json:"median_length"`
	AuthorAvgLengths map[string]float64 `json:"author_avg_lengths"`
}

// MessageLengthStats computes min/max/mean/median message length and the mean
// length per author.
func (a *Analyzer) MessageLengthStats() LengthStats {
	if len(a.messages) == 0 {
		return LengthStats{}
	}

	lengths := make([]int, 0, len(a.messages))
	authorTotals := make(map[string]int)
	authorCounts := make(map[string]int)
	sum := 0

	for _, m := range a.messages {
		l := runeLen(m.Text)
		lengths = append(lengths, l)
		sum += l
		authorTotals[m.Author] += l
		authorCounts[m.Author]++
	}

	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)

	authorAvg := make(map[string]float64, len(authorTotals))
	for author, t := range authorTotals {
		authorAvg[author] = round2(float64(t) / float64(authorCounts[author]))
	}

	return LengthStats{
		MinLength:        sorted[0],
		MaxLength:        sorted[len(sorted)-1],
		AvgLength:        round2(float64(sum) / float64(len(lengths))),
		MedianLength:     sorted[len(sorted)/2],
		AuthorAvgLengths: authorAvg,
	}
}

// dateSpanDays returns the inclusive day count between two "YYYY-MM-DD"
// dates. Malformed dates fall back to a single-day span.
func dateSpanDays(first, last string) int {
	f, errF := parseISODate(first)
	l, errL := parseISODate(last)
	if errF != nil || errL != nil {
		return 1
	}
	return int(l.Sub(f).Hours()/24) + 1
}
