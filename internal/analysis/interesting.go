package analysis

import (
	"sort"

	"github.com/chatscope-app/chatscope/internal/chat"
)

// MessageDigest is an abbreviated message used in rankings.
type MessageDigest struct {
	Text   string `json:"text"`
	Length int    `json:"length"`
	Author string `json:"author"`
	Date   string `json:"date"`
}

// DayCount is a calendar date with its message total.
type DayCount struct {
	Date     string `json:"date"`
	Messages int    `json:"messages"`
}

// AuthorMoment is an author's chronologically first or last message.
type AuthorMoment struct {
	Datetime string `json:"datetime"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Text     string `json:"text"`
}

// InterestingStats collects rankings and the mean response time.
type InterestingStats struct {
	LongestMessages        []MessageDigest         `json:"longest_messages"`
	ShortestMessages       []MessageDigest         `json:"shortest_messages"`
	TopActiveDays          []DayCount              `json:"top_active_days"`
	AuthorFirstMessage     map[string]AuthorMoment `json:"author_first_message"`
	AuthorLastMessage      map[string]AuthorMoment `json:"author_last_message"`
	AvgResponseTimeMinutes float64                 `json:"avg_response_time_minutes"`
	TotalResponsesAnalyzed int                     `json:"total_responses_analyzed"`
}

// InterestingStats computes the top-10 longest and shortest messages, the ten
// busiest days, each author's first and last message, and the mean response
// time between messages of different authors.
//
// The response-time pass sorts by timestamp and only counts adjacent pairs
// where the author changed and the gap is strictly between 0 and 24 hours,
// which clamps out same-author bursts and multi-day silences.
func (a *Analyzer) InterestingStats() InterestingStats {
	if len(a.messages) == 0 {
		return InterestingStats{}
	}

	byLength := make([]chat.Message, len(a.messages))
	copy(byLength, a.messages)
	sort.SliceStable(byLength, func(i, j int) bool {
		return runeLen(byLength[i].Text) > runeLen(byLength[j].Text)
	})

	longest := make([]MessageDigest, 0, 10)
	for _, m := range byLength[:min(10, len(byLength))] {
		longest = append(longest, MessageDigest{
			Text:   truncateRunes(m.Text, 200),
			Length: runeLen(m.Text),
			Author: m.Author,
			Date:   m.Date,
		})
	}

	var nonEmpty []chat.Message
	for _, m := range a.messages {
		if m.Text != "" {
			nonEmpty = append(nonEmpty, m)
		}
	}
	sort.SliceStable(nonEmpty, func(i, j int) bool {
		return runeLen(nonEmpty[i].Text) < runeLen(nonEmpty[j].Text)
	})

	shortest := make([]MessageDigest, 0, 10)
	for _, m := range nonEmpty[:min(10, len(nonEmpty))] {
		shortest = append(shortest, MessageDigest{
			Text:   m.Text,
			Length: runeLen(m.Text),
			Author: m.Author,
			Date:   m.Date,
		})
	}

	days := newCounter()
	for _, m := range a.messages {
		days.add(m.Date, 1)
	}
	topDays := make([]DayCount, 0, 10)
	for _, p := range days.top(10) {
		topDays = append(topDays, DayCount{Date: p.Key, Messages: p.Count})
	}

	first := make(map[string]chat.Message)
	last := make(map[string]chat.Message)
	for _, m := range a.messages {
		if f, ok := first[m.Author]; !ok || m.Timestamp.Before(f.Timestamp) {
			first[m.Author] = m
		}
		if l, ok := last[m.Author]; !ok || m.Timestamp.After(l.Timestamp) {
			last[m.Author] = m
		}
	}

	avg, count := a.responseTimes()

	return InterestingStats{
		LongestMessages:        longest,
		ShortestMessages:       shortest,
		TopActiveDays:          topDays,
		AuthorFirstMessage:     momentMap(first),
		AuthorLastMessage:      momentMap(last),
		AvgResponseTimeMinutes: round2(avg),
		TotalResponsesAnalyzed: count,
	}
}

func momentMap(src map[string]chat.Message) map[string]AuthorMoment {
	out := make(map[string]AuthorMoment, len(src))
	for author, m := range src {
		out[author] = AuthorMoment{
			Datetime: isoTimestamp(m),
			Date:     m.Date,
			Time:     m.Time,
			Text:     truncateFlat(m.Text, 100),
		}
	}
	return out
}

// truncateFlat cuts s to n characters without an ellipsis marker.
func truncateFlat(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// responseTimes returns the mean gap in minutes over qualifying adjacent
// pairs, and how many pairs qualified.
func (a *Analyzer) responseTimes() (float64, int) {
	sorted := make([]chat.Message, len(a.messages))
	copy(sorted, a.messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var sum float64
	count := 0
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Author == cur.Author {
			continue
		}
		minutes := cur.Timestamp.Sub(prev.Timestamp).Minutes()
		if minutes > 0 && minutes < 24*60 {
			sum += minutes
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}
