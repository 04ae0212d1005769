package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chatscope-app/chatscope/internal/chat"
)

// Query failures are expected, common conditions reported as error values the
// caller checks with errors.Is, never panics.
var (
	ErrNoMessages      = errors.New("no messages match")
	ErrMessageNotFound = errors.New("message not found")
	ErrBadTimestamp    = errors.New("unparseable timestamp")
	ErrBadDate         = errors.New("unparseable date")
)

// SearchMatch is one message containing the searched word, with its per
// message occurrence count.
type SearchMatch struct {
	Datetime string `json:"datetime"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Hour     int    `json:"hour"`
	Weekday  int    `json:"weekday"`
	Author   string `json:"author"`
	Text     string `json:"text"`
	Count    int    `json:"count"`
}

// SearchResult is the full outcome of a word search.
type SearchResult struct {
	Word              string             `json:"word"`
	TotalOccurrences  int                `json:"total_occurrences"`
	UniqueMessages    int                `json:"unique_messages"`
	AuthorStats       map[string]int     `json:"author_stats"`
	AuthorPercentages map[string]float64 `json:"author_percentages"`
	HourStats         []HourCount        `json:"hour_stats"`
	WeekdayStats      []Pair             `json:"weekday_stats"`
	DateStats         []Pair             `json:"date_stats"`
	Matches           []SearchMatch      `json:"matches"`
	TotalMatchesCount int                `json:"total_matches_count"`
}

// SearchWord scans every message for the target substring, counting every
// occurrence. Matches are returned sorted chronologically, with occurrence
// totals per author, hour, weekday and date, and per-author usage as a
// percentage of that author's message count.
func (a *Analyzer) SearchWord(word string, caseSensitive bool) SearchResult {
	needle := word
	if !caseSensitive {
		needle = strings.ToLower(word)
	}

	var matches []SearchMatch
	authorStats := make(map[string]int)
	hourStats := make(map[int]int)
	weekdayStats := make(map[int]int)
	dates := newCounter()
	authorTotals := make(map[string]int)

	for _, m := range a.messages {
		authorTotals[m.Author]++

		haystack := m.Text
		if !caseSensitive {
			haystack = strings.ToLower(m.Text)
		}
		count := strings.Count(haystack, needle)
		if count == 0 {
			continue
		}

		matches = append(matches, SearchMatch{
			Datetime: isoTimestamp(m),
			Date:     m.Date,
			Time:     m.Time,
			Hour:     m.Hour,
			Weekday:  m.Weekday,
			Author:   m.Author,
			Text:     m.Text,
			Count:    count,
		})
		authorStats[m.Author] += count
		hourStats[m.Hour] += count
		weekdayStats[m.Weekday] += count
		dates.add(m.Date, count)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Datetime < matches[j].Datetime
	})

	total := 0
	for _, m := range matches {
		total += m.Count
	}

	authorPercentages := make(map[string]float64, len(authorStats))
	for author, n := range authorStats {
		if authorTotals[author] > 0 {
			authorPercentages[author] = round2(float64(n) / float64(authorTotals[author]) * 100)
		}
	}

	var hours []HourCount
	for h := 0; h < 24; h++ {
		if n, ok := hourStats[h]; ok {
			hours = append(hours, HourCount{Hour: h, Count: n})
		}
	}
	var weekdays []Pair
	for w := 0; w < 7; w++ {
		if n, ok := weekdayStats[w]; ok {
			weekdays = append(weekdays, Pair{Key: weekdayNames[w], Count: n})
		}
	}

	return SearchResult{
		Word:              word,
		TotalOccurrences:  total,
		UniqueMessages:    len(matches),
		AuthorStats:       authorStats,
		AuthorPercentages: authorPercentages,
		HourStats:         hours,
		WeekdayStats:      weekdays,
		DateStats:         dates.sortedByKey(),
		Matches:           matches,
		TotalMatchesCount: len(matches),
	}
}

// ContextResult is a window of messages around one target message.
type ContextResult struct {
	TargetIndex int            `json:"target_index"`
	Messages    []chat.Message `json:"messages"`
	Total       int            `json:"total"`
}

// contextTolerance is how far a message timestamp may deviate from the
// requested one before the lookup fails.
const contextTolerance = 60 * time.Second

// timestampLayouts are the parse strategies tried in order for context
// lookups: RFC3339, ISO without zone, ISO without seconds, and a bare date.
// The first success wins.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// MessageContext locates the message whose timestamp matches the target at
// second precision (or, failing that, the closest message within 60 seconds)
// and returns up to contextSize messages on either side, clamped to the
// sequence bounds, together with the target's index inside the window.
func (a *Analyzer) MessageContext(timestamp string, contextSize int) (*ContextResult, error) {
	target, err := parseTimestamp(timestamp)
	if err != nil {
		return nil, err
	}
	target = target.Truncate(time.Second)

	targetIdx := -1
	for i, m := range a.messages {
		if m.Timestamp.Truncate(time.Second).Equal(target) {
			targetIdx = i
			break
		}
	}

	if targetIdx < 0 {
		var minDiff time.Duration
		for i, m := range a.messages {
			diff := m.Timestamp.Sub(target)
			if diff < 0 {
				diff = -diff
			}
			if diff < contextTolerance && (targetIdx < 0 || diff < minDiff) {
				minDiff = diff
				targetIdx = i
			}
		}
	}

	if targetIdx < 0 {
		return nil, ErrMessageNotFound
	}

	start := targetIdx - contextSize
	if start < 0 {
		start = 0
	}
	end := targetIdx + contextSize + 1
	if end > len(a.messages) {
		end = len(a.messages)
	}

	window := make([]chat.Message, end-start)
	copy(window, a.messages[start:end])

	return &ContextResult{
		TargetIndex: targetIdx - start,
		Messages:    window,
		Total:       len(window),
	}, nil
}

// HourSlice is every message sent during one hour of the day, optionally
// restricted to a single date.
type HourSlice struct {
	Hour          int            `json:"hour"`
	Date          string         `json:"date,omitempty"`
	TotalMessages int            `json:"total_messages"`
	Messages      []chat.Message `json:"messages"`
}

// MessagesByHour returns all messages whose hour equals the given value,
// optionally further restricted to one calendar date ("YYYY-MM-DD"), sorted
// chronologically. An empty result is reported as ErrNoMessages.
func (a *Analyzer) MessagesByHour(hour int, date string) (*HourSlice, error) {
	if date != "" {
		if _, err := parseISODate(date); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadDate, date)
		}
	}

	var filtered []chat.Message
	for _, m := range a.messages {
		if m.Hour != hour {
			continue
		}
		if date != "" && m.Date != date {
			continue
		}
		filtered = append(filtered, m)
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: no messages at %02d:00", ErrNoMessages, hour)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp)
	})

	return &HourSlice{
		Hour:          hour,
		Date:          date,
		TotalMessages: len(filtered),
		Messages:      filtered,
	}, nil
}

// DayReport is the full report aggregate recomputed over one calendar date,
// plus the day's messages and its first and last message times.
type DayReport struct {
	Date string `json:"date"`
	Report
	Messages         []chat.Message `json:"messages"`
	FirstMessageTime string         `json:"first_message_time"`
	LastMessageTime  string         `json:"last_message_time"`
}

// DayAnalysis filters the sequence to one calendar date ("YYYY-MM-DD") and
// reruns the entire statistics engine over the sub-sequence. A date with no
// messages is reported as ErrNoMessages.
func (a *Analyzer) DayAnalysis(date string) (*DayReport, error) {
	if _, err := parseISODate(date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadDate, date)
	}

	var dayMessages []chat.Message
	for _, m := range a.messages {
		if m.Date == date {
			dayMessages = append(dayMessages, m)
		}
	}
	if len(dayMessages) == 0 {
		return nil, fmt.Errorf("%w: no messages on %s", ErrNoMessages, date)
	}

	first := dayMessages[0].Timestamp
	last := dayMessages[0].Timestamp
	for _, m := range dayMessages[1:] {
		if m.Timestamp.Before(first) {
			first = m.Timestamp
		}
		if m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}

	day := New(dayMessages)
	return &DayReport{
		Date:             date,
		Report:           *day.fullAnalysis(DefaultMinWordLength, dayTopWords),
		Messages:         dayMessages,
		FirstMessageTime: first.Format("15:04:05"),
		LastMessageTime:  last.Format("15:04:05"),
	}, nil
}

// parseTimestamp tries each layout in timestampLayouts in order and returns
// the first success, or ErrBadTimestamp.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	// A trailing Z on a zone-less layout is tolerated at the boundary.
	if trimmed := strings.TrimSuffix(s, "Z"); trimmed != s {
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, trimmed); err == nil {
				return ts, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}

func parseISODate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
