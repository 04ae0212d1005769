// Package analysis computes named statistical reports over a parsed message
// sequence. Every report is a pure function of its input: an Analyzer holds
// only the message slice it was created with and never mutates it, so
// concurrent analysis of different transcripts needs no locking. Each report
// returns a typed result struct that serializes to the JSON tree consumed by
// the web layer; empty input yields the zero value of the result, never an
// error.
package analysis

import (
	"encoding/json"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/chatscope-app/chatscope/internal/chat"
)

// Default tuning for the word report. Callers can override both through
// WordStatsWith.
const (
	DefaultMinWordLength = 2
	DefaultTopWords      = 50

	// Day analysis trims the word report, as the per-day vocabulary is small.
	dayTopWords = 30
)

// weekdayNames are the localized, Monday-first weekday display names used by
// the activity reports.
var weekdayNames = [7]string{
	"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье",
}

// Analyzer computes reports over one message sequence. The zero value is
// usable and behaves as an analyzer over an empty sequence.
type Analyzer struct {
	messages []chat.Message
}

// New returns an Analyzer over the given message sequence. The slice is
// retained, not copied; callers must not mutate it afterwards.
func New(messages []chat.Message) *Analyzer {
	return &Analyzer{messages: messages}
}

// Messages returns the underlying message sequence.
func (a *Analyzer) Messages() []chat.Message {
	return a.messages
}

// Report aggregates every independently computed statistical view of a chat.
type Report struct {
	Basic              BasicStats       `json:"basic"`
	Emoji              EmojiStats       `json:"emoji"`
	Words              WordStats        `json:"words"`
	Activity           ActivityStats    `json:"activity"`
	MessageLength      LengthStats      `json:"message_length"`
	Interesting        InterestingStats `json:"interesting"`
	Ghosting           GhostingStats    `json:"ghosting"`
	ActivityHeatmap    HeatmapStats     `json:"activity_heatmap"`
	Semantic           SemanticStats    `json:"semantic"`
	MessageSeries      SeriesStats      `json:"message_series"`
	ReactionSpeed      ReactionStats    `json:"reaction_speed"`
	ParticipantBalance BalanceStats     `json:"participant_balance"`
	Emotional          EmotionalStats   `json:"emotional"`
	CommunicationStyle StyleStats       `json:"communication_style"`
	Conflict           ConflictStats    `json:"conflict"`
	Seasonality        SeasonalityStats `json:"seasonality"`
}

// FullAnalysis runs every report generator and returns the combined aggregate.
func (a *Analyzer) FullAnalysis() *Report {
	return a.fullAnalysis(DefaultMinWordLength, DefaultTopWords)
}

// FullAnalysisWith is FullAnalysis with the word report's tuning overridden.
func (a *Analyzer) FullAnalysisWith(minWordLength, topWords int) *Report {
	if minWordLength < 1 {
		minWordLength = DefaultMinWordLength
	}
	if topWords < 1 {
		topWords = DefaultTopWords
	}
	return a.fullAnalysis(minWordLength, topWords)
}

func (a *Analyzer) fullAnalysis(minWordLength, topWords int) *Report {
	return &Report{
		Basic:              a.BasicStats(),
		Emoji:              a.EmojiStats(),
		Words:              a.WordStatsWith(minWordLength, topWords),
		Activity:           a.ActivityStats(),
		MessageLength:      a.MessageLengthStats(),
		Interesting:        a.InterestingStats(),
		Ghosting:           a.GhostingStats(),
		ActivityHeatmap:    a.ActivityHeatmap(),
		Semantic:           a.SemanticAnalysis(),
		MessageSeries:      a.MessageSeriesStats(),
		ReactionSpeed:      a.ReactionSpeedStats(),
		ParticipantBalance: a.ParticipantBalance(),
		Emotional:          a.EmotionalAnalysis(),
		CommunicationStyle: a.CommunicationStyle(),
		Conflict:           a.ConflictAnalysis(),
		Seasonality:        a.SeasonalityAnalysis(),
	}
}

// Pair is an ordered (label, count) pair. It serializes as a two-element JSON
// array so ordered rankings survive the trip through JSON, which object keys
// would not.
type Pair struct {
	Key   string
	Count int
}

// MarshalJSON encodes the pair as [key, count].
func (p Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Key, p.Count})
}

// UnmarshalJSON decodes a [key, count] array.
func (p *Pair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Count)
}

// HourCount is an ordered (hour, count) pair serialized as a two-element JSON
// array.
type HourCount struct {
	Hour  int
	Count int
}

// MarshalJSON encodes the pair as [hour, count].
func (h HourCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{h.Hour, h.Count})
}

// UnmarshalJSON decodes an [hour, count] array.
func (h *HourCount) UnmarshalJSON(data []byte) error {
	var raw [2]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	h.Hour, h.Count = raw[0], raw[1]
	return nil
}

// counter counts string keys while remembering first-seen insertion order, so
// rankings can break count ties by order of first appearance.
type counter struct {
	counts map[string]int
	keys   []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string, n int) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

func (c *counter) len() int { return len(c.keys) }

// top returns up to n (key, count) pairs ordered by descending count, ties
// broken by first-seen order. n < 0 returns all.
func (c *counter) top(n int) []Pair {
	pairs := make([]Pair, 0, len(c.keys))
	for _, k := range c.keys {
		pairs = append(pairs, Pair{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Count > pairs[j].Count })
	if n >= 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// sortedByKey returns all (key, count) pairs in ascending key order.
func (c *counter) sortedByKey() []Pair {
	pairs := make([]Pair, 0, len(c.keys))
	for _, k := range c.keys {
		pairs = append(pairs, Pair{Key: k, Count: c.counts[k]})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs
}

// peak returns the first key holding the maximum (or minimum) count in
// first-seen order. ok is false for an empty counter.
func (c *counter) peak(max bool) (Pair, bool) {
	if len(c.keys) == 0 {
		return Pair{}, false
	}
	best := Pair{Key: c.keys[0], Count: c.counts[c.keys[0]]}
	for _, k := range c.keys[1:] {
		n := c.counts[k]
		if (max && n > best.Count) || (!max && n < best.Count) {
			best = Pair{Key: k, Count: n}
		}
	}
	return best, true
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// runeLen is the message length measure used throughout the reports:
// characters, not bytes.
func runeLen(s string) int { return utf8.RuneCountInString(s) }

// isoTimestamp formats a message timestamp the way the JSON boundary expects.
func isoTimestamp(m chat.Message) string {
	return m.Timestamp.Format("2006-01-02T15:04:05")
}

// truncateRunes shortens s to at most n characters, appending "..." when
// something was cut.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
