package analysis

import "github.com/forPelevin/gomoji"

// AuthorEmojiUsage is one author's emoji volume and variety.
type AuthorEmojiUsage struct {
	Count  int `json:"count"`
	Unique int `json:"unique"`
}

// EmojiStats summarizes emoji usage across the chat.
type EmojiStats struct {
	TotalEmojis          int                         `json:"total_emojis"`
	UniqueEmojis         int                         `json:"unique_emojis"`
	MessagesWithEmoji    int                         `json:"messages_with_emoji"`
	EmojiUsagePercentage float64                     `json:"emoji_usage_percentage"`
	TopEmojis            []Pair                      `json:"top_emojis"`
	AuthorEmojiStats     map[string]AuthorEmojiUsage `json:"author_emoji_stats"`
}

// EmojiStats counts every emoji character in every message and reports
// totals, the percentage of messages carrying at least one emoji, the top 50
// emoji by frequency (ties in first-seen order), and per-author usage.
func (a *Analyzer) EmojiStats() EmojiStats {
	emojiCounter := newCounter()
	messagesWithEmoji := 0
	authorCounts := make(map[string]int)
	authorUnique := make(map[string]map[string]struct{})

	for _, m := range a.messages {
		found := extractEmojis(m.Text)
		if len(found) == 0 {
			continue
		}
		messagesWithEmoji++
		if authorUnique[m.Author] == nil {
			authorUnique[m.Author] = make(map[string]struct{})
		}
		for _, e := range found {
			emojiCounter.add(e, 1)
			authorCounts[m.Author]++
			authorUnique[m.Author][e] = struct{}{}
		}
	}

	authorStats := make(map[string]AuthorEmojiUsage, len(authorCounts))
	for author, count := range authorCounts {
		authorStats[author] = AuthorEmojiUsage{
			Count:  count,
			Unique: len(authorUnique[author]),
		}
	}

	total := 0
	for _, k := range emojiCounter.keys {
		total += emojiCounter.counts[k]
	}

	stats := EmojiStats{
		TotalEmojis:       total,
		UniqueEmojis:      emojiCounter.len(),
		MessagesWithEmoji: messagesWithEmoji,
		TopEmojis:         emojiCounter.top(50),
		AuthorEmojiStats:  authorStats,
	}
	if len(a.messages) > 0 {
		stats.EmojiUsagePercentage = round2(float64(messagesWithEmoji) / float64(len(a.messages)) * 100)
	}
	return stats
}

// extractEmojis returns every emoji character of s in order, one entry per
// occurrence.
func extractEmojis(s string) []string {
	var out []string
	for _, r := range s {
		c := string(r)
		if gomoji.ContainsEmoji(c) {
			out = append(out, c)
		}
	}
	return out
}

// countEmojis returns the number of emoji characters in s.
func countEmojis(s string) int {
	return len(extractEmojis(s))
}
