package analysis

import (
	"strings"
	"unicode"
)

// ParticipantShare is one author's slice of the conversation.
type ParticipantShare struct {
	MessagePercentage   float64 `json:"message_percentage"`
	WordPercentage      float64 `json:"word_percentage"`
	CharacterPercentage float64 `json:"character_percentage"`
	QuestionsCount      int     `json:"questions_count"`
	StatementsCount     int     `json:"statements_count"`
	QuestionRatio       float64 `json:"question_ratio"`
}

// BalanceStats reports how evenly the conversation is split.
type BalanceStats struct {
	Participants map[string]ParticipantShare `json:"participants"`
}

// ParticipantBalance computes each author's share of messages, words and
// characters, plus question versus statement counts. A message containing a
// question mark counts as a question, everything else as a statement.
func (a *Analyzer) ParticipantBalance() BalanceStats {
	if len(a.messages) == 0 {
		return BalanceStats{}
	}

	type tally struct {
		messages, words, chars, questions, statements int
	}
	tallies := make(map[string]*tally)
	totalWords, totalChars := 0, 0

	for _, m := range a.messages {
		t := tallies[m.Author]
		if t == nil {
			t = &tally{}
			tallies[m.Author] = t
		}
		words := len(strings.Fields(m.Text))
		chars := runeLen(m.Text)
		t.messages++
		t.words += words
		t.chars += chars
		totalWords += words
		totalChars += chars
		if strings.Contains(m.Text, "?") {
			t.questions++
		} else {
			t.statements++
		}
	}

	totalMessages := len(a.messages)
	participants := make(map[string]ParticipantShare, len(tallies))
	for author, t := range tallies {
		share := ParticipantShare{
			MessagePercentage: round1(float64(t.messages) / float64(totalMessages) * 100),
			QuestionsCount:    t.questions,
			StatementsCount:   t.statements,
			QuestionRatio:     round1(float64(t.questions) / float64(t.messages) * 100),
		}
		if totalWords > 0 {
			share.WordPercentage = round1(float64(t.words) / float64(totalWords) * 100)
		}
		if totalChars > 0 {
			share.CharacterPercentage = round1(float64(t.chars) / float64(totalChars) * 100)
		}
		participants[author] = share
	}

	return BalanceStats{Participants: participants}
}

// Formality and filler-word marker lists.
var (
	formalMarkers   = []string{"вы", "вас", "вам", "ваш"}
	informalMarkers = []string{"ты", "тебя", "тебе", "твой"}
	fillerWords     = []string{"типа", "как бы", "в общем", "короче", "ну", "это", "вот", "так"}
)

// AuthorStyle describes one author's manner of writing.
type AuthorStyle struct {
	FormalityRatio   float64 `json:"formality_ratio"`
	EmojisPerMessage float64 `json:"emojis_per_message"`
	CapsUsage        int     `json:"caps_usage"`
	EllipsisUsage    int     `json:"ellipsis_usage"`
	ExclamationUsage int     `json:"exclamation_usage"`
	LexicalDiversity float64 `json:"lexical_diversity"`
	TopFillerWords   []Pair  `json:"top_filler_words"`
}

// StyleStats reports per-author communication style.
type StyleStats struct {
	AuthorStyles map[string]AuthorStyle `json:"author_styles"`
}

// CommunicationStyle measures, per author: formal ("вы"-family) versus
// informal ("ты"-family) address, emoji per message, all-caps messages,
// ellipsis and exclamation counts, lexical diversity (unique words over total
// word tokens, x100), and the top five filler words.
func (a *Analyzer) CommunicationStyle() StyleStats {
	if len(a.messages) == 0 {
		return StyleStats{}
	}

	type styleTally struct {
		formal, informal, emojis, caps, ellipsis, exclamations, totalWords int
		uniqueWords                                                        map[string]struct{}
		fillers                                                            *counter
	}
	tallies := make(map[string]*styleTally)

	for _, m := range a.messages {
		t := tallies[m.Author]
		if t == nil {
			t = &styleTally{uniqueWords: make(map[string]struct{}), fillers: newCounter()}
			tallies[m.Author] = t
		}

		lower := strings.ToLower(m.Text)
		if containsAny(lower, formalMarkers) {
			t.formal++
		}
		if containsAny(lower, informalMarkers) {
			t.informal++
		}

		t.emojis += countEmojis(m.Text)
		if isAllCaps(m.Text) && runeLen(m.Text) > 3 {
			t.caps++
		}
		t.ellipsis += strings.Count(m.Text, "...")
		t.exclamations += strings.Count(m.Text, "!")

		words := tokenize(m.Text)
		t.totalWords += len(words)
		for _, w := range words {
			t.uniqueWords[w] = struct{}{}
		}

		for _, filler := range fillerWords {
			if strings.Contains(lower, filler) {
				t.fillers.add(filler, 1)
			}
		}
	}

	styles := make(map[string]AuthorStyle, len(tallies))
	for author, t := range tallies {
		// The formality denominator is the number of messages carrying either
		// marker family, so authors who never address anyone stay at zero.
		addressed := t.formal + t.informal
		if addressed == 0 {
			addressed = 1
		}
		style := AuthorStyle{
			FormalityRatio:   round1(float64(t.formal) / float64(addressed) * 100),
			EmojisPerMessage: round1(float64(t.emojis) / float64(addressed)),
			CapsUsage:        t.caps,
			EllipsisUsage:    t.ellipsis,
			ExclamationUsage: t.exclamations,
			TopFillerWords:   t.fillers.top(5),
		}
		if t.totalWords > 0 {
			style.LexicalDiversity = round1(float64(len(t.uniqueWords)) / float64(t.totalWords) * 100)
		}
		styles[author] = style
	}

	return StyleStats{AuthorStyles: styles}
}

// isAllCaps reports whether s contains at least one cased letter and no
// lowercase letters.
func isAllCaps(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}
