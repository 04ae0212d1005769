package analysis

import (
	"sort"
	"strings"
)

// topicKeywords drive the heuristic topic detection. A message may hit
// several topics at once.
var topicKeywords = []struct {
	Topic    string
	Keywords []string
}{
	{"работа", []string{"работа", "проект", "задача", "дедлайн", "встреча", "офис", "коллега"}},
	{"личное", []string{"дом", "семья", "друзья", "выходные", "отпуск", "праздник"}},
	{"планы", []string{"встреча", "встретимся", "планы", "когда", "где", "время"}},
	{"вопросы", []string{"как", "что", "почему", "когда", "где", "кто"}},
	{"эмоции", []string{"спасибо", "извини", "люблю", "нравится", "не нравится", "грустно", "радостно"}},
}

// timePeriodNames are the four time-of-day buckets in display order.
var timePeriodNames = [4]string{"утро", "день", "вечер", "ночь"}

// LengthDistribution buckets messages by character length.
type LengthDistribution struct {
	Short            int     `json:"short"`
	Medium           int     `json:"medium"`
	Long             int     `json:"long"`
	ShortPercentage  float64 `json:"short_percentage"`
	MediumPercentage float64 `json:"medium_percentage"`
	LongPercentage   float64 `json:"long_percentage"`
}

// PunctuationMarkers counts question and exclamation messages.
type PunctuationMarkers struct {
	QuestionMessages      int     `json:"question_messages"`
	ExclamationMessages   int     `json:"exclamation_messages"`
	QuestionPercentage    float64 `json:"question_percentage"`
	ExclamationPercentage float64 `json:"exclamation_percentage"`
}

// SemanticStats is the keyword-heuristic view of what the chat is about.
type SemanticStats struct {
	MessageLengthDistribution LengthDistribution `json:"message_length_distribution"`
	CommunicationStyle        PunctuationMarkers `json:"communication_style"`
	Topics                    []Pair             `json:"topics"`
	TimePeriods               map[string]int     `json:"time_periods"`
	TimePeriodsPercentage     map[string]float64 `json:"time_periods_percentage"`
}

// SemanticAnalysis is heuristic-only: length buckets (<10, 10-50, >50 chars),
// punctuation-based question/exclamation shares, topic keyword hits, and
// time-of-day buckets (morning 6-12, afternoon 12-18, evening 18-24,
// night 0-6).
func (a *Analyzer) SemanticAnalysis() SemanticStats {
	if len(a.messages) == 0 {
		return SemanticStats{}
	}

	var dist LengthDistribution
	var punct PunctuationMarkers
	topics := newCounter()
	periods := map[string]int{"утро": 0, "день": 0, "вечер": 0, "ночь": 0}

	for _, m := range a.messages {
		text := strings.ToLower(m.Text)
		length := runeLen(text)

		switch {
		case length < 10:
			dist.Short++
		case length < 50:
			dist.Medium++
		default:
			dist.Long++
		}

		if strings.Contains(text, "?") {
			punct.QuestionMessages++
		}
		if strings.Contains(text, "!") {
			punct.ExclamationMessages++
		}

		for _, tk := range topicKeywords {
			if containsAny(text, tk.Keywords) {
				topics.add(tk.Topic, 1)
			}
		}

		switch {
		case m.Hour >= 6 && m.Hour < 12:
			periods["утро"]++
		case m.Hour >= 12 && m.Hour < 18:
			periods["день"]++
		case m.Hour >= 18:
			periods["вечер"]++
		default:
			periods["ночь"]++
		}
	}

	total := float64(len(a.messages))
	dist.ShortPercentage = round1(float64(dist.Short) / total * 100)
	dist.MediumPercentage = round1(float64(dist.Medium) / total * 100)
	dist.LongPercentage = round1(float64(dist.Long) / total * 100)
	punct.QuestionPercentage = round1(float64(punct.QuestionMessages) / total * 100)
	punct.ExclamationPercentage = round1(float64(punct.ExclamationMessages) / total * 100)

	percentages := make(map[string]float64, len(periods))
	for _, name := range timePeriodNames {
		percentages[name] = round1(float64(periods[name]) / total * 100)
	}

	return SemanticStats{
		MessageLengthDistribution: dist,
		CommunicationStyle:        punct,
		Topics:                    topics.top(-1),
		TimePeriods:               periods,
		TimePeriodsPercentage:     percentages,
	}
}

// Emotional word lists. A message is flagged once per category it hits, not
// once per occurrence.
var (
	positiveWords = []string{"спасибо", "отлично", "хорошо", "класс", "супер", "рад", "радость", "люблю", "нравится", "круто"}
	negativeWords = []string{"плохо", "ужасно", "ненавижу", "злой", "злюсь", "грустно", "печаль", "проблема", "ошибка", "неправильно"}
	anxietyWords  = []string{"беспокоюсь", "волнуюсь", "тревога", "страх", "боюсь", "переживаю", "нервничаю"}
)

// DayEmotions counts flagged messages for one calendar date.
type DayEmotions struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Anxiety  int `json:"anxiety"`
	Total    int `json:"total"`
}

// TopicEmotions is a minimal topic-by-emotion cross tabulation.
type TopicEmotions struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Anxiety  int `json:"anxiety"`
}

// TenseDay is a date where negative-flagged messages exceeded 30% of traffic.
type TenseDay struct {
	Date          string  `json:"date"`
	NegativeRatio float64 `json:"negative_ratio"`
	TotalMessages int     `json:"total_messages"`
}

// EmotionalStats aggregates emotion flags per date and per topic.
type EmotionalStats struct {
	DailyEmotions map[string]DayEmotions   `json:"daily_emotions"`
	TopicEmotions map[string]TopicEmotions `json:"topic_emotions"`
	TenseDays     []TenseDay               `json:"tense_days"`
}

// EmotionalAnalysis flags each message against the positive/negative/anxiety
// word lists, aggregates per date, and reports days where more than 30% of
// messages were negative (top 20 by ratio).
func (a *Analyzer) EmotionalAnalysis() EmotionalStats {
	if len(a.messages) == 0 {
		return EmotionalStats{}
	}

	daily := make(map[string]DayEmotions)
	topics := make(map[string]TopicEmotions)
	var dateOrder []string

	for _, m := range a.messages {
		text := strings.ToLower(m.Text)

		d, seen := daily[m.Date]
		if !seen {
			dateOrder = append(dateOrder, m.Date)
		}
		d.Total++

		pos := containsAny(text, positiveWords)
		neg := containsAny(text, negativeWords)
		anx := containsAny(text, anxietyWords)
		if pos {
			d.Positive++
		}
		if neg {
			d.Negative++
		}
		if anx {
			d.Anxiety++
		}
		daily[m.Date] = d

		if (pos || neg) && containsAny(text, []string{"работа", "проект", "задача"}) {
			te := topics["работа"]
			if pos {
				te.Positive++
			}
			if neg {
				te.Negative++
			}
			topics["работа"] = te
		}
		if containsAny(text, []string{"встреча", "планы", "время"}) && anx {
			te := topics["планы"]
			te.Anxiety++
			topics["планы"] = te
		}
	}

	var tense []TenseDay
	for _, date := range dateOrder {
		d := daily[date]
		ratio := float64(d.Negative) / float64(d.Total)
		if ratio > 0.3 {
			tense = append(tense, TenseDay{
				Date:          date,
				NegativeRatio: round1(ratio * 100),
				TotalMessages: d.Total,
			})
		}
	}
	sort.SliceStable(tense, func(i, j int) bool {
		return tense[i].NegativeRatio > tense[j].NegativeRatio
	})
	if len(tense) > 20 {
		tense = tense[:20]
	}

	return EmotionalStats{
		DailyEmotions: daily,
		TopicEmotions: topics,
		TenseDays:     tense,
	}
}

// conflictMarkers are fixed phrase lists per conflict-dynamics category.
var conflictMarkers = []struct {
	Category string
	Phrases  []string
}{
	{"resolution", []string{"ладно", "ок", "окей", "понятно", "хорошо", "согласен", "принято"}},
	{"tension", []string{"как хочешь", "делай что хочешь", "не важно", "без разницы", "неважно"}},
	{"apology", []string{"извини", "извините", "прости", "простите", "сорри"}},
	{"compromise", []string{"может", "возможно", "попробуем", "давай попробуем", "давайте"}},
}

// ConflictStats tallies marker-phrase usage.
type ConflictStats struct {
	MarkerPhrases   map[string][]Pair `json:"marker_phrases"`
	ApologyStats    map[string]int    `json:"apology_stats"`
	CompromiseStats map[string]int    `json:"compromise_stats"`
}

// ConflictAnalysis counts messages containing each marker phrase across four
// categories (resolution, tension, apology, compromise) and tallies apologies
// and compromises per author.
func (a *Analyzer) ConflictAnalysis() ConflictStats {
	if len(a.messages) == 0 {
		return ConflictStats{}
	}

	usage := make(map[string]*counter)
	apologies := make(map[string]int)
	compromises := make(map[string]int)

	for _, m := range a.messages {
		text := strings.ToLower(m.Text)
		for _, cat := range conflictMarkers {
			for _, phrase := range cat.Phrases {
				if !strings.Contains(text, phrase) {
					continue
				}
				if usage[cat.Category] == nil {
					usage[cat.Category] = newCounter()
				}
				usage[cat.Category].add(phrase, 1)
				switch cat.Category {
				case "apology":
					apologies[m.Author]++
				case "compromise":
					compromises[m.Author]++
				}
			}
		}
	}

	markerPhrases := make(map[string][]Pair, len(usage))
	for category, c := range usage {
		markerPhrases[category] = c.top(-1)
	}

	return ConflictStats{
		MarkerPhrases:   markerPhrases,
		ApologyStats:    apologies,
		CompromiseStats: compromises,
	}
}

// containsAny reports whether text contains at least one of the substrings.
func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
