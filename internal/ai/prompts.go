package ai

import (
	"fmt"
	"strings"

	"github.com/chatscope-app/chatscope/internal/analysis"
	"github.com/chatscope-app/chatscope/internal/chat"
)

// AnalystSystemInstruction defines the model's role for every conversation:
// a chat-analysis assistant grounded in the computed statistics.
const AnalystSystemInstruction = `Ты умный помощник для анализа переписки WhatsApp.
Ты помогаешь пользователю понять интересные паттерны, статистику и особенности его чата.

У тебя есть доступ к:
1. Полной статистике чата (количество сообщений, слова, эмодзи, активность и т.д.)
2. Примерам сообщений из переписки
3. Анализу активности по времени, участникам и т.д.

Отвечай:
- Кратко и по делу
- Используй конкретные цифры из статистики
- Находи интересные паттерны и закономерности
- Будь дружелюбным и понятным
- Если нужно больше данных для ответа, скажи об этом

Отвечай на русском языке.`

// FormatAnalysisSummary renders the report as a compact, human-readable text
// block the model can quote numbers from.
func FormatAnalysisSummary(report *analysis.Report) string {
	if report == nil {
		return "Анализ недоступен"
	}

	var sb strings.Builder
	sb.WriteString("СТАТИСТИКА ЧАТА:\n\n")

	basic := report.Basic
	sb.WriteString("📊 Общая статистика:\n")
	fmt.Fprintf(&sb, "- Всего сообщений: %d\n", basic.TotalMessages)
	fmt.Fprintf(&sb, "- Всего слов: %d\n", basic.TotalWords)
	fmt.Fprintf(&sb, "- Дней активности: %d\n", basic.DaysActive)
	fmt.Fprintf(&sb, "- Сообщений в день: %.1f\n", basic.MessagesPerDay)
	fmt.Fprintf(&sb, "- Средняя длина сообщения: %.0f символов\n\n", basic.AvgMessageLength)

	if len(basic.AuthorStats) > 0 {
		sb.WriteString("👥 По участникам:\n")
		for author, count := range basic.AuthorStats {
			percentage := 0.0
			if basic.TotalMessages > 0 {
				percentage = float64(count) / float64(basic.TotalMessages) * 100
			}
			fmt.Fprintf(&sb, "- %s: %d сообщений (%.1f%%)\n", author, count, percentage)
		}
		sb.WriteString("\n")
	}

	emoji := report.Emoji
	sb.WriteString("😊 Эмодзи:\n")
	fmt.Fprintf(&sb, "- Всего использований: %d\n", emoji.TotalEmojis)
	fmt.Fprintf(&sb, "- Уникальных эмодзи: %d\n", emoji.UniqueEmojis)
	fmt.Fprintf(&sb, "- Сообщений с эмодзи: %d (%.1f%%)\n", emoji.MessagesWithEmoji, emoji.EmojiUsagePercentage)
	if len(emoji.TopEmojis) > 0 {
		sb.WriteString("- Топ-5 эмодзи: " + formatPairs(emoji.TopEmojis, 5) + "\n")
	}
	sb.WriteString("\n")

	if len(report.Words.TopWords) > 0 {
		sb.WriteString("📝 Топ-10 слов: " + formatPairs(report.Words.TopWords, 10) + "\n\n")
	}

	if maxHour, ok := peakHour(report.Activity.Hourly); ok {
		fmt.Fprintf(&sb, "⏰ Самый активный час: %d:00 (%d сообщений)\n", maxHour.Hour, maxHour.Count)
	}
	if maxDay, ok := peakPair(report.Activity.Weekday); ok {
		fmt.Fprintf(&sb, "📅 Самый активный день недели: %s (%d сообщений)\n", maxDay.Key, maxDay.Count)
	}
	sb.WriteString("\n")

	interesting := report.Interesting
	if len(interesting.TopActiveDays) > 0 {
		top := interesting.TopActiveDays[0]
		fmt.Fprintf(&sb, "🔥 Самый активный день: %s (%d сообщений)\n", top.Date, top.Messages)
	}
	fmt.Fprintf(&sb, "⚡ Среднее время ответа: %.1f минут\n\n", interesting.AvgResponseTimeMinutes)

	return sb.String()
}

func formatDayContext(day *analysis.DayReport) string {
	var sb strings.Builder
	sb.WriteString("\n\n📅 АНАЛИЗ КОНКРЕТНОГО ДНЯ:\n")
	fmt.Fprintf(&sb, "Дата: %s\n", day.Date)
	fmt.Fprintf(&sb, "- Сообщений за день: %d\n", day.Basic.TotalMessages)
	fmt.Fprintf(&sb, "- Слов: %d\n", day.Basic.TotalWords)
	fmt.Fprintf(&sb, "- Средняя длина сообщения: %.0f символов\n", day.Basic.AvgMessageLength)

	if len(day.Basic.AuthorStats) > 0 {
		sb.WriteString("\nПо участникам:\n")
		for author, count := range day.Basic.AuthorStats {
			fmt.Fprintf(&sb, "- %s: %d сообщений\n", author, count)
		}
	}

	if maxHour, ok := peakHour(day.Activity.Hourly); ok {
		fmt.Fprintf(&sb, "\nСамый активный час: %d:00 (%d сообщений)\n", maxHour.Hour, maxHour.Count)
	}

	if len(day.Words.TopWords) > 0 {
		sb.WriteString("\nТоп-5 слов: " + formatPairs(day.Words.TopWords, 5) + "\n")
	}

	sb.WriteString("\nВАЖНО: Пользователь задает вопрос о КОНКРЕТНОМ ДНЕ. Отвечай с учетом анализа этого дня!")
	return sb.String()
}

// formatMessagesSample renders the first and last messages of the chat so the
// model sees the actual communication style, with long texts truncated.
func formatMessagesSample(messages []chat.Message) string {
	const (
		sampleSize = 15
		maxTextLen = 150
	)

	var sb strings.Builder
	sb.WriteString("\n\nПримеры сообщений из переписки (для понимания стиля общения):\n")

	first := messages
	if len(first) > sampleSize {
		first = first[:sampleSize]
	}
	sb.WriteString("Первые сообщения:\n")
	for _, m := range first {
		fmt.Fprintf(&sb, "- [%s %s] %s: %s\n", m.Date, m.Time, m.Author, truncate(m.Text, maxTextLen))
	}

	if len(messages) > sampleSize {
		last := messages[len(messages)-sampleSize:]
		sb.WriteString("\nПоследние сообщения:\n")
		for _, m := range last {
			fmt.Fprintf(&sb, "- [%s %s] %s: %s\n", m.Date, m.Time, m.Author, truncate(m.Text, maxTextLen))
		}
	}

	return sb.String()
}

func formatPairs(pairs []analysis.Pair, n int) string {
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s (%d)", p.Key, p.Count))
	}
	return strings.Join(parts, ", ")
}

func peakHour(hours []analysis.HourCount) (analysis.HourCount, bool) {
	if len(hours) == 0 {
		return analysis.HourCount{}, false
	}
	best := hours[0]
	for _, h := range hours[1:] {
		if h.Count > best.Count {
			best = h
		}
	}
	return best, true
}

func peakPair(pairs []analysis.Pair) (analysis.Pair, bool) {
	if len(pairs) == 0 {
		return analysis.Pair{}, false
	}
	best := pairs[0]
	for _, p := range pairs[1:] {
		if p.Count > best.Count {
			best = p
		}
	}
	return best, true
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
