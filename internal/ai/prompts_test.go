package ai_test

import (
	"strings"
	"testing"
	"time"

	"github.com/chatscope-app/chatscope/internal/ai"
	"github.com/chatscope-app/chatscope/internal/analysis"
	"github.com/chatscope-app/chatscope/internal/chat"
)

func TestFormatAnalysisSummary(t *testing.T) {
	t.Parallel()

	messages := []chat.Message{
		chat.NewMessage(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), "Alice", "Привет 😊"),
		chat.NewMessage(time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC), "Bob", "Привет!"),
	}
	report := analysis.New(messages).FullAnalysis()

	summary := ai.FormatAnalysisSummary(report)

	for _, want := range []string{
		"СТАТИСТИКА ЧАТА",
		"Всего сообщений: 2",
		"Alice",
		"Bob",
		"Самый активный час: 10:00",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q\n%s", want, summary)
		}
	}
}

func TestFormatAnalysisSummaryNilReport(t *testing.T) {
	t.Parallel()

	if got := ai.FormatAnalysisSummary(nil); got != "Анализ недоступен" {
		t.Errorf("nil report summary = %q", got)
	}
}
