package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chatscope-app/chatscope/internal/ai"
	"github.com/chatscope-app/chatscope/internal/chat"
	"github.com/chatscope-app/chatscope/internal/metrics"
)

// AskRequest is a question about the active transcript, with optional
// conversation history and an optional date to focus on.
type AskRequest struct {
	Question string    `json:"question"`
	History  []ai.Turn `json:"history"`
	Date     string    `json:"date"`
}

// AskResponse carries the model's answer.
type AskResponse struct {
	Answer string `json:"answer"`
	Status string `json:"status"`
}

// sampleSize is how many messages from each end of the transcript ground the
// model in the chat's actual style.
const sampleSize = 50

// AskAI answers a free-form question about the active transcript.
func (h *Handler) AskAI(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil {
		h.Error(w, http.StatusServiceUnavailable, "AI layer is not configured")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		h.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	report, err := h.session.Report()
	if err != nil {
		h.Error(w, http.StatusBadRequest, "no transcript loaded")
		return
	}
	messages, err := h.session.Messages()
	if err != nil {
		h.Error(w, http.StatusBadRequest, "no transcript loaded")
		return
	}

	history := req.History
	if max := h.cfg.AI.HistorySize; max > 0 && len(history) > max {
		history = history[len(history)-max:]
	}

	question := ai.Question{
		Text:    req.Question,
		Report:  report,
		Sample:  sampleMessages(messages),
		History: history,
	}

	// A focused date is best effort: an unanswerable date never blocks the
	// question itself.
	if date := strings.TrimSpace(req.Date); date != "" {
		analyzer, err := h.session.Analyzer()
		if err == nil {
			if day, dayErr := analyzer.DayAnalysis(date); dayErr == nil {
				question.Day = day
			} else {
				h.log.Warn("day analysis for AI question failed", "date", date, "error", dayErr)
			}
		}
	}

	answer, err := h.ai.AskQuestion(r.Context(), question)
	if err != nil {
		metrics.AIRequests.WithLabelValues("error").Inc()
		h.log.Error("AI question failed", "error", err)
		h.Error(w, http.StatusBadGateway, "AI request failed")
		return
	}
	metrics.AIRequests.WithLabelValues("ok").Inc()

	h.JSON(w, http.StatusOK, AskResponse{Answer: answer, Status: "success"})
}

// sampleMessages takes the first and last sampleSize messages.
func sampleMessages(messages []chat.Message) []chat.Message {
	if len(messages) <= 2*sampleSize {
		return messages
	}
	sample := make([]chat.Message, 0, 2*sampleSize)
	sample = append(sample, messages[:sampleSize]...)
	sample = append(sample, messages[len(messages)-sampleSize:]...)
	return sample
}
