package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/chatscope-app/chatscope/internal/analysis"
	"github.com/chatscope-app/chatscope/internal/metrics"
)

// Search runs a word search over the active transcript.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(r.URL.Query().Get("word"))
	if word == "" {
		h.Error(w, http.StatusBadRequest, "word parameter is required")
		return
	}
	caseSensitive := strings.EqualFold(r.URL.Query().Get("case_sensitive"), "true")

	analyzer, ok := h.sessionAnalyzer(w)
	if !ok {
		return
	}

	metrics.SearchQueries.Inc()
	h.JSON(w, http.StatusOK, analyzer.SearchWord(word, caseSensitive))
}

// Context returns the window of messages around one timestamp.
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	timestamp := strings.TrimSpace(r.URL.Query().Get("datetime"))
	if timestamp == "" {
		h.Error(w, http.StatusBadRequest, "datetime parameter is required")
		return
	}

	contextSize := h.cfg.Analysis.ContextSize
	if raw := r.URL.Query().Get("context_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.Error(w, http.StatusBadRequest, "invalid context_size")
			return
		}
		contextSize = n
	}

	analyzer, ok := h.sessionAnalyzer(w)
	if !ok {
		return
	}

	result, err := analyzer.MessageContext(timestamp, contextSize)
	if err != nil {
		h.queryError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, result)
}

// DayAnalysis reruns the statistics engine over one calendar date.
func (h *Handler) DayAnalysis(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		h.Error(w, http.StatusBadRequest, "date parameter is required")
		return
	}

	analyzer, ok := h.sessionAnalyzer(w)
	if !ok {
		return
	}

	result, err := analyzer.DayAnalysis(date)
	if err != nil {
		h.queryError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, result)
}

// MessagesByHour returns the messages sent during one hour of the day.
func (h *Handler) MessagesByHour(w http.ResponseWriter, r *http.Request) {
	hourRaw := strings.TrimSpace(r.URL.Query().Get("hour"))
	if hourRaw == "" {
		h.Error(w, http.StatusBadRequest, "hour parameter is required")
		return
	}
	hour, err := strconv.Atoi(hourRaw)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid hour format")
		return
	}
	if hour < 0 || hour > 23 {
		h.Error(w, http.StatusBadRequest, "hour must be between 0 and 23")
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))

	analyzer, ok := h.sessionAnalyzer(w)
	if !ok {
		return
	}

	result, err := analyzer.MessagesByHour(hour, date)
	if err != nil {
		h.queryError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, result)
}

// queryError maps the statistics engine's sentinel errors onto HTTP statuses.
func (h *Handler) queryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrBadTimestamp), errors.Is(err, analysis.ErrBadDate):
		h.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analysis.ErrMessageNotFound), errors.Is(err, analysis.ErrNoMessages):
		h.Error(w, http.StatusNotFound, err.Error())
	default:
		h.Error(w, http.StatusInternalServerError, err.Error())
	}
}
