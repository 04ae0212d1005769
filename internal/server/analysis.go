package server

import (
	"errors"
	"net/http"

	"github.com/chatscope-app/chatscope/internal/analysis"
)

// Analysis serves the memoized full report for the active transcript.
func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	report, err := h.session.Report()
	if err != nil {
		h.Error(w, http.StatusBadRequest, "no transcript loaded")
		return
	}
	h.JSON(w, http.StatusOK, report)
}

// RefreshResponse carries the freshly recomputed report.
type RefreshResponse struct {
	Status   string `json:"status"`
	Analysis any    `json:"analysis"`
}

// Refresh drops the memoized report and recomputes it.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.session.Invalidate()

	report, err := h.session.Report()
	if err != nil {
		h.Error(w, http.StatusBadRequest, "no transcript loaded")
		return
	}
	h.JSON(w, http.StatusOK, RefreshResponse{Status: "success", Analysis: report})
}

// CurrentFileResponse describes the active transcript, if any.
type CurrentFileResponse struct {
	CurrentFile  string `json:"current_file,omitempty"`
	TranscriptID string `json:"transcript_id,omitempty"`
	IsLoaded     bool   `json:"is_loaded"`
	Filename     string `json:"filename"`
	MessageCount int    `json:"message_count,omitempty"`
}

// CurrentFile reports which transcript is active.
func (h *Handler) CurrentFile(w http.ResponseWriter, r *http.Request) {
	transcript, ok := h.session.Current()
	if !ok {
		h.JSON(w, http.StatusOK, CurrentFileResponse{
			IsLoaded: false,
			Filename: "no file loaded",
		})
		return
	}

	h.JSON(w, http.StatusOK, CurrentFileResponse{
		CurrentFile:  transcript.Filename,
		TranscriptID: transcript.ID,
		IsLoaded:     true,
		Filename:     transcript.OriginalName,
		MessageCount: transcript.MessageCount,
	})
}

// sessionAnalyzer unwraps the active analyzer or writes the standard error.
func (h *Handler) sessionAnalyzer(w http.ResponseWriter) (*analysis.Analyzer, bool) {
	analyzer, err := h.session.Analyzer()
	if err != nil {
		if errors.Is(err, ErrNoTranscript) {
			h.Error(w, http.StatusBadRequest, "no transcript loaded")
		} else {
			h.Error(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return analyzer, true
}
