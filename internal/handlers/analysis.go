package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/ai"
)

// AnalysisHandler is the public AI surface: thin POST endpoints that pass a body to one
// adapter and return its result unwrapped.
type AnalysisHandler struct {
	ai     *ai.Adapters
	logger *zap.Logger
}

func NewAnalysisHandler(adapters *ai.Adapters, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{ai: adapters, logger: logger.Named("analysis")}
}

type errorResponse struct {
	Error string `json:"error"`
}

func onlyPOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	return false
}

func (h *AnalysisHandler) fail(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: message})
}

// AnalyzeMood handles /api/analyze-mood with body {journalEntry}.
func (h *AnalysisHandler) AnalyzeMood(w http.ResponseWriter, r *http.Request) {
	if !onlyPOST(w, r) {
		return
	}
	var in ai.MoodInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.fail(w, "Failed to analyze mood", err)
		return
	}
	result, err := h.ai.AnalyzeMood(r.Context(), in)
	if err != nil {
		h.fail(w, "Failed to analyze mood", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// WellbeingTips handles /api/get-wellbeing-tips with body {mood, journalEntry}.
func (h *AnalysisHandler) WellbeingTips(w http.ResponseWriter, r *http.Request) {
	if !onlyPOST(w, r) {
		return
	}
	var in ai.TipsInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.fail(w, "Failed to generate wellbeing tips", err)
		return
	}
	tips, err := h.ai.WellbeingTips(r.Context(), in)
	if err != nil {
		h.fail(w, "Failed to generate wellbeing tips", err)
		return
	}
	writeJSON(w, http.StatusOK, tips)
}
