package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/ai"
	"github.com/AnshRaj112/soloura-backend/internal/apperror"
	"github.com/AnshRaj112/soloura-backend/internal/models"
	"github.com/AnshRaj112/soloura-backend/internal/safety"
	"github.com/AnshRaj112/soloura-backend/internal/store"
)

const defaultRecentDays = 7

// JournalHandler serves the caller's journal entries. Every route runs behind
// RequireAuth; entries owned by someone else are reported as not found.
type JournalHandler struct {
	entries store.JournalStore
	ai      *ai.Adapters
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

func NewJournalHandler(entries store.JournalStore, adapters *ai.Adapters, loc *time.Location, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{
		entries: entries,
		ai:      adapters,
		loc:     loc,
		logger:  logger.Named("journal"),
		now:     time.Now,
	}
}

type CreateEntryRequest struct {
	Date       string `json:"date"`
	Content    string `json:"content"`
	MoodRating int    `json:"moodRating"`
}

type UpdateEntryRequest struct {
	Date       *string `json:"date"`
	Content    *string `json:"content"`
	MoodRating *int    `json:"moodRating"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// List handles GET /api/journal-entries.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entries.ListByUser(r.Context(), caller(r).UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

// Latest handles GET /api/journal-entries/latest. The data is null when the user has
// no entries.
func (h *JournalHandler) Latest(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entries.Latest(r.Context(), caller(r).UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool                 `json:"success"`
		Data    *models.JournalEntry `json:"data"`
	}{Success: true, Data: entry})
}

// Count handles GET /api/journal-entries/count.
func (h *JournalHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.entries.CountByUser(r.Context(), caller(r).UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, CountResponse{Count: n})
}

// Recent handles GET /api/journal-entries/recent?days=N&tz=Zone.
func (h *JournalHandler) Recent(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r, defaultRecentDays)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	loc, err := requestLocation(r, h.loc)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	entries, err := h.entries.ListLastNDays(r.Context(), caller(r).UserID, days, h.now().In(loc))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

// Create handles POST /api/journal-entries. A missing date means now.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	loc, err := requestLocation(r, h.loc)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = h.now().In(loc).Format(time.RFC3339)
	}
	at, err := models.ParseEntryDate(date, loc)
	if err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("date", "Date must be an ISO-8601 date"))
		return
	}

	entry, err := h.entries.Create(r.Context(), caller(r).UserID, models.NewJournalEntry{
		Date:       date,
		OccurredAt: at,
		Content:    req.Content,
		MoodRating: req.MoodRating,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("journal entry created", zap.String("user_id", entry.UserID), zap.String("entry_id", entry.ID))
	h.writeEntryData(w, http.StatusCreated, entry, entry)
}

// writeEntryData writes data and attaches the crisis helplines when entry's text calls
// for them. The text itself is never logged.
func (h *JournalHandler) writeEntryData(w http.ResponseWriter, status int, entry *models.JournalEntry, data any) {
	resp := Response{Success: true, Data: data}
	if safety.NeedsSupport(entry.Content) {
		h.logger.Info("self-harm language detected, offering helplines", zap.String("user_id", entry.UserID), zap.String("entry_id", entry.ID))
		resp.CrisisSupport = models.Helplines
	}
	writeJSON(w, status, resp)
}

// owned loads the entry behind the {id} URL parameter and checks that the caller owns it.
func (h *JournalHandler) owned(ctx context.Context, r *http.Request) (*models.JournalEntry, error) {
	id := chi.URLParam(r, "id")
	entry, err := h.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.UserID != caller(r).UserID {
		return nil, apperror.NotFound("journal entry", id)
	}
	return entry, nil
}

// Get handles GET /api/journal-entries/{id}.
func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.owned(r.Context(), r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, entry)
}

// Update handles PATCH /api/journal-entries/{id}.
func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	patch := models.JournalEntryPatch{Content: req.Content, MoodRating: req.MoodRating}
	if req.Date != nil {
		loc, err := requestLocation(r, h.loc)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		date := strings.TrimSpace(*req.Date)
		at, err := models.ParseEntryDate(date, loc)
		if err != nil {
			writeError(w, h.logger, apperror.ValidationFailed("date", "Date must be an ISO-8601 date"))
			return
		}
		patch.Date = &date
		patch.OccurredAt = &at
	}
	if patch.Empty() {
		writeError(w, h.logger, apperror.ValidationFailed("body", "Nothing to update"))
		return
	}

	entry, err := h.owned(r.Context(), r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	updated, err := h.entries.Update(r.Context(), entry.ID, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if updated == nil {
		writeError(w, h.logger, apperror.NotFound("journal entry", entry.ID))
		return
	}
	h.writeEntryData(w, http.StatusOK, updated, updated)
}

// Delete handles DELETE /api/journal-entries/{id}.
func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entry, err := h.owned(r.Context(), r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.entries.Delete(r.Context(), entry.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("journal entry deleted", zap.String("user_id", entry.UserID), zap.String("entry_id", entry.ID))
	writeMessage(w, http.StatusOK, "Journal entry deleted")
}

// Analyze handles POST /api/journal-entries/{id}/analysis: mood analysis of one entry.
func (h *JournalHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	entry, err := h.owned(r.Context(), r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.ai.AnalyzeMood(r.Context(), ai.MoodInput{JournalEntry: entry.Content})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.writeEntryData(w, http.StatusOK, entry, result)
}
