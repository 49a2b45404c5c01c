package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/apperror"
	"github.com/AnshRaj112/soloura-backend/internal/middleware"
	"github.com/AnshRaj112/soloura-backend/internal/models"
	"github.com/AnshRaj112/soloura-backend/internal/services"
)

// maxBodyBytes bounds request bodies; the largest is a journal entry.
const maxBodyBytes = 64 << 10

// Response is the envelope of every authenticated API response.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Data    any    `json:"data,omitempty"`

	// CrisisSupport lists helplines when the submitted text shows self-harm language.
	CrisisSupport []models.Helpline `json:"crisisSupport,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: status < 400, Message: message})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperror.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperror.ErrAnalysisFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the single place errors become responses. Identity errors carry their
// provider code; internal failures are logged and reported generically.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	resp := Response{Success: false}

	var authErr *services.AuthError
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &authErr):
		resp.Code = authErr.Code
		resp.Field = authErr.Field
		resp.Message = services.AuthMessage(authErr)
	case status == http.StatusInternalServerError:
		logger.Error("request failed", zap.Error(err))
		resp.Message = "Internal server error"
	case status == http.StatusServiceUnavailable:
		resp.Message = "Service temporarily unavailable. Please try again."
	case status == http.StatusBadGateway:
		logger.Warn("analysis failed", zap.Error(err))
		resp.Message = "Could not analyze mood. Please try again."
	case errors.As(err, &appErr):
		resp.Message = appErr.Message
		resp.Field = appErr.Field
	default:
		resp.Message = err.Error()
	}
	writeJSON(w, status, resp)
}

var errInvalidBody = apperror.ValidationFailed("body", "Invalid request body")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidBody
	}
	return nil
}

// requestLocation returns the zone named by the tz query parameter, or fallback.
func requestLocation(r *http.Request, fallback *time.Location) (*time.Location, error) {
	tz := strings.TrimSpace(r.URL.Query().Get("tz"))
	if tz == "" {
		return fallback, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, apperror.ValidationFailed("tz", "Unknown time zone "+strconv.Quote(tz))
	}
	return loc, nil
}

// queryDays parses the days query parameter, returning def when absent.
func queryDays(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("days"))
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 366 {
		return 0, apperror.ValidationFailed("days", "days must be a whole number between 1 and 366")
	}
	return days, nil
}

// caller returns the identity RequireAuth placed on the request.
func caller(r *http.Request) *models.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}
