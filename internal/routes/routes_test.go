package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/ai"
	"github.com/AnshRaj112/soloura-backend/internal/handlers"
	"github.com/AnshRaj112/soloura-backend/internal/metrics"
	"github.com/AnshRaj112/soloura-backend/internal/services"
	"github.com/AnshRaj112/soloura-backend/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	tokens, err := services.NewTokenService("routes-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	sessions := services.NewMemorySessionStore()
	identity := services.NewIdentityService(services.IdentityDeps{
		Accounts: store.NewMemoryAccountStore(),
		Profiles: store.NewMemoryProfileStore(),
		Sessions: sessions,
		Codes:    sessions,
		Tokens:   tokens,
		Bus:      services.NewLocalAuthBus(logger),
		Logger:   logger,
	})
	journals := store.NewMemoryJournalStore()
	adapters := ai.NewAdapters(ai.Unavailable{}, nil, logger)

	return NewRouter(Deps{
		Auth:           handlers.NewAuthHandler(identity, logger),
		Journal:        handlers.NewJournalHandler(journals, adapters, time.UTC, logger),
		Insights:       handlers.NewInsightsHandler(journals, adapters, time.UTC, logger),
		Analysis:       handlers.NewAnalysisHandler(adapters, logger),
		Tokens:         tokens,
		Metrics:        metrics.New(),
		Logger:         logger,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func TestJournalFlowEndToEnd(t *testing.T) {
	h := newTestRouter(t)

	rec, env := do(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Robin","email":"robin@example.com","password":"quiet-morning-42"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sess services.Session
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	require.NotEmpty(t, sess.IDToken)

	rec, _ = do(t, h, http.MethodGet, "/api/journal-entries", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = do(t, h, http.MethodPost, "/api/journal-entries", sess.IDToken,
		`{"content":"Walked by the river.","moodRating":7}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	rec, _ = do(t, h, http.MethodGet, "/api/journal-entries/"+created.ID, sess.IDToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/dashboard", sess.IDToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dash struct {
		EntryCount int64 `json:"entryCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	assert.EqualValues(t, 1, dash.EntryCount)

	rec, _ = do(t, h, http.MethodDelete, "/api/journal-entries/"+created.ID, sess.IDToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec, _ := do(t, h, http.MethodGet, "/api/analyze-mood", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/analyze-mood", "", `{"journalEntry":"Tired but okay."}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to analyze mood"}`, rec.Body.String())

	rec, env := do(t, h, http.MethodGet, "/api/helplines", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, _ = do(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "soloura_http_requests_total")
}
