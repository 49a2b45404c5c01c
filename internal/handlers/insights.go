package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnshRaj112/soloura-backend/internal/ai"
	"github.com/AnshRaj112/soloura-backend/internal/insights"
	"github.com/AnshRaj112/soloura-backend/internal/models"
	"github.com/AnshRaj112/soloura-backend/internal/store"
)

// minTrendSamples is the fewest samples worth sending for trend analysis.
const minTrendSamples = 2

// InsightsHandler serves the dashboard, the mood tracker and their projections. Day
// boundaries follow the tz query parameter, else the server's configured zone.
type InsightsHandler struct {
	entries store.JournalStore
	ai      *ai.Adapters
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

func NewInsightsHandler(entries store.JournalStore, adapters *ai.Adapters, loc *time.Location, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{
		entries: entries,
		ai:      adapters,
		loc:     loc,
		logger:  logger.Named("insights"),
		now:     time.Now,
	}
}

type DashboardResponse struct {
	Latest   *models.JournalEntry `json:"latestEntry"`
	Count    int64                `json:"entryCount"`
	Calendar []models.CalendarDay `json:"calendar"`
}

type MoodTrackerResponse struct {
	Entries []models.JournalEntry   `json:"entries"`
	Series  []models.DailyAggregate `json:"series"`
}

type TrendResponse struct {
	Samples       []models.MoodTrendSample `json:"samples"`
	TrendAnalysis string                   `json:"trendAnalysis"`
}

func (h *InsightsHandler) localNow(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	loc, err := requestLocation(r, h.loc)
	if err != nil {
		writeError(w, h.logger, err)
		return time.Time{}, false
	}
	return h.now().In(loc), true
}

// Dashboard handles GET /api/dashboard. The latest entry, the count and the calendar
// window are fetched concurrently; any failure fails the whole response.
func (h *InsightsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	now, ok := h.localNow(w, r)
	if !ok {
		return
	}
	userID := caller(r).UserID

	var (
		latest *models.JournalEntry
		count  int64
		recent []models.JournalEntry
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		latest, err = h.entries.Latest(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		count, err = h.entries.CountByUser(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		recent, err = h.entries.ListLastNDays(ctx, userID, insights.CalendarDays, now)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, DashboardResponse{
		Latest:   latest,
		Count:    count,
		Calendar: insights.CalendarGrid(recent, now),
	})
}

// MoodTracker handles GET /api/mood-tracker: every entry plus the daily series of the
// last TrendDays days.
func (h *InsightsHandler) MoodTracker(w http.ResponseWriter, r *http.Request) {
	now, ok := h.localNow(w, r)
	if !ok {
		return
	}
	userID := caller(r).UserID

	var all, week []models.JournalEntry
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		all, err = h.entries.ListByUser(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		week, err = h.entries.ListLastNDays(ctx, userID, insights.TrendDays, now)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if all == nil {
		all = []models.JournalEntry{}
	}
	writeData(w, http.StatusOK, MoodTrackerResponse{
		Entries: all,
		Series:  insights.MoodSeries(week, now.Location()),
	})
}

// Calendar handles GET /api/insights/calendar.
func (h *InsightsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	now, ok := h.localNow(w, r)
	if !ok {
		return
	}
	entries, err := h.entries.ListLastNDays(r.Context(), caller(r).UserID, insights.CalendarDays, now)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, insights.CalendarGrid(entries, now))
}

// Series handles GET /api/insights/series?days=N.
func (h *InsightsHandler) Series(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r, insights.CalendarDays)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	now, ok := h.localNow(w, r)
	if !ok {
		return
	}
	entries, err := h.entries.ListLastNDays(r.Context(), caller(r).UserID, days, now)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, insights.MoodSeries(entries, now.Location()))
}

// Trend handles POST /api/insights/trend: trend analysis over the last TrendDays days.
// Fewer than two samples is answered with 422 without calling the model.
func (h *InsightsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	now, ok := h.localNow(w, r)
	if !ok {
		return
	}
	entries, err := h.entries.ListLastNDays(r.Context(), caller(r).UserID, insights.TrendDays, now)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	samples := insights.TrendSamples(entries, now.Location())
	if len(samples) < minTrendSamples {
		writeJSON(w, http.StatusUnprocessableEntity, Response{
			Success: false,
			Message: "Write at least two journal entries this week to see your mood trend.",
			Field:   "recentMoods",
		})
		return
	}

	result, err := h.ai.AnalyzeMoodTrend(r.Context(), ai.TrendInput{RecentMoods: samples})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, TrendResponse{Samples: samples, TrendAnalysis: result.TrendAnalysis})
}
