package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/AnshRaj112/soloura-backend/internal/apperror"
	"github.com/AnshRaj112/soloura-backend/internal/metrics"
	"github.com/AnshRaj112/soloura-backend/internal/models"
)

const (
	FlowAnalyzeMood      = "analyzeMood"
	FlowAnalyzeMoodTrend = "analyzeMoodTrend"
	FlowWellbeingTips    = "wellbeingTips"
)

// MoodInput is the input of mood analysis.
type MoodInput struct {
	JournalEntry string `json:"journalEntry"`
}

func (in MoodInput) Validate() error {
	return validateJournalText(in.JournalEntry)
}

// TrendInput carries recent mood samples, oldest first. At least one sample is required;
// callers that want a meaningful trend enforce their own minimum.
type TrendInput struct {
	RecentMoods []models.MoodTrendSample `json:"recentMoods"`
}

func (in TrendInput) Validate() error {
	if len(in.RecentMoods) == 0 {
		return apperror.ValidationFailed("recentMoods", "at least one mood sample is required")
	}
	for i, s := range in.RecentMoods {
		if strings.TrimSpace(s.Date) == "" {
			return apperror.ValidationFailed("recentMoods", fmt.Sprintf("sample %d is missing its date", i))
		}
		if s.MoodRating < models.MinMoodRating || s.MoodRating > models.MaxMoodRating {
			return apperror.ValidationFailed("recentMoods", fmt.Sprintf("sample %d has a mood rating outside 1-10", i))
		}
	}
	return nil
}

// TipsInput is the input of the well-being tips flow.
type TipsInput struct {
	Mood         float64 `json:"mood"`
	JournalEntry string  `json:"journalEntry"`
}

func (in TipsInput) Validate() error {
	if in.Mood < models.MinMoodRating || in.Mood > models.MaxMoodRating {
		return apperror.ValidationFailed("mood", "mood must be between 1 and 10")
	}
	return validateJournalText(in.JournalEntry)
}

func validateJournalText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperror.ValidationFailed("journalEntry", "journal entry is required")
	}
	if utf8.RuneCountInString(text) > models.MaxContentLength {
		return apperror.ValidationFailed("journalEntry", fmt.Sprintf("journal entry must be %d characters or less", models.MaxContentLength))
	}
	return nil
}

// Adapters runs the three prompt flows: validate input, render the prompt, call the
// completer, validate the reply. Nothing is retried or cached.
type Adapters struct {
	completer Completer
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewAdapters(completer Completer, m *metrics.Metrics, logger *zap.Logger) *Adapters {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapters{completer: completer, metrics: m, logger: logger.Named("ai")}
}

// validator is implemented by every flow output.
type validator interface {
	validate() error
}

type analysisOutput models.AnalysisResult

func (o *analysisOutput) validate() error {
	if o.MoodRating < models.MinMoodRating || o.MoodRating > models.MaxMoodRating {
		return fmt.Errorf("moodRating %v outside 1-10", o.MoodRating)
	}
	if strings.TrimSpace(o.MoodKeywords) == "" {
		return errors.New("moodKeywords is empty")
	}
	if strings.TrimSpace(o.SuggestedSolutions) == "" {
		return errors.New("suggestedSolutions is empty")
	}
	return nil
}

type trendOutput models.TrendResult

func (o *trendOutput) validate() error {
	if strings.TrimSpace(o.TrendAnalysis) == "" {
		return errors.New("trendAnalysis is empty")
	}
	return nil
}

type tipsOutput models.WellbeingTips

func (o *tipsOutput) validate() error {
	if strings.TrimSpace(o.WellbeingTips) == "" {
		return errors.New("wellbeingTips is empty")
	}
	return nil
}

func (a *Adapters) run(ctx context.Context, flow string, in interface{ Validate() error }, tmpl *template.Template, schema *genai.Schema, out validator) error {
	if err := in.Validate(); err != nil {
		a.metrics.ObserveAI(flow, "invalid_input", 0)
		return err
	}

	start := time.Now()
	err := a.call(ctx, flow, in, tmpl, schema, out)
	elapsed := time.Since(start)
	if err != nil {
		a.metrics.ObserveAI(flow, "failed", elapsed)
		a.logger.Warn("AI flow failed", zap.String("flow", flow), zap.Duration("elapsed", elapsed), zap.Error(err))
		return apperror.AnalysisFailed(flow, err)
	}
	a.metrics.ObserveAI(flow, "ok", elapsed)
	a.logger.Debug("AI flow completed", zap.String("flow", flow), zap.Duration("elapsed", elapsed))
	return nil
}

func (a *Adapters) call(ctx context.Context, flow string, in any, tmpl *template.Template, schema *genai.Schema, out validator) error {
	prompt, err := render(tmpl, in)
	if err != nil {
		return fmt.Errorf("render prompt: %w", err)
	}

	reply, err := a.completer.Complete(ctx, Request{Name: flow, Prompt: prompt, Schema: schema})
	if err != nil {
		return err
	}

	raw := extractJSON(reply)
	if raw == "" {
		return errors.New("model returned no JSON object")
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return out.validate()
}

// AnalyzeMood rates the mood of a journal entry and suggests ways to improve it.
func (a *Adapters) AnalyzeMood(ctx context.Context, in MoodInput) (*models.AnalysisResult, error) {
	var out analysisOutput
	if err := a.run(ctx, FlowAnalyzeMood, in, analyzeMoodTemplate, analyzeMoodSchema, &out); err != nil {
		return nil, err
	}
	result := models.AnalysisResult(out)
	return &result, nil
}

// AnalyzeMoodTrend summarizes how recent mood ratings are moving.
func (a *Adapters) AnalyzeMoodTrend(ctx context.Context, in TrendInput) (*models.TrendResult, error) {
	var out trendOutput
	if err := a.run(ctx, FlowAnalyzeMoodTrend, in, analyzeMoodTrendTemplate, analyzeMoodTrendSchema, &out); err != nil {
		return nil, err
	}
	result := models.TrendResult(out)
	return &result, nil
}

// WellbeingTips returns personalised well-being and meditation advice.
func (a *Adapters) WellbeingTips(ctx context.Context, in TipsInput) (*models.WellbeingTips, error) {
	var out tipsOutput
	if err := a.run(ctx, FlowWellbeingTips, in, wellbeingTipsTemplate, wellbeingTipsSchema, &out); err != nil {
		return nil, err
	}
	result := models.WellbeingTips(out)
	return &result, nil
}
