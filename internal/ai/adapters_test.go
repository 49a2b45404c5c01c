package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/soloura-backend/internal/apperror"
	"github.com/AnshRaj112/soloura-backend/internal/metrics"
	"github.com/AnshRaj112/soloura-backend/internal/models"
)

type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []Request
}

func (f *fakeCompleter) Complete(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestAnalyzeMoodRejectsEmptyEntryWithoutCalling(t *testing.T) {
	fake := &fakeCompleter{reply: `{}`}
	a := NewAdapters(fake, metrics.New(), nil)

	for _, entry := range []string{"", "   \n\t"} {
		_, err := a.AnalyzeMood(context.Background(), MoodInput{JournalEntry: entry})
		assert.ErrorIs(t, err, apperror.ErrValidation)
		assert.Equal(t, "journalEntry", apperror.Field(err))
	}
	assert.Zero(t, fake.calls())
}

func TestAnalyzeMood(t *testing.T) {
	fake := &fakeCompleter{reply: `{"moodRating": 4, "moodKeywords": "tired, anxious", "suggestedSolutions": "Take a short walk."}`}
	a := NewAdapters(fake, metrics.New(), nil)

	got, err := a.AnalyzeMood(context.Background(), MoodInput{JournalEntry: "Long day, barely slept."})
	require.NoError(t, err)
	assert.Equal(t, &models.AnalysisResult{
		MoodRating:         4,
		MoodKeywords:       "tired, anxious",
		SuggestedSolutions: "Take a short walk.",
	}, got)

	require.Equal(t, 1, fake.calls())
	req := fake.requests[0]
	assert.Equal(t, FlowAnalyzeMood, req.Name)
	assert.Contains(t, req.Prompt, "Journal Entry: Long day, barely slept.")
	require.NotNil(t, req.Schema)
	assert.ElementsMatch(t, []string{"moodRating", "moodKeywords", "suggestedSolutions"}, req.Schema.Required)
}

func TestAnalyzeMoodAcceptsFencedJSON(t *testing.T) {
	fake := &fakeCompleter{reply: "```json\n{\"moodRating\": 8, \"moodKeywords\": \"calm\", \"suggestedSolutions\": \"Keep it up.\",}\n```"}
	a := NewAdapters(fake, nil, nil)

	got, err := a.AnalyzeMood(context.Background(), MoodInput{JournalEntry: "Quiet evening with a book."})
	require.NoError(t, err)
	assert.Equal(t, 8.0, got.MoodRating)
}

func TestAnalyzeMoodKeepsPunctuationInsideStrings(t *testing.T) {
	fake := &fakeCompleter{reply: `{"moodRating": 5, "moodKeywords": "restless", "suggestedSolutions": "Try lists (eggs, milk, ] etc), } and rest."}`}
	a := NewAdapters(fake, nil, nil)

	got, err := a.AnalyzeMood(context.Background(), MoodInput{JournalEntry: "Could not focus at all today."})
	require.NoError(t, err)
	assert.Equal(t, "Try lists (eggs, milk, ] etc), } and rest.", got.SuggestedSolutions)
}

func TestAnalyzeMoodBadOutputFails(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"empty reply", "", nil},
		{"not json", "I'm sorry, I can't help with that.", nil},
		{"rating out of range", `{"moodRating": 42, "moodKeywords": "x", "suggestedSolutions": "y"}`, nil},
		{"missing keywords", `{"moodRating": 5, "suggestedSolutions": "y"}`, nil},
		{"wrong type", `{"moodRating": "five", "moodKeywords": "x", "suggestedSolutions": "y"}`, nil},
		{"transport error", "", errors.New("deadline exceeded")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapters(&fakeCompleter{reply: tt.reply, err: tt.err}, metrics.New(), nil)
			got, err := a.AnalyzeMood(context.Background(), MoodInput{JournalEntry: "Something happened today."})
			assert.Nil(t, got)
			assert.ErrorIs(t, err, apperror.ErrAnalysisFailed)
			assert.NotErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestAnalyzeMoodTrendSingleSamplePassesValidation(t *testing.T) {
	fake := &fakeCompleter{reply: `{"trendAnalysis": "Only one day so far, and it looks steady."}`}
	a := NewAdapters(fake, metrics.New(), nil)

	got, err := a.AnalyzeMoodTrend(context.Background(), TrendInput{
		RecentMoods: []models.MoodTrendSample{{Date: "Jan 1, 2024", MoodRating: 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Only one day so far, and it looks steady.", got.TrendAnalysis)
	assert.Equal(t, 1, fake.calls())
}

func TestAnalyzeMoodTrendPrompt(t *testing.T) {
	fake := &fakeCompleter{reply: `{"trendAnalysis": "Improving."}`}
	a := NewAdapters(fake, nil, nil)

	_, err := a.AnalyzeMoodTrend(context.Background(), TrendInput{
		RecentMoods: []models.MoodTrendSample{
			{Date: "Jan 1, 2024", MoodRating: 3},
			{Date: "Jan 2, 2024", MoodRating: 7.5},
		},
	})
	require.NoError(t, err)

	prompt := fake.requests[0].Prompt
	assert.Contains(t, prompt, "- Date: Jan 1, 2024, Mood: 3/10\n- Date: Jan 2, 2024, Mood: 7.5/10\n")
	assert.True(t, strings.HasSuffix(prompt, "Trend Analysis:"))
}

func TestAnalyzeMoodTrendValidation(t *testing.T) {
	fake := &fakeCompleter{reply: `{"trendAnalysis": "x"}`}
	a := NewAdapters(fake, nil, nil)

	inputs := []TrendInput{
		{},
		{RecentMoods: []models.MoodTrendSample{{Date: "", MoodRating: 5}}},
		{RecentMoods: []models.MoodTrendSample{{Date: "Jan 1, 2024", MoodRating: 0}}},
	}
	for _, in := range inputs {
		_, err := a.AnalyzeMoodTrend(context.Background(), in)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}
	assert.Zero(t, fake.calls())
}

func TestWellbeingTips(t *testing.T) {
	fake := &fakeCompleter{reply: `{"wellbeingTips": "Try a five minute breathing meditation."}`}
	a := NewAdapters(fake, metrics.New(), nil)

	got, err := a.WellbeingTips(context.Background(), TipsInput{Mood: 3, JournalEntry: "Stressed about exams."})
	require.NoError(t, err)
	assert.Equal(t, "Try a five minute breathing meditation.", got.WellbeingTips)
	assert.Contains(t, fake.requests[0].Prompt, "Mood: 3\nJournal Entry: Stressed about exams.")

	_, err = a.WellbeingTips(context.Background(), TipsInput{Mood: 11, JournalEntry: "x"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, 1, fake.calls())
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Here you go: {\"a\":1} hope it helps", `{"a":1}`},
		{`{"a":[1,2,],}`, `{"a":[1,2]}`},
		{`{"s":"rest, } then walk, ]"}`, `{"s":"rest, } then walk, ]"}`},
		{"no json here", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractJSON(tt.in), tt.in)
	}
}

func TestUnavailableCompleterFailsEveryFlow(t *testing.T) {
	a := NewAdapters(Unavailable{}, nil, nil)

	_, err := a.AnalyzeMood(context.Background(), MoodInput{JournalEntry: "A quiet day."})
	assert.ErrorIs(t, err, apperror.ErrAnalysisFailed)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = a.WellbeingTips(context.Background(), TipsInput{Mood: 6, JournalEntry: "A quiet day."})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
