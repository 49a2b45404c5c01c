package insights

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/soloura-backend/internal/models"
)

func entry(date string, mood int, content string) models.JournalEntry {
	return models.JournalEntry{Date: date, MoodRating: mood, Content: content}
}

func TestMoodSeriesScenario(t *testing.T) {
	entries := []models.JournalEntry{
		entry("2024-01-01T09:00", 3, "bad day"),
		entry("2024-01-01T18:00", 7, "better now"),
		entry("2024-01-02T10:00", 8, "great"),
	}

	want := []models.DailyAggregate{
		{Date: "2024-01-01", Mood: 5, Count: 2, Snippet: "bad day"},
		{Date: "2024-01-02", Mood: 8, Count: 1, Snippet: "great"},
	}
	if diff := cmp.Diff(want, MoodSeries(entries, time.UTC)); diff != "" {
		t.Errorf("MoodSeries mismatch (-want +got):\n%s", diff)
	}
}

func TestBucketMeanRoundsToOneDecimal(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"half", []int{4, 7}, 5.5},
		{"thirds round down", []int{1, 1, 2}, 1.3},
		{"thirds round up", []int{2, 2, 1}, 1.7},
		{"single", []int{9}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []models.JournalEntry
			for i, r := range tt.ratings {
				at := time.Date(2024, 2, 3, 8+i, 0, 0, 0, time.UTC)
				entries = append(entries, entry(at.Format(time.RFC3339), r, "some content"))
			}
			buckets := BucketByDay(entries, time.UTC)
			require.Len(t, buckets, 1)
			assert.Equal(t, tt.want, buckets["2024-02-03"].Mood)
			assert.Equal(t, len(tt.ratings), buckets["2024-02-03"].Count)
		})
	}
}

func TestSnippetFromEarliestEntryRegardlessOfOrder(t *testing.T) {
	entries := []models.JournalEntry{
		entry("2024-03-05T10:00:00", 6, "B"),
		entry("2024-03-05T09:00:00", 2, "A"),
	}
	agg := BucketByDay(entries, time.UTC)["2024-03-05"]
	assert.Equal(t, "A", agg.Snippet)
	assert.Equal(t, 4.0, agg.Mood)
}

func TestSnippetTiesGoToInputOrder(t *testing.T) {
	entries := []models.JournalEntry{
		entry("2024-03-05T09:00:00", 6, "first"),
		entry("2024-03-05T09:00:00", 2, "second"),
	}
	assert.Equal(t, "first", BucketByDay(entries, time.UTC)["2024-03-05"].Snippet)
}

func TestSnippetTruncation(t *testing.T) {
	exact := strings.Repeat("a", SnippetLength)
	assert.Equal(t, exact, Snippet(exact))

	long := strings.Repeat("é", SnippetLength+5)
	got := Snippet(long)
	assert.Equal(t, strings.Repeat("é", SnippetLength)+"...", got)
}

func TestBucketingUsesLocalDay(t *testing.T) {
	// 23:30 UTC on Jan 1 is already Jan 2 in UTC+2.
	plusTwo := time.FixedZone("UTC+2", 2*3600)
	entries := []models.JournalEntry{entry("2024-01-01T23:30:00Z", 5, "late night")}

	assert.Contains(t, BucketByDay(entries, time.UTC), "2024-01-01")
	assert.Contains(t, BucketByDay(entries, plusTwo), "2024-01-02")
}

func TestUnparsableDatesAreSkipped(t *testing.T) {
	entries := []models.JournalEntry{
		entry("yesterday", 1, "nope"),
		entry("2024-01-02", 8, "fine"),
	}
	series := MoodSeries(entries, time.UTC)
	require.Len(t, series, 1)
	assert.Equal(t, "2024-01-02", series[0].Date)
}

func TestCalendarGridEmpty(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	grid := CalendarGrid(nil, now)

	require.Len(t, grid, CalendarDays)
	for _, slot := range grid {
		assert.Nil(t, slot.Mood)
		assert.Zero(t, slot.Count)
		assert.Empty(t, slot.Snippet)
	}
	assert.Empty(t, MoodSeries(nil, time.UTC))
}

func TestCalendarGridShape(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []models.JournalEntry{
		entry("2024-03-10T08:00:00Z", 9, "today"),
		entry("2024-02-09T08:00:00Z", 1, "thirty days back, outside"),
		entry("2024-02-10T08:00:00Z", 4, "oldest slot"),
		entry("2024-02-10T20:00:00Z", 5, "oldest slot again"),
	}
	grid := CalendarGrid(entries, now)

	require.Len(t, grid, CalendarDays)
	assert.Equal(t, "2024-02-10", grid[0].Date)
	assert.Equal(t, "2024-03-10", grid[CalendarDays-1].Date)
	assert.Equal(t, 10, grid[CalendarDays-1].DayOfMonth)

	for i := 1; i < len(grid); i++ {
		assert.Less(t, grid[i-1].Date, grid[i].Date)
	}
	for _, slot := range grid {
		if slot.Mood != nil {
			assert.GreaterOrEqual(t, *slot.Mood, 1.0)
			assert.LessOrEqual(t, *slot.Mood, 10.0)
		}
	}

	require.NotNil(t, grid[0].Mood)
	assert.Equal(t, 4.5, *grid[0].Mood)
	assert.Equal(t, 2, grid[0].Count)
	assert.Equal(t, "oldest slot", grid[0].Snippet)

	require.NotNil(t, grid[CalendarDays-1].Mood)
	assert.Equal(t, 9.0, *grid[CalendarDays-1].Mood)
}

func TestCalendarGridAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	now := time.Date(2024, 3, 20, 0, 30, 0, 0, loc)
	grid := CalendarGrid(nil, now)

	require.Len(t, grid, CalendarDays)
	assert.Equal(t, "2024-02-20", grid[0].Date)
	assert.Equal(t, "2024-03-20", grid[CalendarDays-1].Date)
}

func TestMoodSeriesSkipsEmptyDays(t *testing.T) {
	entries := []models.JournalEntry{
		entry("2024-01-05", 2, "later"),
		entry("2024-01-01", 4, "earlier"),
		entry("2024-01-01", 6, "earlier again"),
	}
	series := MoodSeries(entries, time.UTC)

	require.Len(t, series, 2)
	assert.Equal(t, "2024-01-01", series[0].Date)
	assert.Equal(t, "2024-01-05", series[1].Date)
	for _, p := range series {
		assert.Positive(t, p.Count)
	}
}

func TestTrendSamplesOldestFirst(t *testing.T) {
	newestFirst := []models.JournalEntry{
		entry("2024-01-03T10:00:00Z", 7, "c"),
		entry("2024-01-02T10:00:00Z", 5, "b"),
		entry("2024-01-01T10:00:00Z", 3, "a"),
	}
	want := []models.MoodTrendSample{
		{Date: "Jan 1, 2024", MoodRating: 3},
		{Date: "Jan 2, 2024", MoodRating: 5},
		{Date: "Jan 3, 2024", MoodRating: 7},
	}
	if diff := cmp.Diff(want, TrendSamples(newestFirst, time.UTC)); diff != "" {
		t.Errorf("TrendSamples mismatch (-want +got):\n%s", diff)
	}
}

func TestBucketPrefersOccurredAt(t *testing.T) {
	kiritimati, err := time.LoadLocation("Pacific/Kiritimati")
	require.NoError(t, err)
	at := time.Date(2024, 3, 11, 1, 0, 0, 0, kiritimati)

	e := entry("2024-03-11T01:00", 6, "sunrise walk")
	e.OccurredAt = at

	buckets := BucketByDay([]models.JournalEntry{e}, time.UTC)
	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets["2024-03-10"].Count)

	samples := TrendSamples([]models.JournalEntry{e}, time.UTC)
	require.Len(t, samples, 1)
	assert.Equal(t, "Mar 10, 2024", samples[0].Date)
}
