// Package insights turns journal entries into the dashboard projections: per-day mood
// aggregates, the trailing calendar grid, the chart series and trend samples.
//
// Everything here is pure. Day boundaries are taken in the location passed in (or
// now's location for the calendar), never the server's.
package insights

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/AnshRaj112/soloura-backend/internal/models"
)

const (
	CalendarDays  = 30
	TrendDays     = 7
	SnippetLength = 50

	DayKeyLayout     = "2006-01-02"
	TrendLabelLayout = "Jan 2, 2006"
)

type datedEntry struct {
	at    time.Time
	entry models.JournalEntry
}

// resolve places each entry in loc. OccurredAt is authoritative once set; Date is parsed
// only for entries without it, and those with an unparsable date are dropped.
func resolve(entries []models.JournalEntry, loc *time.Location) []datedEntry {
	out := make([]datedEntry, 0, len(entries))
	for _, e := range entries {
		if !e.OccurredAt.IsZero() {
			out = append(out, datedEntry{at: e.OccurredAt.In(loc), entry: e})
			continue
		}
		at, err := models.ParseEntryDate(e.Date, loc)
		if err != nil {
			continue
		}
		out = append(out, datedEntry{at: at, entry: e})
	}
	return out
}

// DayKey returns the local calendar day of t as 2006-01-02.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// Snippet truncates content to SnippetLength characters, appending "..." when cut.
func Snippet(content string) string {
	if utf8.RuneCountInString(content) <= SnippetLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:SnippetLength]) + "..."
}

func roundOneDecimal(x float64) float64 {
	return math.Round(x*10) / 10
}

// BucketByDay groups entries by local calendar day. Mood is the mean rating of the day
// rounded to one decimal; the snippet comes from the day's earliest entry, ties going to
// the one that appears first in entries.
func BucketByDay(entries []models.JournalEntry, loc *time.Location) map[string]models.DailyAggregate {
	if loc == nil {
		loc = time.Local
	}
	dated := resolve(entries, loc)
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].at.Before(dated[j].at)
	})

	sums := make(map[string]int)
	buckets := make(map[string]models.DailyAggregate)
	for _, d := range dated {
		key := DayKey(d.at)
		agg, seen := buckets[key]
		if !seen {
			// dated is in chronological order, so the first entry seen is the earliest
			agg = models.DailyAggregate{Date: key, Snippet: Snippet(d.entry.Content)}
		}
		agg.Count++
		sums[key] += d.entry.MoodRating
		buckets[key] = agg
	}
	for key, agg := range buckets {
		agg.Mood = roundOneDecimal(float64(sums[key]) / float64(agg.Count))
		buckets[key] = agg
	}
	return buckets
}

// CalendarGrid returns exactly CalendarDays slots ending with now's day, oldest first.
// Days are taken in now's location; empty days have a nil mood.
func CalendarGrid(entries []models.JournalEntry, now time.Time) []models.CalendarDay {
	loc := now.Location()
	buckets := BucketByDay(entries, loc)

	y, m, d := now.Date()
	grid := make([]models.CalendarDay, 0, CalendarDays)
	for i := CalendarDays - 1; i >= 0; i-- {
		day := time.Date(y, m, d-i, 0, 0, 0, 0, loc)
		key := DayKey(day)
		slot := models.CalendarDay{Date: key, DayOfMonth: day.Day()}
		if agg, ok := buckets[key]; ok {
			mood := agg.Mood
			slot.Mood = &mood
			slot.Count = agg.Count
			slot.Snippet = agg.Snippet
		}
		grid = append(grid, slot)
	}
	return grid
}

// MoodSeries returns one aggregate per day that has entries, ascending by date.
func MoodSeries(entries []models.JournalEntry, loc *time.Location) []models.DailyAggregate {
	buckets := BucketByDay(entries, loc)
	series := make([]models.DailyAggregate, 0, len(buckets))
	for _, agg := range buckets {
		series = append(series, agg)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

// TrendSamples converts entries into per-entry trend samples, oldest first, labelled
// like "Jan 2, 2006".
func TrendSamples(entries []models.JournalEntry, loc *time.Location) []models.MoodTrendSample {
	if loc == nil {
		loc = time.Local
	}
	dated := resolve(entries, loc)
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].at.Before(dated[j].at)
	})

	samples := make([]models.MoodTrendSample, 0, len(dated))
	for _, d := range dated {
		samples = append(samples, models.MoodTrendSample{
			Date:       d.at.Format(TrendLabelLayout),
			MoodRating: float64(d.entry.MoodRating),
		})
	}
	return samples
}
