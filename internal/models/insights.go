package models

// DailyAggregate summarizes every entry that falls on one calendar day.
// Date is the day key, formatted 2006-01-02.
type DailyAggregate struct {
	Date    string  `json:"date"`
	Mood    float64 `json:"mood"`
	Count   int     `json:"count"`
	Snippet string  `json:"snippet"`
}

// CalendarDay is one slot of the fixed trailing calendar grid. Mood is nil on days
// without entries.
type CalendarDay struct {
	Date       string   `json:"date"`
	DayOfMonth int      `json:"dayOfMonth"`
	Mood       *float64 `json:"mood"`
	Count      int      `json:"entryCount"`
	Snippet    string   `json:"contentSnippet,omitempty"`
}

// MoodTrendSample is one {date, rating} pair fed to trend analysis.
type MoodTrendSample struct {
	Date       string  `json:"date"`
	MoodRating float64 `json:"moodRating"`
}

type AnalysisResult struct {
	MoodRating         float64 `json:"moodRating"`
	MoodKeywords       string  `json:"moodKeywords"`
	SuggestedSolutions string  `json:"suggestedSolutions"`
}

type TrendResult struct {
	TrendAnalysis string `json:"trendAnalysis"`
}

type WellbeingTips struct {
	WellbeingTips string `json:"wellbeingTips"`
}
