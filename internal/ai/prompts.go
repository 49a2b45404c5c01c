package ai

import (
	"strings"
	"text/template"

	"google.golang.org/genai"
)

var analyzeMoodTemplate = template.Must(template.New("analyzeMood").Parse(
	`Analyze the following journal entry and provide a mood rating from 1 to 10, mood keywords, and personalized suggestions for improvement.

Journal Entry: {{.JournalEntry}}

Output:
- Mood Rating (1-10):
- Mood Keywords (comma-separated):
- Suggested Solutions:`))

var analyzeMoodTrendTemplate = template.Must(template.New("analyzeMoodTrend").Parse(
	`You are a supportive AI assistant. Analyze the user's mood trend from the following list of mood ratings over the last few days.
The ratings are on a scale of 1 to 10, where 1 is very low and 10 is excellent.
The entries are sorted from oldest to newest.

Describe if the mood is generally improving, declining, stable, or fluctuating. Provide a brief, encouraging, and insightful summary (2-3 sentences).

Recent Mood Entries:
{{range .RecentMoods}}- Date: {{.Date}}, Mood: {{.MoodRating}}/10
{{end}}
Trend Analysis:`))

var wellbeingTipsTemplate = template.Must(template.New("wellbeingTips").Parse(
	`You are a mental health expert providing personalized well-being tips.

Based on the user's current mood and journal entry, provide tailored advice on meditation and how to improve their well-being.
The mood is on a scale of 1 to 10, where 10 is the best possible mood. The journal entry provides context on their day and feelings.

Mood: {{.Mood}}
Journal Entry: {{.JournalEntry}}

Provide specific and actionable tips that the user can implement immediately.
Make the tips encouraging and supportive.`))

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func stringProp(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

var analyzeMoodSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"moodRating": {
			Type:        genai.TypeNumber,
			Description: "An overall rating of the user's mood on a scale of 1 to 10.",
			Minimum:     genai.Ptr(1.0),
			Maximum:     genai.Ptr(10.0),
		},
		"moodKeywords":       stringProp("A comma-separated list of keywords that reflect the mood expressed in the journal entry."),
		"suggestedSolutions": stringProp("Personalized suggestions to improve the user's mood, tailored to the content of the journal entry."),
	},
	Required:         []string{"moodRating", "moodKeywords", "suggestedSolutions"},
	PropertyOrdering: []string{"moodRating", "moodKeywords", "suggestedSolutions"},
}

var analyzeMoodTrendSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"trendAnalysis": stringProp("A textual analysis of the user's mood trend based on the provided recent mood entries."),
	},
	Required: []string{"trendAnalysis"},
}

var wellbeingTipsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"wellbeingTips": stringProp("Personalized well-being tips based on the user mood and journal entry."),
	},
	Required: []string{"wellbeingTips"},
}
