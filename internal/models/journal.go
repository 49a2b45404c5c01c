package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinContentLength = 10
	MaxContentLength = 10000
	MinMoodRating    = 1
	MaxMoodRating    = 10
)

// JournalEntry is a private, dated journal entry with a self-reported mood.
//
// Date is the ISO-8601 string the user submitted (wall-clock at creation). OccurredAt is the
// same instant resolved against the user's zone; the store orders and range-filters on it.
type JournalEntry struct {
	ID         string    `bson:"-" json:"id"`
	UserID     string    `bson:"user_id" json:"userId"`
	Date       string    `bson:"date" json:"date"`
	OccurredAt time.Time `bson:"occurred_at" json:"-"`
	Content    string    `bson:"content" json:"content"`
	MoodRating int       `bson:"mood_rating" json:"moodRating"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// NewJournalEntry holds the user-supplied fields of a create request.
type NewJournalEntry struct {
	Date       string    `json:"date"`
	OccurredAt time.Time `json:"-"`
	Content    string    `json:"content"`
	MoodRating int       `json:"moodRating"`
}

// JournalEntryPatch is a partial update; nil fields are left untouched.
type JournalEntryPatch struct {
	Date       *string    `json:"date,omitempty"`
	OccurredAt *time.Time `json:"-"`
	Content    *string    `json:"content,omitempty"`
	MoodRating *int       `json:"moodRating,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p JournalEntryPatch) Empty() bool {
	return p.Date == nil && p.Content == nil && p.MoodRating == nil
}

// ValidateContent enforces the 10..10,000 character bound on entry text.
func ValidateContent(content string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(content))
	if n < MinContentLength {
		return fmt.Errorf("journal entry must be at least %d characters", MinContentLength)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return fmt.Errorf("journal entry must be %d characters or less", MaxContentLength)
	}
	return nil
}

// ValidateMoodRating enforces the inclusive 1..10 mood scale.
func ValidateMoodRating(rating int) error {
	if rating < MinMoodRating || rating > MaxMoodRating {
		return fmt.Errorf("mood rating must be between %d and %d", MinMoodRating, MaxMoodRating)
	}
	return nil
}

var entryDateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseEntryDate parses an ISO-8601 entry date. Values carrying a zone or offset are
// converted to loc; zone-less values are read as wall-clock time in loc.
func ParseEntryDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range entryDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date %q", s)
}
