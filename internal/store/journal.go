// Package store is the record store client: journal entries, user profiles and the
// identity accounts behind them. Reads go straight to the backend; nothing is cached.
package store

import (
	"context"
	"time"

	"github.com/AnshRaj112/soloura-backend/internal/apperror"
	"github.com/AnshRaj112/soloura-backend/internal/models"
)

const JournalCollection = "journalEntries"

// JournalStore persists journal entries. Listings are ordered by entry date, newest
// first. Lookups of an unknown id return (nil, nil).
type JournalStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.JournalEntry, error)
	Latest(ctx context.Context, userID string) (*models.JournalEntry, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	// ListLastNDays returns entries dated from the start of the day N-1 days before now
	// through the end of now's day, in now's location.
	ListLastNDays(ctx context.Context, userID string, days int, now time.Time) ([]models.JournalEntry, error)
	GetByID(ctx context.Context, id string) (*models.JournalEntry, error)
	Create(ctx context.Context, userID string, entry models.NewJournalEntry) (*models.JournalEntry, error)
	// Update merges patch into the entry and refreshes its updated timestamp. It returns
	// (nil, nil) when id does not exist.
	Update(ctx context.Context, id string, patch models.JournalEntryPatch) (*models.JournalEntry, error)
	// Delete is idempotent: deleting a missing id succeeds.
	Delete(ctx context.Context, id string) error
}

// DayWindow returns the half-open range [start, end) covering the `days` calendar days
// that end with now's day.
func DayWindow(now time.Time, days int) (time.Time, time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	start := time.Date(y, m, d-(days-1), 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, end
}

func validateDays(days int) error {
	if days < 1 {
		return apperror.ValidationFailed("days", "days must be at least 1")
	}
	return nil
}

func validateNewEntry(userID string, entry models.NewJournalEntry) error {
	if userID == "" {
		return apperror.ValidationFailed("userId", "owner id is required")
	}
	if entry.Date == "" || entry.OccurredAt.IsZero() {
		return apperror.ValidationFailed("date", "entry date is required")
	}
	if err := models.ValidateContent(entry.Content); err != nil {
		return apperror.ValidationFailed("content", err.Error())
	}
	if err := models.ValidateMoodRating(entry.MoodRating); err != nil {
		return apperror.ValidationFailed("moodRating", err.Error())
	}
	return nil
}

func validatePatch(patch models.JournalEntryPatch) error {
	if patch.Date != nil && (*patch.Date == "" || patch.OccurredAt == nil) {
		return apperror.ValidationFailed("date", "entry date is required")
	}
	if patch.Content != nil {
		if err := models.ValidateContent(*patch.Content); err != nil {
			return apperror.ValidationFailed("content", err.Error())
		}
	}
	if patch.MoodRating != nil {
		if err := models.ValidateMoodRating(*patch.MoodRating); err != nil {
			return apperror.ValidationFailed("moodRating", err.Error())
		}
	}
	return nil
}
