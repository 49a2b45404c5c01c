package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/soloura-backend/internal/models"
)

// MemoryJournalStore is an in-process JournalStore used for local development and tests.
type MemoryJournalStore struct {
	mu      sync.RWMutex
	entries map[string]models.JournalEntry
	now     func() time.Time
}

func NewMemoryJournalStore() *MemoryJournalStore {
	return &MemoryJournalStore{
		entries: make(map[string]models.JournalEntry),
		now:     time.Now,
	}
}

// sortedFor returns copies of userID's entries matching keep, newest first.
func (s *MemoryJournalStore) sortedFor(userID string, keep func(models.JournalEntry) bool) []models.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.JournalEntry, 0)
	for _, e := range s.entries {
		if e.UserID == userID && (keep == nil || keep(e)) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryJournalStore) ListByUser(_ context.Context, userID string) ([]models.JournalEntry, error) {
	return s.sortedFor(userID, nil), nil
}

func (s *MemoryJournalStore) Latest(_ context.Context, userID string) (*models.JournalEntry, error) {
	list := s.sortedFor(userID, nil)
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (s *MemoryJournalStore) CountByUser(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.entries {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryJournalStore) ListLastNDays(_ context.Context, userID string, days int, now time.Time) ([]models.JournalEntry, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	start, end := DayWindow(now, days)
	return s.sortedFor(userID, func(e models.JournalEntry) bool {
		return !e.OccurredAt.Before(start) && e.OccurredAt.Before(end)
	}), nil
}

func (s *MemoryJournalStore) GetByID(_ context.Context, id string) (*models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *MemoryJournalStore) Create(_ context.Context, userID string, entry models.NewJournalEntry) (*models.JournalEntry, error) {
	if err := validateNewEntry(userID, entry); err != nil {
		return nil, err
	}

	now := s.now()
	e := models.JournalEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Date:       entry.Date,
		OccurredAt: entry.OccurredAt,
		Content:    entry.Content,
		MoodRating: entry.MoodRating,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	s.entries[e.ID] = e
	s.mu.Unlock()
	return &e, nil
}

func (s *MemoryJournalStore) Update(_ context.Context, id string, patch models.JournalEntryPatch) (*models.JournalEntry, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	if patch.Date != nil {
		e.Date = *patch.Date
		e.OccurredAt = *patch.OccurredAt
	}
	if patch.Content != nil {
		e.Content = *patch.Content
	}
	if patch.MoodRating != nil {
		e.MoodRating = *patch.MoodRating
	}
	e.UpdatedAt = s.now()
	s.entries[id] = e
	return &e, nil
}

func (s *MemoryJournalStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
