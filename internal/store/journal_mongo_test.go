package store

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/AnshRaj112/soloura-backend/internal/apperror"
	"github.com/AnshRaj112/soloura-backend/internal/models"
	"github.com/AnshRaj112/soloura-backend/pkg/utils"
)

func testCipher(t *testing.T) *utils.Cipher {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	c, err := utils.NewCipher(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	return c
}

func TestMongoJournalStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("malformed id is not found without a round trip", func(mt *mtest.T) {
		s := NewMongoJournalStore(mt.DB, nil, nil)

		got, err := s.GetByID(ctx, "not-an-object-id")
		assert.NoError(mt, err)
		assert.Nil(mt, got)
		assert.NoError(mt, s.Delete(ctx, "not-an-object-id"))
	})

	mt.Run("unknown id is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "soloura.journalEntries", mtest.FirstBatch))
		s := NewMongoJournalStore(mt.DB, nil, nil)

		got, err := s.GetByID(ctx, primitive.NewObjectID().Hex())
		assert.NoError(mt, err)
		assert.Nil(mt, got)
	})

	mt.Run("list decrypts content", func(mt *mtest.T) {
		c := testCipher(mt.T)
		sealed, err := c.Encrypt("Walked by the river, felt lighter.")
		require.NoError(mt, err)

		oid := primitive.NewObjectID()
		at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "soloura.journalEntries", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "user_id", Value: "user-1"},
			{Key: "date", Value: "2024-05-10T09:00:00Z"},
			{Key: "occurred_at", Value: at},
			{Key: "content", Value: sealed},
			{Key: "content_encrypted", Value: true},
			{Key: "mood_rating", Value: 8},
			{Key: "created_at", Value: at},
			{Key: "updated_at", Value: at},
		}))
		s := NewMongoJournalStore(mt.DB, c, nil)

		list, err := s.ListByUser(ctx, "user-1")
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		assert.Equal(mt, oid.Hex(), list[0].ID)
		assert.Equal(mt, "Walked by the river, felt lighter.", list[0].Content)
		assert.Equal(mt, 8, list[0].MoodRating)
		assert.True(mt, list[0].OccurredAt.Equal(at))
	})

	mt.Run("server error is backend unavailable", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on soloura",
		}))
		s := NewMongoJournalStore(mt.DB, nil, nil)

		_, err := s.ListByUser(ctx, "user-1")
		assert.ErrorIs(mt, err, apperror.ErrBackendUnavailable)
	})

	mt.Run("create assigns id and timestamps", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		s := NewMongoJournalStore(mt.DB, testCipher(mt.T), nil)

		at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
		e, err := s.Create(ctx, "user-1", models.NewJournalEntry{
			Date:       "2024-05-10T09:00:00Z",
			OccurredAt: at,
			Content:    "Plaintext comes back to the caller.",
			MoodRating: 6,
		})
		require.NoError(mt, err)
		assert.Len(mt, e.ID, 24)
		assert.Equal(mt, "Plaintext comes back to the caller.", e.Content)
		assert.False(mt, e.CreatedAt.IsZero())
	})

	mt.Run("update of missing id returns nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		s := NewMongoJournalStore(mt.DB, nil, nil)

		mood := 3
		got, err := s.Update(ctx, primitive.NewObjectID().Hex(), models.JournalEntryPatch{MoodRating: &mood})
		assert.NoError(mt, err)
		assert.Nil(mt, got)
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "soloura.journalEntries", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(4)}}))
		s := NewMongoJournalStore(mt.DB, nil, nil)

		n, err := s.CountByUser(ctx, "user-1")
		require.NoError(mt, err)
		assert.EqualValues(mt, 4, n)
	})
}
