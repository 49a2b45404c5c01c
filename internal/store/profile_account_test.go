package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/AnshRaj112/soloura-backend/internal/apperror"
	"github.com/AnshRaj112/soloura-backend/internal/models"
)

func TestMemoryProfileStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryProfileStore()

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Put(ctx, models.UserProfile{ID: "u1", Email: "ana@example.com", Name: "Ana"}))
	require.NoError(t, s.SetEmailVerified(ctx, "u1", true))
	require.NoError(t, s.SetEmailVerified(ctx, "nobody", true))

	got, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.EmailVerified)
	assert.Equal(t, "Ana", got.Name)

	missing, err := s.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, s.Put(ctx, models.UserProfile{}), apperror.ErrValidation)
}

func TestMemoryAccountStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()

	acct, err := s.CreateAccount(ctx, " Ana@Example.com ", "Ana", "hash")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", acct.Email)
	assert.False(t, acct.EmailVerified)

	_, err = s.CreateAccount(ctx, "ana@example.com", "Other", "hash")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	byEmail, err := s.AccountByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, acct.ID, byEmail.ID)

	require.NoError(t, s.MarkEmailVerified(ctx, acct.ID))
	byID, err := s.AccountByID(ctx, acct.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.True(t, byID.EmailVerified)

	none, err := s.AccountByID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestPostgresAccountStoreErrors(t *testing.T) {
	s := NewPostgresAccountStore(nil, nil)

	err := s.insertError(fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "accounts_email_key"}))
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	err = s.insertError(&pq.Error{Code: "53300", Message: "too many connections"})
	assert.ErrorIs(t, err, apperror.ErrBackendUnavailable)
	assert.NotErrorIs(t, err, apperror.ErrConflict)

	err = s.insertError(errors.New("dial tcp: connection refused"))
	assert.ErrorIs(t, err, apperror.ErrBackendUnavailable)

	got, err := s.AccountByID(context.Background(), "not-a-uuid")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestMongoProfileStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get unknown profile", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "soloura.users", mtest.FirstBatch))
		s := NewMongoProfileStore(mt.DB, nil)

		got, err := s.Get(ctx, "u1")
		assert.NoError(mt, err)
		assert.Nil(mt, got)
	})

	mt.Run("get decodes profile", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "soloura.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "email", Value: "ana@example.com"},
			{Key: "name", Value: "Ana"},
			{Key: "email_verified", Value: true},
		}))
		s := NewMongoProfileStore(mt.DB, nil)

		got, err := s.Get(ctx, "u1")
		require.NoError(mt, err)
		assert.Equal(mt, &models.UserProfile{ID: "u1", Email: "ana@example.com", Name: "Ana", EmailVerified: true}, got)
	})

	mt.Run("put upserts by id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		s := NewMongoProfileStore(mt.DB, nil)

		require.NoError(mt, s.Put(ctx, models.UserProfile{ID: "u1", Email: "ana@example.com"}))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
		assert.Equal(mt, ProfileCollection, evt.Command.Lookup("update").StringValue())
	})

	mt.Run("put without id is rejected", func(mt *mtest.T) {
		s := NewMongoProfileStore(mt.DB, nil)

		err := s.Put(ctx, models.UserProfile{Email: "ana@example.com"})
		assert.ErrorIs(mt, err, apperror.ErrValidation)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("set email verified", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		s := NewMongoProfileStore(mt.DB, nil)

		require.NoError(mt, s.SetEmailVerified(ctx, "u1", true))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
		assert.Equal(mt, ProfileCollection, evt.Command.Lookup("update").StringValue())
	})

	mt.Run("server error is backend unavailable", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on soloura",
		}))
		s := NewMongoProfileStore(mt.DB, nil)

		err := s.SetEmailVerified(ctx, "u1", true)
		assert.ErrorIs(mt, err, apperror.ErrBackendUnavailable)
	})
}
