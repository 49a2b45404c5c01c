package store

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/apperror"
	"github.com/AnshRaj112/soloura-backend/internal/models"
)

const ProfileCollection = "users"

// ProfileStore keeps one profile document per identity, keyed by the identity's id.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// Put creates or replaces the profile.
	Put(ctx context.Context, profile models.UserProfile) error
	// SetEmailVerified updates the mirrored flag; a missing profile is left missing.
	SetEmailVerified(ctx context.Context, userID string, verified bool) error
}

type MongoProfileStore struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

func NewMongoProfileStore(db *mongo.Database, logger *zap.Logger) *MongoProfileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoProfileStore{coll: db.Collection(ProfileCollection), logger: logger.Named("profile_store")}
}

func (s *MongoProfileStore) fail(op string, err error) error {
	s.logger.Error("profile store operation failed", zap.String("op", op), zap.Error(err))
	return apperror.BackendUnavailable(op, err)
}

func (s *MongoProfileStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("get profile", err)
	}
	return &p, nil
}

func (s *MongoProfileStore) Put(ctx context.Context, profile models.UserProfile) error {
	if profile.ID == "" {
		return apperror.ValidationFailed("id", "profile id is required")
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": profile.ID}, profile, options.Replace().SetUpsert(true))
	if err != nil {
		return s.fail("put profile", err)
	}
	return nil
}

func (s *MongoProfileStore) SetEmailVerified(ctx context.Context, userID string, verified bool) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"email_verified": verified}})
	if err != nil {
		return s.fail("set email verified", err)
	}
	return nil
}

type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]models.UserProfile)}
}

func (s *MemoryProfileStore) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryProfileStore) Put(_ context.Context, profile models.UserProfile) error {
	if profile.ID == "" {
		return apperror.ValidationFailed("id", "profile id is required")
	}
	s.mu.Lock()
	s.profiles[profile.ID] = profile
	s.mu.Unlock()
	return nil
}

func (s *MemoryProfileStore) SetEmailVerified(_ context.Context, userID string, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		p.EmailVerified = verified
		s.profiles[userID] = p
	}
	return nil
}
