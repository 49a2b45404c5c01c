package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/apperror"
	"github.com/AnshRaj112/soloura-backend/internal/models"
	"github.com/AnshRaj112/soloura-backend/pkg/utils"
)

// journalDocument is the stored shape of a journal entry.
type journalDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	UserID           string             `bson:"user_id"`
	Date             string             `bson:"date"`
	OccurredAt       time.Time          `bson:"occurred_at"`
	Content          string             `bson:"content"`
	ContentEncrypted bool               `bson:"content_encrypted,omitempty"`
	MoodRating       int                `bson:"mood_rating"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

// MongoJournalStore keeps entries in the journalEntries collection. When a cipher is
// configured, entry content is encrypted at rest.
type MongoJournalStore struct {
	coll   *mongo.Collection
	cipher *utils.Cipher
	logger *zap.Logger
	now    func() time.Time
}

func NewMongoJournalStore(db *mongo.Database, cipher *utils.Cipher, logger *zap.Logger) *MongoJournalStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoJournalStore{
		coll:   db.Collection(JournalCollection),
		cipher: cipher,
		logger: logger.Named("journal_store"),
		now:    time.Now,
	}
}

// EnsureIndexes creates the (user_id, occurred_at desc) index every listing uses.
func (s *MongoJournalStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}},
		Options: options.Index().SetName("user_occurred_at"),
	})
	if err != nil {
		return fmt.Errorf("create journal index: %w", err)
	}
	return nil
}

func (s *MongoJournalStore) fail(op string, err error) error {
	s.logger.Error("journal store operation failed", zap.String("op", op), zap.Error(err))
	return apperror.BackendUnavailable(op, err)
}

func (s *MongoJournalStore) toEntry(doc journalDocument) (models.JournalEntry, error) {
	content := doc.Content
	if doc.ContentEncrypted {
		if s.cipher == nil {
			return models.JournalEntry{}, errors.New("entry content is encrypted but no key is configured")
		}
		plain, err := s.cipher.Decrypt(content)
		if err != nil {
			return models.JournalEntry{}, fmt.Errorf("decrypt entry %s: %w", doc.ID.Hex(), err)
		}
		content = plain
	}
	return models.JournalEntry{
		ID:         doc.ID.Hex(),
		UserID:     doc.UserID,
		Date:       doc.Date,
		OccurredAt: doc.OccurredAt,
		Content:    content,
		MoodRating: doc.MoodRating,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

func (s *MongoJournalStore) sealContent(content string) (string, bool, error) {
	if s.cipher == nil {
		return content, false, nil
	}
	sealed, err := s.cipher.Encrypt(content)
	if err != nil {
		return "", false, err
	}
	return sealed, true, nil
}

func (s *MongoJournalStore) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]models.JournalEntry, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, s.fail(op, err)
	}
	defer cursor.Close(ctx)

	var docs []journalDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, s.fail(op, err)
	}

	entries := make([]models.JournalEntry, 0, len(docs))
	for _, doc := range docs {
		e, err := s.toEntry(doc)
		if err != nil {
			return nil, s.fail(op, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}, {Key: "created_at", Value: -1}})
}

func (s *MongoJournalStore) ListByUser(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	return s.find(ctx, "list entries", bson.M{"user_id": userID}, newestFirst())
}

func (s *MongoJournalStore) Latest(ctx context.Context, userID string) (*models.JournalEntry, error) {
	entries, err := s.find(ctx, "latest entry", bson.M{"user_id": userID}, newestFirst().SetLimit(1))
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

func (s *MongoJournalStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, s.fail("count entries", err)
	}
	return n, nil
}

func (s *MongoJournalStore) ListLastNDays(ctx context.Context, userID string, days int, now time.Time) ([]models.JournalEntry, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	start, end := DayWindow(now, days)
	filter := bson.M{
		"user_id":     userID,
		"occurred_at": bson.M{"$gte": start, "$lt": end},
	}
	return s.find(ctx, "list recent entries", filter, newestFirst())
}

func (s *MongoJournalStore) GetByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc journalDocument
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("get entry", err)
	}

	e, err := s.toEntry(doc)
	if err != nil {
		return nil, s.fail("get entry", err)
	}
	return &e, nil
}

func (s *MongoJournalStore) Create(ctx context.Context, userID string, entry models.NewJournalEntry) (*models.JournalEntry, error) {
	if err := validateNewEntry(userID, entry); err != nil {
		return nil, err
	}

	content, sealed, err := s.sealContent(entry.Content)
	if err != nil {
		return nil, s.fail("create entry", err)
	}

	now := s.now()
	doc := journalDocument{
		ID:               primitive.NewObjectID(),
		UserID:           userID,
		Date:             entry.Date,
		OccurredAt:       entry.OccurredAt,
		Content:          content,
		ContentEncrypted: sealed,
		MoodRating:       entry.MoodRating,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, s.fail("create entry", err)
	}

	return &models.JournalEntry{
		ID:         doc.ID.Hex(),
		UserID:     userID,
		Date:       entry.Date,
		OccurredAt: entry.OccurredAt,
		Content:    entry.Content,
		MoodRating: entry.MoodRating,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *MongoJournalStore) Update(ctx context.Context, id string, patch models.JournalEntryPatch) (*models.JournalEntry, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{"updated_at": s.now()}
	if patch.Date != nil {
		set["date"] = *patch.Date
		set["occurred_at"] = *patch.OccurredAt
	}
	if patch.Content != nil {
		content, sealed, err := s.sealContent(*patch.Content)
		if err != nil {
			return nil, s.fail("update entry", err)
		}
		set["content"] = content
		set["content_encrypted"] = sealed
	}
	if patch.MoodRating != nil {
		set["mood_rating"] = *patch.MoodRating
	}

	var doc journalDocument
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("update entry", err)
	}

	e, err := s.toEntry(doc)
	if err != nil {
		return nil, s.fail("update entry", err)
	}
	return &e, nil
}

func (s *MongoJournalStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return s.fail("delete entry", err)
	}
	return nil
}
