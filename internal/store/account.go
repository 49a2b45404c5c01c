package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/apperror"
	"github.com/AnshRaj112/soloura-backend/internal/models"
)

// AccountStore backs the identity provider. Emails are stored normalized; lookups of an
// unknown email or id return (nil, nil).
type AccountStore interface {
	CreateAccount(ctx context.Context, email, displayName, passwordHash string) (*models.Account, error)
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	AccountByID(ctx context.Context, id string) (*models.Account, error)
	MarkEmailVerified(ctx context.Context, id string) error
}

var ErrEmailTaken = apperror.Conflict("an account with this email already exists")

const uniqueViolation = pq.ErrorCode("23505")

// AccountSchema creates the accounts table.
const AccountSchema = `CREATE TABLE IF NOT EXISTS accounts (
	id UUID PRIMARY KEY,
	email VARCHAR(320) NOT NULL UNIQUE,
	display_name VARCHAR(255) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type PostgresAccountStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresAccountStore(db *sql.DB, logger *zap.Logger) *PostgresAccountStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresAccountStore{db: db, logger: logger.Named("account_store")}
}

// Migrate creates the tables the account store needs if they don't exist.
func (s *PostgresAccountStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, AccountSchema); err != nil {
		return s.fail("migrate accounts", err)
	}
	return nil
}

func (s *PostgresAccountStore) fail(op string, err error) error {
	s.logger.Error("account store operation failed", zap.String("op", op), zap.Error(err))
	return apperror.BackendUnavailable(op, err)
}

func (s *PostgresAccountStore) CreateAccount(ctx context.Context, email, displayName, passwordHash string) (*models.Account, error) {
	acct := models.Account{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: passwordHash,
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO accounts (id, email, display_name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		acct.ID, acct.Email, acct.DisplayName, acct.PasswordHash,
	).Scan(&acct.CreatedAt)
	if err != nil {
		return nil, s.insertError(err)
	}
	return &acct, nil
}

// insertError maps a unique violation on email to ErrEmailTaken.
func (s *PostgresAccountStore) insertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return s.fail("create account", err)
}

func (s *PostgresAccountStore) queryOne(ctx context.Context, op, where string, arg any) (*models.Account, error) {
	var acct models.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, email_verified, created_at
		 FROM accounts WHERE `+where, arg,
	).Scan(&acct.ID, &acct.Email, &acct.DisplayName, &acct.PasswordHash, &acct.EmailVerified, &acct.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail(op, err)
	}
	return &acct, nil
}

func (s *PostgresAccountStore) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.queryOne(ctx, "account by email", "email = $1", strings.ToLower(strings.TrimSpace(email)))
}

func (s *PostgresAccountStore) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return s.queryOne(ctx, "account by id", "id = $1", id)
}

func (s *PostgresAccountStore) MarkEmailVerified(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE accounts SET email_verified = TRUE WHERE id = $1`, id); err != nil {
		return s.fail("mark email verified", err)
	}
	return nil
}

type MemoryAccountStore struct {
	mu      sync.RWMutex
	byID    map[string]models.Account
	byEmail map[string]string
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		byID:    make(map[string]models.Account),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryAccountStore) CreateAccount(_ context.Context, email, displayName, passwordHash string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[email]; taken {
		return nil, ErrEmailTaken
	}
	acct := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.byID[acct.ID] = acct
	s.byEmail[email] = acct.ID
	return &acct, nil
}

func (s *MemoryAccountStore) AccountByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	acct := s.byID[id]
	return &acct, nil
}

func (s *MemoryAccountStore) AccountByID(_ context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &acct, nil
}

func (s *MemoryAccountStore) MarkEmailVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct, ok := s.byID[id]; ok {
		acct.EmailVerified = true
		s.byID[id] = acct
	}
	return nil
}
