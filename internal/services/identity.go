package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/soloura-backend/internal/models"
	"github.com/AnshRaj112/soloura-backend/internal/store"
	"github.com/AnshRaj112/soloura-backend/pkg/ratelimit"
	"github.com/AnshRaj112/soloura-backend/pkg/utils"
)

const (
	// Sign-in attempts per email: burst of 5, one more every 30 seconds.
	signInBurst = 5
	signInEvery = 30 * time.Second
)

// Session is what a successful sign-in, sign-up or restore hands back to the client.
type Session struct {
	IDToken      string              `json:"idToken"`
	RefreshToken string              `json:"refreshToken"`
	ExpiresAt    time.Time           `json:"expiresAt"`
	User         models.Identity     `json:"user"`
	Profile      *models.UserProfile `json:"profile,omitempty"`
}

type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerificationSender delivers email verification codes.
type VerificationSender interface {
	SendVerification(ctx context.Context, acct *models.Account, code string) error
}

// LogVerificationSender writes verification codes to the log. It stands in for a mailer
// in development.
type LogVerificationSender struct {
	Logger *zap.Logger
}

func (s LogVerificationSender) SendVerification(_ context.Context, acct *models.Account, code string) error {
	s.Logger.Info("email verification issued", zap.String("user_id", acct.ID), zap.String("code", code))
	return nil
}

// IdentityService is the identity provider: accounts, sessions and the auth-state
// stream. Every operation returns (result, error); failures the user can act on are
// *AuthError.
type IdentityService struct {
	accounts store.AccountStore
	profiles store.ProfileStore
	sessions SessionStore
	codes    ActionCodeStore
	tokens   *TokenService
	bus      AuthBus
	sender   VerificationSender
	attempts *ratelimit.Keyed
	logger   *zap.Logger
	now      func() time.Time
}

type IdentityDeps struct {
	Accounts store.AccountStore
	Profiles store.ProfileStore
	Sessions SessionStore
	Codes    ActionCodeStore
	Tokens   *TokenService
	Bus      AuthBus
	Sender   VerificationSender
	Logger   *zap.Logger
}

func NewIdentityService(d IdentityDeps) *IdentityService {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sender := d.Sender
	if sender == nil {
		sender = LogVerificationSender{Logger: logger}
	}
	return &IdentityService{
		accounts: d.Accounts,
		profiles: d.Profiles,
		sessions: d.Sessions,
		codes:    d.Codes,
		tokens:   d.Tokens,
		bus:      d.Bus,
		sender:   sender,
		attempts: ratelimit.NewKeyed(rate.Every(signInEvery), signInBurst),
		logger:   logger.Named("identity"),
		now:      time.Now,
	}
}

// Tokens exposes the token verifier used by the auth middleware.
func (s *IdentityService) Tokens() *TokenService {
	return s.tokens
}

// Bus exposes the auth event stream.
func (s *IdentityService) Bus() AuthBus {
	return s.bus
}

func validationAuthError(code string, err error) *AuthError {
	ae := &AuthError{Code: code, Message: err.Error()}
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		ae.Field = ve.Field
	}
	return ae
}

// SignUp creates an account and its profile, sends an email verification and signs the
// new user in.
func (s *IdentityService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, validationAuthError(CodeInvalidEmail, err)
	}
	if err := utils.ValidateDisplayName(in.Name); err != nil {
		return nil, validationAuthError(CodeInvalidDisplayName, err)
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, validationAuthError(CodeWeakPassword, err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	acct, err := s.accounts.CreateAccount(ctx, utils.NormalizeEmail(in.Email), in.Name, hash)
	if errors.Is(err, store.ErrEmailTaken) {
		return nil, &AuthError{Code: CodeEmailAlreadyInUse, Message: "The email address is already in use by another account.", Field: "email"}
	}
	if err != nil {
		return nil, err
	}

	profile := models.UserProfile{
		ID:            acct.ID,
		Email:         acct.Email,
		Name:          defaultProfileName(acct),
		EmailVerified: acct.EmailVerified,
	}
	if err := s.profiles.Put(ctx, profile); err != nil {
		return nil, err
	}

	code, err := s.codes.IssueCode(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	if err := s.sender.SendVerification(ctx, acct, code); err != nil {
		s.logger.Warn("failed to send verification email", zap.String("user_id", acct.ID), zap.Error(err))
	}

	s.logger.Info("account created", zap.String("user_id", acct.ID))
	return s.startSession(ctx, acct, &profile, EventSignedIn)
}

// SignIn checks credentials and opens a new session. Repeated attempts on one email are
// throttled with auth/too-many-requests.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	key := utils.NormalizeEmail(email)
	if !s.attempts.Allow(key) {
		return nil, &AuthError{Code: CodeTooManyRequests, Message: "Too many unsuccessful sign-in attempts. Try again later."}
	}

	acct, err := s.accounts.AccountByEmail(ctx, key)
	if err != nil {
		return nil, err
	}
	invalid := &AuthError{Code: CodeInvalidCredential, Message: "The supplied credentials are incorrect."}
	if acct == nil {
		return nil, invalid
	}
	ok, err := utils.VerifyPassword(password, acct.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable", zap.String("user_id", acct.ID), zap.Error(err))
		return nil, invalid
	}
	if !ok {
		return nil, invalid
	}
	s.attempts.Reset(key)

	profile, err := s.Reconcile(ctx, acct)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, acct, profile, EventSignedIn)
}

func (s *IdentityService) startSession(ctx context.Context, acct *models.Account, profile *models.UserProfile, ev AuthEventType) (*Session, error) {
	refresh, err := s.sessions.Create(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, acct, profile, refresh, ev)
}

func (s *IdentityService) issue(ctx context.Context, acct *models.Account, profile *models.UserProfile, refresh string, ev AuthEventType) (*Session, error) {
	idToken, expires, err := s.tokens.Issue(acct)
	if err != nil {
		return nil, err
	}
	identity := identityOf(acct)
	s.publish(ctx, acct.ID, AuthEvent{Type: ev, User: &identity, At: s.now()})
	return &Session{
		IDToken:      idToken,
		RefreshToken: refresh,
		ExpiresAt:    expires,
		User:         identity,
		Profile:      profile,
	}, nil
}

func (s *IdentityService) publish(ctx context.Context, userID string, ev AuthEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, userID, ev); err != nil {
		s.logger.Warn("failed to publish auth event", zap.String("user_id", userID), zap.String("type", string(ev.Type)), zap.Error(err))
	}
}

// SignOut ends the session behind refreshToken. Unknown tokens sign out nobody and
// succeed. EventSignedOut is published once the user has no session left.
func (s *IdentityService) SignOut(ctx context.Context, refreshToken string) error {
	userID, err := s.sessions.Lookup(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.sessions.Invalidate(ctx, refreshToken); err != nil {
		return err
	}
	if userID == "" {
		return nil
	}
	// Other devices stay signed in; the stream only reports the last session ending.
	remaining, err := s.sessions.Sessions(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to list sessions after sign-out", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if len(remaining) == 0 {
		s.publish(ctx, userID, AuthEvent{Type: EventSignedOut, User: nil, At: s.now()})
	}
	return nil
}

// Restore resumes a session from its refresh token: the session timer restarts, a fresh
// ID token is issued and the profile is reconciled once.
func (s *IdentityService) Restore(ctx context.Context, refreshToken string) (*Session, error) {
	userID, err := s.sessions.Lookup(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	invalid := &AuthError{Code: CodeInvalidSession, Message: "The session has expired or was signed out. Please sign in again."}
	if userID == "" {
		return nil, invalid
	}
	acct, err := s.accounts.AccountByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		_ = s.sessions.Invalidate(ctx, refreshToken)
		return nil, invalid
	}
	if err := s.sessions.Refresh(ctx, refreshToken); err != nil {
		return nil, err
	}

	profile, err := s.Reconcile(ctx, acct)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, acct, profile, refreshToken, EventTokenRefreshed)
}

// VerifyEmail consumes a verification code and marks the account verified.
func (s *IdentityService) VerifyEmail(ctx context.Context, code string) (*models.Identity, error) {
	userID, err := s.codes.ConsumeCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, &AuthError{Code: CodeInvalidActionCode, Message: "The verification code is invalid or has expired."}
	}
	if err := s.accounts.MarkEmailVerified(ctx, userID); err != nil {
		return nil, err
	}
	acct, err := s.accounts.AccountByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, &AuthError{Code: CodeInvalidActionCode, Message: "The account for this code no longer exists."}
	}
	if _, err := s.Reconcile(ctx, acct); err != nil {
		return nil, err
	}

	identity := identityOf(acct)
	s.publish(ctx, acct.ID, AuthEvent{Type: EventEmailVerified, User: &identity, At: s.now()})
	return &identity, nil
}

// Reconcile brings the stored profile in line with the account: a missing profile is
// created with a default name, and a verified email is copied over. It is called once
// per sign-in, restore or verification, never on every event.
func (s *IdentityService) Reconcile(ctx context.Context, acct *models.Account) (*models.UserProfile, error) {
	profile, err := s.profiles.Get(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &models.UserProfile{
			ID:            acct.ID,
			Email:         acct.Email,
			Name:          defaultProfileName(acct),
			EmailVerified: acct.EmailVerified,
		}
		if err := s.profiles.Put(ctx, *profile); err != nil {
			return nil, err
		}
		s.logger.Info("created missing profile", zap.String("user_id", acct.ID))
		return profile, nil
	}
	if acct.EmailVerified && !profile.EmailVerified {
		if err := s.profiles.SetEmailVerified(ctx, acct.ID, true); err != nil {
			return nil, err
		}
		profile.EmailVerified = true
	}
	return profile, nil
}

// Profile returns the stored profile of userID, or nil.
func (s *IdentityService) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.profiles.Get(ctx, userID)
}

func identityOf(acct *models.Account) models.Identity {
	return models.Identity{UserID: acct.ID, Email: acct.Email, EmailVerified: acct.EmailVerified}
}

// defaultProfileName picks display name, then the email's local part, then "User".
func defaultProfileName(acct *models.Account) string {
	if name := strings.TrimSpace(acct.DisplayName); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(acct.Email, "@"); ok && local != "" {
		return local
	}
	return "User"
}
