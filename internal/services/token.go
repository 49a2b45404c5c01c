package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AnshRaj112/soloura-backend/internal/models"
)

const tokenIssuer = "soloura"

// TokenService issues and verifies the short-lived ID tokens that identify a caller on
// every authenticated request.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("ID token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

type idClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// Issue signs an ID token for acct and returns it with its expiry.
func (s *TokenService) Issue(acct *models.Account) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	c := idClaims{
		Email:         acct.Email,
		EmailVerified: acct.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses an ID token and returns the identity it carries.
func (s *TokenService) Verify(tokenStr string) (*models.Identity, error) {
	var c idClaims
	token, err := jwt.ParseWithClaims(tokenStr, &c,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token expired")
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || c.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return &models.Identity{UserID: c.Subject, Email: c.Email, EmailVerified: c.EmailVerified}, nil
}
