package services

import (
	"errors"

	"github.com/AnshRaj112/soloura-backend/internal/apperror"
)

// Identity provider error codes.
const (
	CodeInvalidEmail       = "auth/invalid-email"
	CodeWeakPassword       = "auth/weak-password"
	CodeInvalidDisplayName = "auth/invalid-display-name"
	CodeEmailAlreadyInUse  = "auth/email-already-in-use"
	CodeInvalidCredential  = "auth/invalid-credential"
	CodeUserNotFound       = "auth/user-not-found"
	CodeWrongPassword      = "auth/wrong-password"
	CodeTooManyRequests    = "auth/too-many-requests"
	CodeInvalidSession     = "auth/invalid-session"
	CodeInvalidActionCode  = "auth/invalid-action-code"
)

// AuthError is a failure reported by the identity provider. Message is the provider's raw
// text; AuthMessage turns known codes into friendlier copy.
type AuthError struct {
	Code    string
	Message string
	Field   string
}

func (e *AuthError) Error() string {
	return e.Code + ": " + e.Message
}

// Unwrap classifies the code into an apperror kind so handlers pick the right status.
func (e *AuthError) Unwrap() error {
	switch e.Code {
	case CodeInvalidEmail, CodeWeakPassword, CodeInvalidDisplayName, CodeInvalidActionCode:
		return apperror.ErrValidation
	case CodeEmailAlreadyInUse:
		return apperror.ErrConflict
	case CodeTooManyRequests:
		return apperror.ErrRateLimited
	default:
		return apperror.ErrUnauthorized
	}
}

const (
	msgInvalidCredentials = "Invalid email or password. Please check your credentials and try again."
	msgTooManyRequests    = "Access to this account has been temporarily disabled due to many failed login attempts. You can try again later or reset your password."
	msgEmailInUse         = "An account with this email already exists. Try signing in instead."
)

// AuthMessage returns user-facing text for an identity error, falling back to the raw
// message for codes without dedicated copy.
func AuthMessage(err error) string {
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	switch authErr.Code {
	case CodeInvalidCredential, CodeUserNotFound, CodeWrongPassword:
		return msgInvalidCredentials
	case CodeTooManyRequests:
		return msgTooManyRequests
	case CodeEmailAlreadyInUse:
		return msgEmailInUse
	default:
		return authErr.Message
	}
}
