package session

import (
	"context"
	"time"
)

type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthSession is the backend's view of a signed-in account.
type AuthSession struct {
	UserID         string
	Email          string
	EmailConfirmed bool
	ExpiresAt      time.Time
}

type SignUpResult struct {
	UserID string
	// Session is nil when the account must confirm its email first.
	Session *AuthSession
}

type AuthListener func(event AuthEvent, s *AuthSession)

// Backend is the remote auth and profile service the manager delegates to.
// GetSession returns a nil session without error when nobody is signed in.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	SignUp(ctx context.Context, email, password, username string) (*SignUpResult, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*AuthSession, error)
	OnAuthStateChange(fn AuthListener) (unsubscribe func())
	ResendConfirmation(ctx context.Context, email string) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*Profile, error)
}
