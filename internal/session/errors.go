package session

import "errors"

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrNoEmail              = errors.New("no email on file")
	ErrNegativeXP           = errors.New("xp amount must not be negative")
	ErrXPOverflow           = errors.New("xp total out of range")
	ErrInvalidProfile       = errors.New("invalid profile")
	ErrVerificationRequired = errors.New("email verification required")
	ErrAlreadyVerified      = errors.New("email already verified")
	ErrSuperseded           = errors.New("result discarded after session change")
	ErrClosed               = errors.New("session manager closed")
)

// AuthError reports a failed login, signup or session restore.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string { return "auth: " + e.Op + ": " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// ProfileError reports a rejected profile read or write.
type ProfileError struct {
	Op  string
	Err error
}

func (e *ProfileError) Error() string { return "profile: " + e.Op + ": " + e.Err.Error() }
func (e *ProfileError) Unwrap() error { return e.Err }

type VerificationError struct {
	Op  string
	Err error
}

func (e *VerificationError) Error() string { return "verification: " + e.Op + ": " + e.Err.Error() }
func (e *VerificationError) Unwrap() error { return e.Err }
