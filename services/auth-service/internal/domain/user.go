package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAlreadyConfirmed   = errors.New("email already confirmed")
	ErrResendTooSoon      = errors.New("confirmation email sent recently")
	ErrInvalidInput       = errors.New("invalid input")
)

type User struct {
	ID               uuid.UUID
	Email            string
	Username         string
	Password         string
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) EmailConfirmed() bool {
	return u.EmailConfirmedAt != nil
}
