package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fanverse/internal/progression"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrInvalidProfile  = errors.New("invalid profile")
)

type Theme string

const (
	ThemeClassic Theme = "classic"
	ThemeModern  Theme = "modern"
	ThemeRetro   Theme = "retro"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeClassic, ThemeModern, ThemeRetro:
		return true
	}
	return false
}

type Preferences struct {
	Notifications bool
	Theme         Theme  `gorm:"size:16"`
	Language      string `gorm:"size:8"`
}

type Profile struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"uniqueIndex"`
	Username       string    `gorm:"size:50;not null"`
	AvatarURL      string
	FavoritePlayer string `gorm:"size:80"`

	FanLevel   int `gorm:"not null"`
	XP         int `gorm:"not null"`
	IsVerified bool

	Preferences Preferences `gorm:"embedded;embeddedPrefix:pref_"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProfile returns a fresh fan profile at level 1 with default preferences.
func NewProfile(id uuid.UUID, email, username string, verified bool) *Profile {
	return &Profile{
		ID:         id,
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Username:   strings.TrimSpace(username),
		FanLevel:   1,
		XP:         0,
		IsVerified: verified,
		Preferences: Preferences{
			Notifications: true,
			Theme:         ThemeClassic,
			Language:      "en",
		},
	}
}

type ProfilePatch struct {
	Username       *string
	AvatarURL      *string
	FavoritePlayer *string
	FanLevel       *int
	XP             *int
	Notifications  *bool
	Theme          *string
	Language       *string
}

// Apply writes the non-nil patch fields onto p and validates the result.
// Writing XP without a level derives the level from the new XP.
func (p *Profile) Apply(patch ProfilePatch) error {
	if patch.Username != nil {
		p.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = *patch.AvatarURL
	}
	if patch.FavoritePlayer != nil {
		p.FavoritePlayer = strings.TrimSpace(*patch.FavoritePlayer)
	}
	if patch.XP != nil {
		p.XP = *patch.XP
		if patch.FanLevel == nil {
			p.FanLevel = progression.LevelForXP(p.XP)
		}
	}
	if patch.FanLevel != nil {
		p.FanLevel = *patch.FanLevel
	}
	if patch.Notifications != nil {
		p.Preferences.Notifications = *patch.Notifications
	}
	if patch.Theme != nil {
		p.Preferences.Theme = Theme(*patch.Theme)
	}
	if patch.Language != nil {
		p.Preferences.Language = strings.TrimSpace(*patch.Language)
	}
	return p.Validate()
}

func (p *Profile) Validate() error {
	switch {
	case p.Username == "" || len(p.Username) > 50:
		return fmt.Errorf("%w: username must be 1-50 characters", ErrInvalidProfile)
	case len(p.FavoritePlayer) > 80:
		return fmt.Errorf("%w: favorite player is too long", ErrInvalidProfile)
	case p.XP < 0:
		return fmt.Errorf("%w: xp must not be negative", ErrInvalidProfile)
	case p.FanLevel < 1:
		return fmt.Errorf("%w: fan level must be at least 1", ErrInvalidProfile)
	case !progression.ValidLevel(p.XP, p.FanLevel):
		return fmt.Errorf("%w: fan level %d does not match %d xp", ErrInvalidProfile, p.FanLevel, p.XP)
	case !p.Preferences.Theme.Valid():
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidProfile, p.Preferences.Theme)
	case len(p.Preferences.Language) < 2 || len(p.Preferences.Language) > 8:
		return fmt.Errorf("%w: language must be 2-8 characters", ErrInvalidProfile)
	}
	return nil
}
