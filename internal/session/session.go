// Package session holds the client-side view of a signed-in fan: who they
// are, their profile and XP progression, and the state of their account.
package session

import (
	"fmt"
	"time"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	AuthenticatedUnverified
	AuthenticatedVerified
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "ANONYMOUS"
	case Authenticating:
		return "AUTHENTICATING"
	case AuthenticatedUnverified:
		return "AUTHENTICATED_UNVERIFIED"
	case AuthenticatedVerified:
		return "AUTHENTICATED_VERIFIED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Authenticated reports whether s carries an identity.
func (s State) Authenticated() bool {
	return s == AuthenticatedUnverified || s == AuthenticatedVerified
}

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

type Identity struct {
	UserID         string
	Email          string
	EmailConfirmed bool
}

type Preferences struct {
	Notifications bool
	Theme         Theme
	Language      string
}

type Profile struct {
	Username       string
	Email          string
	AvatarURL      string
	FavoritePlayer string
	FanLevel       int
	XP             int
	Verified       bool
	CreatedAt      time.Time
	Preferences    Preferences
}

// DefaultPreferences are applied to freshly created profiles.
func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, Theme: ThemeClassic, Language: "en"}
}

// Snapshot is an immutable copy of the session. Identity and Profile are
// either both nil or both set.
type Snapshot struct {
	State        State
	Identity     *Identity
	Profile      *Profile
	PendingEmail string
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Identity != nil {
		id := *s.Identity
		out.Identity = &id
	}
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	return out
}

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	Username       *string
	AvatarURL      *string
	FavoritePlayer *string
	FanLevel       *int
	XP             *int
	Preferences    *PreferencesPatch
}

type PreferencesPatch struct {
	Notifications *bool
	Theme         *Theme
	Language      *string
}

func (p ProfilePatch) validate() error {
	if p.XP != nil && *p.XP < 0 {
		return ErrNegativeXP
	}
	if p.FanLevel != nil && *p.FanLevel < 1 {
		return fmt.Errorf("%w: fan level must be at least 1", ErrInvalidProfile)
	}
	if p.Username != nil && *p.Username == "" {
		return fmt.Errorf("%w: username must not be empty", ErrInvalidProfile)
	}
	if p.Preferences != nil && p.Preferences.Theme != nil && !p.Preferences.Theme.Valid() {
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidProfile, *p.Preferences.Theme)
	}
	return nil
}

type Feature string

const (
	FeatureChat        Feature = "chat"
	FeaturePredictions Feature = "predictions"
	FeatureStore       Feature = "store"
	FeatureProfile     Feature = "profile"
)

func (f Feature) verifiedOnly() bool {
	return f == FeatureChat || f == FeaturePredictions
}
