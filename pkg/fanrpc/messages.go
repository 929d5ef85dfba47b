package fanrpc

import "time"

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

type SignUpResponse struct {
	UserID               string   `json:"user_id"`
	EmailConfirmed       bool     `json:"email_confirmed"`
	ConfirmationRequired bool     `json:"confirmation_required"`
	Session              *Session `json:"session,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse is returned by SignIn and Refresh.
type SignInResponse struct {
	UserID         string  `json:"user_id"`
	Email          string  `json:"email"`
	EmailConfirmed bool    `json:"email_confirmed"`
	Session        Session `json:"session"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ValidateRequest struct {
	AccessToken string `json:"access_token"`
}

type ValidateResponse struct {
	UserID string `json:"user_id"`
}

type ConfirmEmailRequest struct {
	Token string `json:"token"`
}

type ResendConfirmationRequest struct {
	Email string `json:"email"`
}

type Preferences struct {
	Notifications bool   `json:"notifications"`
	Theme         string `json:"theme"`
	Language      string `json:"language"`
}

type Profile struct {
	UserID         string      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	AvatarURL      string      `json:"avatar_url,omitempty"`
	FavoritePlayer string      `json:"favorite_player,omitempty"`
	FanLevel       int         `json:"fan_level"`
	XP             int         `json:"xp"`
	IsVerified     bool        `json:"is_verified"`
	CreatedAt      time.Time   `json:"created_at"`
	Preferences    Preferences `json:"preferences"`
}

type CreateProfileRequest struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Verified bool   `json:"verified"`
}

type GetProfileRequest struct {
	UserID string `json:"user_id"`
}

// ProfilePatch carries the fields of a partial profile update; nil fields
// are left untouched.
type ProfilePatch struct {
	Username       *string           `json:"username,omitempty"`
	AvatarURL      *string           `json:"avatar_url,omitempty"`
	FavoritePlayer *string           `json:"favorite_player,omitempty"`
	FanLevel       *int              `json:"fan_level,omitempty"`
	XP             *int              `json:"xp,omitempty"`
	Preferences    *PreferencesPatch `json:"preferences,omitempty"`
}

type PreferencesPatch struct {
	Notifications *bool   `json:"notifications,omitempty"`
	Theme         *string `json:"theme,omitempty"`
	Language      *string `json:"language,omitempty"`
}

type UpdateProfileRequest struct {
	UserID string       `json:"user_id"`
	Patch  ProfilePatch `json:"patch"`
}

type SetVerifiedRequest struct {
	UserID   string `json:"user_id"`
	Verified bool   `json:"verified"`
}
