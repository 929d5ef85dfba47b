package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func TestNewProfileDefaults(t *testing.T) {
	p := NewProfile(uuid.New(), " Fan@Example.com ", "Culer", false)
	if p.FanLevel != 1 || p.XP != 0 {
		t.Fatalf("expected level 1 / xp 0, got %d / %d", p.FanLevel, p.XP)
	}
	if p.Email != "fan@example.com" {
		t.Fatalf("expected normalized email, got %q", p.Email)
	}
	if !p.Preferences.Notifications || p.Preferences.Theme != ThemeClassic || p.Preferences.Language != "en" {
		t.Fatalf("unexpected default preferences: %+v", p.Preferences)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected new profile to be valid: %v", err)
	}
}

func TestApplyDerivesLevelFromXP(t *testing.T) {
	p := NewProfile(uuid.New(), "a@example.com", "a", true)
	if err := p.Apply(ProfilePatch{XP: ptr(1200)}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.FanLevel != 3 {
		t.Fatalf("expected level 3, got %d", p.FanLevel)
	}
}

func TestApplyRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		patch ProfilePatch
	}{
		{"mismatched level", ProfilePatch{XP: ptr(500), FanLevel: ptr(1)}},
		{"level without xp", ProfilePatch{FanLevel: ptr(4)}},
		{"negative xp", ProfilePatch{XP: ptr(-5)}},
		{"empty username", ProfilePatch{Username: ptr("  ")}},
		{"bad theme", ProfilePatch{Theme: ptr("neon")}},
		{"bad language", ProfilePatch{Language: ptr("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProfile(uuid.New(), "a@example.com", "a", true)
			if err := p.Apply(tt.patch); !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("expected ErrInvalidProfile, got %v", err)
			}
		})
	}
}

func TestApplyPreferences(t *testing.T) {
	p := NewProfile(uuid.New(), "a@example.com", "a", true)
	err := p.Apply(ProfilePatch{
		Notifications:  ptr(false),
		Theme:          ptr("retro"),
		Language:       ptr("ca"),
		FavoritePlayer: ptr("Pedri"),
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.Preferences.Notifications || p.Preferences.Theme != ThemeRetro || p.Preferences.Language != "ca" {
		t.Fatalf("unexpected preferences: %+v", p.Preferences)
	}
	if p.FavoritePlayer != "Pedri" {
		t.Fatalf("expected favorite player Pedri, got %q", p.FavoritePlayer)
	}
}
