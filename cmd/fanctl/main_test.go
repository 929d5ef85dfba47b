package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"fanverse/internal/session"
	"fanverse/pkg/fanrpc"
)

// fakeGateway serves the subset of the gateway API fanctl uses.
func fakeGateway(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	profile := fanrpc.Profile{
		UserID:      "user-1",
		Username:    "culer",
		Email:       "fan@example.com",
		FanLevel:    1,
		IsVerified:  true,
		Preferences: fanrpc.Preferences{Notifications: true, Theme: "classic", Language: "en"},
	}

	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req fanrpc.SignInRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret1" {
			reply(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		reply(w, http.StatusOK, fanrpc.SignInResponse{
			UserID:         "user-1",
			Email:          "fan@example.com",
			EmailConfirmed: true,
			Session: fanrpc.Session{
				AccessToken:  "access",
				RefreshToken: "refresh",
				ExpiresAt:    time.Now().Add(time.Hour).Unix(),
			},
		})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]string{"message": "Logged out"})
	})
	mux.HandleFunc("GET /api/v1/profiles/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		reply(w, http.StatusOK, profile)
	})
	mux.HandleFunc("PATCH /api/v1/profiles/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		var patch fanrpc.ProfilePatch
		_ = json.NewDecoder(r.Body).Decode(&patch)
		if patch.XP != nil {
			profile.XP = *patch.XP
		}
		if patch.FanLevel != nil {
			profile.FanLevel = *patch.FanLevel
		}
		if patch.FavoritePlayer != nil {
			profile.FavoritePlayer = *patch.FavoritePlayer
		}
		reply(w, http.StatusOK, profile)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, tokenFile string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runApp(t, srv, tokenFile, args...)
	return out, err
}

func runApp(t *testing.T, srv *httptest.Server, tokenFile string, args ...string) (string, *app, error) {
	t.Helper()
	var out bytes.Buffer
	cmd, a := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api-url", srv.URL, "--token-file", tokenFile, "--log-level", "error"}, args...))
	err := a.execute(cmd)
	return out.String(), a, err
}

func TestFanctlSession(t *testing.T) {
	srv := fakeGateway(t)
	tokens := filepath.Join(t.TempDir(), "session.json")

	out, err := run(t, srv, tokens, "whoami")
	if err != nil || !strings.Contains(out, "ANONYMOUS") {
		t.Fatalf("whoami before login: %q %v", out, err)
	}

	if _, err := run(t, srv, tokens, "login", "--email", "fan@example.com", "--password", "wrong"); err == nil {
		t.Fatalf("login with a wrong password succeeded")
	}

	out, err = run(t, srv, tokens, "login", "--email", "fan@example.com", "--password", "secret1")
	if err != nil || !strings.Contains(out, "AUTHENTICATED_VERIFIED") {
		t.Fatalf("login: %q %v", out, err)
	}

	out, err = run(t, srv, tokens, "xp", "add", "600")
	if err != nil {
		t.Fatalf("xp add: %v", err)
	}
	if !strings.Contains(out, "Level up! 1 -> 2") || !strings.Contains(out, "level:    2 (600 xp)") {
		t.Fatalf("unexpected xp output %q", out)
	}

	out, err = run(t, srv, tokens, "xp", "award", "store_purchase")
	if err != nil || !strings.Contains(out, "610 xp") {
		t.Fatalf("xp award: %q %v", out, err)
	}

	out, err = run(t, srv, tokens, "profile", "set", "--favorite-player", "Lamine")
	if err != nil || !strings.Contains(out, "player:   Lamine") {
		t.Fatalf("profile set: %q %v", out, err)
	}

	if _, err := run(t, srv, tokens, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := run(t, srv, tokens, "xp", "add", "5"); err == nil || !strings.Contains(err.Error(), "not authenticated") {
		t.Fatalf("xp add after logout: %v", err)
	}
}

func TestFanctlRejectsBadInput(t *testing.T) {
	srv := fakeGateway(t)
	tokens := filepath.Join(t.TempDir(), "session.json")

	if _, err := run(t, srv, tokens, "xp", "add", "lots"); err == nil {
		t.Fatalf("expected invalid amount error")
	}
	if _, err := run(t, srv, tokens, "verify", "resend"); err == nil || !strings.Contains(err.Error(), "no email on file") {
		t.Fatalf("expected missing email error, got %v", err)
	}
}

func TestFanctlClosesManagerOnFailure(t *testing.T) {
	srv := fakeGateway(t)
	tokens := filepath.Join(t.TempDir(), "session.json")

	_, a, err := runApp(t, srv, tokens, "login", "--email", "fan@example.com", "--password", "wrong")
	if err == nil {
		t.Fatal("login with a wrong password succeeded")
	}
	if a.manager == nil {
		t.Fatal("expected manager to be built")
	}
	if err := a.manager.Login(context.Background(), "fan@example.com", "secret1"); !errors.Is(err, session.ErrClosed) {
		t.Fatalf("expected manager closed after failed command, got %v", err)
	}
}
