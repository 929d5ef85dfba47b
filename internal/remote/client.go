// Package remote talks to the fanverse API gateway over HTTP and keeps the
// signed-in user's tokens, refreshing them as they expire.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"fanverse/internal/session"
	"fanverse/pkg/fanrpc"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	opSignIn        = "sign in"
	opSignUp        = "sign up"
	opSignOut       = "sign out"
	opRefresh       = "refresh session"
	opResend        = "resend confirmation"
	opGetProfile    = "get profile"
	opUpdateProfile = "update profile"
)

type Config struct {
	// BaseURL is the gateway root, e.g. http://localhost:8080.
	BaseURL    string
	HTTPClient *http.Client
	Store      TokenStore
	// RequestsPerSecond and Burst pace outgoing requests.
	RequestsPerSecond float64
	Burst             int
	// RefreshLeeway renews access tokens this long before they expire.
	RefreshLeeway time.Duration
	Logger        *zap.Logger
}

type Client struct {
	base    string
	http    *http.Client
	store   TokenStore
	limiter *rate.Limiter
	leeway  time.Duration
	log     *zap.Logger
	now     func() time.Time

	refreshMu sync.Mutex

	lmu       sync.Mutex
	nextID    int
	listeners map[int]session.AuthListener
}

var _ session.Backend = (*Client)(nil)

func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryTokenStore()
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.RefreshLeeway <= 0 {
		cfg.RefreshLeeway = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		base:      strings.TrimRight(cfg.BaseURL, "/") + "/api/v1",
		http:      cfg.HTTPClient,
		store:     cfg.Store,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		leeway:    cfg.RefreshLeeway,
		log:       cfg.Logger.Named("remote"),
		now:       time.Now,
		listeners: make(map[int]session.AuthListener),
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*session.AuthSession, error) {
	var res fanrpc.SignInResponse
	if err := c.do(ctx, opSignIn, http.MethodPost, "/auth/login", "", fanrpc.SignInRequest{
		Email:    email,
		Password: password,
	}, &res); err != nil {
		return nil, err
	}

	t := tokensFrom(res.UserID, res.Email, res.EmailConfirmed, res.Session)
	if err := c.store.Save(t); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s := t.session()
	c.emit(session.EventSignedIn, s)
	return s, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, username string) (*session.SignUpResult, error) {
	var res fanrpc.SignUpResponse
	if err := c.do(ctx, opSignUp, http.MethodPost, "/auth/signup", "", fanrpc.SignUpRequest{
		Email:    email,
		Password: password,
		Username: username,
	}, &res); err != nil {
		return nil, err
	}

	out := &session.SignUpResult{UserID: res.UserID}
	if res.Session == nil {
		return out, nil
	}

	t := tokensFrom(res.UserID, email, res.EmailConfirmed, *res.Session)
	if err := c.store.Save(t); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	out.Session = t.session()
	c.emit(session.EventSignedIn, out.Session)
	return out, nil
}

// SignOut forgets the local tokens first and then revokes the refresh token
// on the server.
func (c *Client) SignOut(ctx context.Context) error {
	c.refreshMu.Lock()
	t, err := c.store.Load()
	if err != nil {
		c.log.Warn("load session for sign out", zap.Error(err))
	}
	if err := c.store.Clear(); err != nil {
		c.log.Warn("clear session", zap.Error(err))
	}
	c.refreshMu.Unlock()

	if t == nil {
		return nil
	}
	c.emit(session.EventSignedOut, nil)

	if t.RefreshToken == "" {
		return nil
	}
	return c.do(ctx, opSignOut, http.MethodPost, "/auth/logout", t.AccessToken, fanrpc.SignOutRequest{
		RefreshToken: t.RefreshToken,
	}, nil)
}

// GetSession returns the stored session, refreshing its access token when it
// is about to expire. A rejected refresh token ends the session.
func (c *Client) GetSession(ctx context.Context) (*session.AuthSession, error) {
	t, err := c.validTokens(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t.session(), nil
}

func (c *Client) OnAuthStateChange(fn session.AuthListener) func() {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners[id] = fn
	return func() {
		c.lmu.Lock()
		delete(c.listeners, id)
		c.lmu.Unlock()
	}
}

func (c *Client) ResendConfirmation(ctx context.Context, email string) error {
	return c.do(ctx, opResend, http.MethodPost, "/auth/resend", "", fanrpc.ResendConfirmationRequest{
		Email: email,
	}, nil)
}

func (c *Client) GetProfile(ctx context.Context, userID string) (*session.Profile, error) {
	t, err := c.validTokens(ctx)
	if err != nil {
		return nil, err
	}

	var p fanrpc.Profile
	if err := c.do(ctx, opGetProfile, http.MethodGet, "/profiles/"+url.PathEscape(userID), t.AccessToken, nil, &p); err != nil {
		return nil, err
	}
	return toProfile(p), nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, patch session.ProfilePatch) (*session.Profile, error) {
	t, err := c.validTokens(ctx)
	if err != nil {
		return nil, err
	}

	var p fanrpc.Profile
	if err := c.do(ctx, opUpdateProfile, http.MethodPatch, "/profiles/"+url.PathEscape(userID), t.AccessToken, toPatch(patch), &p); err != nil {
		return nil, err
	}
	return toProfile(p), nil
}

func (c *Client) validTokens(ctx context.Context) (*Tokens, error) {
	c.refreshMu.Lock()

	t, err := c.store.Load()
	if err != nil {
		c.refreshMu.Unlock()
		return nil, &APIError{Op: "load session", Kind: ErrNoSession, Cause: err}
	}
	if t == nil {
		c.refreshMu.Unlock()
		return nil, &APIError{Op: "load session", Kind: ErrNoSession}
	}
	if c.now().Add(c.leeway).Before(t.ExpiresAt) {
		c.refreshMu.Unlock()
		return t, nil
	}

	var res fanrpc.SignInResponse
	err = c.do(ctx, opRefresh, http.MethodPost, "/auth/refresh", "", fanrpc.RefreshRequest{
		RefreshToken: t.RefreshToken,
	}, &res)
	if err != nil {
		if !errors.Is(err, ErrUnauthorized) {
			c.refreshMu.Unlock()
			return nil, err
		}
		if clearErr := c.store.Clear(); clearErr != nil {
			c.log.Warn("clear rejected session", zap.Error(clearErr))
		}
		c.refreshMu.Unlock()

		c.log.Info("refresh token rejected, signing out")
		c.emit(session.EventSignedOut, nil)
		return nil, &APIError{Op: opRefresh, Kind: ErrNoSession, Cause: err}
	}

	nt := tokensFrom(res.UserID, res.Email, res.EmailConfirmed, res.Session)
	if nt.Email == "" {
		nt.Email = t.Email
	}
	if err := c.store.Save(nt); err != nil {
		c.refreshMu.Unlock()
		return nil, fmt.Errorf("save refreshed session: %w", err)
	}
	c.refreshMu.Unlock()

	c.emit(session.EventTokenRefreshed, nt.session())
	return nt, nil
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &APIError{Op: op, Kind: ErrNetwork, Cause: err}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Op: op, Kind: ErrNetwork, Cause: err}
	}
	defer resp.Body.Close()

	c.log.Debug("backend call",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusMultipleChoices {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return &APIError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: e.Error,
			Kind:    kindForStatus(op, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Op: op, Status: resp.StatusCode, Kind: ErrUnavailable, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) emit(event session.AuthEvent, s *session.AuthSession) {
	c.lmu.Lock()
	ls := make([]session.AuthListener, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.lmu.Unlock()

	for _, l := range ls {
		l(event, s)
	}
}

func tokensFrom(userID, email string, confirmed bool, s fanrpc.Session) *Tokens {
	return &Tokens{
		UserID:         userID,
		Email:          email,
		EmailConfirmed: confirmed,
		AccessToken:    s.AccessToken,
		RefreshToken:   s.RefreshToken,
		ExpiresAt:      time.Unix(s.ExpiresAt, 0),
	}
}

func (t *Tokens) session() *session.AuthSession {
	return &session.AuthSession{
		UserID:         t.UserID,
		Email:          t.Email,
		EmailConfirmed: t.EmailConfirmed,
		ExpiresAt:      t.ExpiresAt,
	}
}

func toProfile(p fanrpc.Profile) *session.Profile {
	return &session.Profile{
		Username:       p.Username,
		Email:          p.Email,
		AvatarURL:      p.AvatarURL,
		FavoritePlayer: p.FavoritePlayer,
		FanLevel:       p.FanLevel,
		XP:             p.XP,
		Verified:       p.IsVerified,
		CreatedAt:      p.CreatedAt,
		Preferences: session.Preferences{
			Notifications: p.Preferences.Notifications,
			Theme:         session.Theme(p.Preferences.Theme),
			Language:      p.Preferences.Language,
		},
	}
}

func toPatch(p session.ProfilePatch) fanrpc.ProfilePatch {
	out := fanrpc.ProfilePatch{
		Username:       p.Username,
		AvatarURL:      p.AvatarURL,
		FavoritePlayer: p.FavoritePlayer,
		FanLevel:       p.FanLevel,
		XP:             p.XP,
	}
	if pp := p.Preferences; pp != nil {
		out.Preferences = &fanrpc.PreferencesPatch{
			Notifications: pp.Notifications,
			Language:      pp.Language,
		}
		if pp.Theme != nil {
			theme := string(*pp.Theme)
			out.Preferences.Theme = &theme
		}
	}
	return out
}
