package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	errBadCredentials = errors.New("invalid credentials")
	errDuplicate      = errors.New("duplicate account")
	errRemoteDown     = errors.New("remote unavailable")
)

type account struct {
	id        string
	password  string
	confirmed bool
}

// fakeBackend is an in-memory Backend. Fields ending in Err force failures.
type fakeBackend struct {
	mu        sync.Mutex
	accounts  map[string]*account
	profiles  map[string]*Profile
	current   *AuthSession
	listeners map[int]AuthListener
	nextID    int

	requireConfirmation bool
	signOutErr          error
	updateErr           error
	resendErr           error
	updateDelay         time.Duration

	// signInGate, when set, blocks SignIn until it is closed.
	signInGate    chan struct{}
	signInStarted chan struct{}

	signOuts int
	updates  int
	resent   []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts:  map[string]*account{},
		profiles:  map[string]*Profile{},
		listeners: map[int]AuthListener{},
	}
}

func (f *fakeBackend) addAccount(email, password, username string, confirmed bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.accounts[email] = &account{id: id, password: password, confirmed: confirmed}
	f.profiles[id] = &Profile{
		Username:    username,
		Email:       email,
		FanLevel:    1,
		Verified:    confirmed,
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Preferences: DefaultPreferences(),
	}
	return id
}

func (f *fakeBackend) notify(event AuthEvent, s *AuthSession) {
	f.mu.Lock()
	ls := make([]AuthListener, 0, len(f.listeners))
	for _, l := range f.listeners {
		ls = append(ls, l)
	}
	f.mu.Unlock()
	for _, l := range ls {
		l(event, s)
	}
}

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	if f.signInStarted != nil {
		close(f.signInStarted)
	}
	if f.signInGate != nil {
		select {
		case <-f.signInGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	acc, ok := f.accounts[email]
	if !ok || acc.password != password {
		f.mu.Unlock()
		return nil, errBadCredentials
	}
	s := &AuthSession{UserID: acc.id, Email: email, EmailConfirmed: acc.confirmed, ExpiresAt: time.Now().Add(time.Hour)}
	f.current = s
	f.mu.Unlock()

	f.notify(EventSignedIn, s)
	return s, nil
}

func (f *fakeBackend) SignUp(_ context.Context, email, password, username string) (*SignUpResult, error) {
	f.mu.Lock()
	_, exists := f.accounts[email]
	f.mu.Unlock()
	if exists {
		return nil, errDuplicate
	}

	id := f.addAccount(email, password, username, false)
	if f.requireConfirmation {
		return &SignUpResult{UserID: id}, nil
	}

	s := &AuthSession{UserID: id, Email: email, EmailConfirmed: true, ExpiresAt: time.Now().Add(time.Hour)}
	f.mu.Lock()
	f.accounts[email].confirmed = true
	f.profiles[id].Verified = true
	f.current = s
	f.mu.Unlock()
	return &SignUpResult{UserID: id, Session: s}, nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.mu.Lock()
	f.signOuts++
	had := f.current != nil
	f.current = nil
	f.mu.Unlock()

	if had {
		f.notify(EventSignedOut, nil)
	}
	return f.signOutErr
}

func (f *fakeBackend) GetSession(context.Context) (*AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil, nil
	}
	s := *f.current
	return &s, nil
}

func (f *fakeBackend) OnAuthStateChange(fn AuthListener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeBackend) ResendConfirmation(_ context.Context, email string) error {
	if f.resendErr != nil {
		return f.resendErr
	}
	f.mu.Lock()
	f.resent = append(f.resent, email)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) GetProfile(_ context.Context, userID string) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, errors.New("profile not found")
	}
	out := *p
	return &out, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, userID string, patch ProfilePatch) (*Profile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	f.mu.Lock()
	p, ok := f.profiles[userID]
	if !ok {
		f.mu.Unlock()
		return nil, errors.New("profile not found")
	}
	base := *p
	f.mu.Unlock()

	// Read-modify-write with a gap, so unserialized callers would lose updates.
	if f.updateDelay > 0 {
		time.Sleep(f.updateDelay)
	}

	if patch.Username != nil {
		base.Username = *patch.Username
	}
	if patch.AvatarURL != nil {
		base.AvatarURL = *patch.AvatarURL
	}
	if patch.FavoritePlayer != nil {
		base.FavoritePlayer = *patch.FavoritePlayer
	}
	if patch.XP != nil {
		base.XP = *patch.XP
	}
	if patch.FanLevel != nil {
		base.FanLevel = *patch.FanLevel
	}
	if pp := patch.Preferences; pp != nil {
		if pp.Notifications != nil {
			base.Preferences.Notifications = *pp.Notifications
		}
		if pp.Theme != nil {
			base.Preferences.Theme = *pp.Theme
		}
		if pp.Language != nil {
			base.Preferences.Language = *pp.Language
		}
	}

	f.mu.Lock()
	f.updates++
	*f.profiles[userID] = base
	f.mu.Unlock()

	out := base
	return &out, nil
}

func (f *fakeBackend) confirm(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc := f.accounts[email]
	acc.confirmed = true
	f.profiles[acc.id].Verified = true
}

func (f *fakeBackend) storedProfile(userID string) Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.profiles[userID]
}
