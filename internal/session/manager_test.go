package session

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"fanverse/internal/progression"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) last(kind EventKind) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func newManager(t *testing.T, b Backend) (*Manager, *recorder) {
	t.Helper()
	m := New(b, Options{RequestTimeout: time.Second})
	t.Cleanup(m.Close)
	rec := &recorder{}
	m.Subscribe(rec.listen)
	return m, rec
}

func signedUp(t *testing.T) (*fakeBackend, *Manager, *recorder) {
	t.Helper()
	b := newFakeBackend()
	m, rec := newManager(t, b)
	if err := m.Signup(context.Background(), "culer", "fan@example.com", "secret1"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	return b, m, rec
}

func TestSignupThenAddXPLevelsUpOnce(t *testing.T) {
	_, m, rec := signedUp(t)

	snap := m.Snapshot()
	if snap.State != AuthenticatedVerified {
		t.Fatalf("state = %s, want AUTHENTICATED_VERIFIED", snap.State)
	}
	if snap.Profile.XP != 0 || snap.Profile.FanLevel != 1 {
		t.Fatalf("fresh profile xp=%d level=%d", snap.Profile.XP, snap.Profile.FanLevel)
	}

	if err := m.AddXP(context.Background(), 500); err != nil {
		t.Fatalf("add xp: %v", err)
	}

	snap = m.Snapshot()
	if snap.Profile.XP != 500 || snap.Profile.FanLevel != 2 {
		t.Fatalf("after 500 xp: xp=%d level=%d", snap.Profile.XP, snap.Profile.FanLevel)
	}
	if n := rec.count(EventLevelUp); n != 1 {
		t.Fatalf("level up events = %d, want 1", n)
	}
	ev, _ := rec.last(EventLevelUp)
	if ev.OldLevel != 1 || ev.NewLevel != 2 {
		t.Fatalf("level up %d -> %d, want 1 -> 2", ev.OldLevel, ev.NewLevel)
	}
}

func TestAddXPBelowThresholdKeepsLevel(t *testing.T) {
	_, m, rec := signedUp(t)

	if err := m.AddXP(context.Background(), 499); err != nil {
		t.Fatalf("add xp: %v", err)
	}
	snap := m.Snapshot()
	if snap.Profile.XP != 499 || snap.Profile.FanLevel != 1 {
		t.Fatalf("xp=%d level=%d, want 499/1", snap.Profile.XP, snap.Profile.FanLevel)
	}
	if n := rec.count(EventLevelUp); n != 0 {
		t.Fatalf("unexpected level up events: %d", n)
	}
}

func TestAddXPKeepsLevelInvariant(t *testing.T) {
	b, m, _ := signedUp(t)
	id := m.Snapshot().Identity.UserID

	for _, amount := range []int{0, 3, 497, 1, 999, 10, 2, 1500, 0, 5} {
		if err := m.AddXP(context.Background(), amount); err != nil {
			t.Fatalf("add xp %d: %v", amount, err)
		}
		p := m.Snapshot().Profile
		if want := p.XP/progression.XPPerLevel + 1; p.FanLevel != want {
			t.Fatalf("after +%d: xp=%d level=%d, want level %d", amount, p.XP, p.FanLevel, want)
		}
		if stored := b.storedProfile(id); stored.XP != p.XP || stored.FanLevel != p.FanLevel {
			t.Fatalf("remote profile %d/%d diverged from local %d/%d", stored.XP, stored.FanLevel, p.XP, p.FanLevel)
		}
	}
}

func TestAddXPAnonymousIsNoop(t *testing.T) {
	b := newFakeBackend()
	m, rec := newManager(t, b)

	before := m.Snapshot()
	if err := m.AddXP(context.Background(), 50); err != nil {
		t.Fatalf("anonymous add xp returned %v", err)
	}
	if !reflect.DeepEqual(before, m.Snapshot()) {
		t.Fatalf("snapshot changed: %+v", m.Snapshot())
	}
	if b.updates != 0 || len(rec.events) != 0 {
		t.Fatalf("expected no remote writes or events, got %d writes %d events", b.updates, len(rec.events))
	}
}

func TestAddXPRejectsNegative(t *testing.T) {
	_, m, _ := signedUp(t)

	err := m.AddXP(context.Background(), -1)
	var pe *ProfileError
	if !errors.As(err, &pe) || !errors.Is(err, ErrNegativeXP) {
		t.Fatalf("expected ProfileError wrapping ErrNegativeXP, got %v", err)
	}
	if m.Snapshot().Profile.XP != 0 {
		t.Fatalf("xp changed after rejected award")
	}
}

func TestAddXPRejectsOverflow(t *testing.T) {
	b, m, _ := signedUp(t)
	if err := m.AddXP(context.Background(), 10); err != nil {
		t.Fatalf("add xp: %v", err)
	}
	updates := b.updates

	err := m.AddXP(context.Background(), math.MaxInt)
	var pe *ProfileError
	if !errors.As(err, &pe) || !errors.Is(err, ErrXPOverflow) {
		t.Fatalf("expected ProfileError wrapping ErrXPOverflow, got %v", err)
	}
	if errors.Is(err, ErrNegativeXP) {
		t.Fatalf("overflow reported as negative amount: %v", err)
	}
	if xp := m.Snapshot().Profile.XP; xp != 10 {
		t.Fatalf("xp = %d, want 10", xp)
	}
	if b.updates != updates {
		t.Fatalf("expected no backend write for rejected award")
	}
}

func TestConcurrentAddXPLosesNoUpdate(t *testing.T) {
	b, m, rec := signedUp(t)
	b.updateDelay = time.Millisecond

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.AddXP(context.Background(), 50); err != nil {
				t.Errorf("add xp: %v", err)
			}
		}()
	}
	wg.Wait()

	p := m.Snapshot().Profile
	if p.XP != workers*50 || p.FanLevel != 3 {
		t.Fatalf("xp=%d level=%d, want %d/3", p.XP, p.FanLevel, workers*50)
	}
	if stored := b.storedProfile(m.Snapshot().Identity.UserID); stored.XP != workers*50 {
		t.Fatalf("remote xp = %d, want %d", stored.XP, workers*50)
	}
	if n := rec.count(EventLevelUp); n != 2 {
		t.Fatalf("level up events = %d, want 2", n)
	}
}

func TestAward(t *testing.T) {
	_, m, _ := signedUp(t)

	if err := m.Award(context.Background(), progression.ActivityStorePurchase); err != nil {
		t.Fatalf("award: %v", err)
	}
	if err := m.Award(context.Background(), progression.ActivityChatMessage); err != nil {
		t.Fatalf("award: %v", err)
	}
	if xp := m.Snapshot().Profile.XP; xp != 13 {
		t.Fatalf("xp = %d, want 13", xp)
	}

	var pe *ProfileError
	if err := m.Award(context.Background(), "dance"); !errors.As(err, &pe) {
		t.Fatalf("expected ProfileError for unknown activity, got %v", err)
	}
}

func TestLoginUnconfirmedAccount(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("new@example.com", "secret1", "newbie", false)
	m, rec := newManager(t, b)

	if err := m.Login(context.Background(), "new@example.com", "secret1"); err != nil {
		t.Fatalf("login returned %v", err)
	}

	snap := m.Snapshot()
	if snap.State != AuthenticatedUnverified {
		t.Fatalf("state = %s, want AUTHENTICATED_UNVERIFIED", snap.State)
	}
	if snap.Profile == nil || snap.Profile.Verified {
		t.Fatalf("expected unverified profile, got %+v", snap.Profile)
	}
	if rec.count(EventVerificationRequired) != 1 {
		t.Fatalf("expected one verification_required event")
	}
	if err := m.Require(FeatureChat); !errors.Is(err, ErrVerificationRequired) {
		t.Fatalf("chat gate: %v", err)
	}
	if err := m.Require(FeatureStore); err != nil {
		t.Fatalf("store gate: %v", err)
	}
}

func TestTokenRefreshConfirmsEmail(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("new@example.com", "secret1", "newbie", false)
	m, rec := newManager(t, b)

	if err := m.Login(context.Background(), "new@example.com", "secret1"); err != nil {
		t.Fatalf("login returned %v", err)
	}
	userID := m.Snapshot().Identity.UserID

	b.notify(EventTokenRefreshed, &AuthSession{UserID: "someone-else", EmailConfirmed: true})
	if m.Snapshot().State != AuthenticatedUnverified {
		t.Fatalf("refresh for another user changed the session")
	}

	changed := rec.count(EventChanged)
	b.notify(EventTokenRefreshed, &AuthSession{UserID: userID, Email: "new@example.com", EmailConfirmed: true})

	snap := m.Snapshot()
	if snap.State != AuthenticatedVerified {
		t.Fatalf("state = %s, want AUTHENTICATED_VERIFIED", snap.State)
	}
	if !snap.Identity.EmailConfirmed || !snap.Profile.Verified {
		t.Fatalf("expected confirmed identity and verified profile, got %+v %+v", snap.Identity, snap.Profile)
	}
	if rec.count(EventChanged) != changed+1 {
		t.Fatalf("expected one session_changed event for the upgrade")
	}
	if err := m.Require(FeatureChat); err != nil {
		t.Fatalf("chat gate after confirmation: %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("fan@example.com", "secret1", "culer", true)
	m, rec := newManager(t, b)

	err := m.Login(context.Background(), "fan@example.com", "wrong")
	var ae *AuthError
	if !errors.As(err, &ae) || !errors.Is(err, errBadCredentials) {
		t.Fatalf("expected AuthError wrapping bad credentials, got %v", err)
	}
	if ae.Op != "login" {
		t.Fatalf("op = %q", ae.Op)
	}

	snap := m.Snapshot()
	if snap.State != Anonymous || snap.Identity != nil {
		t.Fatalf("expected anonymous session, got %+v", snap)
	}
	if ev, ok := rec.last(EventChanged); !ok || ev.Snapshot.State != Anonymous {
		t.Fatalf("expected final change event back to anonymous")
	}
}

func TestLoginTimeout(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("fan@example.com", "secret1", "culer", true)
	b.signInGate = make(chan struct{})
	defer close(b.signInGate)

	m := New(b, Options{RequestTimeout: 20 * time.Millisecond})
	defer m.Close()

	err := m.Login(context.Background(), "fan@example.com", "secret1")
	var ae *AuthError
	if !errors.As(err, &ae) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected AuthError wrapping deadline exceeded, got %v", err)
	}
	if m.Snapshot().State != Anonymous {
		t.Fatalf("state = %s after timeout", m.Snapshot().State)
	}
}

func TestLogoutDuringLoginDiscardsResult(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("fan@example.com", "secret1", "culer", true)
	b.signInGate = make(chan struct{})
	b.signInStarted = make(chan struct{})
	m, _ := newManager(t, b)

	done := make(chan error, 1)
	go func() {
		done <- m.Login(context.Background(), "fan@example.com", "secret1")
	}()

	<-b.signInStarted
	if m.Snapshot().State != Authenticating {
		t.Fatalf("state = %s while login in flight", m.Snapshot().State)
	}
	m.Logout(context.Background())
	close(b.signInGate)

	err := <-done
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected discarded login, got %v", err)
	}
	snap := m.Snapshot()
	if snap.State != Anonymous || snap.Identity != nil || snap.Profile != nil {
		t.Fatalf("login result leaked into session: %+v", snap)
	}
	if s, _ := b.GetSession(context.Background()); s != nil {
		t.Fatalf("discarded login left a remote session behind")
	}
}

func TestLogoutAlwaysClears(t *testing.T) {
	b, m, rec := signedUp(t)
	b.signOutErr = errRemoteDown

	m.Logout(context.Background())

	snap := m.Snapshot()
	if snap.Identity != nil || snap.Profile != nil || snap.State != Anonymous {
		t.Fatalf("expected cleared session, got %+v", snap)
	}
	if b.signOuts != 1 {
		t.Fatalf("remote sign out calls = %d, want 1", b.signOuts)
	}
	if rec.count(EventLoggedOut) != 1 {
		t.Fatalf("expected one signed_out event")
	}

	m.Logout(context.Background())
	if rec.count(EventLoggedOut) != 1 {
		t.Fatalf("logout of an anonymous session emitted again")
	}
}

func TestSignupRequiringConfirmation(t *testing.T) {
	b := newFakeBackend()
	b.requireConfirmation = true
	m, rec := newManager(t, b)

	if err := m.Signup(context.Background(), "culer", "fan@example.com", "secret1"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	snap := m.Snapshot()
	if snap.State != Anonymous || snap.Identity != nil {
		t.Fatalf("expected anonymous session, got %+v", snap)
	}
	if snap.PendingEmail != "fan@example.com" {
		t.Fatalf("pending email = %q", snap.PendingEmail)
	}
	if rec.count(EventVerificationRequired) != 1 {
		t.Fatalf("expected verification_required event")
	}

	if err := m.ResendVerification(context.Background()); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if !reflect.DeepEqual(b.resent, []string{"fan@example.com"}) {
		t.Fatalf("resent = %v", b.resent)
	}

	stored := b.storedProfile(b.accounts["fan@example.com"].id)
	if stored.XP != 0 || stored.FanLevel != 1 {
		t.Fatalf("remote profile starts at xp=%d level=%d", stored.XP, stored.FanLevel)
	}
}

func TestSignupDuplicate(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("fan@example.com", "secret1", "culer", true)
	m, _ := newManager(t, b)

	err := m.Signup(context.Background(), "other", "fan@example.com", "secret2")
	var ae *AuthError
	if !errors.As(err, &ae) || !errors.Is(err, errDuplicate) {
		t.Fatalf("expected AuthError wrapping duplicate, got %v", err)
	}
	if m.Snapshot().State != Anonymous {
		t.Fatalf("state = %s", m.Snapshot().State)
	}
}

func TestResendVerificationErrors(t *testing.T) {
	b := newFakeBackend()
	m, _ := newManager(t, b)

	var ve *VerificationError
	err := m.ResendVerification(context.Background())
	if !errors.As(err, &ve) || !errors.Is(err, ErrNoEmail) {
		t.Fatalf("expected ErrNoEmail, got %v", err)
	}

	b.addAccount("new@example.com", "secret1", "newbie", false)
	if err := m.Login(context.Background(), "new@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	b.resendErr = errRemoteDown
	err = m.ResendVerification(context.Background())
	if !errors.As(err, &ve) || !errors.Is(err, errRemoteDown) {
		t.Fatalf("expected VerificationError wrapping remote failure, got %v", err)
	}

	b.resendErr = nil
	if err := m.ResendVerification(context.Background()); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if !reflect.DeepEqual(b.resent, []string{"new@example.com"}) {
		t.Fatalf("resent = %v", b.resent)
	}
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	_, m, _ := signedUp(t)
	if err := m.ResendVerification(context.Background()); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestUpdateProfileAnonymous(t *testing.T) {
	m, _ := newManager(t, newFakeBackend())
	before := m.Snapshot()

	name := "culer"
	err := m.UpdateProfile(context.Background(), ProfilePatch{Username: &name})
	var pe *ProfileError
	if !errors.As(err, &pe) || !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ProfileError wrapping ErrNotAuthenticated, got %v", err)
	}
	if !reflect.DeepEqual(before, m.Snapshot()) {
		t.Fatalf("snapshot changed")
	}
}

func TestUpdateProfile(t *testing.T) {
	b, m, _ := signedUp(t)

	player := "Pedri"
	theme := ThemeRetro
	if err := m.UpdateProfile(context.Background(), ProfilePatch{
		FavoritePlayer: &player,
		Preferences:    &PreferencesPatch{Theme: &theme},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	p := m.Snapshot().Profile
	if p.FavoritePlayer != "Pedri" || p.Preferences.Theme != ThemeRetro || p.Preferences.Language != "en" {
		t.Fatalf("unexpected profile %+v", p)
	}

	bad := Theme("neon")
	var pe *ProfileError
	if err := m.UpdateProfile(context.Background(), ProfilePatch{Preferences: &PreferencesPatch{Theme: &bad}}); !errors.As(err, &pe) || !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected invalid theme rejection, got %v", err)
	}

	before := m.Snapshot()
	b.updateErr = errRemoteDown
	name := "someone"
	if err := m.UpdateProfile(context.Background(), ProfilePatch{Username: &name}); !errors.As(err, &pe) || !errors.Is(err, errRemoteDown) {
		t.Fatalf("expected remote rejection, got %v", err)
	}
	if !reflect.DeepEqual(before, m.Snapshot()) {
		t.Fatalf("snapshot changed after rejected write")
	}
}

func TestRefreshPicksUpVerification(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("new@example.com", "secret1", "newbie", false)
	m, _ := newManager(t, b)

	if err := m.Login(context.Background(), "new@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	b.confirm("new@example.com")

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	snap := m.Snapshot()
	if snap.State != AuthenticatedVerified || !snap.Profile.Verified || !snap.Identity.EmailConfirmed {
		t.Fatalf("expected verified session, got %+v", snap)
	}
	if err := m.Require(FeatureChat); err != nil {
		t.Fatalf("chat gate after verification: %v", err)
	}
}

func TestInitRestoresSessionAndFollowsSignOut(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("fan@example.com", "secret1", "culer", true)
	if _, err := b.SignIn(context.Background(), "fan@example.com", "secret1"); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	m, rec := newManager(t, b)
	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	snap := m.Snapshot()
	if snap.State != AuthenticatedVerified || snap.Profile.Username != "culer" {
		t.Fatalf("session not restored: %+v", snap)
	}

	// The backend dropping the session, e.g. a rejected refresh token.
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()
	b.notify(EventSignedOut, nil)

	if m.Snapshot().Identity != nil {
		t.Fatalf("backend sign out did not clear the session")
	}
	if rec.count(EventLoggedOut) != 1 {
		t.Fatalf("expected signed_out event")
	}
}

func TestInitWithoutSession(t *testing.T) {
	m, rec := newManager(t, newFakeBackend())
	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if m.Snapshot().State != Anonymous || len(rec.events) != 0 {
		t.Fatalf("unexpected state after empty init")
	}
}

func TestRequireAnonymous(t *testing.T) {
	m, _ := newManager(t, newFakeBackend())
	if err := m.Require(FeatureProfile); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSubscribeAndClose(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("fan@example.com", "secret1", "culer", true)
	m := New(b, Options{})

	var calls int
	unsubscribe := m.Subscribe(func(Event) { calls++ })
	if err := m.Login(context.Background(), "fan@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if calls == 0 {
		t.Fatalf("listener not called")
	}

	unsubscribe()
	unsubscribe()
	seen := calls
	if err := m.AddXP(context.Background(), 5); err != nil {
		t.Fatalf("add xp: %v", err)
	}
	if calls != seen {
		t.Fatalf("listener called after unsubscribe")
	}

	m.Close()
	if err := m.Login(context.Background(), "fan@example.com", "secret1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("login after close: %v", err)
	}
	if err := m.UpdateProfile(context.Background(), ProfilePatch{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("update after close: %v", err)
	}
}

func TestStateString(t *testing.T) {
	if AuthenticatedUnverified.String() != "AUTHENTICATED_UNVERIFIED" {
		t.Fatalf("unexpected %s", AuthenticatedUnverified)
	}
	if !AuthenticatedVerified.Authenticated() || Authenticating.Authenticated() {
		t.Fatalf("Authenticated() mismatch")
	}
}

func TestSetPendingEmail(t *testing.T) {
	b := newFakeBackend()
	m, _ := newManager(t, b)

	m.SetPendingEmail("later@example.com")
	if err := m.ResendVerification(context.Background()); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if !reflect.DeepEqual(b.resent, []string{"later@example.com"}) {
		t.Fatalf("resent = %v", b.resent)
	}

	b2, m2, _ := signedUp(t)
	m2.SetPendingEmail("other@example.com")
	if m2.Snapshot().PendingEmail != "" || len(b2.resent) != 0 {
		t.Fatalf("pending email set on a signed-in session")
	}
}
