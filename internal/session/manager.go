package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"fanverse/internal/progression"

	"go.uber.org/zap"
)

const DefaultRequestTimeout = 10 * time.Second

type Options struct {
	Logger *zap.Logger
	// RequestTimeout bounds every backend call. Zero means DefaultRequestTimeout,
	// a negative value disables the bound.
	RequestTimeout time.Duration
}

// Manager owns one session. It is safe for concurrent use.
type Manager struct {
	backend Backend
	log     *zap.Logger
	timeout time.Duration

	// mu guards the fields below it.
	mu          sync.RWMutex
	snap        Snapshot
	epoch       uint64
	closed      bool
	initialized bool
	detach      func()

	// mutate serializes profile writes so concurrent XP awards apply in turn.
	mutate sync.Mutex

	subs listeners
}

func New(backend Backend, opts Options) *Manager {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := opts.RequestTimeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}
	return &Manager{
		backend: backend,
		log:     log.Named("session"),
		timeout: timeout,
	}
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.clone()
}

// Subscribe registers fn for session events. Listeners run synchronously on
// the goroutine that caused the event.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	return m.subs.add(fn)
}

// Init restores a session kept by the backend and follows its auth state
// changes. Calling Init again only retries the restore.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return &AuthError{Op: "init", Err: ErrClosed}
	}
	attach := !m.initialized
	m.initialized = true
	m.mu.Unlock()

	if attach {
		detach := m.backend.OnAuthStateChange(m.onAuthStateChange)
		m.mu.Lock()
		m.detach = detach
		m.mu.Unlock()
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	as, err := m.backend.GetSession(ctx)
	if err != nil {
		return &AuthError{Op: "init", Err: err}
	}
	if as == nil {
		return nil
	}

	epoch, err := m.begin()
	if err != nil {
		return &AuthError{Op: "init", Err: err}
	}
	return m.authenticate(ctx, "init", epoch, as)
}

// Close detaches from the backend and drops all subscribers. Results of
// operations still in flight are discarded.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.epoch++
	detach := m.detach
	m.detach = nil
	m.mu.Unlock()

	if detach != nil {
		detach()
	}
	m.subs.reset()
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	epoch, err := m.begin()
	if err != nil {
		return &AuthError{Op: "login", Err: err}
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	as, err := m.backend.SignIn(ctx, email, password)
	if err != nil {
		m.fail(epoch)
		m.log.Debug("login failed", zap.Error(err))
		return &AuthError{Op: "login", Err: err}
	}
	return m.authenticate(ctx, "login", epoch, as)
}

// Signup registers a new account. When the backend requires email
// confirmation the session stays anonymous and remembers the email for
// ResendVerification.
func (m *Manager) Signup(ctx context.Context, username, email, password string) error {
	epoch, err := m.begin()
	if err != nil {
		return &AuthError{Op: "signup", Err: err}
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	res, err := m.backend.SignUp(ctx, email, password, username)
	if err != nil {
		m.fail(epoch)
		return &AuthError{Op: "signup", Err: err}
	}
	if res.Session != nil {
		return m.authenticate(ctx, "signup", epoch, res.Session)
	}

	m.mu.Lock()
	if m.stale(epoch) {
		m.mu.Unlock()
		return &AuthError{Op: "signup", Err: ErrSuperseded}
	}
	m.snap = Snapshot{State: Anonymous, PendingEmail: email}
	snap := m.snap.clone()
	m.mu.Unlock()

	m.log.Info("signup awaiting email confirmation", zap.String("user_id", res.UserID))
	m.subs.emit(
		Event{Kind: EventChanged, Snapshot: snap},
		Event{Kind: EventVerificationRequired, Snapshot: snap},
	)
	return nil
}

// Logout clears the local session and then signs out remotely. Remote
// failures are logged, never returned.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.epoch++
	wasSet := m.snap.Identity != nil || m.snap.State != Anonymous || m.snap.PendingEmail != ""
	m.snap = Snapshot{State: Anonymous}
	snap := m.snap.clone()
	m.mu.Unlock()

	if wasSet {
		m.subs.emit(
			Event{Kind: EventChanged, Snapshot: snap},
			Event{Kind: EventLoggedOut, Snapshot: snap},
		)
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	if err := m.backend.SignOut(ctx); err != nil {
		m.log.Warn("remote sign out failed", zap.Error(err))
	}
}

func (m *Manager) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	m.mutate.Lock()
	cur, epoch, err := m.current("update_profile")
	if err != nil {
		m.mutate.Unlock()
		return err
	}
	_, snap, err := m.writeProfile(ctx, "update_profile", epoch, cur.Identity.UserID, patch)
	m.mutate.Unlock()
	if err != nil {
		return err
	}

	m.subs.emit(Event{Kind: EventChanged, Snapshot: snap})
	return nil
}

// AddXP adds amount to the fan's XP and recomputes their level. It does
// nothing for anonymous sessions.
func (m *Manager) AddXP(ctx context.Context, amount int) error {
	m.mutate.Lock()

	cur, epoch, err := m.current("add_xp")
	if err != nil {
		m.mutate.Unlock()
		if errors.Is(err, ErrNotAuthenticated) {
			return nil
		}
		return err
	}
	if amount < 0 {
		m.mutate.Unlock()
		return &ProfileError{Op: "add_xp", Err: ErrNegativeXP}
	}
	if amount > math.MaxInt-cur.Profile.XP {
		m.mutate.Unlock()
		return &ProfileError{Op: "add_xp", Err: ErrXPOverflow}
	}

	oldLevel := cur.Profile.FanLevel
	xp := cur.Profile.XP + amount
	level := progression.LevelForXP(xp)

	updated, snap, err := m.writeProfile(ctx, "add_xp", epoch, cur.Identity.UserID, ProfilePatch{XP: &xp, FanLevel: &level})
	m.mutate.Unlock()
	if err != nil {
		return err
	}

	events := []Event{{Kind: EventChanged, Snapshot: snap}}
	if updated.FanLevel > oldLevel {
		m.log.Info("level up", zap.Int("from", oldLevel), zap.Int("to", updated.FanLevel))
		events = append(events, Event{
			Kind:     EventLevelUp,
			Snapshot: snap,
			OldLevel: oldLevel,
			NewLevel: updated.FanLevel,
		})
	}
	m.subs.emit(events...)
	return nil
}

// Award grants the XP reward of a named activity.
func (m *Manager) Award(ctx context.Context, activity progression.Activity) error {
	amount, err := progression.Reward(activity)
	if err != nil {
		return &ProfileError{Op: "award", Err: err}
	}
	return m.AddXP(ctx, amount)
}

// Refresh reloads the profile from the backend, picking up a verification
// that happened elsewhere.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mutate.Lock()
	snap, err := m.reload(ctx)
	m.mutate.Unlock()
	if err != nil {
		return err
	}

	m.subs.emit(Event{Kind: EventChanged, Snapshot: snap})
	return nil
}

func (m *Manager) reload(ctx context.Context) (Snapshot, error) {
	cur, epoch, err := m.current("refresh")
	if err != nil {
		return Snapshot{}, err
	}
	userID := cur.Identity.UserID

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	p, err := m.backend.GetProfile(ctx, userID)
	if err != nil {
		return Snapshot{}, &ProfileError{Op: "refresh", Err: err}
	}
	_, snap, err := m.applyProfile("refresh", epoch, userID, p)
	return snap, err
}

// SetPendingEmail records the address of an account that signed up earlier
// and still awaits confirmation. It has no effect on a signed-in session.
func (m *Manager) SetPendingEmail(email string) {
	m.mu.Lock()
	if m.snap.State != Anonymous || m.snap.Identity != nil {
		m.mu.Unlock()
		return
	}
	m.snap.PendingEmail = email
	m.mu.Unlock()
}

// ResendVerification asks the backend to send another confirmation email to
// the pending signup address or the signed-in unverified account.
func (m *Manager) ResendVerification(ctx context.Context) error {
	snap := m.Snapshot()

	email := snap.PendingEmail
	if email == "" && snap.Identity != nil {
		if snap.State == AuthenticatedVerified {
			return &VerificationError{Op: "resend", Err: ErrAlreadyVerified}
		}
		email = snap.Identity.Email
	}
	if email == "" {
		return &VerificationError{Op: "resend", Err: ErrNoEmail}
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if err := m.backend.ResendConfirmation(ctx, email); err != nil {
		return &VerificationError{Op: "resend", Err: err}
	}
	return nil
}

// Require gates a feature on the session state.
func (m *Manager) Require(f Feature) error {
	snap := m.Snapshot()
	if !snap.State.Authenticated() {
		return ErrNotAuthenticated
	}
	if f.verifiedOnly() && snap.State != AuthenticatedVerified {
		return ErrVerificationRequired
	}
	return nil
}

// begin moves the session into AUTHENTICATING and returns the epoch that
// the operation's result must still match.
func (m *Manager) begin() (uint64, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, ErrClosed
	}
	m.epoch++
	epoch := m.epoch
	m.snap = Snapshot{State: Authenticating, PendingEmail: m.snap.PendingEmail}
	snap := m.snap.clone()
	m.mu.Unlock()

	m.subs.emit(Event{Kind: EventChanged, Snapshot: snap})
	return epoch, nil
}

// fail returns an AUTHENTICATING session to ANONYMOUS unless something else
// has taken over since epoch. It reports whether the session was reverted.
func (m *Manager) fail(epoch uint64) bool {
	m.mu.Lock()
	if m.stale(epoch) || m.snap.State != Authenticating {
		m.mu.Unlock()
		return false
	}
	m.snap.State = Anonymous
	snap := m.snap.clone()
	m.mu.Unlock()

	m.subs.emit(Event{Kind: EventChanged, Snapshot: snap})
	return true
}

func (m *Manager) authenticate(ctx context.Context, op string, epoch uint64, as *AuthSession) error {
	p, err := m.backend.GetProfile(ctx, as.UserID)
	if err != nil {
		// A restore keeps the stored session so a later run can retry.
		if m.fail(epoch) && op != "init" {
			m.signOutQuietly()
		}
		return &AuthError{Op: op, Err: err}
	}

	verified := as.EmailConfirmed || p.Verified
	prof := *p
	prof.Verified = verified
	state := AuthenticatedUnverified
	if verified {
		state = AuthenticatedVerified
	}

	m.mu.Lock()
	if m.stale(epoch) {
		idle := m.snap.State == Anonymous && m.snap.Identity == nil
		m.mu.Unlock()
		m.log.Debug("discarding stale authentication", zap.String("op", op))
		if idle {
			m.signOutQuietly()
		}
		return &AuthError{Op: op, Err: ErrSuperseded}
	}
	m.snap = Snapshot{
		State:    state,
		Identity: &Identity{UserID: as.UserID, Email: as.Email, EmailConfirmed: verified},
		Profile:  &prof,
	}
	snap := m.snap.clone()
	m.mu.Unlock()

	m.log.Info("authenticated", zap.String("op", op), zap.String("user_id", as.UserID), zap.Stringer("state", state))
	events := []Event{{Kind: EventChanged, Snapshot: snap}}
	if !verified {
		events = append(events, Event{Kind: EventVerificationRequired, Snapshot: snap})
	}
	m.subs.emit(events...)
	return nil
}

// current returns the session and its epoch, failing with a *ProfileError
// when the manager is closed or anonymous.
func (m *Manager) current(op string) (Snapshot, uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Snapshot{}, 0, &ProfileError{Op: op, Err: ErrClosed}
	}
	if m.snap.Identity == nil {
		return Snapshot{}, 0, &ProfileError{Op: op, Err: ErrNotAuthenticated}
	}
	return m.snap.clone(), m.epoch, nil
}

// writeProfile sends patch to the backend and applies the returned record.
// The caller holds m.mutate and emits the change once it is released.
func (m *Manager) writeProfile(ctx context.Context, op string, epoch uint64, userID string, patch ProfilePatch) (*Profile, Snapshot, error) {
	if err := patch.validate(); err != nil {
		return nil, Snapshot{}, &ProfileError{Op: op, Err: err}
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	p, err := m.backend.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, Snapshot{}, &ProfileError{Op: op, Err: err}
	}
	return m.applyProfile(op, epoch, userID, p)
}

func (m *Manager) applyProfile(op string, epoch uint64, userID string, p *Profile) (*Profile, Snapshot, error) {
	m.mu.Lock()
	if m.stale(epoch) || m.snap.Identity == nil || m.snap.Identity.UserID != userID {
		m.mu.Unlock()
		return nil, Snapshot{}, &ProfileError{Op: op, Err: ErrSuperseded}
	}
	prof := *p
	prof.Verified = prof.Verified || m.snap.Identity.EmailConfirmed
	if prof.Verified {
		m.snap.Identity.EmailConfirmed = true
		m.snap.State = AuthenticatedVerified
	}
	m.snap.Profile = &prof
	snap := m.snap.clone()
	m.mu.Unlock()

	return &prof, snap, nil
}

func (m *Manager) onAuthStateChange(event AuthEvent, as *AuthSession) {
	switch event {
	case EventSignedOut:
		m.mu.Lock()
		if m.snap.Identity == nil {
			m.mu.Unlock()
			return
		}
		m.epoch++
		m.snap = Snapshot{State: Anonymous}
		snap := m.snap.clone()
		m.mu.Unlock()

		m.log.Info("backend signed out, clearing session")
		m.subs.emit(
			Event{Kind: EventChanged, Snapshot: snap},
			Event{Kind: EventLoggedOut, Snapshot: snap},
		)

	case EventTokenRefreshed:
		if as == nil || !as.EmailConfirmed {
			return
		}
		m.mu.Lock()
		id := m.snap.Identity
		if id == nil || id.UserID != as.UserID || m.snap.State != AuthenticatedUnverified {
			m.mu.Unlock()
			return
		}
		m.snap.Identity.EmailConfirmed = true
		m.snap.Profile.Verified = true
		m.snap.State = AuthenticatedVerified
		snap := m.snap.clone()
		m.mu.Unlock()

		m.subs.emit(Event{Kind: EventChanged, Snapshot: snap})
	}
}

// stale reports whether the session changed since epoch. m.mu must be held.
func (m *Manager) stale(epoch uint64) bool {
	return m.closed || m.epoch != epoch
}

func (m *Manager) signOutQuietly() {
	ctx, cancel := m.withTimeout(context.Background())
	defer cancel()
	if err := m.backend.SignOut(ctx); err != nil {
		m.log.Debug("sign out after failed authentication", zap.Error(err))
	}
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout < 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}
