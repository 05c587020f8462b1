// Package session implements the client-side session lifecycle: rehydration
// from the shared store, inactivity tracking, token-expiration and
// session-status verification, and the single logout funnel every trigger
// goes through.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fga-eps-mds/capju-session-go/internal/config"
	"github.com/fga-eps-mds/capju-session-go/internal/models"
	"github.com/fga-eps-mds/capju-session-go/internal/store"
	"github.com/fga-eps-mds/capju-session-go/internal/tokens"
)

// ErrNotAuthenticated is returned by facade operations that need a session.
var ErrNotAuthenticated = errors.New("autenticação inválida")

// Collaborators are the pluggable surfaces around the manager. Zero-value
// fields get no-op defaults (and the wall clock).
type Collaborators struct {
	Clock    Clock
	Notifier Notifier
	Warning  WarningPresenter
	Reloader Reloader
	Activity ActivitySource
}

// Manager owns the session state of one running agent. All timers live in
// its registry; no other component starts or stops them.
type Manager struct {
	cfg     config.SessionConfig
	backend Backend
	store   store.Store
	clock   Clock
	timers  *timerSet

	notifier Notifier
	warning  WarningPresenter
	reloader Reloader
	activity ActivitySource

	mu              sync.Mutex
	user            *models.User
	logoutInFlight  bool
	reloadScheduled bool
	unsubscribe     func()
}

// New builds a manager. Call Start to rehydrate and arm the timers.
func New(cfg config.SessionConfig, backend Backend, st store.Store, c Collaborators) *Manager {
	if c.Clock == nil {
		c.Clock = NewClock()
	}
	if c.Notifier == nil {
		c.Notifier = NopNotifier{}
	}
	if c.Warning == nil {
		c.Warning = NopWarning{}
	}
	m := &Manager{
		cfg:      cfg,
		backend:  backend,
		store:    st,
		clock:    c.Clock,
		timers:   newTimerSet(c.Clock),
		notifier: c.Notifier,
		warning:  c.Warning,
		reloader: c.Reloader,
		activity: c.Activity,
	}
	return m
}

// Start rehydrates the session from the shared store and, when a user is
// present, arms the full timer set exactly once.
func (m *Manager) Start(ctx context.Context) {
	m.RevalidateFromStorage(ctx)
	if m.IsAuthenticated() {
		m.armTimers()
	}
}

// Stop tears down timers and the activity subscription without ending the
// session remotely. Used on agent shutdown.
func (m *Manager) Stop() {
	m.timers.cancelAll()
	m.detachActivity()
	m.warning.Hide()
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}

// CurrentUser returns the decoded user snapshot, or nil without a session.
func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Login authenticates, persists the returned token and arms the timer set.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	tok, err := m.backend.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, store.KeyToken, tok); err != nil {
		return nil, err
	}
	claims, err := tokens.Decode(tok)
	if err != nil {
		_ = m.store.Remove(ctx, store.KeyToken)
		return nil, errors.New("login retornou um token indecifrável")
	}
	m.mu.Lock()
	u := claims.User
	m.user = &u
	m.reloadScheduled = false
	m.mu.Unlock()
	m.armTimers()
	return m.CurrentUser(), nil
}

// Logout ends the session on the user's initiative.
func (m *Manager) Logout(ctx context.Context, reason LogoutReason) error {
	return m.logout(ctx, reason, nil)
}

// FetchEnrichedProfile returns the current user with the flattened
// permission list, or an authentication error without a session.
func (m *Manager) FetchEnrichedProfile(ctx context.Context) (*models.Profile, error) {
	u := m.CurrentUser()
	if u == nil {
		m.clearLocal(ctx)
		return nil, ErrNotAuthenticated
	}
	return &models.Profile{User: *u, AllowedActions: u.Role.AllowedActions}, nil
}

// RevalidateFromStorage re-derives the user snapshot from the persisted
// token. A missing or malformed token means no session.
func (m *Manager) RevalidateFromStorage(ctx context.Context) {
	claims, ok := m.decodeFromStore(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	if !ok {
		m.user = nil
		return
	}
	u := claims.User
	m.user = &u
}

// RecordActivity feeds a user-interaction event into the inactivity monitor.
// Sources wired through Collaborators.Activity call this via subscription;
// embedders without one may call it directly.
func (m *Manager) RecordActivity() {
	m.onActivity()
}

// --- timer wiring ---

func (m *Manager) armTimers() {
	m.timers.cancelAll()

	m.timers.armInterval(timerExpirationCheck, m.cfg.ExpirationCheckEvery, func() {
		m.checkExpiration(context.Background())
	})
	m.timers.armInterval(timerStatusFlagSet, m.cfg.StatusFlagSetEvery, func() {
		_ = m.store.Set(context.Background(), store.KeyCheckSessionFlag, "true")
	})
	m.timers.armInterval(timerStatusFlagPoll, m.cfg.StatusFlagPollEvery, func() {
		m.consumeStatusFlag(context.Background())
	})
	m.timers.armInterval(timerPresencePoll, m.cfg.PresencePollEvery, func() {
		m.checkTokenPresence(context.Background())
	})

	if m.activity != nil {
		cancel := m.activity.Subscribe(m.onActivity)
		m.mu.Lock()
		m.unsubscribe = cancel
		m.mu.Unlock()
	}
	// session start counts as activity: the idle countdown begins now
	m.armInactivityWarning()
}

func (m *Manager) onActivity() {
	m.warning.Hide()
	m.timers.cancel(timerInactivityWarning)
	m.timers.cancel(timerInactivityLogout)
	m.armInactivityWarning()
}

func (m *Manager) armInactivityWarning() {
	m.timers.arm(timerInactivityWarning, m.cfg.InactivityWait, func() {
		m.warning.Show(m.cfg.WarningCountdown)
		m.timers.arm(timerInactivityLogout, m.cfg.WarningCountdown, m.inactivityLogout)
	})
}

func (m *Manager) inactivityLogout() {
	_ = m.logout(context.Background(), ReasonInactivity, func() {
		m.notifier.Notify(Notification{
			ID:          "session-expired",
			Description: "Sessão encerrada por inatividade.",
			Status:      "error",
			Closable:    true,
		})
	})
	// teardown happens regardless of the sign-out outcome
	m.warning.Hide()
	m.detachActivity()
	m.timers.cancelAll()
}

// --- verification ---

// checkExpiration compares the current time against the token's expiration
// minus the leeway and, once reached, ends the session server-side.
// Single-shot on failure: the next interval tick retries naturally.
func (m *Manager) checkExpiration(ctx context.Context) {
	claims, ok := m.decodeFromStore(ctx)
	if !ok {
		return
	}
	exp := claims.ExpiresAtTime()
	if exp.IsZero() || m.clock.Now().Before(exp.Add(-m.cfg.ExpirationLeeway)) {
		return
	}
	issued := claims.User.SessionID

	m.mu.Lock()
	if m.logoutInFlight {
		m.mu.Unlock()
		return
	}
	m.logoutInFlight = true
	m.mu.Unlock()

	err := m.backend.SignOutExpiredSession(ctx)

	m.mu.Lock()
	m.logoutInFlight = false
	m.mu.Unlock()

	if m.sessionChanged(ctx, issued) {
		// a newer login replaced the token while the call was in flight
		return
	}
	if err != nil {
		m.notifier.Notify(Notification{
			ID:          "logout-user-error",
			Description: "Erro ao realizar logout",
			Status:      "error",
			Closable:    true,
		})
		return
	}
	m.finishLogout(ctx, func() {
		m.notifier.Notify(Notification{
			ID:          "token-expired",
			Description: "Token expirado. Realize o login novamente.",
			Status:      "error",
			Closable:    true,
		})
	}, m.cfg.ReloadAfterLogout)
}

// checkSessionStatus asks the server whether this session is still active.
// Verification failures fail open: the session is preserved and the user is
// only notified.
func (m *Manager) checkSessionStatus(ctx context.Context) {
	claims, ok := m.decodeFromStore(ctx)
	if !ok {
		return
	}
	sid := claims.User.SessionID
	if sid == "" {
		return
	}

	st, err := m.backend.CheckSessionStatus(ctx, sid)

	if m.sessionChanged(ctx, sid) {
		return
	}
	if err != nil {
		desc := err.Error()
		if desc == "" {
			desc = "Erro ao verificar status da sessão"
		}
		m.notifier.Notify(Notification{
			ID:          uuid.NewString(),
			Description: desc,
			Status:      "error",
			Closable:    true,
		})
		return
	}
	if st.Active {
		return
	}

	msg := st.Message
	if msg == "" {
		msg = "Sessão encerrada"
	}
	m.clearLocal(ctx)
	m.timers.cancelAll()
	m.detachActivity()
	m.warning.Hide()
	m.notifier.Notify(Notification{
		ID:          "token-expired",
		Description: msg,
		Status:      "error",
		Closable:    true,
	})
	m.scheduleReload(m.cfg.ReloadAfterRemoteEnd)
}

// consumeStatusFlag runs at fine granularity but only acts when the
// per-minute flag is present, so the expensive checks hit the network at
// most once per minute.
func (m *Manager) consumeStatusFlag(ctx context.Context) {
	v, err := m.store.Get(ctx, store.KeyCheckSessionFlag)
	if err != nil || v == "" {
		return
	}
	_ = m.store.Remove(ctx, store.KeyCheckSessionFlag)
	m.checkExpiration(ctx)
	m.checkSessionStatus(ctx)
}

// checkTokenPresence is the cheap cross-process consistency poll: when the
// token vanishes from the shared store (another agent logged out), clear
// local state and restart without any sign-out call.
func (m *Manager) checkTokenPresence(ctx context.Context) {
	raw, err := m.store.Get(ctx, store.KeyToken)
	if err != nil || raw != "" {
		return
	}
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
	_ = m.store.Remove(ctx, store.KeyCheckSessionFlag)
	m.timers.cancelAll()
	m.detachActivity()
	m.warning.Hide()
	m.reloadNow()
}

// --- logout funnel ---

// logout is the single path every trigger funnels through. The in-flight
// flag collapses concurrent triggers into one remote call, one cleanup and
// one reload.
func (m *Manager) logout(ctx context.Context, reason LogoutReason, onComplete func()) error {
	m.mu.Lock()
	if m.logoutInFlight || m.user == nil {
		m.mu.Unlock()
		return nil
	}
	m.logoutInFlight = true
	m.mu.Unlock()

	err := m.backend.SignOut(ctx, string(reason))

	m.mu.Lock()
	m.logoutInFlight = false
	m.mu.Unlock()

	if err != nil {
		// session deliberately preserved so the user may retry
		m.notifier.Notify(Notification{
			ID:          "logout-user-error",
			Description: "Erro ao realizar logout",
			Status:      "error",
			Closable:    true,
		})
		return err
	}
	m.finishLogout(ctx, onComplete, m.cfg.ReloadAfterLogout)
	return nil
}

// finishLogout performs the idempotent local cleanup shared by every
// successful logout path.
func (m *Manager) finishLogout(ctx context.Context, onComplete func(), reloadDelay time.Duration) {
	m.clearLocal(ctx)
	m.timers.cancelAll()
	m.detachActivity()
	m.warning.Hide()
	if onComplete != nil {
		onComplete()
	}
	m.scheduleReload(reloadDelay)
}

// --- helpers ---

func (m *Manager) decodeFromStore(ctx context.Context) (*tokens.Claims, bool) {
	raw, err := m.store.Get(ctx, store.KeyToken)
	if err != nil || raw == "" {
		return nil, false
	}
	claims, err := tokens.Decode(raw)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// sessionChanged reports whether the persisted session no longer matches the
// one a remote check was issued for.
func (m *Manager) sessionChanged(ctx context.Context, issuedSessionID string) bool {
	claims, ok := m.decodeFromStore(ctx)
	if !ok {
		return issuedSessionID != ""
	}
	return claims.User.SessionID != issuedSessionID
}

func (m *Manager) clearLocal(ctx context.Context) {
	_ = m.store.Remove(ctx, store.KeyToken)
	_ = m.store.Remove(ctx, store.KeyCheckSessionFlag)
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
}

func (m *Manager) detachActivity() {
	m.mu.Lock()
	cancel := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// scheduleReload arms the post-logout reload at most once. The reload lives
// outside the timer registry so cleanup cannot cancel it.
func (m *Manager) scheduleReload(d time.Duration) {
	if m.reloader == nil {
		return
	}
	m.mu.Lock()
	if m.reloadScheduled {
		m.mu.Unlock()
		return
	}
	m.reloadScheduled = true
	m.mu.Unlock()
	m.clock.AfterFunc(d, m.reloader.Reload)
}

func (m *Manager) reloadNow() {
	if m.reloader == nil {
		return
	}
	m.mu.Lock()
	if m.reloadScheduled {
		m.mu.Unlock()
		return
	}
	m.reloadScheduled = true
	m.mu.Unlock()
	m.reloader.Reload()
}
