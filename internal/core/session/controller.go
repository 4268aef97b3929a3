package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/cobros/console-gateway/internal/api/metrics"
	"github.com/cobros/console-gateway/internal/core/domain"
	"github.com/cobros/console-gateway/internal/core/ports"
)

// Cause labels for ended sessions.
const (
	causeExplicit    = "explicit"
	causeInactivity  = "inactivity"
	causeInvalidated = "invalidated"
)

// Controller orchestrates the session lifecycle against the remote auth
// service. It is the sole writer of the Store and the owner of the
// inactivity monitor.
type Controller struct {
	store   *Store
	monitor *Monitor
	auth    ports.AuthService
	cache   ports.CredentialCache
	audit   ports.AuditRecorder
	clock   ports.Clock
	log     zerolog.Logger

	mu       sync.Mutex
	token    string
	restored bool
	pending  *domain.InvalidationNotice
}

// NewController wires the store, a fresh monitor and the collaborators.
// cache and audit may be nil when the corresponding backend is disabled.
func NewController(store *Store, auth ports.AuthService, cache ports.CredentialCache, audit ports.AuditRecorder, clock ports.Clock, total, warn time.Duration, log zerolog.Logger) *Controller {
	c := &Controller{
		store: store,
		auth:  auth,
		cache: cache,
		audit: audit,
		clock: clock,
		log:   log,
	}
	c.monitor = NewMonitor(clock, total, warn, c.onWarning, c.onExpire)
	return c
}

// Login authenticates against the remote service. On success the identity is
// stored atomically, the credential cache is updated best-effort and the
// inactivity monitor is armed. Failures propagate unchanged; interpretation
// is the caller's concern.
func (c *Controller) Login(ctx context.Context, username, password string) (*domain.Identity, error) {
	identity, token, err := c.auth.Login(ctx, username, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	c.mu.Lock()
	c.token = token
	c.pending = nil
	c.mu.Unlock()

	c.store.set(identity)
	c.monitor.Arm()

	if c.cache != nil {
		if err := c.cache.Save(ctx, token, identity); err != nil {
			c.log.Warn().Err(err).Msg("credential cache save failed")
		}
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.SessionActive.Set(1)
	c.record(domain.EventLogin, identity.Username, "")

	c.log.Info().Str("username", identity.Username).Msg("session started")
	return identity, nil
}

// Register forwards the payload to the remote service verbatim. The store is
// never touched: registration does not imply login.
func (c *Controller) Register(ctx context.Context, input ports.RegistrationInput) (*ports.RegistrationResult, error) {
	return c.auth.Register(ctx, input)
}

// Logout ends the session. The remote call is best-effort: local state is
// cleared unconditionally even when the remote service is unreachable.
func (c *Controller) Logout(ctx context.Context) {
	c.endSession(ctx, causeExplicit, "")
}

// Restore loads a persisted session at startup. It must complete before the
// HTTP surface serves protected routes; until then Restored reports false.
// A cached token whose exp claim has passed is discarded. The login endpoint
// is never contacted.
func (c *Controller) Restore(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.restored = true
		c.mu.Unlock()
	}()

	if c.cache == nil {
		return
	}

	token, identity, err := c.cache.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("credential cache load failed")
		return
	}
	if token == "" || identity == nil {
		return
	}
	if expired, err := c.tokenExpired(token); err != nil || expired {
		if err != nil {
			c.log.Warn().Err(err).Msg("discarding unparseable cached token")
		}
		if err := c.cache.Clear(ctx); err != nil {
			c.log.Warn().Err(err).Msg("credential cache clear failed")
		}
		return
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	c.store.set(identity)
	c.monitor.Arm()

	metrics.SessionActive.Set(1)
	c.record(domain.EventRestore, identity.Username, "")
	c.log.Info().Str("username", identity.Username).Msg("session restored")
}

// Restored reports whether startup restoration has completed. Guards render
// a neutral loading state until it has.
func (c *Controller) Restored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restored
}

// Activity resets the inactivity budget. No-op without an identity.
func (c *Controller) Activity() {
	if !c.store.IsAuthenticated() {
		return
	}
	metrics.ActivitySignalsTotal.Inc()
	c.monitor.Activity()
}

// ContinueSession dismisses the inactivity warning and restarts the budget.
func (c *Controller) ContinueSession() {
	c.monitor.Continue()
}

// MonitorState exposes the monitor state for the session status endpoint.
func (c *Controller) MonitorState() MonitorState {
	return c.monitor.State()
}

// MonitorRemaining exposes the warning countdown.
func (c *Controller) MonitorRemaining() time.Duration {
	return c.monitor.Remaining()
}

// Token returns the current session token for upstream calls, or empty.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// PendingInvalidation returns the unacknowledged invalidation notice, if any.
func (c *Controller) PendingInvalidation() *domain.InvalidationNotice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// SessionInvalidated implements ports.Invalidator. The notice is held until
// the operator acknowledges it; signals arriving without a session are
// dropped.
func (c *Controller) SessionInvalidated(reason string) {
	if !c.store.IsAuthenticated() {
		return
	}

	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return
	}
	c.pending = &domain.InvalidationNotice{Reason: reason, At: c.clock.Now()}
	username := usernameOf(c.store.Identity())
	c.mu.Unlock()

	c.record(domain.EventInvalidated, username, reason)
	c.log.Warn().Str("reason", reason).Msg("session invalidated by upstream")
}

// AcknowledgeInvalidation completes the forced-invalidation path: immediate,
// unconditional logout regardless of monitor state. Returns
// domain.ErrNotAuthenticated when there is nothing to acknowledge.
func (c *Controller) AcknowledgeInvalidation(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()
	if pending == nil {
		return domain.ErrNotAuthenticated
	}
	c.endSession(ctx, causeInvalidated, pending.Reason)
	return nil
}

// Shutdown disarms the monitor so no timer callback outlives the process.
func (c *Controller) Shutdown() {
	c.monitor.Disarm()
}

// onWarning runs when the monitor enters the Warning state.
func (c *Controller) onWarning() {
	metrics.InactivityWarningsTotal.Inc()
	c.log.Info().Msg("inactivity warning entered")
}

// onExpire runs when the inactivity budget is exhausted. Same cleanup as an
// explicit logout, no confirmation. This is a designed outcome, not an error.
func (c *Controller) onExpire() {
	c.endSession(context.Background(), causeInactivity, "")
}

// endSession is the single teardown path shared by explicit logout,
// inactivity expiry and acknowledged invalidation. Timers are cancelled
// first so nothing can fire against the cleared state; the remote call and
// the cache clear never block local clearing.
func (c *Controller) endSession(ctx context.Context, cause, detail string) {
	c.monitor.Disarm()

	c.mu.Lock()
	token := c.token
	c.token = ""
	c.pending = nil
	c.mu.Unlock()

	username := usernameOf(c.store.Identity())
	c.store.clear()

	if token != "" && c.auth != nil {
		if err := c.auth.Logout(ctx, token); err != nil {
			c.log.Warn().Err(err).Msg("remote logout failed, local state cleared anyway")
		}
	}
	if c.cache != nil {
		if err := c.cache.Clear(ctx); err != nil {
			c.log.Warn().Err(err).Msg("credential cache clear failed")
		}
	}

	if username != "" {
		metrics.SessionEndedTotal.WithLabelValues(cause).Inc()
		kind := domain.EventLogout
		if cause == causeInactivity {
			kind = domain.EventInactivityExpired
		}
		c.record(kind, username, detail)
	}
	metrics.SessionActive.Set(0)

	c.log.Info().Str("cause", cause).Msg("session ended")
}

func (c *Controller) record(kind domain.SessionEventKind, username, detail string) {
	if c.audit == nil {
		return
	}
	c.audit.Record(domain.SessionEvent{
		Kind:       kind,
		Username:   username,
		Detail:     detail,
		OccurredAt: c.clock.Now(),
	})
}

// tokenExpired checks the exp claim without verifying the signature; the
// gateway holds no signing key, expiry is the only claim it trusts locally.
func (c *Controller) tokenExpired(token string) (bool, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true, fmt.Errorf("parse cached token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true, fmt.Errorf("cached token exp claim: %w", err)
	}
	if exp == nil {
		return false, nil
	}
	return exp.Before(c.clock.Now()), nil
}

func usernameOf(identity *domain.Identity) string {
	if identity == nil {
		return ""
	}
	return identity.Username
}
