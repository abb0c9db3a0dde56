package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/ldapsession/pkg/dirclient"
	"github.com/aussiebroadwan/ldapsession/pkg/idx"
	"github.com/aussiebroadwan/ldapsession/pkg/securestore"
	"github.com/aussiebroadwan/ldapsession/pkg/slogx"
)

// CredentialClient is the credential server surface the manager needs.
// *dirclient.Client satisfies it.
type CredentialClient interface {
	Login(ctx context.Context, username, password string) (*dirclient.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*dirclient.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
}

// The sweep and the forced-recovery path deliberately react differently to a
// failed refresh: the sweep keeps the stale record for a later retry, while
// recovery removes a session that already failed an authenticated request.
const (
	policyTolerant    = "tolerant"
	policyDestructive = "destructive"
)

// Manager is the session lifecycle state machine: interactive login with
// bounded retries, periodic and on-demand refresh behind a reentrancy guard,
// removal with best-effort remote logout, and recovery after a rejected
// request. All state lives in the record store; the manager itself only
// holds the sweep timer and the in-progress flag.
type Manager struct {
	cfg      Config
	client   CredentialClient
	store    *RecordStore
	notifier *Notifier
	prompter Prompter
	logger   *slog.Logger

	// sweeping is per-manager so concurrent manager instances (tests) do
	// not share guard state.
	sweeping atomic.Bool

	stopCh chan struct{}
	doneCh chan struct{}

	disposeOnce sync.Once
	mu          sync.Mutex
	disposables []func()
}

// NewManager wires the manager and starts the background refresh timer.
// Call Dispose to stop it.
func NewManager(
	cfg Config,
	client CredentialClient,
	backend securestore.Backend,
	prompter Prompter,
	logger *slog.Logger,
) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		cfg:      cfg.withDefaults(),
		client:   client,
		store:    NewRecordStore(backend),
		notifier: NewNotifier(),
		prompter: prompter,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	go m.run()
	return m
}

// Notifier returns the lifecycle event channel for the host to subscribe to.
func (m *Manager) Notifier() *Notifier { return m.notifier }

// AddDisposable registers a host resource to release during Dispose.
func (m *Manager) AddDisposable(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposables = append(m.disposables, fn)
}

// Dispose cancels the periodic timer and releases registered host resources.
// In-flight sweeps are not aborted, only never rescheduled. Idempotent.
func (m *Manager) Dispose() {
	m.disposeOnce.Do(func() {
		close(m.stopCh)
		<-m.doneCh

		m.mu.Lock()
		disposables := m.disposables
		m.disposables = nil
		m.mu.Unlock()

		for _, fn := range disposables {
			fn()
		}

		m.logger.Info("session manager disposed")
	})
}

// run drives the periodic refresh sweep. Sweep failures are logged and never
// stop the timer.
func (m *Manager) run() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx := slogx.WithContext(context.Background(), m.logger)
			if err := m.RefreshSessions(ctx); err != nil {
				m.logger.Error("refresh sweep failed", "error", err)
			}
		case <-m.stopCh:
			return
		}
	}
}

// CreateSession performs interactive login with up to the configured number
// of attempts. Empty prompt input aborts immediately: it signals user
// cancellation, and looping on it would trap the user in a prompt cycle.
// Rejected credentials and an unreachable server warn and re-prompt until
// the attempt cap, then fail with ErrMaxAttempts.
//
// The new record is persisted as the sole stored entry (single-account
// model) and returned without an added event; the host registry surfaces the
// returned session itself.
func (m *Manager) CreateSession(ctx context.Context, scopes []string) (*Record, error) {
	op := idx.New()
	ctx = slogx.WithOpID(slogx.WithContext(ctx, m.logger), op.String())
	log := slogx.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= m.cfg.MaxLoginAttempts; attempt++ {
		username, err := m.prompter.Username(ctx)
		if err != nil {
			return nil, fmt.Errorf("session: username prompt: %w", err)
		}
		if strings.TrimSpace(username) == "" {
			return nil, ErrMissingUsername
		}

		password, err := m.prompter.Password(ctx)
		if err != nil {
			return nil, fmt.Errorf("session: password prompt: %w", err)
		}
		if password == "" {
			return nil, ErrMissingPassword
		}

		result, err := m.client.Login(ctx, username, password)
		if err == nil {
			record := m.newRecord(username, scopes, result)
			if err := m.store.Save(ctx, []Record{record}); err != nil {
				return nil, err
			}

			log.Info("session created", "session_id", record.ID)
			return &record, nil
		}

		lastErr = err

		var authErr *dirclient.AuthError
		switch {
		case errors.As(err, &authErr):
			log.Warn("login rejected", "attempt", attempt, "detail", authErr.Detail)
			if attempt < m.cfg.MaxLoginAttempts {
				m.prompter.Warn(fmt.Sprintf("Login failed: %s. Please try again.", authErr.Detail))
			}
		default:
			log.Warn("login attempt failed", "attempt", attempt, "error", err)
			if attempt < m.cfg.MaxLoginAttempts {
				m.prompter.Warn("Could not reach the credential server. Please try again.")
			}
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrMaxAttempts, lastErr)
}

func (m *Manager) newRecord(username string, scopes []string, result *dirclient.LoginResult) Record {
	label := result.User.DisplayName
	if label == "" {
		label = username
	}

	return Record{
		ID:           username,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		Account:      Account{ID: username, Label: label},
		Scopes:       scopes,
		ExpiresAt:    m.cfg.Expiry.ExpiresAt(time.Now(), result.Tokens.AccessToken),
	}
}

// RemoveSession deletes the session with the given id. Local removal is
// persisted before the remote logout is attempted, so local consistency
// never depends on remote availability; logout failures are only logged.
// Removing an unknown id is a no-op.
func (m *Manager) RemoveSession(ctx context.Context, id string) error {
	ctx = slogx.WithContext(ctx, m.logger)
	log := slogx.FromContext(ctx)

	records, err := m.loadLenient(ctx)
	if err != nil {
		return err
	}

	found := -1
	for i, rec := range records {
		if rec.ID == id {
			found = i
			break
		}
	}
	if found == -1 {
		return nil
	}

	removed := records[found]
	records = append(records[:found], records[found+1:]...)
	if err := m.store.Save(ctx, records); err != nil {
		return err
	}

	if removed.RefreshToken != "" {
		if err := m.client.Logout(ctx, removed.RefreshToken); err != nil {
			log.Warn("remote logout failed", "session_id", removed.ID, "error", err)
		}
	}

	m.notifier.Emit(Event{ID: idx.New(), Type: EventRemoved, Record: removed})
	log.Info("session removed", "session_id", removed.ID)
	return nil
}

// Sessions returns the stored records, treating a corrupt store as empty.
func (m *Manager) Sessions(ctx context.Context) ([]Record, error) {
	return m.loadLenient(slogx.WithContext(ctx, m.logger))
}

// RefreshSessions is the periodic sweep: every expired record with a refresh
// token is refreshed, failures keep the original record for a later attempt,
// and the whole list is persisted in one write at the end. Overlapping
// invocations are no-ops; the guard protects the sweep against re-entering
// itself while awaiting network I/O, not against unrelated operations.
func (m *Manager) RefreshSessions(ctx context.Context) error {
	if !m.sweeping.CompareAndSwap(false, true) {
		return nil
	}
	defer m.sweeping.Store(false)

	op := idx.New()
	ctx = slogx.WithOpID(slogx.WithContext(ctx, m.logger), op.String())
	log := slogx.FromContext(ctx)

	records, err := m.loadLenient(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	dirty := false
	var events []Event

	for i := range records {
		rec := records[i]
		if !rec.Expired(now) {
			continue
		}

		if rec.RefreshToken == "" {
			// Unrefreshable; flag it for the UI once instead of failing
			// on every sweep.
			if !rec.LoginNeeded {
				records[i].LoginNeeded = true
				dirty = true
				events = append(events, Event{ID: idx.New(), Type: EventChanged, Record: records[i]})
				log.Warn("session expired without refresh token", "session_id", rec.ID)
			}
			continue
		}

		tokens, err := m.client.Refresh(ctx, rec.RefreshToken)
		if err != nil {
			log.Warn("session refresh failed",
				"session_id", rec.ID, "policy", policyTolerant, "error", err)
			continue
		}

		records[i] = m.refreshedRecord(rec, tokens, time.Now())
		dirty = true
		events = append(events, Event{ID: idx.New(), Type: EventChanged, Record: records[i]})
		log.Info("session refreshed", "session_id", rec.ID)
	}

	if !dirty {
		return nil
	}

	if err := m.store.Save(ctx, records); err != nil {
		return err
	}
	for _, event := range events {
		m.notifier.Emit(event)
	}
	return nil
}

// HandleAuthRejected is the forced recovery path the host invokes after a
// request using the current access token was rejected. It refreshes the
// stored session immediately; if that also fails the session is
// unrecoverable and the store is cleared so a dead session cannot linger.
// The return value tells the host whether recovery succeeded.
func (m *Manager) HandleAuthRejected(ctx context.Context) bool {
	op := idx.New()
	ctx = slogx.WithOpID(slogx.WithContext(ctx, m.logger), op.String())
	log := slogx.FromContext(ctx)

	records, err := m.loadLenient(ctx)
	if err != nil {
		log.Error("recovery aborted, store unreadable", "error", err)
		return false
	}
	if len(records) == 0 {
		return false
	}

	rec := records[0]

	var tokens *dirclient.Tokens
	if rec.RefreshToken != "" {
		tokens, err = m.client.Refresh(ctx, rec.RefreshToken)
	} else {
		err = fmt.Errorf("session %q has no refresh token", rec.ID)
	}

	if err != nil {
		log.Warn("forced refresh failed, dropping session",
			"session_id", rec.ID, "policy", policyDestructive, "error", err)

		if err := m.store.Save(ctx, nil); err != nil {
			log.Error("failed to clear session store", "error", err)
			return false
		}
		m.notifier.Emit(Event{ID: idx.New(), Type: EventRemoved, Record: rec})
		return false
	}

	records[0] = m.refreshedRecord(rec, tokens, time.Now())
	if err := m.store.Save(ctx, records); err != nil {
		log.Error("failed to persist recovered session", "error", err)
		return false
	}

	m.notifier.Emit(Event{ID: idx.New(), Type: EventChanged, Record: records[0]})
	log.Info("session recovered", "session_id", rec.ID)
	return true
}

// refreshedRecord applies a fresh token envelope to a record. The old
// refresh token is kept when the server omitted a new one.
func (m *Manager) refreshedRecord(rec Record, tokens *dirclient.Tokens, now time.Time) Record {
	rec.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		rec.RefreshToken = tokens.RefreshToken
	}
	rec.ExpiresAt = m.cfg.Expiry.ExpiresAt(now, tokens.AccessToken)
	rec.LoginNeeded = false
	return rec
}

// loadLenient loads the stored records, treating corrupt data as an empty
// list. Backend failures are still returned.
func (m *Manager) loadLenient(ctx context.Context) ([]Record, error) {
	records, err := m.store.Load(ctx)
	if errors.Is(err, ErrCorrupt) {
		slogx.FromContext(ctx).Warn("session store corrupt, treating as empty", "error", err)
		return nil, nil
	}
	return records, err
}
