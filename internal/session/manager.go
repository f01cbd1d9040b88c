package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/notify"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/logger"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/metrics"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/storage"
)

const (
	opSignIn  = "sign_in"
	opSignUp  = "sign_up"
	opSignOut = "sign_out"

	MessageInvalidCredentials = "Invalid credentials"
	MessageSignUpFailed       = "Failed to create account"
	MessageAuthInProgress     = "authentication already in progress"
	MessageSaveFailed         = "Failed to save session"
	MessageClearFailed        = "Failed to clear saved session"
	MessageRestoreFailed      = "Saved session could not be restored"
)

// ErrAuthInProgress is returned when a sign-in or sign-up overlaps another one.
var ErrAuthInProgress = pkgerrors.New(pkgerrors.CodeConflict, MessageAuthInProgress)

// Observer is called synchronously after every identity change.
type Observer func(ctx context.Context, t Transition)

// Options wires the manager's collaborators.
type Options struct {
	Store             storage.Store
	Keys              storage.Keys
	CartScope         enums.CartScope
	Verifier          CredentialVerifier
	Notifier          notify.Sink
	Logger            *logger.Logger
	Metrics           *metrics.StoreMetrics
	MinPasswordLength int
	NewID             func() string
}

// Manager owns the current identity and its persisted copy.
type Manager struct {
	store       storage.Store
	keys        storage.Keys
	scope       enums.CartScope
	verifier    CredentialVerifier
	notifier    notify.Sink
	logg        *logger.Logger
	metrics     *metrics.StoreMetrics
	validate    *validator.Validate
	minPassword int
	newID       func() string

	// transitionMu orders apply, persist and publish across identity changes.
	transitionMu sync.Mutex

	mu        sync.Mutex
	user      *User
	loading   bool
	inFlight  bool
	observers []Observer
}

// NewManager builds a session manager and restores any persisted identity.
func NewManager(ctx context.Context, opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if opts.Verifier == nil {
		return nil, fmt.Errorf("credential verifier required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if !opts.CartScope.IsValid() {
		opts.CartScope = enums.CartScopeShared
	}
	m := &Manager{
		store:       opts.Store,
		keys:        opts.Keys,
		scope:       opts.CartScope,
		verifier:    opts.Verifier,
		notifier:    notify.OrNop(opts.Notifier),
		logg:        opts.Logger,
		metrics:     opts.Metrics,
		validate:    validator.New(),
		minPassword: opts.MinPasswordLength,
		newID:       opts.NewID,
	}
	m.user = m.restore(ctx)
	return m, nil
}

func (m *Manager) restore(ctx context.Context) *User {
	ctx = m.logg.WithOperation(ctx, "restore_session")
	raw, err := m.store.Get(ctx, m.keys.User())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		m.metrics.IncPersistenceFailure("identity")
		m.logg.WarnErr(ctx, "failed to read persisted identity", err)
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodePersistence, MessageRestoreFailed))
		return nil
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		if err == nil {
			err = errors.New("identity record has no id")
		}
		m.logg.WarnErr(ctx, "discarding corrupt identity record", err)
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodePersistence, MessageRestoreFailed))
		return nil
	}
	m.logg.Debug(m.logg.WithUserID(ctx, user.ID), "session restored")
	return &user
}

// Current returns a snapshot of the session.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{User: m.user.clone(), Loading: m.loading}
}

// User returns a copy of the signed-in identity, or nil.
func (m *Manager) User() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user.clone()
}

// Loading reports whether a sign-in or sign-up is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Subscribe registers fn for every subsequent identity change.
func (m *Manager) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	m.transitionMu.Lock()
	defer m.transitionMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

type authOp struct {
	name        string
	failMessage string
	success     func(email string) string
	verify      func(ctx context.Context, creds Credentials) error
}

// SignIn checks the credentials and, on success, starts a session under a fresh identity.
func (m *Manager) SignIn(ctx context.Context, email, password string) (State, error) {
	return m.authenticate(ctx, authOp{
		name:        opSignIn,
		failMessage: MessageInvalidCredentials,
		success:     func(email string) string { return "Welcome back, " + email },
		verify:      m.verifier.VerifySignIn,
	}, email, password)
}

// SignUp creates an account and starts a session for it.
func (m *Manager) SignUp(ctx context.Context, email, password string) (State, error) {
	return m.authenticate(ctx, authOp{
		name:        opSignUp,
		failMessage: MessageSignUpFailed,
		success:     func(string) string { return "Account created successfully!" },
		verify:      m.verifier.VerifySignUp,
	}, email, password)
}

func (m *Manager) authenticate(ctx context.Context, op authOp, email, password string) (State, error) {
	ctx = m.logg.WithOperation(ctx, op.name)
	creds := Credentials{Email: strings.TrimSpace(email), Password: password}

	if !m.begin() {
		m.logg.Warn(ctx, "rejected overlapping authentication")
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodeConflict, MessageAuthInProgress))
		return m.Current(), ErrAuthInProgress
	}

	started := time.Now()
	err := m.checkCredentials(creds)
	if err == nil {
		err = op.verify(ctx, creds)
	}
	m.metrics.ObserveAuth(op.name, err == nil, time.Since(started))

	if err != nil {
		m.end()
		m.logg.WarnErr(ctx, "authentication failed", err)
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodeAuth, op.failMessage))
		return m.Current(), pkgerrors.Wrap(pkgerrors.CodeAuth, err, op.failMessage)
	}

	user := &User{ID: m.newID(), Email: creds.Email}
	m.apply(ctx, user)
	m.logg.Info(m.logg.WithUserID(ctx, user.ID), "session started")
	m.notifier.Notify(ctx, notify.Success(op.success(user.Email)))
	return m.Current(), nil
}

func (m *Manager) checkCredentials(creds Credentials) error {
	if err := m.validate.Struct(creds); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid credentials input")
	}
	if utf8.RuneCountInString(creds.Password) < m.minPassword {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", m.minPassword))
	}
	return nil
}

func (m *Manager) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return false
	}
	m.inFlight = true
	m.loading = true
	return true
}

func (m *Manager) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	m.loading = false
}

// apply swaps in next, persists it and notifies observers.
func (m *Manager) apply(ctx context.Context, next *User) {
	m.transitionMu.Lock()
	defer m.transitionMu.Unlock()

	m.mu.Lock()
	previous := m.user
	m.user = next
	m.inFlight = false
	m.loading = false
	m.mu.Unlock()

	m.persist(ctx, next)
	m.publish(ctx, Transition{Previous: previous.clone(), Current: next.clone()})
}

func (m *Manager) persist(ctx context.Context, user *User) {
	payload, err := json.Marshal(user)
	if err == nil {
		err = m.store.Set(ctx, m.keys.User(), string(payload))
	}
	if err != nil {
		m.metrics.IncPersistenceFailure("identity")
		m.logg.Error(ctx, "failed to persist identity", err)
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodePersistence, MessageSaveFailed))
	}
}

func (m *Manager) publish(ctx context.Context, t Transition) {
	m.mu.Lock()
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(ctx, t)
	}
}

// SignOut ends the session and purges the persisted identity and cart.
// Storage failures are reported through the notifier; the returned error is always nil.
func (m *Manager) SignOut(ctx context.Context) error {
	ctx = m.logg.WithOperation(ctx, opSignOut)

	m.transitionMu.Lock()
	defer m.transitionMu.Unlock()

	m.mu.Lock()
	previous := m.user
	m.user = nil
	m.mu.Unlock()

	// Observers must drop the identity before its keys are deleted.
	if previous != nil {
		m.publish(ctx, Transition{Previous: previous.clone()})
	}

	keys := []string{m.keys.User(), m.keys.Cart()}
	if previous != nil && m.scope == enums.CartScopeIdentity {
		keys = append(keys, m.keys.UserCart(previous.ID))
	}
	if err := m.store.Del(ctx, keys...); err != nil {
		m.metrics.IncPersistenceFailure("identity")
		m.logg.Error(ctx, "failed to purge persisted session", err)
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodePersistence, MessageClearFailed))
	}

	if previous == nil {
		return nil
	}
	m.logg.Info(m.logg.WithUserID(ctx, previous.ID), "session ended")
	m.notifier.Notify(ctx, notify.Success("Signed out successfully"))
	return nil
}
