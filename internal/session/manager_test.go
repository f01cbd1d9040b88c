package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/notify"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/metrics"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/storage"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = storage.NewKeys("toystore")

type harness struct {
	store    *storagetest.FaultyStore
	recorder *notify.Recorder
	manager  *Manager
}

func newHarness(t *testing.T, verifier CredentialVerifier, mutate ...func(*Options)) *harness {
	t.Helper()
	h := &harness{store: storagetest.NewFaultyStore(), recorder: notify.NewRecorder()}
	h.manager = h.build(t, verifier, mutate...)
	return h
}

func (h *harness) build(t *testing.T, verifier CredentialVerifier, mutate ...func(*Options)) *Manager {
	t.Helper()
	opts := Options{
		Store:     h.store,
		Keys:      keys,
		CartScope: enums.CartScopeShared,
		Verifier:  verifier,
		Notifier:  h.recorder,
		Metrics:   metrics.NewStoreMetrics(prometheus.NewRegistry()),
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	mgr, err := NewManager(context.Background(), opts)
	require.NoError(t, err)
	return mgr
}

// blockingVerifier parks every call until release is closed.
type blockingVerifier struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingVerifier() *blockingVerifier {
	return &blockingVerifier{entered: make(chan struct{}, 4), release: make(chan struct{})}
}

func (b *blockingVerifier) wait(ctx context.Context) error {
	b.entered <- struct{}{}
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingVerifier) VerifySignIn(ctx context.Context, _ Credentials) error { return b.wait(ctx) }
func (b *blockingVerifier) VerifySignUp(ctx context.Context, _ Credentials) error { return b.wait(ctx) }

func TestNewManagerRequiresCollaborators(t *testing.T) {
	_, err := NewManager(context.Background(), Options{Verifier: SimulatedVerifier{}})
	require.Error(t, err)
	_, err = NewManager(context.Background(), Options{Store: storage.NewMemoryStore()})
	require.Error(t, err)
}

func TestSignInPersistsIdentity(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{})
	ctx := context.Background()

	state, err := h.manager.SignIn(ctx, " kid@example.com ", "secret")
	require.NoError(t, err)
	require.NotNil(t, state.User)
	assert.False(t, state.Loading)
	assert.Equal(t, "kid@example.com", state.User.Email)
	_, err = uuid.Parse(state.User.ID)
	assert.NoError(t, err)

	raw, err := h.store.Get(ctx, keys.User())
	require.NoError(t, err)
	var saved User
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	assert.Equal(t, *state.User, saved)

	last, ok := h.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, enums.NotificationLevelSuccess, last.Level)
}

func TestSignInIssuesFreshIdentityEachTime(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{})
	ctx := context.Background()

	first, err := h.manager.SignIn(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	second, err := h.manager.SignUp(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	assert.NotEqual(t, first.User.ID, second.User.ID)
}

func TestRejectedSignInLeavesStateUntouched(t *testing.T) {
	reject := SimulatedVerifier{Reject: func(c Credentials) bool { return c.Password == "wrong" }}
	h := newHarness(t, reject)
	ctx := context.Background()

	state, err := h.manager.SignIn(ctx, "kid@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAuth))
	assert.Equal(t, MessageInvalidCredentials, pkgerrors.As(err).Message())
	assert.Nil(t, state.User)
	assert.False(t, state.Loading)

	_, err = h.store.Get(ctx, keys.User())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	last, _ := h.recorder.Last()
	assert.Equal(t, notify.Failure(pkgerrors.CodeAuth, MessageInvalidCredentials), last)
}

func TestSignUpFailureMessage(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{Reject: func(Credentials) bool { return true }})

	_, err := h.manager.SignUp(context.Background(), "kid@example.com", "pw")
	require.Error(t, err)
	assert.Equal(t, MessageSignUpFailed, pkgerrors.As(err).Message())
	assert.Equal(t, []string{MessageSignUpFailed}, h.recorder.Messages())
}

func TestInvalidInputIsAnAuthError(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{}, func(o *Options) { o.MinPasswordLength = 6 })
	ctx := context.Background()

	cases := map[string][2]string{
		"empty email":    {"", "longenough"},
		"malformed":      {"not-an-email", "longenough"},
		"empty password": {"kid@example.com", ""},
		"short password": {"kid@example.com", "abc"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.manager.SignIn(ctx, input[0], input[1])
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAuth))
			assert.Nil(t, h.manager.User())
		})
	}
}

func TestCancelledDelayIsAnAuthError(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{Delay: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.manager.SignIn(ctx, "kid@example.com", "pw")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAuth))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, h.manager.Loading())
}

func TestOverlappingSignInIsRejected(t *testing.T) {
	verifier := newBlockingVerifier()
	h := newHarness(t, verifier)
	ctx := context.Background()

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = h.manager.SignIn(ctx, "first@example.com", "pw")
	}()
	<-verifier.entered

	assert.True(t, h.manager.Loading())
	assert.True(t, h.manager.Current().Loading)

	_, err := h.manager.SignUp(ctx, "second@example.com", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthInProgress)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	close(verifier.release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, "first@example.com", h.manager.User().Email)
	assert.False(t, h.manager.Loading())
}

func TestSignOutDuringInFlightSignInStillApplies(t *testing.T) {
	verifier := newBlockingVerifier()
	h := newHarness(t, verifier)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := h.manager.SignIn(ctx, "late@example.com", "pw")
		done <- err
	}()
	<-verifier.entered

	require.NoError(t, h.manager.SignOut(ctx))
	assert.Nil(t, h.manager.User())

	close(verifier.release)
	require.NoError(t, <-done)
	assert.Equal(t, "late@example.com", h.manager.User().Email)
}

func TestRestoreFromStorage(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{})
	ctx := context.Background()
	state, err := h.manager.SignIn(ctx, "kid@example.com", "pw")
	require.NoError(t, err)

	restarted := h.build(t, SimulatedVerifier{})
	assert.Equal(t, state.User, restarted.User())
	assert.False(t, restarted.Loading())
}

func TestRestoreFailsOpen(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"corrupt json": "{not json",
		"missing id":   `{"email":"kid@example.com"}`,
	} {
		t.Run(name, func(t *testing.T) {
			h := &harness{store: storagetest.NewFaultyStore(), recorder: notify.NewRecorder()}
			require.NoError(t, h.store.Set(ctx, keys.User(), raw))

			mgr := h.build(t, SimulatedVerifier{})
			assert.Nil(t, mgr.User())
			assert.Equal(t, []string{MessageRestoreFailed}, h.recorder.Messages())
		})
	}

	t.Run("read error", func(t *testing.T) {
		h := &harness{store: storagetest.NewFaultyStore(), recorder: notify.NewRecorder()}
		h.store.FailGet(true)
		mgr := h.build(t, SimulatedVerifier{})
		assert.Nil(t, mgr.User())
	})
}

func TestPersistFailureKeepsInMemoryIdentity(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{})
	h.store.FailSet(true)

	state, err := h.manager.SignIn(context.Background(), "kid@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, state.User)
	assert.Contains(t, h.recorder.Messages(), MessageSaveFailed)
}

func TestSignOutPurgesIdentityAndCart(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{})
	ctx := context.Background()
	_, err := h.manager.SignIn(ctx, "kid@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, h.store.Set(ctx, keys.Cart(), "[]"))

	require.NoError(t, h.manager.SignOut(ctx))
	assert.Nil(t, h.manager.User())
	assert.Equal(t, 0, h.store.Len())
}

func TestSignOutPurgesScopedCart(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{}, func(o *Options) { o.CartScope = enums.CartScopeIdentity })
	ctx := context.Background()
	state, err := h.manager.SignIn(ctx, "kid@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, h.store.Set(ctx, keys.UserCart(state.User.ID), "[]"))

	require.NoError(t, h.manager.SignOut(ctx))
	assert.Equal(t, 0, h.store.Len())
}

func TestSignOutNeverFails(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{})
	ctx := context.Background()
	_, err := h.manager.SignIn(ctx, "kid@example.com", "pw")
	require.NoError(t, err)
	h.store.FailDel(true)

	require.NoError(t, h.manager.SignOut(ctx))
	assert.Nil(t, h.manager.User())
	assert.Contains(t, h.recorder.Messages(), MessageClearFailed)

	// anonymous sign-out is a no-op apart from the purge
	require.NoError(t, h.manager.SignOut(ctx))
}

func TestObserversSeeTransitions(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{})
	ctx := context.Background()

	var seen []Transition
	h.manager.Subscribe(func(_ context.Context, tr Transition) { seen = append(seen, tr) })
	h.manager.Subscribe(nil)

	state, err := h.manager.SignIn(ctx, "kid@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, h.manager.SignOut(ctx))
	require.NoError(t, h.manager.SignOut(ctx))

	require.Len(t, seen, 2)
	assert.Nil(t, seen[0].Previous)
	assert.Equal(t, state.User, seen[0].Current)
	assert.Equal(t, state.User, seen[1].Previous)
	assert.Nil(t, seen[1].Current)
}

func TestUserReturnsCopy(t *testing.T) {
	h := newHarness(t, SimulatedVerifier{})
	_, err := h.manager.SignIn(context.Background(), "kid@example.com", "pw")
	require.NoError(t, err)

	u := h.manager.User()
	u.Email = "mutated@example.com"
	assert.Equal(t, "kid@example.com", h.manager.User().Email)
}
