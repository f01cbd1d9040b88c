package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/catalog"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/notify"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/session"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/logger"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/metrics"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/storage"
)

const (
	MessageSignInRequired = "Please sign in to add items to cart"
	MessageAdded          = "Item added to cart!"
	MessageUpdated        = "Cart updated"
	MessageRemoved        = "Item removed from cart"
	MessageCleared        = "Cart cleared"
	MessageAddFailed      = "Failed to add item to cart"
	MessageUpdateFailed   = "Failed to update quantity"
	MessageRemoveFailed   = "Failed to remove item"
	MessageClearFailed    = "Failed to clear cart"
	MessageLoadFailed     = "Saved cart could not be loaded"
	MessageLinesDropped   = "Some saved cart items were invalid and removed"
)

// ErrNotAuthenticated is returned by AddToCart when nobody is signed in.
// Callers treat it as a notice; the cart is unchanged.
var ErrNotAuthenticated = pkgerrors.New(pkgerrors.CodeUnauthorized, MessageSignInRequired)

// Identity is the part of the session manager the cart depends on.
type Identity interface {
	User() *session.User
	Subscribe(fn session.Observer)
}

// Options wires the cart manager's collaborators.
type Options struct {
	Session  Identity
	Store    storage.Store
	Keys     storage.Keys
	Scope    enums.CartScope
	Notifier notify.Sink
	Logger   *logger.Logger
	Metrics  *metrics.StoreMetrics
	NewID    func() string
	Now      func() time.Time
}

// Manager owns the in-memory cart and mirrors it to storage.
type Manager struct {
	store    storage.Store
	keys     storage.Keys
	scope    enums.CartScope
	notifier notify.Sink
	logg     *logger.Logger
	metrics  *metrics.StoreMetrics
	newID    func() string
	now      func() time.Time

	mu    sync.Mutex
	user  *session.User
	items []Item
}

// NewManager builds a cart manager bound to the session's identity transitions.
// A session restored from storage loads its cart immediately.
func NewManager(ctx context.Context, opts Options) (*Manager, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("session required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if !opts.Scope.IsValid() {
		opts.Scope = enums.CartScopeShared
	}
	m := &Manager{
		store:    opts.Store,
		keys:     opts.Keys,
		scope:    opts.Scope,
		notifier: notify.OrNop(opts.Notifier),
		logg:     opts.Logger,
		metrics:  opts.Metrics,
		newID:    opts.NewID,
		now:      opts.Now,
	}
	opts.Session.Subscribe(m.onTransition)
	if current := opts.Session.User(); current != nil {
		m.onTransition(ctx, session.Transition{Current: current})
	}
	return m, nil
}

func (m *Manager) onTransition(ctx context.Context, t session.Transition) {
	ctx = m.logg.WithOperation(ctx, "session_transition")

	m.mu.Lock()
	defer m.mu.Unlock()

	if t.Current == nil {
		m.user = nil
		m.items = nil
		m.logg.Debug(ctx, "cart reset after sign-out")
		return
	}
	user := *t.Current
	m.user = &user
	m.items = m.loadLocked(m.logg.WithUserID(ctx, user.ID))
}

func (m *Manager) loadLocked(ctx context.Context) []Item {
	raw, err := m.store.Get(ctx, m.cartKeyLocked())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		m.metrics.IncPersistenceFailure("cart")
		m.logg.WarnErr(ctx, "failed to read persisted cart", err)
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodePersistence, MessageLoadFailed))
		return nil
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		m.logg.WarnErr(ctx, "discarding corrupt cart record", err)
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodePersistence, MessageLoadFailed))
		return nil
	}
	loaded := len(items)
	items = sanitize(items)
	if dropped := loaded - len(items); dropped > 0 {
		m.logg.Warn(m.logg.WithField(ctx, "dropped", dropped), "dropped invalid cart lines")
		m.notifier.Notify(ctx, notify.Info(MessageLinesDropped))
	}
	m.logg.Debug(m.logg.WithField(ctx, "items", len(items)), "cart loaded")
	return items
}

func (m *Manager) cartKeyLocked() string {
	userID := ""
	if m.user != nil {
		userID = m.user.ID
	}
	return m.keys.CartFor(m.scope, userID)
}

// AddToCart inserts product at the front of the cart, or raises the quantity
// of the line already holding it.
func (m *Manager) AddToCart(ctx context.Context, product catalog.Product, quantity int) error {
	ctx = m.logg.WithProductID(m.logg.WithOperation(ctx, "add_to_cart"), product.ID)
	if quantity < 1 {
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodeValidation, MessageAddFailed))
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if product.ID == "" {
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodeValidation, MessageAddFailed))
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		m.logg.Info(ctx, "add to cart without session")
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodeUnauthorized, MessageSignInRequired))
		return ErrNotAuthenticated
	}

	if idx := m.indexByProductLocked(product.ID); idx >= 0 {
		existing := m.items[idx]
		if quantity > math.MaxInt-existing.Quantity {
			m.logg.Warn(m.logg.WithCartItemID(ctx, existing.ID), "merged quantity out of range")
			m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodeValidation, MessageAddFailed))
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity too large")
		}
		m.updateLocked(ctx, existing.ID, existing.Quantity+quantity)
		return nil
	}

	item := Item{
		ID:        m.newID(),
		ProductID: product.ID,
		Quantity:  quantity,
		CreatedAt: m.now().UTC(),
		Product:   snapshotOf(product),
	}
	m.items = append([]Item{item}, m.items...)
	m.metrics.IncCartMutation("add")
	m.logg.Info(m.logg.WithCartItemID(ctx, item.ID), "item added to cart")
	m.persistLocked(ctx, MessageAddFailed)
	m.notifier.Notify(ctx, notify.Success(MessageAdded))
	return nil
}

// RemoveFromCart drops the line with itemID. Unknown ids and anonymous calls are no-ops.
func (m *Manager) RemoveFromCart(ctx context.Context, itemID string) error {
	ctx = m.logg.WithCartItemID(m.logg.WithOperation(ctx, "remove_from_cart"), itemID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return nil
	}
	m.removeLocked(ctx, itemID)
	return nil
}

// UpdateQuantity replaces a line's quantity in place. Zero or less removes the line.
func (m *Manager) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	ctx = m.logg.WithCartItemID(m.logg.WithOperation(ctx, "update_quantity"), itemID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return nil
	}
	m.updateLocked(ctx, itemID, quantity)
	return nil
}

// ClearCart empties the cart and deletes its persisted copy.
func (m *Manager) ClearCart(ctx context.Context) error {
	ctx = m.logg.WithOperation(ctx, "clear_cart")

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return nil
	}
	m.items = nil
	m.metrics.IncCartMutation("clear")
	if err := m.store.Del(ctx, m.cartKeyLocked()); err != nil {
		m.metrics.IncPersistenceFailure("cart")
		m.logg.Error(ctx, "failed to delete persisted cart", err)
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodePersistence, MessageClearFailed))
	}
	m.logg.Info(ctx, "cart cleared")
	m.notifier.Notify(ctx, notify.Success(MessageCleared))
	return nil
}

func (m *Manager) updateLocked(ctx context.Context, itemID string, quantity int) {
	if quantity <= 0 {
		m.removeLocked(ctx, itemID)
		return
	}
	idx := m.indexLocked(itemID)
	if idx < 0 {
		return
	}
	m.items[idx].Quantity = quantity
	m.metrics.IncCartMutation("update")
	m.logg.Info(m.logg.WithField(ctx, "quantity", quantity), "cart quantity updated")
	m.persistLocked(ctx, MessageUpdateFailed)
	m.notifier.Notify(ctx, notify.Success(MessageUpdated))
}

func (m *Manager) removeLocked(ctx context.Context, itemID string) {
	idx := m.indexLocked(itemID)
	if idx < 0 {
		return
	}
	m.items = append(m.items[:idx:idx], m.items[idx+1:]...)
	m.metrics.IncCartMutation("remove")
	m.logg.Info(ctx, "item removed from cart")
	m.persistLocked(ctx, MessageRemoveFailed)
	m.notifier.Notify(ctx, notify.Success(MessageRemoved))
}

// persistLocked writes the whole cart. Failures keep the in-memory cart.
func (m *Manager) persistLocked(ctx context.Context, failMessage string) {
	items := m.items
	if items == nil {
		items = []Item{}
	}
	payload, err := json.Marshal(items)
	if err == nil {
		err = m.store.Set(ctx, m.cartKeyLocked(), string(payload))
	}
	if err != nil {
		m.metrics.IncPersistenceFailure("cart")
		m.logg.Error(ctx, "failed to persist cart", err)
		m.notifier.Notify(ctx, notify.Failure(pkgerrors.CodePersistence, failMessage))
	}
}

func (m *Manager) indexLocked(itemID string) int {
	for i, item := range m.items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func (m *Manager) indexByProductLocked(productID string) int {
	for i, item := range m.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Items returns the cart lines, newest first.
func (m *Manager) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// TotalPrice sums snapshot price times quantity over every line.
func (m *Manager) TotalPrice() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, item := range m.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// TotalItems sums quantities over every line.
func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, item := range m.items {
		total += item.Quantity
	}
	return total
}
