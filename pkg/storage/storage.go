package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the durable key/value surface the session and cart managers persist through.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}

// Pinger exposes the health-check surface some stores implement.
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	DefaultNamespace = "toystore"

	userPrefix    = "user"
	cartPrefix    = "cart"
	accountPrefix = "account"
)

// Keys builds namespaced storage keys.
type Keys struct {
	namespace string
}

// NewKeys returns a key builder; an empty namespace falls back to DefaultNamespace.
func NewKeys(namespace string) Keys {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Keys{namespace: namespace}
}

// User is the key holding the signed-in identity.
func (k Keys) User() string {
	return k.build(userPrefix)
}

// Cart is the shared cart slot.
func (k Keys) Cart() string {
	return k.build(cartPrefix)
}

// UserCart is the cart slot scoped to one identity.
func (k Keys) UserCart(userID string) string {
	return k.build(cartPrefix, userID)
}

// CartFor resolves the cart slot for scope. Identity scoping without a user id
// falls back to the shared slot.
func (k Keys) CartFor(scope enums.CartScope, userID string) string {
	if scope == enums.CartScopeIdentity && strings.TrimSpace(userID) != "" {
		return k.UserCart(userID)
	}
	return k.Cart()
}

// Account holds the credential record for an email address.
func (k Keys) Account(email string) string {
	return k.build(accountPrefix, strings.ToLower(strings.TrimSpace(email)))
}

func (k Keys) build(parts ...string) string {
	ns := k.namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	clean := []string{ns}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}
