package enums

import (
	"fmt"
	"strings"
)

// StorageDriver selects the durable key/value backend.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverSQLite   StorageDriver = "sqlite"
	StorageDriverPostgres StorageDriver = "postgres"
	StorageDriverRedis    StorageDriver = "redis"
)

var validStorageDrivers = []StorageDriver{
	StorageDriverMemory,
	StorageDriverSQLite,
	StorageDriverPostgres,
	StorageDriverRedis,
}

// String implements fmt.Stringer.
func (d StorageDriver) String() string {
	return string(d)
}

// IsValid reports whether the value is a known StorageDriver.
func (d StorageDriver) IsValid() bool {
	for _, candidate := range validStorageDrivers {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseStorageDriver converts raw input into a StorageDriver.
func ParseStorageDriver(value string) (StorageDriver, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validStorageDrivers {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid storage driver %q", value)
}

// CartScope controls whether the persisted cart is shared or namespaced per identity.
type CartScope string

const (
	CartScopeShared   CartScope = "shared"
	CartScopeIdentity CartScope = "identity"
)

// IsValid reports whether the value is a known CartScope.
func (c CartScope) IsValid() bool {
	return c == CartScopeShared || c == CartScopeIdentity
}

// ParseCartScope converts raw input into a CartScope.
func ParseCartScope(value string) (CartScope, error) {
	scope := CartScope(strings.ToLower(strings.TrimSpace(value)))
	if !scope.IsValid() {
		return "", fmt.Errorf("invalid cart scope %q", value)
	}
	return scope, nil
}

// VerifierKind selects the credential verifier wired into the session manager.
type VerifierKind string

const (
	VerifierKindSimulated VerifierKind = "simulated"
	VerifierKindAccounts  VerifierKind = "accounts"
)

// IsValid reports whether the value is a known VerifierKind.
func (v VerifierKind) IsValid() bool {
	return v == VerifierKindSimulated || v == VerifierKindAccounts
}

// ParseVerifierKind converts raw input into a VerifierKind.
func ParseVerifierKind(value string) (VerifierKind, error) {
	kind := VerifierKind(strings.ToLower(strings.TrimSpace(value)))
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid verifier kind %q", value)
	}
	return kind, nil
}
