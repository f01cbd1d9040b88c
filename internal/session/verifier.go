package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/logger"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/security"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/storage"
)

// CredentialVerifier decides whether a sign-in or sign-up is accepted.
type CredentialVerifier interface {
	VerifySignIn(ctx context.Context, creds Credentials) error
	VerifySignUp(ctx context.Context, creds Credentials) error
}

var (
	errRejected      = errors.New("credentials rejected")
	errAccountExists = errors.New("account already exists")
	errUnknownEmail  = errors.New("no account for email")
	errWrongPassword = errors.New("password mismatch")
)

// SimulatedVerifier waits Delay and accepts everything Reject does not refuse.
type SimulatedVerifier struct {
	Delay  time.Duration
	Reject func(Credentials) bool
}

func (v SimulatedVerifier) VerifySignIn(ctx context.Context, creds Credentials) error {
	return v.verify(ctx, creds)
}

func (v SimulatedVerifier) VerifySignUp(ctx context.Context, creds Credentials) error {
	return v.verify(ctx, creds)
}

func (v SimulatedVerifier) verify(ctx context.Context, creds Credentials) error {
	if v.Delay > 0 {
		timer := time.NewTimer(v.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if v.Reject != nil && v.Reject(creds) {
		return errRejected
	}
	return nil
}

type accountRecord struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountVerifier keeps argon2id password hashes in the durable store.
type AccountVerifier struct {
	store  storage.Store
	keys   storage.Keys
	hasher *security.Hasher
	logg   *logger.Logger
	now    func() time.Time
}

func NewAccountVerifier(store storage.Store, keys storage.Keys, hasher *security.Hasher, logg *logger.Logger) (*AccountVerifier, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "account store required")
	}
	if hasher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "password hasher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &AccountVerifier{store: store, keys: keys, hasher: hasher, logg: logg, now: time.Now}, nil
}

func (v *AccountVerifier) VerifySignUp(ctx context.Context, creds Credentials) error {
	key := v.keys.Account(creds.Email)
	_, err := v.store.Get(ctx, key)
	switch {
	case err == nil:
		return errAccountExists
	case !errors.Is(err, storage.ErrNotFound):
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load account")
	}

	hash, err := v.hasher.Hash(creds.Password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return v.save(ctx, key, accountRecord{
		Email:        strings.ToLower(strings.TrimSpace(creds.Email)),
		PasswordHash: hash,
		CreatedAt:    v.now().UTC(),
	})
}

func (v *AccountVerifier) VerifySignIn(ctx context.Context, creds Credentials) error {
	key := v.keys.Account(creds.Email)
	raw, err := v.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errUnknownEmail
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load account")
	}

	var record accountRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decode account")
	}
	ok, err := v.hasher.Verify(creds.Password, record.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return errWrongPassword
	}

	if v.hasher.NeedsRehash(record.PasswordHash) {
		if hash, err := v.hasher.Hash(creds.Password); err == nil {
			record.PasswordHash = hash
			// the sign-in already succeeded; a failed rehash only logs
			if err := v.save(ctx, key, record); err != nil {
				v.logg.WarnErr(v.logg.WithOperation(ctx, "rehash_password"), "failed to save rehashed password", err)
			}
		}
	}
	return nil
}

func (v *AccountVerifier) save(ctx context.Context, key string, record accountRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode account")
	}
	if err := v.store.Set(ctx, key, string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "save account")
	}
	return nil
}
