package security_test

import (
	"strings"
	"testing"

	"github.com/sivakirlampalli/Ecommerce-Website/pkg/config"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/security"
)

func testConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hasher := security.NewHasher(testConfig())

	hash, err := hasher.Hash("very-secure-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := hasher.Verify("very-secure-password", hash)
	if err != nil {
		t.Fatalf("Verify returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("Verify failed for the correct password")
	}

	ok, err = hasher.Verify("bogus-password", hash)
	if err != nil {
		t.Fatalf("Verify returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("Verify returned true for incorrect password")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := security.NewHasher(testConfig()).Hash(""); err == nil {
		t.Fatal("expected empty password to fail")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	hasher := security.NewHasher(testConfig())
	for _, bad := range []string{"not-a-hash", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"} {
		if _, err := hasher.Verify("irrelevant", bad); err == nil {
			t.Fatalf("expected error for malformed hash %q", bad)
		}
	}
}

func TestParamsAreClamped(t *testing.T) {
	params := security.NewHasher(config.PasswordConfig{}).Params()
	if params.Memory != 8 || params.Time != 1 || params.Parallelism != 1 || params.SaltLen != 8 || params.KeyLen != 16 {
		t.Fatalf("unexpected clamped params %+v", params)
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := security.NewHasher(testConfig())
	hash, err := weak.Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if weak.NeedsRehash(hash) {
		t.Fatal("hash produced with current params should not need rehash")
	}

	stronger := testConfig()
	stronger.ArgonTime = 2
	if !security.NewHasher(stronger).NeedsRehash(hash) {
		t.Fatal("expected rehash when time cost increases")
	}
	if !weak.NeedsRehash("garbage") {
		t.Fatal("malformed hashes always need rehash")
	}
}
