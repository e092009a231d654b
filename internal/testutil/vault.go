package testutil

import (
	"testing"

	"securevault/internal/crypto"
	"securevault/internal/storage"
	"securevault/internal/vault"
)

// TestPassphrase is the master passphrase used by the vault fixtures.
const TestPassphrase = "correct horse battery staple"

// NewTestVault creates a Gate and Store over in-memory storage with the
// deterministic test cipher and key deriver. The clock and ID generator are
// returned so tests can control time and predict IDs.
func NewTestVault(t *testing.T) (*vault.Gate, *vault.Store, *StubClock, *StubIDGenerator) {
	t.Helper()

	st := storage.NewMemoryStorage()
	clock := FixedClock()
	idgen := NewStubIDGenerator()

	store := vault.NewStore(st, crypto.NewTestCipher(), clock, idgen, vault.NewNopLogger())
	gate := vault.NewGate(st, crypto.NewTestDeriver(), store, vault.NewNopLogger())

	return gate, store, clock, idgen
}

// NewUnlockedVault creates a test vault that is already enrolled with
// TestPassphrase and logged in.
func NewUnlockedVault(t *testing.T) (*vault.Gate, *vault.Store, *StubClock, *StubIDGenerator) {
	t.Helper()

	gate, store, clock, idgen := NewTestVault(t)
	if err := gate.Enroll(TestPassphrase); err != nil {
		t.Fatalf("failed to enroll test vault: %v", err)
	}
	return gate, store, clock, idgen
}
