package vault_test

import (
	"errors"
	"testing"

	"securevault/internal/crypto"
	"securevault/internal/storage"
	"securevault/internal/testutil"
	"securevault/internal/vault"
)

func TestGate_Enroll(t *testing.T) {
	t.Run("enrolls and leaves session unlocked", func(t *testing.T) {
		gate, store, _, _ := testutil.NewTestVault(t)

		if err := gate.Enroll("Tr0ub4dor&3"); err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}

		enrolled, err := gate.IsEnrolled()
		if err != nil {
			t.Fatalf("IsEnrolled failed: %v", err)
		}
		if !enrolled {
			t.Error("expected vault to be enrolled")
		}

		// Session is active: store operations succeed.
		if _, err := store.GetAll(); err != nil {
			t.Errorf("expected unlocked store, got %v", err)
		}
	})

	t.Run("rejects second enrollment", func(t *testing.T) {
		gate, _, _, _ := testutil.NewTestVault(t)

		if err := gate.Enroll("first"); err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}

		err := gate.Enroll("second")
		if !errors.Is(err, vault.ErrAlreadyEnrolled) {
			t.Errorf("expected ErrAlreadyEnrolled, got %v", err)
		}
	})
}

func TestGate_Login(t *testing.T) {
	t.Run("correct passphrase unlocks and loads records", func(t *testing.T) {
		gate, store, _, _ := testutil.NewUnlockedVault(t)

		id, err := store.Add(vault.CredentialInput{
			SiteName: "GitHub",
			Username: "octocat",
			Password: "Tr0ub4dor&3",
		})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		if err := gate.Logout(); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}

		ok, err := gate.Login(testutil.TestPassphrase)
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if !ok {
			t.Fatal("expected login to succeed")
		}

		got, err := store.GetByID(id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected credential to survive lock/unlock")
		}
		if got.Password != "Tr0ub4dor&3" {
			t.Errorf("password = %q, want %q", got.Password, "Tr0ub4dor&3")
		}
	})

	t.Run("wrong passphrase returns false without error", func(t *testing.T) {
		gate, store, _, _ := testutil.NewUnlockedVault(t)
		if err := gate.Logout(); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}

		ok, err := gate.Login("wrong-passphrase")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if ok {
			t.Fatal("expected login to be rejected")
		}

		// Store must stay locked.
		if _, err := store.GetAll(); !errors.Is(err, vault.ErrLocked) {
			t.Errorf("expected ErrLocked after rejected login, got %v", err)
		}
	})

	t.Run("not enrolled", func(t *testing.T) {
		gate, _, _, _ := testutil.NewTestVault(t)

		_, err := gate.Login("anything")
		if !errors.Is(err, vault.ErrNotEnrolled) {
			t.Errorf("expected ErrNotEnrolled, got %v", err)
		}
	})

	t.Run("corrupted blob fails with ErrDecrypt", func(t *testing.T) {
		st := storage.NewMemoryStorage()
		store := vault.NewStore(st, crypto.NewTestCipher(), testutil.FixedClock(), testutil.NewStubIDGenerator(), vault.NewNopLogger())
		gate := vault.NewGate(st, crypto.NewTestDeriver(), store, vault.NewNopLogger())

		if err := gate.Enroll(testutil.TestPassphrase); err != nil {
			t.Fatalf("Enroll failed: %v", err)
		}
		if _, err := store.Add(vault.CredentialInput{SiteName: "GitHub"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if err := gate.Logout(); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}

		// Damage the stored blob behind the vault's back.
		if err := st.StoreBlob([]byte("???not-a-ciphertext")); err != nil {
			t.Fatalf("StoreBlob failed: %v", err)
		}

		// The passphrase hash still matches, so the failure is corruption,
		// not a wrong passphrase.
		ok, err := gate.Login(testutil.TestPassphrase)
		if !errors.Is(err, vault.ErrDecrypt) {
			t.Fatalf("expected ErrDecrypt for corrupted blob, got ok=%v err=%v", ok, err)
		}

		// The key must not stay installed after the failed load.
		if _, err := store.GetAll(); !errors.Is(err, vault.ErrLocked) {
			t.Errorf("expected ErrLocked after failed load, got %v", err)
		}
	})
}

func TestGate_Logout(t *testing.T) {
	t.Run("locks the store", func(t *testing.T) {
		gate, store, _, _ := testutil.NewUnlockedVault(t)

		if err := gate.Logout(); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}

		if _, err := store.GetAll(); !errors.Is(err, vault.ErrLocked) {
			t.Errorf("expected ErrLocked after logout, got %v", err)
		}
	})

	t.Run("logout without session", func(t *testing.T) {
		gate, _, _, _ := testutil.NewTestVault(t)

		if err := gate.Logout(); !errors.Is(err, vault.ErrLocked) {
			t.Errorf("expected ErrLocked, got %v", err)
		}
	})
}

func TestGate_ChangePassphrase(t *testing.T) {
	t.Run("re-encrypts under the new passphrase", func(t *testing.T) {
		gate, store, _, _ := testutil.NewUnlockedVault(t)

		if _, err := store.Add(vault.CredentialInput{SiteName: "GitHub", Username: "octocat", Password: "pw"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if err := gate.Logout(); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}
		if ok, err := gate.Login(testutil.TestPassphrase); err != nil || !ok {
			t.Fatalf("Login failed: ok=%v err=%v", ok, err)
		}

		if err := gate.ChangePassphrase(testutil.TestPassphrase, "new-passphrase"); err != nil {
			t.Fatalf("ChangePassphrase failed: %v", err)
		}

		if err := gate.Logout(); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}

		// Old passphrase no longer works.
		if ok, err := gate.Login(testutil.TestPassphrase); err != nil || ok {
			t.Fatalf("old passphrase accepted: ok=%v err=%v", ok, err)
		}

		// New passphrase decrypts the records.
		if ok, err := gate.Login("new-passphrase"); err != nil || !ok {
			t.Fatalf("new passphrase rejected: ok=%v err=%v", ok, err)
		}
		records, err := store.GetAll()
		if err != nil {
			t.Fatalf("GetAll failed: %v", err)
		}
		if len(records) != 1 || records[0].SiteName != "GitHub" {
			t.Errorf("records after rekey = %+v, want the original credential", records)
		}
	})

	t.Run("rejects wrong old passphrase", func(t *testing.T) {
		gate, _, _, _ := testutil.NewUnlockedVault(t)

		err := gate.ChangePassphrase("wrong", "new")
		if !errors.Is(err, vault.ErrAuthentication) {
			t.Errorf("expected ErrAuthentication, got %v", err)
		}
	})

	t.Run("not enrolled", func(t *testing.T) {
		gate, _, _, _ := testutil.NewTestVault(t)

		err := gate.ChangePassphrase("old", "new")
		if !errors.Is(err, vault.ErrNotEnrolled) {
			t.Errorf("expected ErrNotEnrolled, got %v", err)
		}
	})
}

func TestGate_Reset(t *testing.T) {
	gate, store, _, _ := testutil.NewUnlockedVault(t)

	if _, err := store.Add(vault.CredentialInput{SiteName: "GitHub"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := gate.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	enrolled, err := gate.IsEnrolled()
	if err != nil {
		t.Fatalf("IsEnrolled failed: %v", err)
	}
	if enrolled {
		t.Error("expected enrollment to be gone after reset")
	}

	if _, err := store.GetAll(); !errors.Is(err, vault.ErrLocked) {
		t.Errorf("expected ErrLocked after reset, got %v", err)
	}

	// The vault can be set up again from scratch.
	if err := gate.Enroll("fresh-start"); err != nil {
		t.Fatalf("re-enroll after reset failed: %v", err)
	}
	records, err := store.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty vault after reset, got %d records", len(records))
	}
}
