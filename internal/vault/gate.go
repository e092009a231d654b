package vault

import (
	"crypto/subtle"
	"fmt"
	"sync"
)

// Gate manages the master-passphrase lifecycle and is the sole entry point
// that unlocks the Store. Session states: logged out → enrolling → logged in
// → logged out. There is no persisted session; every process start begins
// logged out.
type Gate struct {
	storage Storage
	deriver KeyDeriver
	store   *Store
	logger  Logger

	mu       sync.Mutex
	unlocked bool
}

// NewGate creates a Gate over the given storage, key deriver and store.
func NewGate(storage Storage, deriver KeyDeriver, store *Store, logger Logger) *Gate {
	return &Gate{
		storage: storage,
		deriver: deriver,
		store:   store,
		logger:  logger,
	}
}

// IsEnrolled reports whether a master passphrase has been set up.
func (g *Gate) IsEnrolled() (bool, error) {
	e, err := g.storage.Enrollment()
	if err != nil {
		return false, fmt.Errorf("reading enrollment: %w", err)
	}
	return e != nil, nil
}

// Enroll sets up the vault with a new master passphrase: generates the salt,
// persists the enrollment record, initializes an empty encrypted vault and
// leaves the session logged in. Returns ErrAlreadyEnrolled if an enrollment
// already exists.
func (g *Gate) Enroll(passphrase string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	existing, err := g.storage.Enrollment()
	if err != nil {
		return fmt.Errorf("reading enrollment: %w", err)
	}
	if existing != nil {
		return ErrAlreadyEnrolled
	}

	salt, err := g.deriver.GenerateSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}

	e := &Enrollment{
		Salt:           salt,
		PassphraseHash: g.deriver.HashPassphrase([]byte(passphrase), []byte(salt)),
	}
	if err := g.storage.SaveEnrollment(e); err != nil {
		return fmt.Errorf("saving enrollment: %w", err)
	}

	g.store.activate(g.deriver.DeriveKey([]byte(passphrase), []byte(salt)))
	if err := g.store.initialize(); err != nil {
		g.store.deactivate()
		return fmt.Errorf("initializing vault: %w", err)
	}

	g.unlocked = true
	g.logger.Info("vault enrolled")
	return nil
}

// Login verifies the passphrase against the stored hash using a
// constant-time comparison. On a match it derives the key, loads the
// decrypted records into the Store and returns true. On a mismatch it
// returns false with no state mutation; the key material stays unset.
// Returns ErrNotEnrolled when no enrollment exists.
func (g *Gate) Login(passphrase string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, err := g.storage.Enrollment()
	if err != nil {
		return false, fmt.Errorf("reading enrollment: %w", err)
	}
	if e == nil {
		return false, ErrNotEnrolled
	}

	if !verifyHash(g.deriver, passphrase, e) {
		g.logger.Warn("login rejected")
		return false, nil
	}

	g.store.activate(g.deriver.DeriveKey([]byte(passphrase), []byte(e.Salt)))
	if err := g.store.load(); err != nil {
		g.store.deactivate()
		return false, err
	}

	g.unlocked = true
	g.logger.Info("vault unlocked")
	return true, nil
}

// Logout clears the key material and discards the decrypted records.
// Returns ErrLocked when no session is active.
func (g *Gate) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.unlocked {
		return ErrLocked
	}

	g.store.deactivate()
	g.unlocked = false
	g.logger.Info("vault locked")
	return nil
}

// ChangePassphrase re-enrolls the vault under a new passphrase: it verifies
// the old one, decrypts the records, generates a fresh salt, rewrites the
// enrollment record and re-encrypts the blob under the new key. The session
// is left logged in. A crash between the enrollment write and the blob write
// leaves a vault whose blob no longer decrypts — surfaced to the user as
// corrupted data, recoverable from an export.
func (g *Gate) ChangePassphrase(oldPassphrase, newPassphrase string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, err := g.storage.Enrollment()
	if err != nil {
		return fmt.Errorf("reading enrollment: %w", err)
	}
	if e == nil {
		return ErrNotEnrolled
	}

	if !verifyHash(g.deriver, oldPassphrase, e) {
		return ErrAuthentication
	}

	g.store.activate(g.deriver.DeriveKey([]byte(oldPassphrase), []byte(e.Salt)))
	if err := g.store.load(); err != nil {
		g.store.deactivate()
		return err
	}

	salt, err := g.deriver.GenerateSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}

	next := &Enrollment{
		Salt:           salt,
		PassphraseHash: g.deriver.HashPassphrase([]byte(newPassphrase), []byte(salt)),
	}
	if err := g.storage.SaveEnrollment(next); err != nil {
		return fmt.Errorf("saving enrollment: %w", err)
	}

	g.store.rekey(g.deriver.DeriveKey([]byte(newPassphrase), []byte(salt)))
	if err := g.store.persistAll(); err != nil {
		return fmt.Errorf("re-encrypting vault: %w", err)
	}

	g.unlocked = true
	g.logger.Info("master passphrase changed")
	return nil
}

// Reset destroys all persisted vault state and locks the session.
// Irreversible.
func (g *Gate) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.store.deactivate()
	g.unlocked = false

	if err := g.storage.Reset(); err != nil {
		return fmt.Errorf("resetting vault storage: %w", err)
	}
	g.logger.Warn("vault reset")
	return nil
}

// verifyHash recomputes the passphrase hash and compares it to the stored
// one in constant time.
func verifyHash(deriver KeyDeriver, passphrase string, e *Enrollment) bool {
	computed := deriver.HashPassphrase([]byte(passphrase), []byte(e.Salt))
	return subtle.ConstantTimeCompare([]byte(computed), []byte(e.PassphraseHash)) == 1
}
