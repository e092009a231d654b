package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Store owns the in-memory credential set and the encrypted persisted blob.
// Every mutation re-encrypts and overwrites the whole blob synchronously
// before it is acknowledged; on a persist failure the in-memory state is left
// unchanged. All operations require an active session key, installed by the
// Gate at enrollment or login — calling them on a locked Store returns
// ErrLocked.
type Store struct {
	storage Storage
	cipher  Cipher
	clock   Clock
	idgen   IDGenerator
	logger  Logger

	mu      sync.Mutex
	key     []byte
	records []Credential
}

// NewStore creates a locked Store with the provided dependencies.
func NewStore(storage Storage, cipher Cipher, clock Clock, idgen IDGenerator, logger Logger) *Store {
	return &Store{
		storage: storage,
		cipher:  cipher,
		clock:   clock,
		idgen:   idgen,
		logger:  logger,
	}
}

// activate installs the session key. Called by the Gate only.
func (s *Store) activate(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
}

// deactivate clears the session key and discards the decrypted records.
// Called by the Gate at logout and on load failure.
func (s *Store) deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = nil
	s.records = nil
}

// rekey swaps the session key in place, keeping the decrypted records.
// Used by passphrase changes; the caller must persist afterwards.
func (s *Store) rekey(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
}

// initialize creates an empty record sequence and persists its encrypted
// form. Called once at enrollment.
func (s *Store) initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := []Credential{}
	if err := s.persistLocked(empty); err != nil {
		return err
	}
	s.records = empty
	return nil
}

// load decrypts the persisted blob into memory. Called once at login.
// A missing blob yields an empty record set. A decrypt failure after the
// passphrase hash already matched signals corrupted storage, not wrong
// credentials.
func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return ErrLocked
	}

	blob, err := s.storage.LoadBlob()
	if err != nil {
		if errors.Is(err, ErrNoBlob) {
			s.records = []Credential{}
			return nil
		}
		return fmt.Errorf("loading vault blob: %w", err)
	}

	plaintext, err := s.cipher.Decrypt(string(blob), s.key)
	if err != nil {
		return fmt.Errorf("reading vault blob: %w", err)
	}

	var records []Credential
	if err := json.Unmarshal(plaintext, &records); err != nil {
		return fmt.Errorf("%w: deserializing records: %v", ErrDecrypt, err)
	}
	if records == nil {
		records = []Credential{}
	}

	s.records = records
	s.logger.Debug("vault loaded", "count", len(records))
	return nil
}

// persistAll re-encrypts and writes the current record set. Used after a
// rekey.
func (s *Store) persistAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(s.records)
}

// persistLocked serializes, encrypts and writes the given record set.
// The caller must hold s.mu. The in-memory state is not touched: callers
// commit only after the write succeeds.
func (s *Store) persistLocked(records []Credential) error {
	if s.key == nil {
		return ErrLocked
	}

	plaintext, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("serializing records: %w", err)
	}

	ciphertext, err := s.cipher.Encrypt(plaintext, s.key)
	if err != nil {
		return fmt.Errorf("encrypting records: %w", err)
	}

	if err := s.storage.StoreBlob([]byte(ciphertext)); err != nil {
		return fmt.Errorf("persisting vault blob: %w", err)
	}
	return nil
}

// Add assigns a fresh ID and timestamps to the input, appends it and
// persists before returning the new ID.
func (s *Store) Add(in CredentialInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return "", ErrLocked
	}

	now := s.clock.Now()
	rec := Credential{
		ID:           s.idgen.New(),
		SiteName:     in.SiteName,
		Username:     in.Username,
		Password:     in.Password,
		URL:          in.URL,
		Notes:        in.Notes,
		Category:     ParseCategory(string(in.Category)),
		CreatedAt:    now,
		LastModified: now,
	}

	next := append(append([]Credential(nil), s.records...), rec)
	if err := s.persistLocked(next); err != nil {
		return "", err
	}
	s.records = next

	s.logger.Info("credential added", "id", rec.ID, "site", rec.SiteName)
	return rec.ID, nil
}

// Update overwrites the fields of an existing credential wholesale,
// preserving ID and CreatedAt and bumping LastModified. Returns ErrNotFound
// for an unknown ID; the store state is unchanged in that case.
func (s *Store) Update(id string, in CredentialInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return ErrLocked
	}

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return ErrNotFound
	}

	next := append([]Credential(nil), s.records...)
	next[idx] = Credential{
		ID:           id,
		SiteName:     in.SiteName,
		Username:     in.Username,
		Password:     in.Password,
		URL:          in.URL,
		Notes:        in.Notes,
		Category:     ParseCategory(string(in.Category)),
		CreatedAt:    s.records[idx].CreatedAt,
		LastModified: s.clock.Now(),
	}

	if err := s.persistLocked(next); err != nil {
		return err
	}
	s.records = next

	s.logger.Info("credential updated", "id", id)
	return nil
}

// Delete removes the credential with the given ID. Returns ErrNotFound if
// absent.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return ErrLocked
	}

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return ErrNotFound
	}

	next := append([]Credential(nil), s.records[:idx]...)
	next = append(next, s.records[idx+1:]...)

	if err := s.persistLocked(next); err != nil {
		return err
	}
	s.records = next

	s.logger.Info("credential deleted", "id", id)
	return nil
}

// GetAll returns a copy of the current records in insertion order. Mutating
// the returned slice does not affect the Store.
func (s *Store) GetAll() ([]Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return nil, ErrLocked
	}
	return append([]Credential(nil), s.records...), nil
}

// GetByID returns the credential with the given ID, or nil if absent.
func (s *Store) GetByID(id string) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return nil, ErrLocked
	}

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return nil, nil
	}
	rec := s.records[idx]
	return &rec, nil
}

// Search returns the credentials whose site name, username or notes contain
// the query, case-insensitively, in insertion order.
func (s *Store) Search(query string) ([]Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return nil, ErrLocked
	}

	q := strings.ToLower(query)
	var matches []Credential
	for _, rec := range s.records {
		if strings.Contains(strings.ToLower(rec.SiteName), q) ||
			strings.Contains(strings.ToLower(rec.Username), q) ||
			strings.Contains(strings.ToLower(rec.Notes), q) {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// FilterByCategory returns the credentials in the given category, in
// insertion order.
func (s *Store) FilterByCategory(category Category) ([]Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return nil, ErrLocked
	}

	var matches []Credential
	for _, rec := range s.records {
		if rec.Category == category {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// ClearAll resets the vault to an empty record set and persists immediately.
// Irreversible.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return ErrLocked
	}

	empty := []Credential{}
	if err := s.persistLocked(empty); err != nil {
		return err
	}
	s.records = empty

	s.logger.Warn("vault cleared")
	return nil
}

// indexOfLocked returns the position of the credential with the given ID,
// or -1. The caller must hold s.mu.
func (s *Store) indexOfLocked(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}
