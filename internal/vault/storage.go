package vault

// SchemaVersion is the current layout version of persisted vault state.
// Backends record it so future layouts can migrate forward.
const SchemaVersion = 1

// Enrollment is the persisted master-passphrase record. Salt and
// PassphraseHash are written together and never individually; once set they
// are immutable until the vault is fully reset.
type Enrollment struct {
	Salt           string `json:"salt"`
	PassphraseHash string `json:"passphraseHash"`
}

// Storage is a persistence backend for the vault. It holds the enrollment
// record, the schema version, and the single encrypted blob containing the
// serialized credential collection. Implementations must make StoreBlob
// all-or-nothing: a failed write leaves the previous blob readable.
type Storage interface {
	// Enrollment returns the stored enrollment record, or nil if the vault
	// has never been enrolled.
	Enrollment() (*Enrollment, error)

	// SaveEnrollment persists the enrollment record, the enrolled flag and
	// the schema version together.
	SaveEnrollment(e *Enrollment) error

	// LoadBlob returns the encrypted vault blob. Returns ErrNoBlob when no
	// blob has been written yet.
	LoadBlob() ([]byte, error)

	// StoreBlob overwrites the encrypted vault blob.
	StoreBlob(data []byte) error

	// Reset removes all persisted vault state: enrollment and blob.
	// Irreversible.
	Reset() error

	// Close releases any resources held by the backend.
	Close() error
}
