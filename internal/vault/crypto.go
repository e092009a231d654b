package vault

// Cipher provides authenticated symmetric encryption for the persisted blob.
// Encrypt must be non-deterministic across calls with identical inputs so
// repeated saves of the same record set do not leak equality.
type Cipher interface {
	// Encrypt seals plaintext under key and returns an opaque text
	// ciphertext. Failures wrap ErrEncrypt.
	Encrypt(plaintext, key []byte) (string, error)

	// Decrypt is the inverse of Encrypt. A wrong key or corrupted/truncated
	// ciphertext wraps ErrDecrypt — the expected failure path for a wrong
	// master passphrase, distinguishable from programming errors.
	Decrypt(ciphertext string, key []byte) ([]byte, error)
}

// KeyDeriver turns the master passphrase into key material and the stored
// verifier. Both derivations must be deterministic for identical
// (passphrase, salt) pairs and expensive enough to resist offline brute
// force.
type KeyDeriver interface {
	// DeriveKey derives the symmetric encryption key from the passphrase and
	// salt. The key is held in memory only and never persisted.
	DeriveKey(passphrase, salt []byte) []byte

	// HashPassphrase returns the verifier persisted at enrollment and
	// compared (in constant time) at login.
	HashPassphrase(passphrase, salt []byte) string

	// GenerateSalt returns a fresh random salt, generated once at
	// enrollment and fixed thereafter.
	GenerateSalt() (string, error)
}
