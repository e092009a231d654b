package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"

	"securevault/internal/vault"
)

// Argon2id defaults. Deliberately memory-hard: salting alone is not enough
// against offline brute force of the enrollment record.
const (
	defaultTime    = 1
	defaultMemoryK = 64 * 1024
	defaultThreads = 4

	keySize  = 32
	saltSize = 16
)

// Argon2Deriver implements vault.KeyDeriver using Argon2id. The derived key
// is the symmetric encryption key; the persisted passphrase hash is the
// SHA-256 of that key, so the stored verifier never reveals the key itself
// and verification pays the full KDF cost.
type Argon2Deriver struct {
	time    uint32
	memoryK uint32
	threads uint8
}

var _ vault.KeyDeriver = (*Argon2Deriver)(nil)

// NewArgon2Deriver creates a deriver with the given parameters. Zero values
// fall back to the package defaults.
func NewArgon2Deriver(time, memoryK uint32, threads uint8) *Argon2Deriver {
	if time == 0 {
		time = defaultTime
	}
	if memoryK == 0 {
		memoryK = defaultMemoryK
	}
	if threads == 0 {
		threads = defaultThreads
	}
	return &Argon2Deriver{time: time, memoryK: memoryK, threads: threads}
}

// DeriveKey derives the 32-byte encryption key from the passphrase and salt.
// Deterministic for identical inputs.
func (d *Argon2Deriver) DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, d.time, d.memoryK, d.threads, keySize)
}

// HashPassphrase returns the hex-encoded verifier stored at enrollment.
func (d *Argon2Deriver) HashPassphrase(passphrase, salt []byte) string {
	sum := sha256.Sum256(d.DeriveKey(passphrase, salt))
	return hex.EncodeToString(sum[:])
}

// GenerateSalt returns a fresh random 16-byte salt, hex-encoded.
func (d *Argon2Deriver) GenerateSalt() (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return hex.EncodeToString(salt), nil
}
