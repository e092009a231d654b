package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"securevault/internal/vault"
)

// AESGCMCipher implements vault.Cipher using AES-256-GCM. Each call to
// Encrypt draws a fresh random nonce, so encrypting the same plaintext twice
// under the same key yields different ciphertexts. The ciphertext string is
// base64(nonce || sealed data).
type AESGCMCipher struct{}

var _ vault.Cipher = (*AESGCMCipher)(nil)

// NewAESGCMCipher creates a new AESGCMCipher.
func NewAESGCMCipher() *AESGCMCipher {
	return &AESGCMCipher{}
}

// Encrypt seals plaintext under the given 32-byte key.
func (*AESGCMCipher) Encrypt(plaintext, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", vault.ErrEncrypt, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: generating nonce: %v", vault.ErrEncrypt, err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a ciphertext produced by Encrypt. A wrong key, truncation or
// any corruption fails authentication and wraps vault.ErrDecrypt.
func (*AESGCMCipher) Decrypt(ciphertext string, key []byte) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding ciphertext: %v", vault.ErrDecrypt, err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vault.ErrDecrypt, err)
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", vault.ErrDecrypt)
	}
	nonce, data := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vault.ErrDecrypt, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}
	return gcm, nil
}
