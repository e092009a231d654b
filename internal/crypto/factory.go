package crypto

import (
	"fmt"

	"securevault/internal/config"
	"securevault/internal/vault"
)

// NewCipherFromConfig creates a Cipher based on the configuration type.
func NewCipherFromConfig(cfg config.CryptoConfig) (vault.Cipher, error) {
	switch cfg.Type {
	case "aesgcm", "":
		return NewAESGCMCipher(), nil
	case "test":
		return NewTestCipher(), nil
	default:
		return nil, fmt.Errorf("unknown crypto type: %q", cfg.Type)
	}
}

// NewDeriverFromConfig creates a KeyDeriver based on the configuration type.
func NewDeriverFromConfig(cfg config.CryptoConfig) (vault.KeyDeriver, error) {
	switch cfg.Type {
	case "aesgcm", "":
		return NewArgon2Deriver(cfg.Argon2Time, cfg.Argon2MemoryK, cfg.Argon2Threads), nil
	case "test":
		return NewTestDeriver(), nil
	default:
		return nil, fmt.Errorf("unknown crypto type: %q", cfg.Type)
	}
}
