package app

import (
	"fmt"
	"os"

	"securevault/internal/config"
	"securevault/internal/crypto"
	"securevault/internal/storage"
	"securevault/internal/vault"
)

// VaultApp is the application layer between the CLI and the vault core.
// It constructs all dependencies from config and manages the storage
// lifecycle on Close.
type VaultApp struct {
	cfg     *config.Config
	storage vault.Storage
	Gate    *vault.Gate
	Store   *vault.Store
	logFile *os.File
}

// NewVaultApp creates a fully wired VaultApp from the given config.
// operation identifies the CLI command being run (e.g. "add", "login").
// The caller must call Close when done.
func NewVaultApp(cfg *config.Config, operation string) (*VaultApp, error) {
	st, err := storage.NewStorageFromConfig(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating storage: %w", err)
	}

	cipher, err := crypto.NewCipherFromConfig(cfg.Crypto)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	deriver, err := crypto.NewDeriverFromConfig(cfg.Crypto)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating key deriver: %w", err)
	}

	logger, logFile, err := newLogger(cfg.LogDir, operation)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	adapter := &slogAdapter{l: logger}
	store := vault.NewStore(st, cipher, vault.RealClock{}, vault.UUIDGenerator{}, adapter)
	gate := vault.NewGate(st, deriver, store, adapter)

	return &VaultApp{
		cfg:     cfg,
		storage: st,
		Gate:    gate,
		Store:   store,
		logFile: logFile,
	}, nil
}

// Close releases storage and the log file.
func (a *VaultApp) Close() error {
	var firstErr error

	if err := a.storage.Close(); err != nil {
		firstErr = fmt.Errorf("closing storage: %w", err)
	}

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}

	return firstErr
}
