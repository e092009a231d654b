package app

import (
	"testing"

	"securevault/internal/config"
)

func TestVaultApp_Close(t *testing.T) {
	cfg := config.NewConfig(t.TempDir())
	cfg.Storage = config.StorageConfig{Type: "memory"}
	cfg.Crypto = config.CryptoConfig{Type: "test"}

	a, err := NewVaultApp(cfg, "close")
	if err != nil {
		t.Fatalf("NewVaultApp failed: %v", err)
	}

	if err := a.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}

	// The log file is already closed; the error must surface.
	if err := a.Close(); err == nil {
		t.Error("expected error from second Close, got nil")
	}
}
