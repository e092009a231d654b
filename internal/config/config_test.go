package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/sv",
		LogDir:  "/home/user/.local/share/sv/log",
		Storage: StorageConfig{
			Type:        "s3",
			S3Bucket:    "vault",
			S3Prefix:    "sv",
			S3Region:    "us-east-1",
			S3Endpoint:  "http://127.0.0.1:9000/",
			S3AccessKey: "admin",
			S3SecretKey: "secretpassword",
		},
		Crypto: CryptoConfig{
			Type:          "aesgcm",
			Argon2Time:    2,
			Argon2MemoryK: 32 * 1024,
			Argon2Threads: 2,
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Storage.Type != "s3" {
		t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "s3")
	}
	if got.Storage.S3Bucket != "vault" {
		t.Errorf("Storage.S3Bucket = %q, want %q", got.Storage.S3Bucket, "vault")
	}
	if got.Storage.S3Endpoint != "http://127.0.0.1:9000/" {
		t.Errorf("Storage.S3Endpoint = %q, want %q", got.Storage.S3Endpoint, "http://127.0.0.1:9000/")
	}
	if got.Crypto.Type != "aesgcm" {
		t.Errorf("Crypto.Type = %q, want %q", got.Crypto.Type, "aesgcm")
	}
	if got.Crypto.Argon2Time != 2 {
		t.Errorf("Crypto.Argon2Time = %d, want 2", got.Crypto.Argon2Time)
	}
	if got.Crypto.Argon2MemoryK != 32*1024 {
		t.Errorf("Crypto.Argon2MemoryK = %d, want %d", got.Crypto.Argon2MemoryK, 32*1024)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/sv")

	if cfg.BaseDir != "/data/sv" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/sv")
	}
	if cfg.LogDir != "/data/sv/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/sv/log")
	}
	if cfg.Storage.Type != "filesystem" {
		t.Errorf("Storage.Type = %q, want %q", cfg.Storage.Type, "filesystem")
	}
	if cfg.Storage.DataDir != "/data/sv/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/data/sv/data")
	}
	if cfg.Crypto.Type != "aesgcm" {
		t.Errorf("Crypto.Type = %q, want %q", cfg.Crypto.Type, "aesgcm")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sv.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sv.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sv.toml")
		cfg := NewConfig(dir)
		cfg.Storage = StorageConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Storage.Type != "memory" {
			t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/sv.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
