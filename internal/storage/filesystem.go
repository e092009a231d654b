package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"securevault/internal/vault"
)

// FileSystemStorage is a filesystem-based implementation of vault.Storage.
// It keeps vault state as two files in a directory:
//
//	<root>/
//	  enrollment.json  (salt, passphrase hash, enrolled flag, schema version)
//	  vault.blob       (the encrypted credential collection)
//
// All writes go through a temp file + rename so a crash never leaves a
// half-written enrollment or blob.
type FileSystemStorage struct {
	root           string
	enrollmentPath string
	blobPath       string
}

var _ vault.Storage = (*FileSystemStorage)(nil)

// enrollmentFile is the on-disk shape of the enrollment record.
type enrollmentFile struct {
	Salt           string `json:"salt"`
	PassphraseHash string `json:"passphraseHash"`
	Enrolled       bool   `json:"enrolled"`
	SchemaVersion  int    `json:"schemaVersion"`
}

// NewFileSystemStorage creates a filesystem storage rooted at the given path.
func NewFileSystemStorage(root string) (*FileSystemStorage, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileSystemStorage{
		root:           root,
		enrollmentPath: filepath.Join(root, "enrollment.json"),
		blobPath:       filepath.Join(root, "vault.blob"),
	}, nil
}

// Enrollment returns the stored enrollment record, or nil when the vault has
// never been enrolled.
func (s *FileSystemStorage) Enrollment() (*vault.Enrollment, error) {
	data, err := os.ReadFile(s.enrollmentPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading enrollment file: %w", err)
	}

	var ef enrollmentFile
	if err := json.Unmarshal(data, &ef); err != nil {
		return nil, fmt.Errorf("parsing enrollment file: %w", err)
	}
	if !ef.Enrolled {
		return nil, nil
	}
	if ef.SchemaVersion > vault.SchemaVersion {
		return nil, fmt.Errorf("vault schema version %d is ahead of binary version %d (binary needs update)",
			ef.SchemaVersion, vault.SchemaVersion)
	}

	return &vault.Enrollment{Salt: ef.Salt, PassphraseHash: ef.PassphraseHash}, nil
}

// SaveEnrollment persists salt, hash, flag and schema version in one atomic
// write.
func (s *FileSystemStorage) SaveEnrollment(e *vault.Enrollment) error {
	data, err := json.Marshal(enrollmentFile{
		Salt:           e.Salt,
		PassphraseHash: e.PassphraseHash,
		Enrolled:       true,
		SchemaVersion:  vault.SchemaVersion,
	})
	if err != nil {
		return fmt.Errorf("serializing enrollment: %w", err)
	}
	return s.writeFile(s.enrollmentPath, bytes.NewReader(data))
}

// LoadBlob returns the encrypted vault blob, or vault.ErrNoBlob when none
// has been written yet.
func (s *FileSystemStorage) LoadBlob() ([]byte, error) {
	data, err := os.ReadFile(s.blobPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vault.ErrNoBlob
		}
		return nil, fmt.Errorf("reading vault blob: %w", err)
	}
	return data, nil
}

// StoreBlob atomically overwrites the encrypted vault blob.
func (s *FileSystemStorage) StoreBlob(data []byte) error {
	return s.writeFile(s.blobPath, bytes.NewReader(data))
}

// Reset removes all persisted vault state.
func (s *FileSystemStorage) Reset() error {
	for _, path := range []string{s.enrollmentPath, s.blobPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

// Close is a no-op for filesystem storage.
func (s *FileSystemStorage) Close() error { return nil }

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (s *FileSystemStorage) writeFile(destPath string, r io.Reader) error {
	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
