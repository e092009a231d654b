package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"securevault/internal/database"
	"securevault/internal/database/migrations"
	"securevault/internal/vault"
)

// Logical keys in the vault_items table.
const (
	keySalt           = "salt"
	keyPassphraseHash = "passphrase_hash"
	keyEnrolled       = "enrolled"
	keySchemaVersion  = "schema_version"
	keyVaultBlob      = "vault_blob"
)

// SQLiteStorage is a vault.Storage implementation backed by a SQLite database.
// Enrollment metadata and the encrypted blob live in a single key/value table.
type SQLiteStorage struct {
	db *sql.DB
}

var _ vault.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (or creates) the database at path. A schema that is
// behind the embedded migrations is migrated forward; one that is dirty or
// ahead of this binary fails the re-check and is refused.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := database.OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.CheckDBMigrationStatus(db); err != nil {
		if err := migrations.MigrateUp(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		if err := migrations.CheckDBMigrationStatus(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("database schema is not usable: %w", err)
		}
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Enrollment() (*vault.Enrollment, error) {
	enrolled, err := s.getItem(keyEnrolled)
	if err != nil {
		return nil, err
	}
	if string(enrolled) != "true" {
		return nil, nil
	}

	versionBytes, err := s.getItem(keySchemaVersion)
	if err != nil {
		return nil, err
	}
	if versionBytes != nil {
		version, err := strconv.Atoi(string(versionBytes))
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %q: %w", versionBytes, err)
		}
		if version > vault.SchemaVersion {
			return nil, fmt.Errorf("vault schema version %d is newer than supported version %d", version, vault.SchemaVersion)
		}
	}

	salt, err := s.getItem(keySalt)
	if err != nil {
		return nil, err
	}
	hash, err := s.getItem(keyPassphraseHash)
	if err != nil {
		return nil, err
	}

	return &vault.Enrollment{
		Salt:           string(salt),
		PassphraseHash: string(hash),
	}, nil
}

func (s *SQLiteStorage) SaveEnrollment(e *vault.Enrollment) error {
	// Salt, hash and the enrolled flag must be written together.
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	items := map[string][]byte{
		keySalt:           []byte(e.Salt),
		keyPassphraseHash: []byte(e.PassphraseHash),
		keyEnrolled:       []byte("true"),
		keySchemaVersion:  []byte(strconv.Itoa(vault.SchemaVersion)),
	}
	for key, value := range items {
		if err := setItemTx(tx, key, value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit enrollment: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadBlob() ([]byte, error) {
	blob, err := s.getItem(keyVaultBlob)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, vault.ErrNoBlob
	}
	return blob, nil
}

func (s *SQLiteStorage) StoreBlob(data []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO vault_items (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		keyVaultBlob, data,
	)
	if err != nil {
		return fmt.Errorf("failed to store vault blob: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Reset() error {
	if _, err := s.db.Exec("DELETE FROM vault_items"); err != nil {
		return fmt.Errorf("failed to reset vault: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// getItem returns the value for key, or nil if the key does not exist.
func (s *SQLiteStorage) getItem(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM vault_items WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func setItemTx(tx *sql.Tx, key string, value []byte) error {
	_, err := tx.Exec(
		"INSERT INTO vault_items (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
