// Package export writes and reads portable vault backups. A backup is a JSON
// snapshot of the decrypted credentials, encrypted with a passphrase using
// age's scrypt-based passphrase encryption.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"filippo.io/age"

	"securevault/internal/vault"
)

// FormatVersion identifies the backup payload layout.
const FormatVersion = 1

// ErrBadPassphrase is returned when a backup cannot be decrypted with the
// given passphrase.
var ErrBadPassphrase = errors.New("incorrect backup passphrase")

// snapshot is the JSON payload inside an encrypted backup.
type snapshot struct {
	FormatVersion int                `json:"formatVersion"`
	ExportedAt    time.Time          `json:"exportedAt"`
	Credentials   []vault.Credential `json:"credentials"`
}

// Write encrypts the given credentials with the passphrase and writes the
// backup to w.
func Write(w io.Writer, passphrase string, credentials []vault.Credential, now time.Time) error {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	payload := snapshot{
		FormatVersion: FormatVersion,
		ExportedAt:    now.UTC(),
		Credentials:   credentials,
	}
	if err := json.NewEncoder(encWriter).Encode(payload); err != nil {
		return fmt.Errorf("writing backup payload: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}

	return nil
}

// Read decrypts a backup from r using the passphrase and returns the
// credentials it contains. A wrong passphrase yields ErrBadPassphrase.
func Read(r io.Reader, passphrase string) ([]vault.Credential, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	decReader, err := age.Decrypt(r, identity)
	if err != nil {
		var badVersion *age.NoIdentityMatchError
		if errors.As(err, &badVersion) {
			return nil, ErrBadPassphrase
		}
		return nil, fmt.Errorf("decrypting backup: %w", err)
	}

	var payload snapshot
	if err := json.NewDecoder(decReader).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing backup payload: %w", err)
	}

	if payload.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("backup format version %d is newer than supported version %d",
			payload.FormatVersion, FormatVersion)
	}

	return payload.Credentials, nil
}
