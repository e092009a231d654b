package vault

import "errors"

var (
	// ErrAuthentication indicates a wrong master passphrase. Expected and
	// recoverable: the caller should let the user retry.
	ErrAuthentication = errors.New("invalid master passphrase")

	// ErrAlreadyEnrolled is returned by Enroll when the vault already has a
	// master passphrase. Caller-sequencing error, not fatal.
	ErrAlreadyEnrolled = errors.New("vault is already enrolled")

	// ErrNotEnrolled is returned by Login when no enrollment exists yet.
	ErrNotEnrolled = errors.New("vault is not enrolled")

	// ErrNotFound is returned by Update and Delete for an unknown credential
	// ID. The caller should refresh its view.
	ErrNotFound = errors.New("credential not found")

	// ErrLocked is returned when a Store operation runs without an active
	// session key. This is a programming error in the caller, never a
	// recoverable condition: nothing is ever persisted in plaintext.
	ErrLocked = errors.New("vault is locked")

	// ErrEncrypt wraps failures of the encryption primitive. Unexpected and
	// fatal to the operation; the in-memory state is left unchanged.
	ErrEncrypt = errors.New("encryption failed")

	// ErrDecrypt wraps failures to decrypt the persisted blob: wrong key or
	// corrupted/truncated ciphertext. After a successful passphrase check it
	// signals data corruption rather than wrong credentials.
	ErrDecrypt = errors.New("decryption failed: wrong key or corrupted data")

	// ErrNoBlob is returned by Storage.LoadBlob when no vault blob has been
	// persisted yet. The Store treats it as an empty record set.
	ErrNoBlob = errors.New("no vault blob stored")
)
