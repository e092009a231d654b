package crypto

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"securevault/internal/vault"
)

// testHeader is prepended to data by TestCipher to make "encrypted" output
// clearly different from plaintext while remaining deterministic and
// reversible.
var testHeader = []byte("SVENC\x00\x00\x00")

// TestCipher is a simple, deterministic cipher for testing. It prepends a
// fixed 8-byte header plus the key during "encryption" and verifies both
// during "decryption", so a wrong key fails the same way a real
// authentication failure would — without paying for real crypto in tests.
type TestCipher struct{}

var _ vault.Cipher = (*TestCipher)(nil)

// NewTestCipher creates a new TestCipher.
func NewTestCipher() *TestCipher {
	return &TestCipher{}
}

func (*TestCipher) Encrypt(plaintext, key []byte) (string, error) {
	var buf bytes.Buffer
	buf.Write(testHeader)
	buf.WriteByte(byte(len(key)))
	buf.Write(key)
	buf.Write(plaintext)
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (*TestCipher) Decrypt(ciphertext string, key []byte) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding ciphertext: %v", vault.ErrDecrypt, err)
	}
	if len(data) < len(testHeader)+1 {
		return nil, fmt.Errorf("%w: ciphertext too short", vault.ErrDecrypt)
	}
	if !bytes.Equal(data[:len(testHeader)], testHeader) {
		return nil, fmt.Errorf("%w: invalid header", vault.ErrDecrypt)
	}
	data = data[len(testHeader):]

	keyLen := int(data[0])
	data = data[1:]
	if len(data) < keyLen || !bytes.Equal(data[:keyLen], key) {
		return nil, fmt.Errorf("%w: key mismatch", vault.ErrDecrypt)
	}
	return data[keyLen:], nil
}

// TestDeriver is a cheap vault.KeyDeriver for tests: the "derived key" is
// passphrase||salt and the hash is a plain string concat. Do not use outside
// tests.
type TestDeriver struct{}

var _ vault.KeyDeriver = (*TestDeriver)(nil)

// NewTestDeriver creates a new TestDeriver.
func NewTestDeriver() *TestDeriver {
	return &TestDeriver{}
}

func (*TestDeriver) DeriveKey(passphrase, salt []byte) []byte {
	return append(append([]byte(nil), passphrase...), salt...)
}

func (*TestDeriver) HashPassphrase(passphrase, salt []byte) string {
	return "hash:" + string(passphrase) + ":" + string(salt)
}

func (*TestDeriver) GenerateSalt() (string, error) {
	return "test-salt", nil
}
