package islet

import (
	"errors"

	"github.com/pthm/islet/lib/cipher"
)

// Key is an alias for cipher.Key for convenience.
type Key = cipher.Key

// Algorithm is an alias for cipher.Algorithm for convenience.
type Algorithm = cipher.Algorithm

// Digest algorithm tokens re-exported from lib/cipher.
const (
	SHA256 = cipher.SHA256
	SHA384 = cipher.SHA384
	SHA512 = cipher.SHA512
)

// NewKey generates a fresh response-scoped key.
func NewKey() (*Key, error) {
	return cipher.NewKey()
}

// DecodeKey rebuilds a key from its encoded string form.
func DecodeKey(encoded string) (*Key, error) {
	return cipher.DecodeKey(encoded)
}

// Digest returns a CSP hash source token for inline content.
func Digest(content string, alg Algorithm) (string, error) {
	return cipher.Digest(content, alg)
}

// wrapCipherError wraps cipher package errors with islet sentinel errors.
func wrapCipherError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, cipher.ErrInvalidFormat) {
		return ErrInvalidFormat
	}
	if errors.Is(err, cipher.ErrDecryptFailed) {
		return ErrDecryptFailed
	}
	return err
}
