// Package cipher provides the symmetric encryption and digest primitives
// for the island protocol.
//
// A Key is scoped to a single response: every island rendered into one page
// shares the same key, and the key is never reused across responses. Payloads
// are sealed with AES-256-GCM under a fresh random nonce per call, so the
// same plaintext encrypts to a different string every time while remaining
// authenticated - any bit flip or key mismatch fails decryption outright.
//
// Digest produces CSP-style hash source tokens (sha256-..., sha384-...,
// sha512-...) for inline script and style content.
package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// Sentinel errors for cipher operations.
var (
	ErrDecryptFailed = errors.New("cipher: payload decryption failed")
	ErrInvalidFormat = errors.New("cipher: invalid payload format")
	ErrInvalidKey    = errors.New("cipher: invalid key")
)

// Key is a response-scoped AES-256-GCM key.
//
// Create one with NewKey per response, or rebuild one from its encoded form
// with DecodeKey when crossing an asynchronous boundary within the same
// response. A decoded key decrypts everything the original encrypted.
type Key struct {
	raw  []byte
	aead stdcipher.AEAD
}

// NewKey generates a fresh random key.
//
// Failure here means the process randomness source is broken; callers should
// treat it as fatal.
func NewKey() (*Key, error) {
	raw := make([]byte, KeySize)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("cipher: key generation failed: %w", err)
	}
	return keyFromRaw(raw)
}

// DecodeKey rebuilds a key from its Encode output.
func DecodeKey(encoded string) (*Key, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(raw), KeySize)
	}
	return keyFromRaw(raw)
}

func keyFromRaw(raw []byte) (*Key, error) {
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	aead, err := stdcipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Key{raw: raw, aead: aead}, nil
}

// Encode serializes the key to a portable string form.
func (k *Key) Encode() string {
	return base64.RawURLEncoding.EncodeToString(k.raw)
}

// Encrypt seals plaintext under a fresh random nonce and returns the encoded
// payload: base64url(nonce || ciphertext || tag).
//
// Two calls with the same plaintext yield different outputs; both decrypt.
func (k *Key) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, k.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cipher: nonce generation failed: %w", err)
	}
	sealed := k.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an Encrypt output.
//
// Any tampering with the payload, or a key other than the one that sealed
// it, returns ErrDecryptFailed. There is no partial or best-effort result.
func (k *Key) Decrypt(encoded string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(sealed) < k.aead.NonceSize() {
		return "", fmt.Errorf("%w: payload too short", ErrInvalidFormat)
	}
	nonce, ciphertext := sealed[:k.aead.NonceSize()], sealed[k.aead.NonceSize():]
	plaintext, err := k.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}

// Algorithm selects the hash function for Digest.
type Algorithm string

const (
	SHA256 Algorithm = "SHA-256"
	SHA384 Algorithm = "SHA-384"
	SHA512 Algorithm = "SHA-512"
)

// Digest hashes content and returns a CSP hash source token without quotes,
// e.g. "sha256-RFWPLDbv2BY+rCkDzsE+0fr8ylGr2R2faWMhq4lfEQc=".
//
// Deterministic: same content and algorithm always produce the same token.
// CSP requires standard (padded) base64 for hash sources.
func Digest(content string, alg Algorithm) (string, error) {
	var sum []byte
	var prefix string
	switch alg {
	case SHA256:
		h := sha256.Sum256([]byte(content))
		sum, prefix = h[:], "sha256"
	case SHA384:
		h := sha512.Sum384([]byte(content))
		sum, prefix = h[:], "sha384"
	case SHA512:
		h := sha512.Sum512([]byte(content))
		sum, prefix = h[:], "sha512"
	default:
		return "", fmt.Errorf("cipher: unsupported digest algorithm %q", alg)
	}
	return prefix + "-" + base64.StdEncoding.EncodeToString(sum), nil
}
