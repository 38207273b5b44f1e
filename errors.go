package islet

import "errors"

// Sentinel errors for island operations.
var (
	ErrIslandNotRegistered = errors.New("islet: island not registered")
	ErrBadRequest          = errors.New("islet: invalid island request")
	ErrMethodNotAllowed    = errors.New("islet: method not allowed")
	ErrDecryptFailed       = errors.New("islet: payload decryption failed")
	ErrInvalidFormat       = errors.New("islet: invalid payload format")
)

// IsConfigurationError checks if err signals a registry/build mismatch.
// These abort a single island's render, never the whole response.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrIslandNotRegistered)
}

// IsValidationError checks if err is a request validation failure (400).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsMethodNotAllowed checks if err is an unsupported-method failure (405).
func IsMethodNotAllowed(err error) bool {
	return errors.Is(err, ErrMethodNotAllowed)
}

// IsCryptographicError checks if err is a decryption or payload format error.
// Treated as a potential tampering signal; never retried, never downgraded
// to a plaintext path.
func IsCryptographicError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrInvalidFormat)
}
