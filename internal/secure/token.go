// Package secure holds the build-service access token in protected
// memory between acquisition and environment injection.
//
// It wraps the memguard library: the token is encrypted at rest in
// memory (XSalsa20Poly1305), mlocked against swapping where the
// platform allows it, and wiped on destruction. If mlock is
// unavailable memguard degrades gracefully to standard allocation.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// TokenBuffer stores an access token in an encrypted memguard enclave.
// The plaintext only exists transiently, inside Reveal, while the
// process environment is being assembled.
type TokenBuffer struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy calls and prevents use after
	// destruction
	destroyed bool
}

// NewTokenBuffer seals a token into protected memory. The caller's
// copy of the string is not wiped; callers should drop their reference
// immediately.
func NewTokenBuffer(token string) *TokenBuffer {
	if token == "" {
		// memguard rejects zero-length buffers; an empty token is
		// representable as a nil enclave.
		return &TokenBuffer{}
	}
	return &TokenBuffer{
		enclave: memguard.NewEnclave([]byte(token)),
	}
}

// Reveal decrypts the token and returns it as a string. The enclave
// remains sealed for subsequent calls.
func (b *TokenBuffer) Reveal() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed || b.enclave == nil {
		return "", nil
	}

	locked, err := b.enclave.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()

	// Copy out before the locked buffer is wiped; LockedBuffer.String
	// would alias the protected region.
	return string(locked.Bytes()), nil
}

// Destroy marks the buffer as unusable. It is idempotent; after
// Destroy, Reveal returns the empty string. For full cleanup of all
// memguard state at exit, main defers memguard.Purge().
func (b *TokenBuffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return
	}
	b.enclave = nil
	b.destroyed = true
}
