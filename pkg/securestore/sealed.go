package securestore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// saltKey is the reserved backend key holding the key-derivation salt.
// A reserved key keeps the salt co-located with the data it protects, so
// copying the backing store copies everything needed to unseal it.
const saltKey = "securestore.salt"

const saltSize = 16

// Argon2id parameters for deriving the AES-256 key from the passphrase.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// ErrUnsealFailed is returned when a stored value cannot be decrypted,
// usually because the passphrase is wrong or the data was tampered with.
var ErrUnsealFailed = errors.New("securestore: unseal failed")

// Sealed wraps a Backend with AES-256-GCM encryption at rest. The cipher key
// is derived from a passphrase with argon2id and a per-store random salt
// persisted in the underlying backend. Stored values are formatted as
// [nonce][ciphertext+tag].
type Sealed struct {
	inner Backend
	aead  cipher.AEAD
}

// NewSealed derives the encryption key and returns the encrypting wrapper.
// The salt is created on first use and reused afterwards, so the same
// passphrase always unseals previously written values.
func NewSealed(ctx context.Context, inner Backend, passphrase string) (*Sealed, error) {
	salt, err := inner.Get(ctx, saltKey)
	if errors.Is(err, ErrNotFound) {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("securestore: generate salt: %w", err)
		}
		if err := inner.Set(ctx, saltKey, salt); err != nil {
			return nil, fmt.Errorf("securestore: persist salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("securestore: load salt: %w", err)
	}

	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, 32)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("securestore: create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("securestore: create gcm: %w", err)
	}

	return &Sealed{inner: inner, aead: aead}, nil
}

func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, ErrUnsealFailed
	}

	plaintext, err := s.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, ErrUnsealFailed
	}
	return plaintext, nil
}

func (s *Sealed) Set(ctx context.Context, key string, value []byte) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("securestore: generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, value, nil)
	return s.inner.Set(ctx, key, sealed)
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *Sealed) Close() error { return s.inner.Close() }
