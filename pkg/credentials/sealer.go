package credentials

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrSealedValue is returned when a sealed value cannot be opened.
var ErrSealedValue = errors.New("credentials: invalid sealed value")

const sealerInfo = "intakeqc session cookie v1"

// Sealer encrypts tokens for storage in browser cookies.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an XChaCha20-Poly1305 key from secret with HKDF-SHA256.
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) < 16 {
		return nil, errors.New("credentials: session secret must be at least 16 bytes")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(sealerInfo)), key); err != nil {
		return nil, fmt.Errorf("credentials: derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("credentials: init cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts value bound to purpose and returns URL-safe text.
func (s *Sealer) Seal(purpose, value string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("credentials: nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(purpose))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values sealed for another purpose fail.
func (s *Sealer) Open(purpose, sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrSealedValue
	}
	size := s.aead.NonceSize()
	if len(raw) <= size {
		return "", ErrSealedValue
	}
	plain, err := s.aead.Open(nil, raw[:size], raw[size:], []byte(purpose))
	if err != nil {
		return "", ErrSealedValue
	}
	return string(plain), nil
}
