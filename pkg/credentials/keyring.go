package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// Keyring defaults.
const (
	DefaultService = "intakeqc"
	DefaultKey     = "accessToken"
)

// Keyring stores the token in the operating system keychain.
type Keyring struct {
	Service string
	Key     string
}

// NewKeyring returns a keyring provider, falling back to the default service
// and key names.
func NewKeyring(service, key string) Keyring {
	if strings.TrimSpace(service) == "" {
		service = DefaultService
	}
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return Keyring{Service: service, Key: key}
}

// Token implements Provider.
func (k Keyring) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	token, err := keyring.Get(k.Service, k.Key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("credentials: read keyring: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Store saves token.
func (k Keyring) Store(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoToken
	}
	if err := keyring.Set(k.Service, k.Key, token); err != nil {
		return fmt.Errorf("credentials: write keyring: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing a missing token is not an error.
func (k Keyring) Clear() error {
	err := keyring.Delete(k.Service, k.Key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("credentials: delete keyring: %w", err)
	}
	return nil
}
