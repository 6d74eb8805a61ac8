// Package credentials supplies the bearer token used for intake API calls.
// Providers are injected into fetchers and submission pipelines; nothing reads
// the token from ambient storage.
package credentials

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when no token is available.
	ErrNoToken = errors.New("credentials: no access token")
	// ErrTokenExpired is returned when a JWT's exp claim is in the past.
	ErrTokenExpired = errors.New("credentials: access token expired")
)

// Provider returns the bearer token for the current caller.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (string, error)

// Token implements Provider.
func (f ProviderFunc) Token(ctx context.Context) (string, error) {
	if f == nil {
		return "", ErrNoToken
	}
	return f(ctx)
}

// Static always returns token.
func Static(token string) Provider {
	token = strings.TrimSpace(token)
	return ProviderFunc(func(context.Context) (string, error) {
		if token == "" {
			return "", ErrNoToken
		}
		return token, nil
	})
}

type contextKey struct{}

// WithToken stores token on ctx for FromContext.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, strings.TrimSpace(token))
}

// FromContext is a Provider reading the token stored by WithToken.
var FromContext Provider = ProviderFunc(func(ctx context.Context) (string, error) {
	token, _ := ctx.Value(contextKey{}).(string)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
})

// Bearer resolves a token from p and checks its expiry, returning the
// Authorization header value.
func Bearer(ctx context.Context, p Provider, now time.Time) (string, error) {
	if p == nil {
		return "", ErrNoToken
	}
	token, err := p.Token(ctx)
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return "", ErrNoToken
	}
	if err := CheckExpiry(token, now); err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

// CheckExpiry rejects JWTs whose exp claim is before now. Signatures are not
// verified; the API does that. Opaque tokens pass unchanged.
func CheckExpiry(token string, now time.Time) error {
	if strings.Count(token, ".") != 2 {
		return nil
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	return nil
}

// Expiry returns the exp claim of a JWT, if any.
func Expiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
