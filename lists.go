package intakeqc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/fetch"
)

// DefaultListCacheSize bounds the number of per-credential list caches kept
// for each resource.
const DefaultListCacheSize = 128

const anonymousKey = "anonymous"

// lists holds one fetcher per credential so a cached envelope is only handed
// back to callers presenting the token it was fetched with. Callers without
// a token share their own anonymous entry.
type lists struct {
	mu    sync.Mutex
	cache *lru.Cache
	creds credentials.Provider
	build func() *fetch.Fetcher
}

func newLists(size int, creds credentials.Provider, build func() *fetch.Fetcher) *lists {
	if size <= 0 {
		size = DefaultListCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return &lists{cache: cache, creds: creds, build: build}
}

// fetcher returns the fetcher for the token creds yields on ctx, falling back
// to the lists' own provider when creds is nil.
func (l *lists) fetcher(ctx context.Context, creds credentials.Provider) (*fetch.Fetcher, error) {
	key, err := l.key(ctx, creds)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if value, ok := l.cache.Get(key); ok {
		return value.(*fetch.Fetcher), nil
	}
	f := l.build()
	l.cache.Add(key, f)
	return f, nil
}

func (l *lists) key(ctx context.Context, creds credentials.Provider) (string, error) {
	if creds == nil {
		creds = l.creds
	}
	if creds == nil {
		return anonymousKey, nil
	}
	token, err := creds.Token(ctx)
	switch {
	case errors.Is(err, credentials.ErrNoToken):
		return anonymousKey, nil
	case err != nil:
		return "", err
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:]), nil
}
