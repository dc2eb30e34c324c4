package tokenstore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/storage"
	"github.com/kubecloudsinc/kci-client/pkg/crypto/adaptive"
)

// Storage keys.
var (
	TokenKey = []byte("kci/session/token")
	SaltKey  = []byte("kci/session/salt")
)

// Value prefixes distinguishing plain and sealed tokens.
var (
	plainPrefix  = []byte("p:")
	sealedPrefix = []byte("s:")
)

// KVStore keeps the token in a storage.KVEngine.
type KVStore struct {
	engine     storage.KVEngine
	passphrase string
	logger     *slog.Logger

	mu     sync.Mutex // guards cipher initialisation
	cipher *adaptive.Cipher
}

// Option configures a KVStore.
type Option func(*KVStore)

// WithPassphrase seals the token at rest with a key derived from p.
func WithPassphrase(p string) Option {
	return func(s *KVStore) {
		s.passphrase = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *KVStore) {
		s.logger = l
	}
}

// NewKVStore creates a token store on engine.
func NewKVStore(engine storage.KVEngine, opts ...Option) *KVStore {
	s := &KVStore{
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored token.
//
// A sealed token that cannot be opened (no passphrase, wrong passphrase,
// corrupted value) is reported as absent and logged.
func (s *KVStore) Get(ctx context.Context) (domain.Token, bool, error) {
	raw, err := s.engine.Get(ctx, TokenKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, domain.ErrStorage.WithCause(err)
	}

	switch {
	case bytes.HasPrefix(raw, plainPrefix):
		t := domain.Token(raw[len(plainPrefix):])
		return t, !t.IsZero(), nil

	case bytes.HasPrefix(raw, sealedPrefix):
		if s.passphrase == "" {
			s.logger.Warn("stored token is sealed but no passphrase is configured")
			return "", false, nil
		}
		c, err := s.cipherFor(ctx, false)
		if err != nil {
			s.logger.Warn("cannot derive token key", "error", err)
			return "", false, nil
		}
		pt, err := c.Open(raw[len(sealedPrefix):], TokenKey)
		if err != nil {
			s.logger.Warn("cannot open stored token", "error", err)
			return "", false, nil
		}
		t := domain.Token(pt)
		return t, !t.IsZero(), nil

	default:
		s.logger.Warn("ignoring stored token with unknown encoding")
		return "", false, nil
	}
}

// Set stores t, replacing any previous token.
func (s *KVStore) Set(ctx context.Context, t domain.Token) error {
	if t.IsZero() {
		return domain.ErrInvalidArgument.WithDetails("empty token")
	}

	var value []byte
	if s.passphrase == "" {
		value = append(append([]byte{}, plainPrefix...), t...)
	} else {
		c, err := s.cipherFor(ctx, true)
		if err != nil {
			return domain.ErrStorage.WithCause(err)
		}
		blob, err := c.Seal([]byte(t), TokenKey)
		if err != nil {
			return domain.ErrStorage.WithCause(err)
		}
		value = append(append([]byte{}, sealedPrefix...), blob...)
	}

	if err := s.engine.Set(ctx, TokenKey, value); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// Clear removes the token. The salt is kept so later tokens reuse the key.
func (s *KVStore) Clear(ctx context.Context) error {
	if err := s.engine.Delete(ctx, TokenKey); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// cipherFor returns the sealing cipher, loading the salt from the engine
// or, when create is set, generating and storing a new one.
func (s *KVStore) cipherFor(ctx context.Context, create bool) (*adaptive.Cipher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cipher != nil {
		return s.cipher, nil
	}

	salt, err := s.engine.Get(ctx, SaltKey)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound) && create:
		if salt, err = adaptive.NewSalt(); err != nil {
			return nil, err
		}
		if err := s.engine.Set(ctx, SaltKey, salt); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	key, err := adaptive.DeriveKey(s.passphrase, salt)
	if err != nil {
		return nil, err
	}
	c, err := adaptive.New(key)
	if err != nil {
		return nil, err
	}
	s.cipher = c
	return c, nil
}
