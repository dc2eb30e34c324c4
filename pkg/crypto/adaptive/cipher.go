package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the cipher algorithm.
type CipherType byte

const (
	CipherAESGCM   CipherType = 1
	CipherChaCha20 CipherType = 2
)

// String returns the algorithm name.
func (t CipherType) String() string {
	switch t {
	case CipherAESGCM:
		return "aes-256-gcm"
	case CipherChaCha20:
		return "chacha20-poly1305"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// KeySize is the required key length for every cipher.
const KeySize = 32

// blobVersion is the first byte of every sealed blob.
const blobVersion byte = 1

var (
	// ErrInvalidKey is returned for keys that are not KeySize bytes.
	ErrInvalidKey = errors.New("adaptive: key must be 32 bytes")
	// ErrMalformed is returned when a blob is too short or has an unknown header.
	ErrMalformed = errors.New("adaptive: malformed ciphertext")
	// ErrAuth is returned when authentication fails (wrong key or tampering).
	ErrAuth = errors.New("adaptive: message authentication failed")
)

// Cipher provides authenticated encryption of small values.
type Cipher struct {
	key  []byte
	typ  CipherType
	aead cipher.AEAD
}

// New creates a cipher for key, selecting the algorithm for this host.
func New(key []byte) (*Cipher, error) {
	if hasAESAcceleration() {
		return NewWithType(key, CipherAESGCM)
	}
	return NewWithType(key, CipherChaCha20)
}

// NewWithType creates a cipher of the specified type.
func NewWithType(key []byte, t CipherType) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := newAEAD(key, t)
	if err != nil {
		return nil, err
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Cipher{key: k, typ: t, aead: aead}, nil
}

// Type returns the cipher used for sealing.
func (c *Cipher) Type() CipherType {
	return c.typ
}

// Seal encrypts plaintext bound to additionalData.
// Output layout: version | type | nonce | ciphertext+tag.
func (c *Cipher) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, 2+len(nonce)+len(plaintext)+c.aead.Overhead())
	out = append(out, blobVersion, byte(c.typ))
	out = append(out, nonce...)
	return c.aead.Seal(out, nonce, plaintext, additionalData), nil
}

// Open decrypts a blob produced by Seal with the same key, whichever
// cipher type produced it.
func (c *Cipher) Open(blob, additionalData []byte) ([]byte, error) {
	if len(blob) < 2 || blob[0] != blobVersion {
		return nil, ErrMalformed
	}

	aead := c.aead
	if t := CipherType(blob[1]); t != c.typ {
		var err error
		if aead, err = newAEAD(c.key, t); err != nil {
			return nil, ErrMalformed
		}
	}

	body := blob[2:]
	if len(body) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrMalformed
	}

	nonce, ct := body[:aead.NonceSize()], body[aead.NonceSize():]
	pt, err := aead.Open(nil, nonce, ct, additionalData)
	if err != nil {
		return nil, ErrAuth
	}
	return pt, nil
}

func newAEAD(key []byte, t CipherType) (cipher.AEAD, error) {
	switch t {
	case CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case CipherChaCha20:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("adaptive: unknown cipher type %d", byte(t))
	}
}

// hasAESAcceleration reports whether crypto/aes uses hardware here.
func hasAESAcceleration() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64", "s390x", "ppc64le":
		return true
	default:
		return false
	}
}
