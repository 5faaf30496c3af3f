// Package persistence holds storage decorators that work over any
// ports.Repository backend.
package persistence

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/courier/pkg/ports"
)

// KeySize is the AES-256 key length.
const KeySize = 32

// ErrKeySize is returned for keys that are not KeySize bytes long.
var ErrKeySize = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new values.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt,
	// so keys can be rotated without rewriting stored data.
	FallbackKeys [][]byte
}

// Envelope is what an encrypted repository actually stores: the
// base64 AES-GCM ciphertext of the JSON value.
type Envelope struct {
	Data string `json:"data"`
}

// Encrypted is a Repository[T] that seals every value before handing it to
// the underlying Repository[Envelope].
type Encrypted[T any] struct {
	next   ports.Repository[Envelope]
	config EncryptionConfig
}

var _ ports.Repository[struct{}] = (*Encrypted[struct{}])(nil)

// NewEncrypted wraps next. Every key must be KeySize bytes.
func NewEncrypted[T any](next ports.Repository[Envelope], config EncryptionConfig) (*Encrypted[T], error) {
	if len(config.ActiveKey) != KeySize {
		return nil, ErrKeySize
	}
	for _, k := range config.FallbackKeys {
		if len(k) != KeySize {
			return nil, ErrKeySize
		}
	}
	return &Encrypted[T]{next: next, config: config}, nil
}

// ParseKey decodes a base64 key and checks its length.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	return key, nil
}

func (r *Encrypted[T]) Save(ctx context.Context, id string, value T) error {
	plainText, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}
	ciphertext, err := encrypt(plainText, r.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", id, err)
	}
	return r.next.Save(ctx, id, Envelope{Data: base64.StdEncoding.EncodeToString(ciphertext)})
}

func (r *Encrypted[T]) Load(ctx context.Context, id string) (T, error) {
	env, err := r.next.Load(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.open(id, env)
}

func (r *Encrypted[T]) Delete(ctx context.Context, id string) error {
	return r.next.Delete(ctx, id)
}

// List decrypts every envelope, keeping the underlying order.
func (r *Encrypted[T]) List(ctx context.Context) ([]T, error) {
	envs, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(envs))
	for i, env := range envs {
		v, err := r.open(fmt.Sprintf("entry %d", i), env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Encrypted[T]) open(id string, env Envelope) (T, error) {
	var value T
	if env.Data == "" {
		return value, fmt.Errorf("%s is missing its encrypted data", id)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return value, fmt.Errorf("failed to decode ciphertext of %s: %w", id, err)
	}
	plainText, err := decryptWithRotation(ciphertext, r.config.ActiveKey, r.config.FallbackKeys)
	if err != nil {
		return value, fmt.Errorf("failed to decrypt %s: %w", id, err)
	}
	if err := json.Unmarshal(plainText, &value); err != nil {
		return value, fmt.Errorf("failed to unmarshal %s: %w", id, err)
	}
	return value, nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
