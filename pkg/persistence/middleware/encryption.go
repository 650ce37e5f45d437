package middleware

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

	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/schema"
)

// envelopeField holds the ciphertext inside the stored envelope schema.
const envelopeField = "__encrypted__"

// KeySize is the required key length (AES-256).
const KeySize = 32

// ErrNotEncrypted is returned when a stored schema is not an envelope.
var ErrNotEncrypted = errors.New("schema is missing encrypted data envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new data. Must be KeySize bytes.
	ActiveKey []byte

	// FallbackKeys are tried when the active key cannot decrypt, so keys
	// can be rotated without rewriting every schema first.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SchemaStore
	config EncryptionConfig
}

// NewEncryptionMiddleware encrypts schemas with AES-GCM before they reach the
// wrapped store. The store only ever sees an envelope schema with a single
// string field whose default is the ciphertext, so any SchemaStore can hold it.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != KeySize {
		return nil, fmt.Errorf("active key must be %d bytes (AES-256), got %d", KeySize, len(config.ActiveKey))
	}
	for i, k := range config.FallbackKeys {
		if len(k) != KeySize {
			return nil, fmt.Errorf("fallback key %d must be %d bytes, got %d", i, KeySize, len(k))
		}
	}
	return func(next ports.SchemaStore) ports.SchemaStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, name string, raw *schema.Raw) error {
	plainText, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt schema: %w", err)
	}

	envelope := schema.NewRaw().Set(envelopeField, schema.Descriptor{
		Type:    schema.String,
		Default: base64.StdEncoding.EncodeToString(ciphertext),
	})
	return m.next.Save(ctx, name, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, name string) (*schema.Raw, error) {
	envelope, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	encoded, err := envelopeText(envelope)
	if err != nil {
		return nil, err
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt schema %s: %w", name, err)
	}

	return schema.ParseJSON(plainText)
}

func (m *encryptionMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// envelopeText fails closed: plain schemas are rejected rather than served.
func envelopeText(envelope *schema.Raw) (string, error) {
	if envelope.Len() != 1 {
		return "", ErrNotEncrypted
	}
	def, ok := envelope.Get(envelopeField)
	if !ok {
		return "", ErrNotEncrypted
	}
	d, ok := def.(schema.Descriptor)
	if !ok {
		return "", ErrNotEncrypted
	}
	s, ok := d.Default.(string)
	if !ok {
		return "", ErrNotEncrypted
	}
	return s, nil
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
