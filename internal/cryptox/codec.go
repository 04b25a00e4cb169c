// Package cryptox provides the at-rest encryption codec. Blob bytes are
// sealed with AES-256-GCM under one process-wide key; a random 12-byte
// nonce is prepended to each ciphertext.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrCipher is returned when sealed content cannot be decrypted, including
// tampered or truncated ciphertext. Callers surface it as "content
// unavailable" and must never fall back to serving the raw bytes.
var ErrCipher = errors.New("cipher error")

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

// Codec is a symmetric, authenticated encrypt/decrypt pair.
type Codec interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

type aesgcmCodec struct {
	aead cipher.AEAD
}

// New creates a Codec from a raw 32-byte key.
func New(key []byte) (Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return &aesgcmCodec{aead: aead}, nil
}

// NewFromBase64 creates a Codec from a standard-base64 encoded key, the
// form the key takes in the environment.
func NewFromBase64(encoded string) (Codec, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	return New(key)
}

// Encrypt seals plaintext and returns nonce||ciphertext.
func (c *aesgcmCodec) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens nonce||ciphertext produced by Encrypt. Any authentication
// failure is reported as ErrCipher.
func (c *aesgcmCodec) Decrypt(ciphertext []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(ciphertext) < ns {
		return nil, fmt.Errorf("%w: ciphertext shorter than nonce", ErrCipher)
	}
	nonce, sealed := ciphertext[:ns], ciphertext[ns:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	return plaintext, nil
}
