package cryptox

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := New(testKey(t))
	require.NoError(t, err)

	cases := [][]byte{
		[]byte("hello world"),
		{},
		[]byte{0x00, 0xff, 0x10},
		bytes.Repeat([]byte("a"), 1<<16),
	}
	for _, plaintext := range cases {
		sealed, err := codec.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, sealed)

		opened, err := codec.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	}
}

func TestCodec_NoncesDiffer(t *testing.T) {
	codec, err := New(testKey(t))
	require.NoError(t, err)

	a, err := codec.Encrypt([]byte("same input"))
	require.NoError(t, err)
	b, err := codec.Encrypt([]byte("same input"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCodec_TamperDetected(t *testing.T) {
	codec, err := New(testKey(t))
	require.NoError(t, err)

	sealed, err := codec.Encrypt([]byte("sensitive"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0x01

	_, err = codec.Decrypt(sealed)
	assert.True(t, errors.Is(err, ErrCipher))
}

func TestCodec_TruncatedCiphertext(t *testing.T) {
	codec, err := New(testKey(t))
	require.NoError(t, err)

	_, err = codec.Decrypt([]byte{0x01, 0x02})
	assert.True(t, errors.Is(err, ErrCipher))
}

func TestCodec_WrongKey(t *testing.T) {
	c1, err := New(testKey(t))
	require.NoError(t, err)
	c2, err := New(testKey(t))
	require.NoError(t, err)

	sealed, err := c1.Encrypt([]byte("payload"))
	require.NoError(t, err)

	_, err = c2.Decrypt(sealed)
	assert.True(t, errors.Is(err, ErrCipher))
}

func TestNew_RejectsBadKeyLength(t *testing.T) {
	_, err := New([]byte("short"))
	assert.Error(t, err)
}

func TestNewFromBase64(t *testing.T) {
	key := testKey(t)
	codec, err := NewFromBase64(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.NotNil(t, codec)

	_, err = NewFromBase64("not-base64!!")
	assert.Error(t, err)
}
