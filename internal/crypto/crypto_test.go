package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptDecrypt(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	c, err := New(key)
	assert.NoError(t, err)

	ciphertext, nonce, err := c.Encrypt("shopper@example.com")
	assert.NoError(t, err)
	assert.NotEqual(t, []byte("shopper@example.com"), ciphertext)

	plaintext, err := c.Decrypt(ciphertext, nonce)
	assert.NoError(t, err)
	assert.Equal(t, "shopper@example.com", plaintext)
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New([]byte("too short"))
	assert.Error(t, err)
}

func TestDecryptRejectsTampering(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	c, err := New(key)
	assert.NoError(t, err)

	ciphertext, nonce, err := c.Encrypt("shopper@example.com")
	assert.NoError(t, err)
	ciphertext[0] ^= 0xff

	_, err = c.Decrypt(ciphertext, nonce)
	assert.Error(t, err)
}
