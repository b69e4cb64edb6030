package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldCipher(t *testing.T) {
	c, err := NewFieldCipher("k")
	require.NoError(t, err)

	ciphertext, nonce, err := c.Seal("A1234567")
	require.NoError(t, err)
	assert.NotEqual(t, "A1234567", ciphertext)

	plaintext, err := c.Open(ciphertext, nonce)
	require.NoError(t, err)
	assert.Equal(t, "A1234567", plaintext)

	// 每次加密使用新的随机数
	again, nonce2, err := c.Seal("A1234567")
	require.NoError(t, err)
	assert.NotEqual(t, ciphertext, again)
	assert.NotEqual(t, nonce, nonce2)

	empty, emptyNonce, err := c.Seal("")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Empty(t, emptyNonce)
	plaintext, err = c.Open("", "")
	require.NoError(t, err)
	assert.Empty(t, plaintext)

	other, err := NewFieldCipher("other")
	require.NoError(t, err)
	_, err = other.Open(ciphertext, nonce)
	assert.Error(t, err)

	_, err = NewFieldCipher("")
	assert.Error(t, err)
}
