package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// FieldCipher 对单个敏感字段做 AES-GCM 加密，密钥由配置口令经 sha256 派生
type FieldCipher struct {
	aead cipher.AEAD
}

func NewFieldCipher(secret string) (*FieldCipher, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("encryption key cannot be empty")
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &FieldCipher{aead: aead}, nil
}

// Seal 返回 base64 编码的密文与随机数，空值不加密
func (c *FieldCipher) Seal(plaintext string) (ciphertext, nonce string, err error) {
	if plaintext == "" {
		return "", "", nil
	}

	nonceBytes := make([]byte, c.aead.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonceBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonceBytes, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), base64.StdEncoding.EncodeToString(nonceBytes), nil
}

func (c *FieldCipher) Open(ciphertext, nonce string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	if nonce == "" {
		return "", fmt.Errorf("nonce cannot be empty")
	}

	ciphertextBytes, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	nonceBytes, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil {
		return "", fmt.Errorf("failed to decode nonce: %w", err)
	}

	plaintext, err := c.aead.Open(nil, nonceBytes, ciphertextBytes, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}
