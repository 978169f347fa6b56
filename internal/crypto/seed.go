package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const ivLen = aes.BlockSize // 16 bytes, 32 hex chars

// SeedKey derives the process-wide AES-256 key from the configured secret.
// The stored row format has no room for a per-row salt, so the derivation
// must be deterministic.
func SeedKey(secret []byte) [32]byte {
	return sha256.Sum256(secret)
}

// EncryptSeed encrypts a mnemonic seed under the process-wide key and
// returns the textual row format "<32-hex-iv>:<hex ciphertext blocks>".
func EncryptSeed(seed string, key [32]byte) (string, error) {
	if seed == "" {
		return "", errors.New("seed cannot be empty")
	}

	iv := make([]byte, ivLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := pkcs7Pad([]byte(seed))
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// DecryptSeed reverses EncryptSeed. The returned plaintext must be scoped
// strictly to transaction signing; caller must zero it after use.
func DecryptSeed(encrypted string, key [32]byte) ([]byte, error) {
	iv, ciphertext, err := splitEncryptedSeed(encrypted)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	defer clear(plaintext)

	unpadded, err := pkcs7Unpad(plaintext)
	if err != nil {
		return nil, errors.New("invalid seed encryption key")
	}
	return unpadded, nil
}

// ValidEncryptedSeed reports whether s matches the stored seed format:
// two colon-separated lowercase-hex segments, the first exactly 32
// characters, the second a non-empty multiple of 32.
func ValidEncryptedSeed(s string) bool {
	_, _, err := splitEncryptedSeed(s)
	return err == nil
}

func splitEncryptedSeed(s string) (iv, ciphertext []byte, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return nil, nil, errors.New("encrypted seed must have exactly two segments")
	}
	if len(parts[0]) != ivLen*2 {
		return nil, nil, errors.New("encrypted seed iv must be 32 hex characters")
	}
	if len(parts[1]) == 0 || len(parts[1])%(aes.BlockSize*2) != 0 {
		return nil, nil, errors.New("encrypted seed ciphertext must be a multiple of 32 hex characters")
	}
	if parts[0] != strings.ToLower(parts[0]) || parts[1] != strings.ToLower(parts[1]) {
		return nil, nil, errors.New("encrypted seed must be lowercase hex")
	}
	if iv, err = hex.DecodeString(parts[0]); err != nil {
		return nil, nil, fmt.Errorf("failed to decode iv: %w", err)
	}
	if ciphertext, err = hex.DecodeString(parts[1]); err != nil {
		return nil, nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	return iv, ciphertext, nil
}

func pkcs7Pad(b []byte) []byte {
	pad := aes.BlockSize - len(b)%aes.BlockSize
	out := make([]byte, len(b)+pad)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%aes.BlockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	pad := int(b[len(b)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(b) {
		return nil, errors.New("invalid padding")
	}
	for _, c := range b[len(b)-pad:] {
		if int(c) != pad {
			return nil, errors.New("invalid padding")
		}
	}
	out := make([]byte, len(b)-pad)
	copy(out, b[:len(b)-pad])
	return out, nil
}
