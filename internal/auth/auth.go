// Package auth handles the admin API key. The key is issued once,
// shown to the operator in plaintext, and stored only as a bcrypt hash
// in settings.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHashSetting is the settings key holding the bcrypt hash of
// the admin API key.
const AdminKeyHashSetting = "admin_api_key_hash"

// HashKey hashes a plaintext API key using bcrypt with cost 12.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), 12)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}
	return string(hash), nil
}

// CheckKey compares a presented API key against the stored bcrypt hash.
func CheckKey(key, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
}

// GenerateKey produces a cryptographically random admin API key
// (32 bytes, base64url-encoded, 43 characters).
func GenerateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
