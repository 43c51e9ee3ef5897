// internal/api/auth.go
package api

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"

	"golang.org/x/crypto/argon2"
)

// HashAdminKey generates a salted Argon2id hash of an admin key. The
// encoded hash and salt are meant to be handed to the service through
// configuration, never stored alongside the plaintext key.
func HashAdminKey(key string) (hash, salt string, err error) {
	rawSalt := make([]byte, 16)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", err
	}

	rawHash := argon2.IDKey([]byte(key), rawSalt, 1, 64*1024, 4, 32)

	return base64.StdEncoding.EncodeToString(rawHash),
		base64.StdEncoding.EncodeToString(rawSalt), nil
}

// VerifyAdminKey compares a presented key with a salted hash.
func VerifyAdminKey(key, salt, hash string) (bool, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	rawHash, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(key), rawSalt, 1, 64*1024, 4, 32)

	return subtle.ConstantTimeCompare(computed, rawHash) == 1, nil
}

// AdminAuth guards mutating endpoints with an X-Admin-Key header checked
// against the configured hash. With no hash configured the guard is
// disabled, which keeps local development friction-free.
func AdminAuth(hash, salt string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hash == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-Admin-Key")
			ok, err := VerifyAdminKey(key, salt, hash)
			if err != nil || !ok {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
