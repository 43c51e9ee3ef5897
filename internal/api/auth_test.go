package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminKeyHashRoundTrip(t *testing.T) {
	hash, salt, err := HashAdminKey("swordfish")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := VerifyAdminKey("swordfish", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyAdminKey("not-the-key", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyAdminKey_BadEncoding(t *testing.T) {
	_, err := VerifyAdminKey("key", "!!not-base64!!", "aGVsbG8=")
	assert.Error(t, err)
}

func TestAdminAuthMiddleware(t *testing.T) {
	hash, salt, err := HashAdminKey("swordfish")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing key is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		AdminAuth(hash, salt)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/books", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/books", nil)
		req.Header.Set("X-Admin-Key", "guess")
		rec := httptest.NewRecorder()
		AdminAuth(hash, salt)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("correct key passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/books", nil)
		req.Header.Set("X-Admin-Key", "swordfish")
		rec := httptest.NewRecorder()
		AdminAuth(hash, salt)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("no configured hash disables the guard", func(t *testing.T) {
		rec := httptest.NewRecorder()
		AdminAuth("", "")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/books", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
