package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nljewellers/ledger/internal/transport/httpapi/middleware"
)

func TestJWTService(t *testing.T) {
	svc := middleware.NewJWTService("test-secret-at-least-32-chars-long!!")

	t.Run("Generated_Token_Validates", func(t *testing.T) {
		token, err := svc.GenerateToken()
		require.NoError(t, err)
		assert.NoError(t, svc.ValidateToken(token))
	})

	t.Run("Wrong_Secret_Rejected", func(t *testing.T) {
		other := middleware.NewJWTService("another-secret-also-32-chars-long!!!")
		token, err := other.GenerateToken()
		require.NoError(t, err)
		assert.Error(t, svc.ValidateToken(token))
	})

	t.Run("Garbage_Rejected", func(t *testing.T) {
		assert.Error(t, svc.ValidateToken("not.a.token"))
	})
}

func TestJWTMiddleware(t *testing.T) {
	svc := middleware.NewJWTService("test-secret-at-least-32-chars-long!!")
	mw := middleware.JWTMiddleware(svc)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Valid_Token_Passes", func(t *testing.T) {
		token, err := svc.GenerateToken()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, do("Bearer "+token).Code)
	})

	t.Run("Missing_Header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("").Code)
	})

	t.Run("Malformed_Header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("Token abc").Code)
	})

	t.Run("Invalid_Token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("Bearer abc").Code)
	})
}
