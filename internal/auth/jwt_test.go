package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"socialnet/chat-service/internal/models"
)

const testSecret = "test-secret"

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifier_UserID(t *testing.T) {
	v := NewVerifier(testSecret, nil)
	userID := "5F1C2D3E-0000-4000-8000-000000000001"

	t.Run("should read the subject claim", func(t *testing.T) {
		req := require.New(t)
		token := sign(t, testSecret, jwt.MapClaims{"sub": userID, "exp": time.Now().Add(time.Hour).Unix()})

		id, err := v.UserID(token)
		req.NoError(err)
		req.Equal("5f1c2d3e-0000-4000-8000-000000000001", id)
	})

	t.Run("should fall back to the id claim", func(t *testing.T) {
		req := require.New(t)
		token := sign(t, testSecret, jwt.MapClaims{"id": userID})

		id, err := v.UserID(token)
		req.NoError(err)
		req.Equal("5f1c2d3e-0000-4000-8000-000000000001", id)
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		token := sign(t, "other", jwt.MapClaims{"sub": userID})
		_, err := v.UserID(token)
		require.Error(t, err)
	})

	t.Run("should reject a non uuid subject", func(t *testing.T) {
		token := sign(t, testSecret, jwt.MapClaims{"sub": "42"})
		_, err := v.UserID(token)
		require.Error(t, err)
	})

	t.Run("should reject a token without user id", func(t *testing.T) {
		token := sign(t, testSecret, jwt.MapClaims{"role": "user"})
		_, err := v.UserID(token)
		require.Error(t, err)
	})
}

func TestVerifier_Middleware(t *testing.T) {
	v := NewVerifier(testSecret, nil)
	userID := "5f1c2d3e-0000-4000-8000-000000000001"

	var seen string
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := UserIDFromContext(r.Context())
		require.NoError(t, err)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusForbidden},
		{"expired token", "Bearer " + sign(t, testSecret, jwt.MapClaims{"sub": userID, "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusForbidden},
		{"valid token", "Bearer " + sign(t, testSecret, jwt.MapClaims{"sub": userID}), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/chats", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)
			require.Equal(t, tt.code, rec.Code)
		})
	}

	require.Equal(t, userID, seen)
}

type userStore struct {
	known map[string]bool
	err   error
}

func (s userStore) UserExists(_ context.Context, userID string) (bool, error) {
	return s.known[userID], s.err
}

func TestVerifier_MiddlewareChecksUser(t *testing.T) {
	userID := "5f1c2d3e-0000-4000-8000-000000000001"
	token := "Bearer " + sign(t, testSecret, jwt.MapClaims{"sub": userID})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func(store UserStore) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/chats", nil)
		r.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		NewVerifier(testSecret, store).Middleware(next).ServeHTTP(rec, r)
		return rec
	}

	t.Run("should pass a known user", func(t *testing.T) {
		rec := serve(userStore{known: map[string]bool{userID: true}})
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("should forbid a deleted user", func(t *testing.T) {
		req := require.New(t)
		rec := serve(userStore{known: map[string]bool{}})

		req.Equal(http.StatusForbidden, rec.Code)
		var body map[string]any
		req.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		req.Equal("Forbidden. User associated with this token no longer exists.", body["message"])
	})

	t.Run("should forbid when the lookup fails", func(t *testing.T) {
		rec := serve(userStore{err: errors.New("connection refused")})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestUserIDFromContext_Missing(t *testing.T) {
	_, err := UserIDFromContext(context.Background())
	require.ErrorIs(t, err, models.ErrUnauthorized)
}
