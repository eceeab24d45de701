package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"socialnet/chat-service/internal/models"
)

type ctxKey string

const ctxKeyUserID ctxKey = "user_id"

// UserStore reports whether a token's user still exists.
type UserStore interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Verifier checks HMAC-signed bearer tokens issued by the auth service and
// extracts the acting user's id.
type Verifier struct {
	secret []byte
	users  UserStore
}

// NewVerifier builds a Verifier. With a nil users store the token alone is
// trusted and deleted users are not detected.
func NewVerifier(secret string, users UserStore) *Verifier {
	return &Verifier{secret: []byte(secret), users: users}
}

// UserID validates the token and returns the user id it was issued for.
// The id is read from "sub", falling back to "id" and "user_id".
func (v *Verifier) UserID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}

	for _, key := range []string{"sub", "id", "user_id"} {
		raw, ok := claims[key].(string)
		if !ok || raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("claim %s is not a valid user id", key)
		}
		return id.String(), nil
	}

	return "", errors.New("token carries no user id")
}

// Middleware rejects requests without a valid bearer token and stores the
// user id in the request context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Unauthorized. Authentication token is required.")
			return
		}

		userID, err := v.UserID(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeAuthError(w, http.StatusForbidden, "Forbidden. Token has expired.")
				return
			}
			writeAuthError(w, http.StatusForbidden, "Forbidden. Invalid token.")
			return
		}

		if v.users != nil {
			exists, err := v.users.UserExists(r.Context(), userID)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "Forbidden. Could not verify token.")
				return
			}
			if !exists {
				writeAuthError(w, http.StatusForbidden, "Forbidden. User associated with this token no longer exists.")
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) (string, error) {
	if id, ok := ctx.Value(ctxKeyUserID).(string); ok && id != "" {
		return id, nil
	}
	return "", models.ErrUnauthorized
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "error",
		"statusCode": status,
		"message":    message,
	})
}
