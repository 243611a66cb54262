package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, key string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func userClaims(id int64, ttl time.Duration) *Claims {
	return &Claims{
		UserID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

type users map[int64]*models.User

func (u users) GetByID(_ context.Context, id int64) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("user not found")
}

func TestVerify(t *testing.T) {
	v := NewVerifier(secret)

	claims, err := v.Verify(sign(t, secret, userClaims(7, time.Minute)))
	require.NoError(t, err)
	id, err := claims.ID()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = v.Verify(sign(t, "other-secret", userClaims(7, time.Minute)))
	assert.Error(t, err)

	_, err = v.Verify(sign(t, secret, userClaims(7, -time.Minute)))
	assert.Error(t, err)

	_, err = v.Verify("not-a-token")
	assert.Error(t, err)
}

func TestClaimsIDFromSubject(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "12"}}
	id, err := c.ID()
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = (&Claims{}).ID()
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier(secret)
	known := users{7: {ID: 7, Email: "alice@example.com"}}

	var gotErr error
	onError := func(w http.ResponseWriter, _ *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusUnauthorized)
	}
	handler := Middleware(v, known, onError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", user.Email)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + sign(t, secret, userClaims(7, time.Minute)), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + sign(t, "nope", userClaims(7, time.Minute)), http.StatusUnauthorized},
		{"unknown user", "Bearer " + sign(t, secret, userClaims(8, time.Minute)), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr = nil
			req := httptest.NewRequest(http.MethodGet, "/orders/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "alice@example.com", rec.Header().Get("X-User"))
			} else {
				assert.True(t, errors.Is(gotErr, apperr.ErrUnauthorized))
			}
		})
	}
}
