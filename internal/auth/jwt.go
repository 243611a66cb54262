// Package auth resolves the current user from a bearer token. Tokens are
// issued elsewhere; this package only verifies them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// ID returns user_id, falling back to the numeric subject.
func (c *Claims) ID() (int64, error) {
	if c.UserID != 0 {
		return c.UserID, nil
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("token carries no user id")
	}
	return id, nil
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenString string) (*Claims, error) { //верификация токена
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type ctxKey struct{}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(*models.User)
	return user, ok && user != nil
}

// Middleware authenticates the request by its bearer token and puts the user
// into the request context. Failures are passed to onError.
func Middleware(v *Verifier, users UserLookup, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(r, v, users)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func authenticate(r *http.Request, v *Verifier, users UserLookup) (*models.User, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, apperr.Unauthorized("not authenticated")
	}

	claims, err := v.Verify(strings.TrimSpace(token))
	if err != nil {
		return nil, apperr.Unauthorized("could not validate credentials")
	}
	id, err := claims.ID()
	if err != nil {
		return nil, apperr.Unauthorized("could not validate credentials")
	}

	user, err := users.GetByID(r.Context(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("could not validate credentials")
	}
	if err != nil {
		log.Printf("auth: load user %d: %v", id, err)
		return nil, err
	}
	return user, nil
}
