package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthManager validates bearer tokens minted by the auth service. This
// service does no credential checking of its own; it only extracts the
// authenticated user identity and hands it to the use cases explicitly.
type AuthManager struct {
	secret []byte
}

func NewAuthManager(secret string) *AuthManager {
	return &AuthManager{secret: []byte(secret)}
}

type userClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (a *AuthManager) parse(tok string) (*userClaims, error) {
	claims := &userClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}
	return claims, nil
}

// ParseFromRequest extracts claims from an Authorization: Bearer header.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*userClaims, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return nil, errors.New("missing token")
	}
	if !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return nil, errors.New("malformed authorization header")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

type ctxKey string

const ctxUser ctxKey = "authenticated_user"

// UserIDFrom returns the authenticated user id stored by RequireAuth.
func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxUser).(string)
	return v, ok && v != ""
}

func withUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxUser, id)
}
