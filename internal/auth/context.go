package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const accessTokenKey contextKey = "accessToken"

// ContextWithAccessToken returns a new context that carries a caller-supplied
// delivery token.
func ContextWithAccessToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, accessTokenKey, token)
}

// AccessTokenFromContext retrieves the caller-supplied delivery token, if any.
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	token, ok := ctx.Value(accessTokenKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Middleware forwards a bearer token on the incoming request to the delivery
// API in place of the configured token.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := BearerToken(r); ok {
			r = r.WithContext(ContextWithAccessToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}
