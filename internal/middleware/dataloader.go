package middleware

import (
	"context"
	"net/http"

	"github.com/rpattn/contentql/internal/entityloader"
)

type ctxKey string

const (
	loaderKey    ctxKey = "fetchLoader"
	requestIDKey ctxKey = "requestID"
)

// DataLoaderMiddleware attaches a fresh fetch loader to every request context.
func DataLoaderMiddleware(fetcher entityloader.Fetcher, opts ...entityloader.Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := entityloader.NewLoader(fetcher, opts...)
			next.ServeHTTP(w, r.WithContext(WithLoader(r.Context(), loader)))
		})
	}
}

// WithLoader returns a context carrying loader.
func WithLoader(ctx context.Context, loader *entityloader.Loader) context.Context {
	return context.WithValue(ctx, loaderKey, loader)
}

// LoaderFromContext retrieves the fetch loader from context.
func LoaderFromContext(ctx context.Context) *entityloader.Loader {
	if l, ok := ctx.Value(loaderKey).(*entityloader.Loader); ok {
		return l
	}
	return nil
}
