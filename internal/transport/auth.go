package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rpggio/profitability/internal/store"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type viewerKey struct{}

// ViewerResolver resolves the person behind a bearer token.
type ViewerResolver interface {
	ResolveViewer(ctx context.Context, token string) (string, error)
}

// ViewerFromContext returns the viewing person from context, if present.
func ViewerFromContext(ctx context.Context) (string, bool) {
	viewerID, ok := ctx.Value(viewerKey{}).(string)
	return viewerID, ok
}

// WithViewer stores viewerID in ctx.
func WithViewer(ctx context.Context, viewerID string) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewerID)
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver ViewerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			viewerID, err := resolver.ResolveViewer(r.Context(), token)
			if err != nil || viewerID == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewerID)))
		})
	}
}

// DefaultViewerMiddleware acts as viewerID when auth is disabled.
func DefaultViewerMiddleware(viewerID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewerID)))
		})
	}
}

// StaticKeys maps the SHA-256 hex of a token to a person id, as configured
// under auth.api_keys.
type StaticKeys map[string]string

// ResolveViewer implements ViewerResolver.
func (k StaticKeys) ResolveViewer(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	personID, ok := k[store.HashToken(token)]
	if !ok {
		return "", ErrUnauthorized
	}
	return personID, nil
}

// Chain tries each resolver in order and returns the first match.
type Chain []ViewerResolver

// ResolveViewer implements ViewerResolver. Errors other than a miss stop
// the chain.
func (c Chain) ResolveViewer(ctx context.Context, token string) (string, error) {
	for _, r := range c {
		viewerID, err := r.ResolveViewer(ctx, token)
		if err == nil && viewerID != "" {
			return viewerID, nil
		}
		if err != nil && !errors.Is(err, ErrUnauthorized) && !errors.Is(err, store.ErrUnauthorized) {
			return "", err
		}
	}
	return "", ErrUnauthorized
}
