package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const viewerIDKey contextKey = iota

// getViewerID extracts the viewing person from context.
func getViewerID(ctx context.Context) string {
	v, _ := ctx.Value(viewerIDKey).(string)
	return v
}

// WithViewer returns ctx carrying viewerID, for callers that resolve the
// viewer before the MCP layer.
func WithViewer(ctx context.Context, viewerID string) context.Context {
	return context.WithValue(ctx, viewerIDKey, viewerID)
}

// ViewerResolver resolves the person behind a bearer token.
type ViewerResolver interface {
	ResolveViewer(ctx context.Context, token string) (string, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver ViewerResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}
			if resolver == nil {
				return nil, fmt.Errorf("unauthorized: no key resolver configured")
			}

			viewerID, err := resolver.ResolveViewer(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if viewerID == "" {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			return next(WithViewer(ctx, viewerID), method, req)
		}
	}
}

// noAuthMiddleware injects the configured viewer when auth is disabled.
func noAuthMiddleware(defaultViewer string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if getViewerID(ctx) == "" {
				ctx = WithViewer(ctx, defaultViewer)
			}
			return next(ctx, method, req)
		}
	}
}
