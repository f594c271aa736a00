package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxLoggedPayload caps logged payloads; report results can be large.
const maxLoggedPayload = 2048

func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			attrs := []any{
				"direction", direction,
				"method", method,
				"session_id", safeSessionID(req),
				"viewer_id", getViewerID(ctx),
			}
			logger.Debug("mcp request", append(attrs, "params", formatPayload(safeParams(req)))...)

			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}
			attrs = append(attrs, "result", formatPayload(result))
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Debug("mcp response", attrs...)
			return result, err
		}
	}
}

func safeSessionID(req sdkmcp.Request) string {
	if req == nil {
		return ""
	}
	defer func() { recover() }()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) any {
	if req == nil {
		return nil
	}
	defer func() { recover() }()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	if len(data) > maxLoggedPayload {
		return fmt.Sprintf("%s... (%d bytes)", data[:maxLoggedPayload], len(data))
	}
	return string(data)
}
