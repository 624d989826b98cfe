package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxLoggedPayload caps payload text in debug logs, in bytes.
const maxLoggedPayload = 2048

// trafficLoggingMiddleware logs every MCP request and response at debug level.
// Tool calls are tagged with the tool name and whether the tool reported a
// domain error.
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
				"actor_id", getActorID(ctx),
			}
			params := formatPayload(safeParams(req))
			if method == "tools/call" {
				attrs = append(attrs, "tool", toolName(params))
			}
			logger.Debug("mcp request", append(attrs, "params", params)...)

			start := time.Now()
			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			attrs = append(attrs, "duration", time.Since(start))
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res != nil {
				attrs = append(attrs, "tool_error", res.IsError)
			}
			if err != nil {
				logger.Debug("mcp response", append(attrs, "error", err)...)
			} else {
				logger.Debug("mcp response", append(attrs, "result", formatPayload(result))...)
			}
			return result, err
		}
	}
}

func safeSessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if session := req.GetSession(); session != nil {
		return session.ID()
	}
	return ""
}

// safeParams returns the request params; typed-nil params panic on access.
func safeParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
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

func toolName(params string) string {
	var call struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(params), &call); err != nil {
		return ""
	}
	return call.Name
}
