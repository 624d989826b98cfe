package mcp

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const actorIDKey contextKey = iota

// ActorHeader carries the calling user's id on the HTTP transport.
const ActorHeader = "X-Vantage-User"

// getActorID extracts the calling user's id from context.
func getActorID(ctx context.Context) string {
	v, _ := ctx.Value(actorIDKey).(string)
	return v
}

// actorMiddleware extracts the calling user from the X-Vantage-User header
// (HTTP) or _meta.user_id (stdio). Tools fall back to it when an explicit
// user argument is omitted.
func actorMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var actorID string

			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				actorID = strings.TrimSpace(extra.Header.Get(ActorHeader))
			}

			// Some notifications (like "initialized") have nil params, and
			// GetMeta panics on a typed nil.
			if actorID == "" {
				if params := req.GetParams(); params != nil {
					func() {
						defer func() { recover() }()
						if meta := params.GetMeta(); meta != nil {
							if uid, ok := meta["user_id"].(string); ok {
								actorID = strings.TrimSpace(uid)
							}
						}
					}()
				}
			}

			if actorID != "" {
				ctx = context.WithValue(ctx, actorIDKey, actorID)
			}

			return next(ctx, method, req)
		}
	}
}

// resolveActor prefers an explicit argument over the transport identity.
func resolveActor(ctx context.Context, explicit string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	return getActorID(ctx)
}
