package requestdata

import "context"

type contextKey struct{}

// RequestData carries per-request attribution. The actor is threaded
// explicitly through every mutating operation; there is no ambient
// current-user global.
type RequestData struct {
	Actor     string
	RequestID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, contextKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, _ := ctx.Value(contextKey{}).(*RequestData)
	return rd
}

// ActorOrSystem returns the request actor, falling back to "system" for
// internal callers that carry no request data.
func ActorOrSystem(ctx context.Context) string {
	if rd := GetRequestData(ctx); rd != nil && rd.Actor != "" {
		return rd.Actor
	}
	return "system"
}
