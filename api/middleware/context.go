package middleware

import "context"

type contextKey string

const (
	ctxIdentityKey contextKey = "identity_key"
	ctxDisplayName contextKey = "display_name"
)

// IdentityKeyFromContext returns the authenticated identity key, or nil for
// anonymous requests.
func IdentityKeyFromContext(ctx context.Context) *string {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxIdentityKey).(string); ok && v != "" {
		return &v
	}
	return nil
}

func DisplayNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxDisplayName).(string); ok {
		return v
	}
	return ""
}

// WithIdentityKey injects the identity key for downstream handlers.
func WithIdentityKey(ctx context.Context, key string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentityKey, key)
}
