package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rbos-labs/rbos-backend/api/responses"
	pkgauth "github.com/rbos-labs/rbos-backend/pkg/auth"
	"github.com/rbos-labs/rbos-backend/pkg/config"
	pkgerrors "github.com/rbos-labs/rbos-backend/pkg/errors"
	"github.com/rbos-labs/rbos-backend/pkg/logger"
)

// OptionalAuth seeds the request context with the identity key when a
// bearer token is present. Absent credentials pass through as anonymous;
// a token that is present but invalid is rejected, it never silently
// downgrades to anonymous.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			key := claims.IdentityKey()
			if key == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token carries no subject"))
				return
			}

			ctx := WithIdentityKey(r.Context(), *key)
			if claims.DisplayName != "" {
				ctx = withDisplayName(ctx, claims.DisplayName)
			}
			if logg != nil {
				ctx = logg.WithIdentityKey(ctx, *key)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func withDisplayName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxDisplayName, name)
}
