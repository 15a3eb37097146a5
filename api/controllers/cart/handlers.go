package cart

import (
	"net/http"

	"github.com/rbos-labs/rbos-backend/api/middleware"
	"github.com/rbos-labs/rbos-backend/api/responses"
	"github.com/rbos-labs/rbos-backend/api/validators"
	"github.com/rbos-labs/rbos-backend/internal/carts"
	pkgerrors "github.com/rbos-labs/rbos-backend/pkg/errors"
	"github.com/rbos-labs/rbos-backend/pkg/logger"
	"github.com/rbos-labs/rbos-backend/pkg/metrics"
	"github.com/rbos-labs/rbos-backend/pkg/types"
)

// CartFetch resolves the cart behind the request's token (or identity). An
// unknown token yields a fresh empty cart under a new token.
func CartFetch(svc carts.Service, m *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		token := r.Header.Get(types.CartTokenHeader)
		identityKey := middleware.IdentityKeyFromContext(r.Context())

		resolved, err := svc.ResolveCart(r.Context(), token, identityKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeResolved(w, resolved)
	}
}

// CartMerge reconciles the submitted lines into the server-side cart and
// returns the authoritative result with any conflicts.
func CartMerge(svc carts.Service, m *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload types.CartMergeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := payload.CartToken
		if token == "" {
			token = r.Header.Get(types.CartTokenHeader)
		}

		resolved, err := svc.MergeCart(r.Context(), carts.MergeInput{
			Token:       token,
			IdentityKey: middleware.IdentityKeyFromContext(r.Context()),
			Items:       payload.Items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.CountConflicts(resolved.Conflicts)
		writeResolved(w, resolved)
	}
}

func writeResolved(w http.ResponseWriter, resolved *types.CartMergeResponse) {
	if resolved.CartToken != "" {
		w.Header().Set(types.CartTokenHeader, resolved.CartToken)
	}
	responses.WriteSuccess(w, resolved)
}
