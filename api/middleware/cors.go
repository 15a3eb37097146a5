package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/rbos-labs/rbos-backend/pkg/types"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local storefront dev
}

// CORS applies the storefront origin policy. The cart token header must be
// exposed or browser clients cannot observe rotation.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := allowedOrigins
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", types.CartTokenHeader, "Idempotency-Key"},
		ExposedHeaders:   []string{types.CartTokenHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
