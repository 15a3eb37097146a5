package controllers

import (
	"context"
	"net/http"

	"github.com/rbos-labs/rbos-backend/api/responses"
	"github.com/rbos-labs/rbos-backend/pkg/config"
	pkgerrors "github.com/rbos-labs/rbos-backend/pkg/errors"
	"github.com/rbos-labs/rbos-backend/pkg/logger"
)

// Pinger is the readiness surface backing stores expose.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RBOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the backing stores before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	checks := []struct {
		name string
		dep  Pinger
	}{
		{"database", dbP},
		{"redis", redisP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RBOS-Env", cfg.App.Env)
		for _, check := range checks {
			if check.dep == nil {
				continue
			}
			if err := check.dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
