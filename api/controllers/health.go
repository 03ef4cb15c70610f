package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/nebulashop-backend/api/responses"
	"github.com/angelmondragon/nebulashop-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

const (
	envHeader    = "X-Nebula-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once every configured dependency answers a ping.
// A nil pinger means the dependency is not configured.
func HealthReady(cfg *config.Config, redis Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if redis != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := redis.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
