package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/jewelmart-backend/api/responses"
	"github.com/angelmondragon/jewelmart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
	"github.com/angelmondragon/jewelmart-backend/pkg/logger"
)

const (
	envHeader        = "X-JewelMart-Env"
	readinessTimeout = 2 * time.Second
)

// Pinger is a dependency that can report its own reachability.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and answers 503 if any fails.
// Which one failed is only logged.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		failed := 0
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed++
				if logg != nil {
					logg.Error(logg.WithField(r.Context(), "dependency", name), "health.ready.failed", err)
				}
			}
		}
		if failed > 0 {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
