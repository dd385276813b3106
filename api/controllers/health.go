package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/salesreport/api/responses"
	"github.com/angelmondragon/salesreport/pkg/config"
	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
	"github.com/angelmondragon/salesreport/pkg/logger"
)

const envHeader = "X-SalesReport-Env"

// Pinger is satisfied by *db.Client and *redis.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. A nil pinger is reported as
// "disabled" and does not fail readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		var failed error
		for name, p := range map[string]Pinger{"database": dbP, "redis": redisP} {
			if p == nil {
				checks[name] = "disabled"
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "unavailable"
				failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" ping failed").
					WithDetails(map[string]any{"checks": checks})
				continue
			}
			checks[name] = "ok"
		}

		if failed != nil {
			responses.WriteError(r.Context(), logg, w, failed)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
