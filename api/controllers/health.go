package controllers

import (
	"fmt"
	"net/http"

	"go.uber.org/multierr"

	"github.com/neonshoplabs/neonshop-backend/api/responses"
	"github.com/neonshoplabs/neonshop-backend/pkg/config"
	"github.com/neonshoplabs/neonshop-backend/pkg/db"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
	"github.com/neonshoplabs/neonshop-backend/pkg/redis"
)

const envHeader = "X-NeonShop-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every backing dependency answers a
// ping. Failures are aggregated so one probe reveals all broken deps.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx := r.Context()

		var err error
		if dbP == nil {
			err = multierr.Append(err, fmt.Errorf("db: not configured"))
		} else if pingErr := dbP.Ping(ctx); pingErr != nil {
			err = multierr.Append(err, fmt.Errorf("db: %w", pingErr))
		}
		if redisP == nil {
			err = multierr.Append(err, fmt.Errorf("redis: not configured"))
		} else if pingErr := redisP.Ping(ctx); pingErr != nil {
			err = multierr.Append(err, fmt.Errorf("redis: %w", pingErr))
		}

		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependencies unavailable"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
