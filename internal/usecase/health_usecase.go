package usecase

import (
	"context"
	"net/http"
	"time"

	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/apperror"
)

// PingFunc probes one dependency.
type PingFunc func(ctx context.Context) error

type healthUsecase struct {
	database PingFunc
	cache    PingFunc
}

// NewHealthUsecase takes the database probe and an optional cache probe.
// The cache is reported but never fails the check, since rate limiting
// degrades to in-memory counters without it.
func NewHealthUsecase(database, cache PingFunc) domain.HealthUsecase {
	return &healthUsecase{database: database, cache: cache}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{"database": "ok", "cache": "disabled"}
	var failure error
	if u.database != nil {
		if err := u.database(ctx); err != nil {
			status["database"] = "unavailable"
			failure = apperror.New(http.StatusServiceUnavailable, "Database unavailable", err)
		}
	}
	if u.cache != nil {
		status["cache"] = "ok"
		if err := u.cache(ctx); err != nil {
			status["cache"] = "degraded"
		}
	}
	return status, failure
}
