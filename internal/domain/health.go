package domain

import "context"

// HealthUsecase reports per-dependency status. Check returns an error only
// when a required dependency is down.
type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, error)
}
