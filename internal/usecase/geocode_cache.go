package usecase

import (
	"context"
	"time"

	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/logger"

	"github.com/graph-gophers/dataloader/v7"
)

// geocodeResult holds resolved coordinates, or nil for an address that
// could not be resolved. Failures are stored as values so the loader cache
// keeps them for the rest of the computation.
type geocodeResult struct {
	coords *domain.Coordinates
}

// geocodeCache memoizes forward geocoding for exactly one recommendation
// computation. Create a fresh one per call; it must never outlive it.
type geocodeCache struct {
	loader *dataloader.Loader[string, geocodeResult]
}

func newGeocodeCache(geocoder domain.Geocoder) *geocodeCache {
	return &geocodeCache{
		loader: dataloader.NewBatchedLoader(
			geocodeBatchFn(geocoder),
			dataloader.WithWait[string, geocodeResult](time.Millisecond),
		),
	}
}

// geocodeBatchFn receives distinct keys only; the loader cache short-circuits
// repeats before they reach a batch.
func geocodeBatchFn(geocoder domain.Geocoder) dataloader.BatchFunc[string, geocodeResult] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[geocodeResult] {
		results := make([]*dataloader.Result[geocodeResult], len(keys))
		for i, key := range keys {
			coords, err := geocoder.ForwardGeocode(ctx, key)
			if err != nil {
				// Addresses are personal data; log the failure, not the key.
				logger.L().Warn("Forward geocoding failed, distance signal unavailable", "error", err)
				coords = nil
			}
			results[i] = &dataloader.Result[geocodeResult]{Data: geocodeResult{coords: coords}}
		}
		return results
	}
}

// Prefetch resolves all distinct addresses in one batch.
func (c *geocodeCache) Prefetch(ctx context.Context, addresses []string) {
	keys := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		key := normalizeAddress(a)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return
	}
	_, _ = c.loader.LoadMany(ctx, keys)()
}

// Lookup returns the coordinates for address, or false when the address is
// blank or did not resolve.
func (c *geocodeCache) Lookup(ctx context.Context, address string) (domain.Coordinates, bool) {
	key := normalizeAddress(address)
	if key == "" {
		return domain.Coordinates{}, false
	}
	res, err := c.loader.Load(ctx, key)()
	if err != nil || res.coords == nil {
		return domain.Coordinates{}, false
	}
	return *res.coords, true
}

// DistanceKm is nil unless both addresses resolve.
func (c *geocodeCache) DistanceKm(ctx context.Context, from, to string) *float64 {
	a, ok := c.Lookup(ctx, from)
	if !ok {
		return nil
	}
	b, ok := c.Lookup(ctx, to)
	if !ok {
		return nil
	}
	d := haversineKm(a, b)
	return &d
}
