package domain

import "context"

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves a free-text address. A nil result with a nil error
// means the address did not resolve.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, address string) (*Coordinates, error)
}

type RecommendationEntry struct {
	Candidate     PublicProfile   `json:"candidate"`
	MutualFriends []PublicProfile `json:"mutual_friends"`
	SharedSpecies []string        `json:"shared_species"`
	LocationMatch bool            `json:"location_match"`
	// DistanceKm is nil when either address was missing or failed to geocode.
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Score      float64  `json:"score"`
}

type RecommendationUsecase interface {
	ComputeRecommendations(ctx context.Context, currentUserID UserID, limit int) ([]RecommendationEntry, error)
}
