package usecase

import (
	"math"
	"strings"

	"go-species-social-backend/internal/domain"
)

// Score weights. Each term is non-negative and grows with its signal, so the
// total is monotone in every signal with the others held fixed.
const (
	DefaultRecommendationLimit = 10

	mutualFriendWeight  = 10.0
	sharedSpeciesWeight = 5.0
	locationMatchBonus  = 8.0
	proximityWeight     = 10.0
	proximityScaleKm    = 25.0

	earthRadiusKm = 6371.0
)

// recommendationScore combines the signals. A nil distance adds nothing.
func recommendationScore(mutualFriends, sharedSpecies int, locationMatch bool, distanceKm *float64) float64 {
	score := mutualFriendWeight*float64(mutualFriends) + sharedSpeciesWeight*float64(sharedSpecies)
	if locationMatch {
		score += locationMatchBonus
	}
	if distanceKm != nil {
		score += proximityScore(*distanceKm)
	}
	return score
}

// proximityScore is proximityWeight at 0 km and decays towards 0 with distance.
func proximityScore(distanceKm float64) float64 {
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		distanceKm = 0
	}
	return proximityWeight / (1 + distanceKm/proximityScaleKm)
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// regionsMatch requires both regions to be non-blank.
func regionsMatch(a, b string) bool {
	na, nb := normalizeToken(a), normalizeToken(b)
	return na != "" && na == nb
}

// sharedSpecies returns the current user's favorites (trimmed, first
// spelling, original order) that also appear in the candidate's favorites.
// Blank entries and duplicates are ignored.
func sharedSpecies(mine, theirs []string) []string {
	if len(mine) == 0 || len(theirs) == 0 {
		return nil
	}
	candidateSet := make(map[string]struct{}, len(theirs))
	for _, s := range theirs {
		if n := normalizeToken(s); n != "" {
			candidateSet[n] = struct{}{}
		}
	}

	var shared []string
	seen := make(map[string]struct{}, len(mine))
	for _, s := range mine {
		n := normalizeToken(s)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := candidateSet[n]; ok {
			shared = append(shared, strings.TrimSpace(s))
		}
	}
	return shared
}

// userAddress joins the non-blank location and region of a user.
func userAddress(u *domain.User) string {
	return normalizeAddress(u.Location + ", " + u.Region)
}

// normalizeAddress trims, collapses whitespace, and collapses separator runs
// into a single ", ". Empty segments are dropped.
func normalizeAddress(raw string) string {
	segments := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg = strings.Join(strings.Fields(seg), " "); seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, ", ")
}

// haversineKm is the great-circle distance between two points in kilometers.
func haversineKm(a, b domain.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
