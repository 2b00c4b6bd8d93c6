package usecase

import (
	"math"
	"testing"

	"go-species-social-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestRecommendationScore(t *testing.T) {
	assert.Equal(t, 0.0, recommendationScore(0, 0, false, nil))
	assert.Equal(t, 10.0, recommendationScore(1, 0, false, nil))
	assert.Equal(t, 15.0, recommendationScore(1, 1, false, nil))
	assert.Equal(t, 23.0, recommendationScore(1, 1, true, nil))
	assert.InDelta(t, 33.0, recommendationScore(1, 1, true, ptr(0)), 1e-9)
	assert.InDelta(t, 5.0, recommendationScore(0, 0, false, ptr(25)), 1e-9)
}

func TestRecommendationScore_Monotone(t *testing.T) {
	base := recommendationScore(2, 1, false, ptr(40))

	assert.Greater(t, recommendationScore(3, 1, false, ptr(40)), base)
	assert.Greater(t, recommendationScore(2, 2, false, ptr(40)), base)
	assert.Greater(t, recommendationScore(2, 1, true, ptr(40)), base)
	assert.Greater(t, recommendationScore(2, 1, false, ptr(10)), base)
	assert.Greater(t, base, recommendationScore(2, 1, false, nil))
}

func TestProximityScore_GuardsBadInput(t *testing.T) {
	assert.Equal(t, proximityWeight, proximityScore(-5))
	assert.Equal(t, proximityWeight, proximityScore(math.NaN()))
	assert.Greater(t, proximityScore(1), proximityScore(1000))
}

func TestRegionsMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{" British Columbia ", "british columbia", true},
		{"Oregon", "OREGON", true},
		{"Oregon", "Washington", false},
		{"", "", false},
		{"  ", "", false},
		{"Oregon", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, regionsMatch(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSharedSpecies(t *testing.T) {
	t.Run("keeps own spelling and order", func(t *testing.T) {
		got := sharedSpecies([]string{"Owl", " hawk ", "owl", "", "Wren"}, []string{"HAWK", "owl", "eagle"})
		assert.Equal(t, []string{"Owl", "hawk"}, got)
	})

	t.Run("empty sides", func(t *testing.T) {
		assert.Empty(t, sharedSpecies(nil, []string{"owl"}))
		assert.Empty(t, sharedSpecies([]string{"owl"}, nil))
		assert.Empty(t, sharedSpecies([]string{" "}, []string{" "}))
	})
}

func TestNormalizeAddress(t *testing.T) {
	tests := map[string]string{
		"Victoria, British Columbia":        "Victoria, British Columbia",
		"  Victoria ,,  British   Columbia ": "Victoria, British Columbia",
		"Victoria; BC | Canada":             "Victoria, BC, Canada",
		" , ; ":                             "",
		"":                                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeAddress(in), "input %q", in)
	}
}

func TestUserAddress(t *testing.T) {
	assert.Equal(t, "Tofino, British Columbia", userAddress(&domain.User{Location: "Tofino", Region: "British Columbia"}))
	assert.Equal(t, "Tofino", userAddress(&domain.User{Location: "Tofino"}))
	assert.Equal(t, "Yukon", userAddress(&domain.User{Region: "Yukon"}))
	assert.Equal(t, "", userAddress(&domain.User{}))
}

func TestHaversineKm(t *testing.T) {
	london := domain.Coordinates{Latitude: 51.5074, Longitude: -0.1278}
	paris := domain.Coordinates{Latitude: 48.8566, Longitude: 2.3522}

	assert.InDelta(t, 343.5, haversineKm(london, paris), 2.0)
	assert.InDelta(t, haversineKm(london, paris), haversineKm(paris, london), 1e-9)
	assert.Equal(t, 0.0, haversineKm(london, london))
}
