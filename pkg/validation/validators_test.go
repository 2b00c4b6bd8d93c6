package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileForm struct {
	DisplayName     string   `validate:"required,max=80,no_emoji"`
	Handle          string   `validate:"required,handle"`
	FavoriteSpecies []string `validate:"max=3,dive,species_name"`
}

func TestCustomValidators(t *testing.T) {
	v := New()

	valid := []profileForm{
		{DisplayName: "Ana María", Handle: "ana.maria", FavoriteSpecies: []string{"Great Horned Owl", "Anna's hummingbird"}},
		{DisplayName: "Kai", Handle: "kai_99", FavoriteSpecies: []string{"", "Chouette effraie"}},
	}
	for _, f := range valid {
		assert.NoError(t, v.Struct(f), "%+v", f)
	}

	invalid := []profileForm{
		{DisplayName: "Kai", Handle: "9kai"},
		{DisplayName: "Kai", Handle: "Kai"},
		{DisplayName: "Kai", Handle: "ka"},
		{DisplayName: "Kai", Handle: strings.Repeat("k", 31)},
		{DisplayName: "Kai 🐦", Handle: "kai"},
		{DisplayName: "Kai", Handle: "kai", FavoriteSpecies: []string{"owl<script>"}},
		{DisplayName: "Kai", Handle: "kai", FavoriteSpecies: []string{"a", "b", "c", "d"}},
	}
	for _, f := range invalid {
		assert.Error(t, v.Struct(f), "%+v", f)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	err := New().Struct(profileForm{Handle: "X"})
	require.Error(t, err)

	msgs := FormatValidationErrors(err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Display name: is required", msgs[0])
	assert.Contains(t, msgs[1], "Handle: 3-30 lowercase letters")
}
