package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Lowercase letters, digits, dot and underscore; must start with a letter
	handleRegex = regexp.MustCompile(`^[a-z][a-z0-9._]{2,29}$`)

	// Letters (any script), spaces, hyphens and apostrophes, e.g. "Great Horned Owl"
	speciesRegex = regexp.MustCompile(`^[\p{L} '.-]+$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("handle", ValidHandle)
	_ = v.RegisterValidation("species_name", ValidSpeciesName)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// New returns a validator with the custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

func ValidHandle(fl validator.FieldLevel) bool {
	return handleRegex.MatchString(fl.Field().String())
}

// ValidSpeciesName accepts blank entries; they are ignored downstream.
func ValidSpeciesName(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true
	}
	return speciesRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		// Supplementary planes are mostly emoji/symbols
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}
