package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	"DisplayName":     "Display name",
	"Handle":          "Handle",
	"ProfilePicture":  "Profile picture",
	"Location":        "Location",
	"Region":          "Region",
	"FavoriteSpecies": "Favorite species",
	"UserID":          "User",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.StructField())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: must have at least %s items", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must have at most %s items", label, param)
	case "url":
		return fmt.Sprintf("%s: must be a valid URL", label)
	case "uuid":
		return fmt.Sprintf("%s: must be a valid id", label)
	case "handle":
		return fmt.Sprintf("%s: 3-30 lowercase letters, digits, '.' or '_', starting with a letter", label)
	case "species_name":
		return fmt.Sprintf("%s: may only contain letters, spaces, hyphens and apostrophes", label)
	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or symbols", label)
	default:
		return fmt.Sprintf("%s: failed validation (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
