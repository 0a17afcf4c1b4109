package refactor

import (
	"fmt"
	"regexp"
	"strings"
)

// thisVariable is the implicit object variable; it cannot be renamed or bound.
const thisVariable = "this"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_[:^ascii:]][A-Za-z0-9_[:^ascii:]]*$`)

// superglobals are visible in every scope and never passed as parameters.
var superglobals = map[string]bool{
	"GLOBALS":  true,
	"_SERVER":  true,
	"_GET":     true,
	"_POST":    true,
	"_FILES":   true,
	"_COOKIE":  true,
	"_SESSION": true,
	"_REQUEST": true,
	"_ENV":     true,
}

// NormalizeName strips surrounding whitespace and one leading "$" sigil.
func NormalizeName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "$")
}

// ValidateVariableName normalizes a variable name and checks that it can be
// used as a rename source or target.
func ValidateVariableName(name string) (string, error) {
	normalized, err := validateIdentifier(NormalizeName(name))
	if err != nil {
		return "", err
	}

	if normalized == thisVariable {
		return "", fmt.Errorf("%w: $%s", ErrReservedName, normalized)
	}

	return normalized, nil
}

// ValidateFunctionName checks a name for a new function or method.
func ValidateFunctionName(name string) (string, error) {
	return validateIdentifier(strings.TrimSpace(name))
}

func validateIdentifier(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}

	if !identifierPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return name, nil
}
