package declaration

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrUnsupportedIdentifierType is returned when the identifier type is not in
// the allowed set for the declaration's category.
var ErrUnsupportedIdentifierType = errors.New("unsupported identifier type")

var (
	// 17 uppercase alphanumerics, I, O and Q excluded
	vinPattern  = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	imeiPattern = regexp.MustCompile(`^[0-9]{15}$`)
	// serial and chassis numbers: free-form alphanumerics with dashes
	serialPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	platePattern  = regexp.MustCompile(`^[A-Za-z0-9-]{2,10}$`)
)

// ValidateIdentifier format-checks a category-specific identifier. It fails
// with ErrUnsupportedIdentifierType when identifierType is not allowed for
// the category, and with a plain format error when the value is malformed.
func ValidateIdentifier(category, identifierType, value string) error {
	allowed := IdentifierTypesFor(category)
	found := false
	for _, t := range allowed {
		if t == identifierType {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %q is not valid for category %q", ErrUnsupportedIdentifierType, identifierType, category)
	}

	switch identifierType {
	case IdentifierVIN:
		if !vinPattern.MatchString(value) {
			return fmt.Errorf("vin must be exactly 17 uppercase letters or digits, excluding I, O and Q")
		}
	case IdentifierIMEI:
		if !imeiPattern.MatchString(value) {
			return fmt.Errorf("imei must be exactly 15 digits")
		}
	case IdentifierPlate:
		if !platePattern.MatchString(value) {
			return fmt.Errorf("plate must be 2 to 10 letters, digits or dashes")
		}
	case IdentifierSerial, IdentifierChassis:
		if value == "" || !serialPattern.MatchString(value) {
			return fmt.Errorf("%s must be a non-empty string of letters, digits or dashes", identifierType)
		}
	}
	return nil
}
