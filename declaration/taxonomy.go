// Package declaration holds the pure domain rules for OVPR item
// declarations: the category taxonomy, identifier format validation, tracking
// number generation and the status lifecycle. Nothing in this package touches
// the network or the database.
package declaration

// Declaration types. Fixed at creation, they never change afterwards.
const (
	TypeLost   = "lost"
	TypeFound  = "found"
	TypeStolen = "stolen"
)

// Item categories
const (
	CategoryVehicle     = "vehicle"
	CategoryElectronics = "electronics"
	CategoryJewelry     = "jewelry"
	CategoryDocument    = "document"
	CategoryAnimal      = "animal"
	CategoryClothing    = "clothing"
	CategoryAccessory   = "accessory"
	CategoryOther       = "other"
)

// Identifier types
const (
	IdentifierVIN     = "vin"
	IdentifierChassis = "chassis"
	IdentifierPlate   = "plate"
	IdentifierIMEI    = "imei"
	IdentifierSerial  = "serial"
)

var declarationTypes = map[string]bool{
	TypeLost:   true,
	TypeFound:  true,
	TypeStolen: true,
}

var subcategories = map[string][]string{
	CategoryVehicle:     {"car", "motorcycle", "bicycle", "scooter", "truck", "other"},
	CategoryElectronics: {"phone", "laptop", "tablet", "camera", "headphones", "watch", "other"},
	CategoryJewelry:     {"ring", "necklace", "bracelet", "watch", "other"},
	CategoryDocument:    {"passport", "idCard", "driverLicense", "residencePermit", "other"},
	CategoryAnimal:      {"dog", "cat", "bird", "other"},
	CategoryClothing:    {"jacket", "bag", "shoes", "other"},
	CategoryAccessory:   {"keys", "wallet", "glasses", "umbrella", "other"},
	CategoryOther:       nil,
}

// identifierTypes maps each category to its allowed identifier types. A
// category absent from this map accepts no identifier at all.
var identifierTypes = map[string][]string{
	CategoryVehicle:     {IdentifierVIN, IdentifierChassis, IdentifierPlate},
	CategoryElectronics: {IdentifierIMEI, IdentifierSerial},
	CategoryJewelry:     {IdentifierSerial},
	CategoryAccessory:   {IdentifierSerial},
	CategoryOther:       {IdentifierSerial},
}

// identifierRequired lists the categories that cannot be declared without an
// identifier (vehicles need a VIN/chassis/plate, electronics an IMEI/serial).
var identifierRequired = map[string]bool{
	CategoryVehicle:     true,
	CategoryElectronics: true,
}

// ValidType reports whether t is a known declaration type
func ValidType(t string) bool {
	return declarationTypes[t]
}

// ValidCategory reports whether c is a known item category
func ValidCategory(c string) bool {
	_, ok := subcategories[c]
	return ok
}

// ValidSubcategory reports whether s is a known subcategory of c. An empty
// subcategory is always valid; the taxonomy only constrains what is set.
func ValidSubcategory(c, s string) bool {
	if s == "" {
		return true
	}
	for _, sub := range subcategories[c] {
		if sub == s {
			return true
		}
	}
	return false
}

// IdentifierTypesFor returns the allowed identifier types for a category
func IdentifierTypesFor(category string) []string {
	return identifierTypes[category]
}

// IdentifierRequired reports whether a category mandates an identifier
func IdentifierRequired(category string) bool {
	return identifierRequired[category]
}
