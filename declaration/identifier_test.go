package declaration_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Loicqra12/ovpr-api/declaration"
)

func TestValidateIdentifier_VIN(t *testing.T) {
	err := declaration.ValidateIdentifier("vehicle", "vin", "WVWZZZ1JZ3W386752")
	assert.NoError(t, err)
}

func TestValidateIdentifier_VINTooShort(t *testing.T) {
	err := declaration.ValidateIdentifier("vehicle", "vin", "WVWZZZ1JZ3W38675")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "17")
}

func TestValidateIdentifier_VINForbiddenLetters(t *testing.T) {
	// I, O and Q are never part of a VIN
	err := declaration.ValidateIdentifier("vehicle", "vin", "WVWZZZIJZ3W386752")
	assert.Error(t, err)
}

func TestValidateIdentifier_VINLowercase(t *testing.T) {
	err := declaration.ValidateIdentifier("vehicle", "vin", "wvwzzz1jz3w386752")
	assert.Error(t, err)
}

func TestValidateIdentifier_IMEI(t *testing.T) {
	assert.NoError(t, declaration.ValidateIdentifier("electronics", "imei", "490154203237518"))
}

func TestValidateIdentifier_IMEITooShort(t *testing.T) {
	err := declaration.ValidateIdentifier("electronics", "imei", "49015420323751")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "15 digits")
}

func TestValidateIdentifier_Serial(t *testing.T) {
	assert.NoError(t, declaration.ValidateIdentifier("electronics", "serial", "C02-XL0GJHD3"))
	assert.Error(t, declaration.ValidateIdentifier("electronics", "serial", ""))
	assert.Error(t, declaration.ValidateIdentifier("electronics", "serial", "not a serial!"))
}

func TestValidateIdentifier_TypeOutsideCategorySet(t *testing.T) {
	// an IMEI makes no sense on a vehicle, a VIN makes no sense on a phone
	err := declaration.ValidateIdentifier("vehicle", "imei", "490154203237518")
	assert.True(t, errors.Is(err, declaration.ErrUnsupportedIdentifierType))

	err = declaration.ValidateIdentifier("electronics", "vin", "WVWZZZ1JZ3W386752")
	assert.True(t, errors.Is(err, declaration.ErrUnsupportedIdentifierType))
}

func TestValidateIdentifier_CategoryWithoutIdentifiers(t *testing.T) {
	err := declaration.ValidateIdentifier("animal", "serial", "ABC-123")
	assert.True(t, errors.Is(err, declaration.ErrUnsupportedIdentifierType))
}

func TestIdentifierRequired(t *testing.T) {
	assert.True(t, declaration.IdentifierRequired("vehicle"))
	assert.True(t, declaration.IdentifierRequired("electronics"))
	assert.False(t, declaration.IdentifierRequired("clothing"))
	assert.False(t, declaration.IdentifierRequired("other"))
}

func TestTaxonomy(t *testing.T) {
	assert.True(t, declaration.ValidType("lost"))
	assert.True(t, declaration.ValidType("found"))
	assert.True(t, declaration.ValidType("stolen"))
	assert.False(t, declaration.ValidType("misplaced"))

	assert.True(t, declaration.ValidCategory("vehicle"))
	assert.False(t, declaration.ValidCategory("spaceship"))

	assert.True(t, declaration.ValidSubcategory("electronics", "phone"))
	assert.True(t, declaration.ValidSubcategory("electronics", ""))
	assert.False(t, declaration.ValidSubcategory("electronics", "car"))
}
