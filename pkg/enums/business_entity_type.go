package enums

import "fmt"

// BusinessEntityType classifies a stock-holding or external business entity.
type BusinessEntityType string

const (
	BusinessEntityTypeSupplier  BusinessEntityType = "supplier"
	BusinessEntityTypeWarehouse BusinessEntityType = "warehouse"
	BusinessEntityTypeShop      BusinessEntityType = "shop"
)

var validBusinessEntityTypes = []BusinessEntityType{
	BusinessEntityTypeSupplier,
	BusinessEntityTypeWarehouse,
	BusinessEntityTypeShop,
}

// String implements fmt.Stringer.
func (b BusinessEntityType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BusinessEntityType.
func (b BusinessEntityType) IsValid() bool {
	for _, candidate := range validBusinessEntityTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBusinessEntityType converts raw input into a BusinessEntityType.
func ParseBusinessEntityType(value string) (BusinessEntityType, error) {
	for _, candidate := range validBusinessEntityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid business entity type %q", value)
}
