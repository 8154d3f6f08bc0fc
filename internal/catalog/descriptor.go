// Package catalog manages the lookup tables products reference: brands, units,
// statuses, types, categories and subcategories.
package catalog

import "fmt"

type Kind string

const (
	KindBrand       Kind = "brand"
	KindUnit        Kind = "unit"
	KindStatus      Kind = "status"
	KindType        Kind = "type"
	KindCategory    Kind = "category"
	KindSubcategory Kind = "subcategory"
)

// Descriptor ties a kind to its table and to the product columns that cache it.
type Descriptor struct {
	Kind              Kind
	Table             string
	ProductIDColumn   string
	ProductNameColumn string
	// Ascending lists by id ASC instead of DESC.
	Ascending bool
}

var descriptors = map[Kind]Descriptor{
	KindBrand:       {Kind: KindBrand, Table: "brands", ProductIDColumn: "brand_id", ProductNameColumn: "brand_name"},
	KindUnit:        {Kind: KindUnit, Table: "units", ProductIDColumn: "unit_id", ProductNameColumn: "unit_name"},
	KindStatus:      {Kind: KindStatus, Table: "status", ProductIDColumn: "status_id", ProductNameColumn: "status_name", Ascending: true},
	KindType:        {Kind: KindType, Table: "typetable", ProductIDColumn: "type_id", ProductNameColumn: "type_name", Ascending: true},
	KindCategory:    {Kind: KindCategory, Table: "categories", ProductIDColumn: "category_id", ProductNameColumn: "category_name", Ascending: true},
	KindSubcategory: {Kind: KindSubcategory, Table: "sub_categories", ProductIDColumn: "subcategory_id", ProductNameColumn: "subcategory_name"},
}

// FlatKinds are the tables that carry only a name and a description.
var FlatKinds = []Kind{KindBrand, KindUnit, KindStatus, KindType}

// Lookup returns the descriptor for kind.
func Lookup(kind Kind) (Descriptor, error) {
	d, ok := descriptors[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown catalog kind %q", kind)
	}
	return d, nil
}

// IsFlat reports whether kind is served by the shared name/description handlers.
func IsFlat(kind Kind) bool {
	for _, k := range FlatKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (d Descriptor) orderBy() string {
	if d.Ascending {
		return "id ASC"
	}
	return "id DESC"
}
