package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Flavor is a purchasable flavor of a product.
type Flavor struct {
	Name    string `json:"name"`
	InStock bool   `json:"inStock"`
}

// Variant is a purchasable size/strength of a product with optional overrides.
type Variant struct {
	Name  string `json:"name"`
	Price *int   `json:"price,omitempty"`
	Stock *int   `json:"stock,omitempty"`
}

// Flavors is persisted as a JSON array.
type Flavors []Flavor

// Variants is persisted as a JSON array.
type Variants []Variant

// StringList is persisted as a JSON array of strings.
type StringList []string

func (f Flavors) Value() (driver.Value, error)    { return marshalList(f, len(f)) }
func (v Variants) Value() (driver.Value, error)   { return marshalList(v, len(v)) }
func (s StringList) Value() (driver.Value, error) { return marshalList(s, len(s)) }

func (f *Flavors) Scan(value interface{}) error {
	out := Flavors{}
	if err := scanJSON("flavors", value, &out); err != nil {
		return err
	}
	*f = out
	return nil
}

func (v *Variants) Scan(value interface{}) error {
	out := Variants{}
	if err := scanJSON("variants", value, &out); err != nil {
		return err
	}
	*v = out
	return nil
}

func (s *StringList) Scan(value interface{}) error {
	out := StringList{}
	if err := scanJSON("string list", value, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// Names returns the flavor names in order.
func (f Flavors) Names() []string {
	names := make([]string, 0, len(f))
	for _, flavor := range f {
		names = append(names, flavor.Name)
	}
	return names
}

// Find returns the flavor with the given name.
func (f Flavors) Find(name string) (Flavor, bool) {
	for _, flavor := range f {
		if flavor.Name == name {
			return flavor, true
		}
	}
	return Flavor{}, false
}

// Find returns the variant with the given name.
func (v Variants) Find(name string) (Variant, bool) {
	for _, variant := range v {
		if variant.Name == name {
			return variant, true
		}
	}
	return Variant{}, false
}

func marshalList(list any, n int) (driver.Value, error) {
	if n == 0 {
		return "[]", nil
	}
	buf, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

func scanJSON(label string, value interface{}, dst any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("%s: unsupported scan type %T", label, value)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
