package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

type Category string

const (
	CategoryBread    Category = "BREAD"
	CategoryBeverage Category = "BEVERAGE"
	CategoryCake     Category = "CAKE"
)

var categories = []Category{CategoryBread, CategoryBeverage, CategoryCake}

func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory matches the enum names exactly. The empty string is unset.
func ParseCategory(v string) (Category, error) {
	if v == "" {
		return "", nil
	}
	if i := slices.Index(categories, Category(v)); i >= 0 {
		return categories[i], nil
	}
	return "", fmt.Errorf("unknown category %q", v)
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("category must be a string: %w", err)
	}
	if raw == nil {
		*c = ""
		return nil
	}
	parsed, err := ParseCategory(*raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
