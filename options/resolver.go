// Package options locates the color-like option in multilingual product option
// data and maps its values to render colors.
package options

import (
	"layerlight-storefront/models"
	"layerlight-storefront/utils"
)

// colorOptionNames is the synonym set identifying the color option (lower-cased)
var colorOptionNames = map[string]struct{}{
	"color":  {},
	"farbe":  {},
	"colour": {},
}

// IsColorOptionName reports whether name denotes the color option, case-insensitively.
func IsColorOptionName(name string) bool {
	_, ok := colorOptionNames[utils.NormalizeOptionName(name)]
	return ok
}

// ColorOptionKeys returns the synonym set in a fixed lookup order.
func ColorOptionKeys() []string {
	return []string{"color", "farbe", "colour"}
}

// ResolveColorOption returns the first option, in declared order, whose name is a
// color synonym. The boolean is false when the product does not vary by color,
// which callers treat as "nothing to visualize".
func ResolveColorOption(opts []models.ProductOption) (models.ProductOption, bool) {
	for _, opt := range opts {
		if IsColorOptionName(opt.Name) {
			return opt, true
		}
	}
	return models.ProductOption{}, false
}

// ColorValue returns the color value carried by a variant's selected options.
func ColorValue(selected []models.SelectedOption) (string, bool) {
	for _, opt := range selected {
		if IsColorOptionName(opt.Name) {
			return opt.Value, true
		}
	}
	return "", false
}
