package options

import "layerlight-storefront/palette"

// DefaultColor is the light neutral shown for unmapped or missing colors
var DefaultColor = palette.ParseHex("#f1f1f1")

// colorTable maps backend variant color names (German and English) to render colors.
// Lookups are exact and case-sensitive.
var colorTable = map[string]palette.RGB{
	"Weiß":    palette.ParseHex("#f1f1f1"),
	"White":   palette.ParseHex("#f1f1f1"),
	"Schwarz": palette.ParseHex("#212121"),
	"Black":   palette.ParseHex("#212121"),
	"Gold":    palette.ParseHex("#FFD700"),
	"Silber":  palette.ParseHex("#C0C0C0"),
	"Silver":  palette.ParseHex("#C0C0C0"),
	"Kupfer":  palette.ParseHex("#B87333"),
	"Copper":  palette.ParseHex("#B87333"),
	"Blau":    palette.ParseHex("#1E90FF"),
	"Blue":    palette.ParseHex("#1E90FF"),
	"Rot":     palette.ParseHex("#DC143C"),
	"Red":     palette.ParseHex("#DC143C"),
	"Grün":    palette.ParseHex("#2E8B57"),
	"Green":   palette.ParseHex("#2E8B57"),
	"Gelb":    palette.ParseHex("#FFD700"),
	"Yellow":  palette.ParseHex("#FFD700"),
}

// ColorValueToRGB maps an option value to its render color, DefaultColor on a miss.
// It never fails.
func ColorValueToRGB(value string) palette.RGB {
	if c, ok := colorTable[value]; ok {
		return c
	}
	return DefaultColor
}

// KnownColor reports whether value has an entry in the color table.
func KnownColor(value string) bool {
	_, ok := colorTable[value]
	return ok
}
