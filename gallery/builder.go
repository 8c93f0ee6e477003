// Package gallery flattens product data into the scrolling strip of
// variant tiles, one tile per declared color value that has a variant.
package gallery

import (
	"fmt"
	"strings"

	"layerlight-storefront/models"
	"layerlight-storefront/options"
	"layerlight-storefront/selection"
	"layerlight-storefront/utils"
)

// Repeats is how many times the whole tile sequence is laid out back to back,
// so the strip appears continuous while scrolling.
const Repeats = 3

// Policy selects how declared colors without a variant are handled
type Policy int

const (
	// PolicySkipMissing drops such colors silently
	PolicySkipMissing Policy = iota
	// PolicyReportMissing drops them too but reports them as an error
	PolicyReportMissing
)

// Result is the outcome of Build
type Result struct {
	Tiles   []models.GalleryTile
	Missing []models.MissingVariant
}

// MissingVariantError lists declared color values that no variant carries
type MissingVariantError struct {
	Missing []models.MissingVariant
}

func (e *MissingVariantError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s/%s=%s", m.ProductHandle, m.OptionName, m.Value))
	}
	return fmt.Sprintf("%d declared colors have no variant: %s", len(e.Missing), strings.Join(parts, ", "))
}

// BuildTiles returns the tripled tile sequence, silently skipping products
// without a color option and color values without a variant.
func BuildTiles(products []models.Product) []models.GalleryTile {
	res, _ := Build(products, PolicySkipMissing)
	return res.Tiles
}

// Build projects products into tiles. Input products are never modified.
// With PolicyReportMissing a *MissingVariantError accompanies the full result.
func Build(products []models.Product, policy Policy) (Result, error) {
	var (
		base    []models.GalleryTile
		missing []models.MissingVariant
	)

	for _, p := range products {
		colorOpt, ok := options.ResolveColorOption(p.Options)
		if !ok {
			continue
		}
		for _, value := range colorOpt.Values {
			variant, found := variantForColor(p.Variants, value)
			if !found {
				missing = append(missing, models.MissingVariant{
					ProductHandle: p.Handle,
					OptionName:    colorOpt.Name,
					Value:         value,
				})
				continue
			}
			base = append(base, newTile(p, variant, value))
		}
	}

	tiles := make([]models.GalleryTile, 0, len(base)*Repeats)
	for i := 0; i < Repeats; i++ {
		tiles = append(tiles, base...)
	}

	res := Result{Tiles: tiles, Missing: missing}
	if policy == PolicyReportMissing && len(missing) > 0 {
		return res, &MissingVariantError{Missing: missing}
	}
	return res, nil
}

// MarkSelected returns a copy of tiles with Selected set on tiles whose
// color value matches the configuration's color.
func MarkSelected(tiles []models.GalleryTile, cfg selection.Configuration) []models.GalleryTile {
	current, ok := cfg.ColorValue()
	out := make([]models.GalleryTile, len(tiles))
	for i, t := range tiles {
		t.Selected = ok && t.DisplayColorValue == current
		out[i] = t
	}
	return out
}

// variantForColor returns the first variant whose selected color equals value
func variantForColor(variants []models.Variant, value string) (models.Variant, bool) {
	for _, v := range variants {
		if c, ok := options.ColorValue(v.SelectedOptions); ok && c == value {
			return v, true
		}
	}
	return models.Variant{}, false
}

func newTile(p models.Product, v models.Variant, value string) models.GalleryTile {
	return models.GalleryTile{
		ProductID:         p.ID,
		ProductHandle:     p.Handle,
		ProductTitle:      p.Title,
		VariantID:         v.ID,
		DisplayColorValue: value,
		RenderColor:       options.ColorValueToRGB(value),
		DeepLink:          DeepLink(p.Handle, v.SelectedOptions),
		Price:             v.Price,
		PriceLabel:        utils.FormatMoney(v.Price),
	}
}
