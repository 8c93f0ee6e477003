package models

import (
	"html/template"

	"layerlight-storefront/palette"
)

// GalleryTile represents a single variant tile in the scrolling gallery
// Tiles are projections of product data and are rebuilt whenever products change
type GalleryTile struct {
	ProductID         string      `json:"productId"`
	ProductHandle     string      `json:"productHandle"`
	ProductTitle      string      `json:"productTitle"`
	VariantID         string      `json:"variantId"`
	DisplayColorValue string      `json:"colorValue"`
	RenderColor       palette.RGB `json:"colorCode"`
	DeepLink          string      `json:"url"`
	Price             Money       `json:"price"`
	PriceLabel        string      `json:"priceLabel"` // Formatted price (e.g., "€129.00")
	Selected          bool        `json:"selected"`   // True when tile color matches the current configuration
}

// MissingVariant records a declared color value without a matching variant
type MissingVariant struct {
	ProductHandle string `json:"productHandle"`
	OptionName    string `json:"optionName"`
	Value         string `json:"value"`
}

// GalleryResponse is the payload of GET /api/gallery
type GalleryResponse struct {
	Tiles   []GalleryTile    `json:"tiles"`
	Missing []MissingVariant `json:"missing,omitempty"`
}

// GalleryPageData represents the data structure passed to the gallery template
type GalleryPageData struct {
	Heading  string
	Products []GalleryProductSection
	BaseURL  string
	Missing  int
}

// GalleryProductSection groups the tiles of one product for the gallery template
type GalleryProductSection struct {
	Title           string
	Handle          string
	DescriptionHTML template.HTML // Sanitized before it reaches the template
	Tiles           []GalleryTile
}
