package models

// ProductOption represents one configuration axis of a product (e.g. "Farbe")
// Values keep the order declared by the commerce backend
type ProductOption struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// SelectedOption is one option name/value pair carried by a variant
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Money is a decimal amount as delivered by the backend, never parsed for arithmetic
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Variant represents a purchasable combination of option values
type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"availableForSale"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
	Price            Money            `json:"price"`
}

// Product represents a product with its option schema and variants
type Product struct {
	ID               string          `json:"id"`
	Handle           string          `json:"handle"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	DescriptionHTML  string          `json:"descriptionHtml"`
	FeaturedImageURL string          `json:"featuredImageUrl,omitempty"`
	Options          []ProductOption `json:"options"`
	Variants         []Variant       `json:"variants"`
}

// ErrorResponse is the JSON body returned by the proxy routes on failure
type ErrorResponse struct {
	Error string `json:"error"`
}
