package gallery

import (
	"fmt"
	"net/url"
	"strings"

	"layerlight-storefront/models"
	"layerlight-storefront/selection"
	"layerlight-storefront/utils"
)

// productPathPrefix is the storefront route for product detail pages
const productPathPrefix = "/product/"

// DeepLink builds "/product/<handle>?<option>=<value>&..." with keys lower-cased
// in selected-option order. Values are query-escaped.
func DeepLink(handle string, selected []models.SelectedOption) string {
	var b strings.Builder
	b.WriteString(productPathPrefix)
	b.WriteString(url.PathEscape(handle))

	seen := make(map[string]struct{}, len(selected))
	sep := "?"
	for _, opt := range selected {
		key := utils.NormalizeOptionName(opt.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		b.WriteString(sep)
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(opt.Value))
		sep = "&"
	}
	return b.String()
}

// ParseDeepLink reverses DeepLink. Absolute URLs are accepted; only path and query are read.
func ParseDeepLink(link string) (string, selection.Configuration, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse deep link: %w", err)
	}
	if !strings.HasPrefix(u.Path, productPathPrefix) {
		return "", nil, fmt.Errorf("not a product link: %s", link)
	}
	handle := strings.TrimPrefix(u.Path, productPathPrefix)
	if handle == "" || strings.Contains(handle, "/") {
		return "", nil, fmt.Errorf("invalid product handle in link: %s", link)
	}
	return handle, selection.FromQuery(u.Query()), nil
}
