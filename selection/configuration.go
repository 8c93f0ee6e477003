package selection

import (
	"net/url"
	"sort"

	"layerlight-storefront/models"
	"layerlight-storefront/options"
	"layerlight-storefront/utils"
)

// Configuration maps lower-cased option names to the selected value
type Configuration map[string]string

// FromSelectedOptions builds a configuration from a variant's selected options.
func FromSelectedOptions(selected []models.SelectedOption) Configuration {
	cfg := make(Configuration, len(selected))
	for _, opt := range selected {
		cfg[utils.NormalizeOptionName(opt.Name)] = opt.Value
	}
	return cfg
}

// FromQuery flattens URL query parameters into a configuration.
// Keys are lower-cased; when a key repeats, the first value wins.
func FromQuery(q url.Values) Configuration {
	cfg := make(Configuration, len(q))
	// Iterate in key order so duplicate keys differing only in case resolve deterministically
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		vals := q[k]
		if len(vals) == 0 {
			continue
		}
		key := utils.NormalizeOptionName(k)
		if key == "" {
			continue
		}
		if _, exists := cfg[key]; exists {
			continue
		}
		cfg[key] = vals[0]
	}
	return cfg
}

// Get looks up an option value by name, case-insensitively.
func (c Configuration) Get(name string) (string, bool) {
	v, ok := c[utils.NormalizeOptionName(name)]
	return v, ok
}

// Clone returns an independent copy.
func (c Configuration) Clone() Configuration {
	if c == nil {
		return Configuration{}
	}
	out := make(Configuration, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Equal reports whether both configurations hold the same pairs.
func (c Configuration) Equal(other Configuration) bool {
	if len(c) != len(other) {
		return false
	}
	for k, v := range c {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// ColorValue returns the value of the first color synonym present.
func (c Configuration) ColorValue() (string, bool) {
	for _, key := range options.ColorOptionKeys() {
		if v, ok := c[key]; ok {
			return v, true
		}
	}
	return "", false
}
