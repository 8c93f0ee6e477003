package utils

import (
	"strings"
)

// NormalizeOptionName normalizes an option name for comparisons and query keys
// Input is trimmed and lower-cased, so "Farbe", " FARBE" and "farbe" compare equal
func NormalizeOptionName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CapitalizeWords capitalizes the first letter of each word
func CapitalizeWords(s string) string {
	if s == "" {
		return s
	}
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		if len(runes) > 0 {
			words[i] = strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
		}
	}
	return strings.Join(words, " ")
}

// MapCurrencySymbol maps ISO currency codes to their narrow display symbol
// Returns an empty string for currencies displayed by code
func MapCurrencySymbol(code string) string {
	codeUpper := strings.ToUpper(strings.TrimSpace(code))

	symbolMap := map[string]string{
		"EUR": "€",
		"USD": "$",
		"GBP": "£",
		"JPY": "¥",
	}

	if symbol, exists := symbolMap[codeUpper]; exists {
		return symbol
	}
	return ""
}
