package utils

import (
	"math"
	"strconv"
	"strings"

	"layerlight-storefront/models"
)

// FormatMoney formats a backend money value for display, like "€1,299.00" or "CHF 89.00".
// The amount is only parsed for display; unparsable amounts are shown verbatim.
func FormatMoney(m models.Money) string {
	code := strings.ToUpper(strings.TrimSpace(m.CurrencyCode))
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.Amount), 64)
	if err != nil {
		return strings.TrimSpace(strings.TrimSpace(m.Amount) + " " + code)
	}

	formatted := formatDecimal(amount)
	if symbol := MapCurrencySymbol(code); symbol != "" {
		if strings.HasPrefix(formatted, "-") {
			return "-" + symbol + formatted[1:]
		}
		return symbol + formatted
	}
	if code == "" {
		return formatted
	}
	return code + " " + formatted
}

// formatDecimal renders an amount with two decimals and comma thousands separators
func formatDecimal(amount float64) string {
	neg := amount < 0
	cents := int64(math.Round(math.Abs(amount) * 100))
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + decimals
	b.Grow(len(whole) + len(whole)/3 + 4)
	if neg {
		b.WriteString("-")
	}

	// Insert separators from the left.
	rem := len(whole) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(whole[:rem])
	for i := rem; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}

	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}
