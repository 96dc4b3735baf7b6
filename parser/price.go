package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var priceRe = regexp.MustCompile(`([$£€])?\s*([\d,]+(?:\.\d+)?)`)

var currencyBySymbol = map[string]string{
	"$": "USD",
	"£": "GBP",
	"€": "EUR",
}

// ExtractPrice pulls the first monetary amount out of free-form price
// text like "$1,250.00", "US $450.00 Buy It Now" or "Est. £300-£500".
// Returns 0 and "USD" when no amount is found.
func ExtractPrice(text string) (float64, string) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, "USD"
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
	if err != nil {
		return 0, "USD"
	}

	currency := "USD"
	if c, ok := currencyBySymbol[m[1]]; ok {
		currency = c
	}
	return value, currency
}
