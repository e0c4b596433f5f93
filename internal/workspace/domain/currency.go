package domain

import "strings"

// Currency is one of the closed set of currencies the studio bills in.
type Currency string

const (
	USD Currency = "USD"
	UZS Currency = "UZS"
)

// Currencies lists the supported codes in display order.
var Currencies = []Currency{USD, UZS}

// ParseCurrency validates a currency code. An empty code defaults to USD.
func ParseCurrency(raw string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if c == "" {
		return USD, nil
	}
	if !c.Valid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

func (c Currency) Valid() bool {
	return c == USD || c == UZS
}

// OrDefault returns USD when the currency is unset.
func (c Currency) OrDefault() Currency {
	if c == "" {
		return USD
	}
	return c
}
