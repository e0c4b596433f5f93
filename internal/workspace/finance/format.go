package finance

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

var symbols = map[domain.Currency]string{
	domain.USD: "$",
	domain.UZS: "сум",
}

// FormatMoney renders an amount with space-grouped thousands followed by the
// currency symbol. UZS has no fractional part; USD keeps up to two decimals.
func FormatMoney(amount decimal.Decimal, currency domain.Currency) string {
	currency = currency.OrDefault()
	places := int32(2)
	if currency == domain.UZS {
		places = 0
	}

	s := amount.Round(places).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}

	sym, ok := symbols[currency]
	if !ok {
		sym = string(currency)
	}
	return b.String() + " " + sym
}
