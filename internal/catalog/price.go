package catalog

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("invalid price")

// ParsePriceToCents turns a user-entered euro amount ("6.50", "6,50") into
// integer cents. Comma is accepted as decimal separator.
func ParsePriceToCents(input string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	if cleaned == "" {
		return 0, ErrInvalidPrice
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return 0, ErrInvalidPrice
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
