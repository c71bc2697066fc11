package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a money string into cents. Both "1.234,56" and
// "1,234.56" are accepted: when both separators appear the last one is the
// decimal point; a lone comma is a decimal comma. A separator repeated with
// no other separator present ("1,234,567", "1.234.567") groups thousands.
// Currency symbols and spaces are ignored.
func ParseAmount(s string) (int64, error) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		default:
			return -1
		}
	}, s)

	if clean == "" {
		return 0, fmt.Errorf("%w: empty amount %q", ErrInvalidInput, s)
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastDot < 0 && strings.Count(clean, ",") > 1:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma < 0 && strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	default:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidInput, s)
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
