package neo

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ShiftedBy moves the decimal point of value by n places (n > 0 multiplies
// by 10^n). It returns "" when value is not a number.
func ShiftedBy(value string, n int32) string {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return ""
	}
	return d.Shift(n).String()
}

// IntegerToDecimal converts a smallest-unit integer into its decimal form:
// 1000 * 10^unit -> 1000.
func IntegerToDecimal(integer string, unit int32) string {
	return ShiftedBy(integer, -unit)
}

// DecimalToInteger converts a decimal amount into smallest units. Digits
// below the smallest unit are truncated.
func DecimalToInteger(value string, unit int32) string {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return ""
	}
	return d.Shift(unit).Truncate(0).String()
}

// FormatOption tunes FormatNumber.
type FormatOption func(*formatOpts)

type formatOpts struct {
	decimals int32
	fixed    bool
	symbol   string
}

// WithDecimals rounds down to n places and pads with zeros.
func WithDecimals(n int32) FormatOption {
	return func(o *formatOpts) { o.decimals, o.fixed = n, true }
}

// WithSymbol prefixes the formatted value.
func WithSymbol(s string) FormatOption {
	return func(o *formatOpts) { o.symbol = s }
}

// FormatNumber groups thousands with commas, e.g. 1001.23 -> 1,001.23.
// Empty or invalid input renders as "-".
func FormatNumber(value string, opts ...FormatOption) string {
	var o formatOpts
	for _, opt := range opts {
		opt(&o)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return "-"
	}

	var s string
	if o.fixed {
		s = d.RoundDown(o.decimals).StringFixed(o.decimals)
	} else {
		s = d.String()
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	out := o.symbol + sign + sb.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}
