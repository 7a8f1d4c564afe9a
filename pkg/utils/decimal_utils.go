package utils

import "strconv"

// ParseDecimal parses the decimal strings Jupiter uses for prices.
// Empty strings parse to zero.
func ParseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// ParseDecimalOrZero is ParseDecimal with parse failures collapsed to zero,
// for call sites where an unparseable upstream price means "unpriced".
func ParseDecimalOrZero(s string) float64 {
	v, err := ParseDecimal(s)
	if err != nil {
		return 0
	}
	return v
}
