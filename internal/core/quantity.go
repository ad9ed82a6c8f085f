package core

import (
	"math/big"
	"strings"
)

// ParseQuantity converts a quantity string such as "2", "3/4", "1 1/2" or
// "0.5" to an exact rational. Blank or malformed input, including a zero
// denominator, yields 0 so one bad line cannot spoil a whole list.
//
// Two whitespace-separated tokens are read as a whole number plus a fraction;
// the whole part may be signed and is added to the fraction as is.
func ParseQuantity(s string) *big.Rat {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Rat)
	}
	if fields := strings.Fields(s); len(fields) > 1 {
		if len(fields) != 2 {
			return new(big.Rat)
		}
		whole, ok := new(big.Int).SetString(trimPlus(fields[0]), 10)
		if !ok {
			return new(big.Rat)
		}
		frac, ok := parseRational(fields[1])
		if !ok {
			return new(big.Rat)
		}
		return frac.Add(frac, new(big.Rat).SetInt(whole))
	}
	q, ok := parseRational(s)
	if !ok {
		return new(big.Rat)
	}
	return q
}

// parseRational accepts a signed integer, "n/d" or a plain decimal. Base
// prefixes and exponents that big.Rat.SetString would otherwise take are
// rejected.
func parseRational(s string) (*big.Rat, bool) {
	sign := ""
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = "-", s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if num, den, isFrac := strings.Cut(s, "/"); isFrac {
		if !allDigits(num) || !allDigits(den) {
			return nil, false
		}
		n, _ := new(big.Int).SetString(num, 10)
		d, _ := new(big.Int).SetString(den, 10)
		if d.Sign() == 0 {
			return nil, false
		}
		q := new(big.Rat).SetFrac(n, d)
		if sign == "-" {
			q.Neg(q)
		}
		return q, true
	}
	intPart, fracPart, isDec := strings.Cut(s, ".")
	if !isDec {
		if !allDigits(s) {
			return nil, false
		}
		q, ok := new(big.Rat).SetString(sign + s)
		return q, ok
	}
	if intPart == "" && fracPart == "" {
		return nil, false
	}
	if (intPart != "" && !allDigits(intPart)) || (fracPart != "" && !allDigits(fracPart)) {
		return nil, false
	}
	if intPart == "" {
		intPart = "0"
	}
	if fracPart == "" {
		fracPart = "0"
	}
	q, ok := new(big.Rat).SetString(sign + intPart + "." + fracPart)
	return q, ok
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func trimPlus(s string) string {
	return strings.TrimPrefix(s, "+")
}

// FormatQuantity renders a quantity as an integer ("3"), a mixed number
// ("1 1/2") or a proper fraction ("3/4"). The rational is already in lowest
// terms, so no further reduction happens here.
func FormatQuantity(q *big.Rat) string {
	if q == nil {
		return ""
	}
	if q.IsInt() {
		return q.Num().String()
	}
	num, den := q.Num(), q.Denom()
	if num.Cmp(den) > 0 {
		whole, rem := new(big.Int).QuoRem(num, den, new(big.Int))
		if rem.Sign() == 0 {
			return whole.String()
		}
		return whole.String() + " " + rem.String() + "/" + den.String()
	}
	return num.String() + "/" + den.String()
}
