package model

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// ErrInvalidPrice is returned when a price cannot be parsed or stored.
var ErrInvalidPrice = errors.New("invalid price")

// Price is a fixed-point amount with two fraction digits, stored in cents.
type Price int64

// NewPrice builds a price from whole units and cents.
func NewPrice(units int64, cents int64) Price {
	return Price(units*100 + cents)
}

// ParsePrice parses a decimal string such as "799", "799.5" or "-1.25".
// Only an optional leading minus and ASCII digits are accepted, with at most
// two fraction digits.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(digits, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q has no digits", ErrInvalidPrice, s)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidPrice, s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: %q has more than two fraction digits", ErrInvalidPrice, s)
	}
	frac += strings.Repeat("0", 2-len(frac))
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)

	p := NewPrice(units, cents)
	if neg {
		p = -p
	}
	return p, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats the price with exactly two fraction digits.
func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the price as a decimal string to avoid float rounding.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// ScanNumeric implements pgtype.NumericScanner.
func (p *Price) ScanNumeric(v pgtype.Numeric) error {
	if !v.Valid {
		*p = 0
		return nil
	}
	if v.NaN || v.InfinityModifier != pgtype.Finite || v.Int == nil {
		return fmt.Errorf("%w: non-finite numeric", ErrInvalidPrice)
	}

	cents := new(big.Int).Set(v.Int)
	shift := int64(v.Exp) + 2
	ten := big.NewInt(10)
	if shift > 0 {
		cents.Mul(cents, new(big.Int).Exp(ten, big.NewInt(shift), nil))
	} else if shift < 0 {
		cents.Quo(cents, new(big.Int).Exp(ten, big.NewInt(-shift), nil))
	}

	if !cents.IsInt64() {
		return fmt.Errorf("%w: out of range", ErrInvalidPrice)
	}
	*p = Price(cents.Int64())
	return nil
}

// NumericValue implements pgtype.NumericValuer.
func (p Price) NumericValue() (pgtype.Numeric, error) {
	return pgtype.Numeric{Int: big.NewInt(int64(p)), Exp: -2, Valid: true}, nil
}
