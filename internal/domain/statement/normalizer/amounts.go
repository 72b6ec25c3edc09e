package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmountFormat is returned for tokens that do not resolve to a positive amount.
	ErrInvalidAmountFormat = errors.New("invalid amount format")
	// ErrUnknownAmountPolicy is returned when no amount policy was selected.
	ErrUnknownAmountPolicy = errors.New("unknown amount policy")
)

// AmountPolicy decides how a units-only token (no decimal point) is read.
// The zero value is not a valid policy; callers must choose one.
type AmountPolicy int

const (
	policyUnset AmountPolicy = iota
	// PolicySimple always reads units-only digits as minor units (÷100).
	PolicySimple
	// PolicyHeuristic reads units-only digits as whole units unless the token
	// is longer than 3 digits, carried no currency marker and exceeds 10000.
	PolicyHeuristic
)

func (p AmountPolicy) String() string {
	switch p {
	case PolicySimple:
		return "simple"
	case PolicyHeuristic:
		return "heuristic"
	default:
		return "unset"
	}
}

// Valid reports whether p is a selectable policy.
func (p AmountPolicy) Valid() bool {
	return p == PolicySimple || p == PolicyHeuristic
}

// ParseAmountPolicy maps "simple" or "heuristic" to a policy.
func ParseAmountPolicy(s string) (AmountPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return PolicySimple, nil
	case "heuristic":
		return PolicyHeuristic, nil
	default:
		return policyUnset, fmt.Errorf("%w: %q", ErrUnknownAmountPolicy, s)
	}
}

var (
	currencyMarker = regexp.MustCompile(`(?i)rs\.?|inr|[₹$€£]`)
	amountDigits   = regexp.MustCompile(`^\d*\.?\d*$`)

	minorUnitDivisor = decimal.NewFromInt(100)
	heuristicCeiling = decimal.NewFromInt(10000)
)

// HasCurrencyMarker reports whether s carries ₹, Rs, INR or another currency symbol.
func HasCurrencyMarker(s string) bool {
	return currencyMarker.MatchString(s)
}

// ParseAmount strips currency markers, whitespace and grouping commas from the
// token and resolves it to a positive amount with two fractional digits.
func ParseAmount(raw string, policy AmountPolicy) (decimal.Decimal, error) {
	if !policy.Valid() {
		return decimal.Zero, ErrUnknownAmountPolicy
	}

	hadMarker := HasCurrencyMarker(raw)
	s := currencyMarker.ReplaceAllString(raw, "")
	s = strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if s == "" || s == "." || !amountDigits.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmountFormat, raw)
	}

	var amount decimal.Decimal
	if strings.Contains(s, ".") {
		if strings.HasPrefix(s, ".") {
			s = "0" + s
		}
		s = strings.TrimSuffix(s, ".")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmountFormat, raw)
		}
		amount = d
	} else {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmountFormat, raw)
		}
		amount = resolveUnits(d, len(s), hadMarker, policy)
	}

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q is not positive", ErrInvalidAmountFormat, raw)
	}
	return amount, nil
}

func resolveUnits(d decimal.Decimal, digits int, hadMarker bool, policy AmountPolicy) decimal.Decimal {
	switch policy {
	case PolicySimple:
		return d.Div(minorUnitDivisor)
	default:
		if digits > 3 && !hadMarker && d.GreaterThan(heuristicCeiling) {
			return d.Div(minorUnitDivisor)
		}
		return d
	}
}
