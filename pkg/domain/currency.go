package domain

import (
	dErrors "finbase/pkg/domain-errors"
)

// DefaultCurrency is the ISO 4217 code applied when the source API omits one.
const DefaultCurrency = "BRL"

// ValidateCurrency enforces the three-uppercase-letter ISO 4217 shape. The
// code list itself is not pinned; upstream institutions settle in currencies
// this model should not have to enumerate.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return dErrors.Newf(dErrors.CodeDomainValue, "currency code %q must be 3 letters", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return dErrors.Newf(dErrors.CodeDomainValue, "currency code %q must be uppercase letters", code)
		}
	}
	return nil
}

// CurrencyOrDefault normalizes an absent currency to DefaultCurrency.
func CurrencyOrDefault(code string) string {
	if code == "" {
		return DefaultCurrency
	}
	return code
}
