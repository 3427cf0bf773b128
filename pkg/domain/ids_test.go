package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

func TestParseCustomerID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.CustomerID
		wantErr bool
	}{
		{name: "valid", input: "42", want: 42},
		{name: "zero rejected", input: "0", wantErr: true},
		{name: "negative rejected", input: "-7", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseCustomerID(tt.input)
			if tt.wantErr {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIDZeroness(t *testing.T) {
	assert.True(t, domain.CustomerID(0).IsZero())
	assert.False(t, domain.CustomerID(1).IsZero())
	assert.Equal(t, "42", domain.CustomerID(42).String())
}

func TestValidateCurrency(t *testing.T) {
	assert.NoError(t, domain.ValidateCurrency("BRL"))
	assert.NoError(t, domain.ValidateCurrency("USD"))

	for _, code := range []string{"", "BR", "BRLX", "brl", "B1L"} {
		err := domain.ValidateCurrency(code)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDomainValue), code)
	}
}

func TestCurrencyOrDefault(t *testing.T) {
	assert.Equal(t, domain.DefaultCurrency, domain.CurrencyOrDefault(""))
	assert.Equal(t, "EUR", domain.CurrencyOrDefault("EUR"))
}
