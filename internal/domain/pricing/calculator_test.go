package pricing

import (
	"testing"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(price, qty, discount string) LineInput {
	return LineInput{UnitPrice: dec(price), Quantity: dec(qty), DiscountPct: dec(discount)}
}

func TestCalculate_TaxExclusive(t *testing.T) {
	// 15% exclusive branch, one line price=100 qty=2 discount=0
	result, err := Calculate(
		[]LineInput{line("100", "2", "0")},
		decimal.Zero,
		TaxSettings{Mode: catalog.TaxModeExclusive, Rate: dec("15")},
	)
	require.NoError(t, err)

	assert.True(t, result.Subtotal.Equal(dec("200")), "subtotal=%s", result.Subtotal)
	assert.True(t, result.TaxAmount.Equal(dec("30")), "tax=%s", result.TaxAmount)
	assert.True(t, result.Total.Equal(dec("230")), "total=%s", result.Total)
}

func TestCalculate_TaxInclusive(t *testing.T) {
	// 15% inclusive branch with a discounted subtotal of 115: tax is
	// extracted, not added.
	result, err := Calculate(
		[]LineInput{line("115", "1", "0")},
		decimal.Zero,
		TaxSettings{Mode: catalog.TaxModeInclusive, Rate: dec("15")},
	)
	require.NoError(t, err)

	assert.True(t, result.TaxAmount.Equal(dec("15")), "tax=%s", result.TaxAmount)
	assert.True(t, result.Total.Equal(dec("115")), "total=%s", result.Total)
}

func TestCalculate_LineDiscount(t *testing.T) {
	result, err := Calculate(
		[]LineInput{line("50", "4", "10")},
		decimal.Zero,
		TaxSettings{Mode: catalog.TaxModeExclusive, Rate: decimal.Zero},
	)
	require.NoError(t, err)

	require.Len(t, result.Lines, 1)
	assert.True(t, result.Lines[0].Subtotal.Equal(dec("200")))
	assert.True(t, result.Lines[0].Total.Equal(dec("180")))
	assert.True(t, result.Total.Equal(dec("180")))
}

func TestCalculate_OrderDiscount(t *testing.T) {
	result, err := Calculate(
		[]LineInput{line("100", "1", "0"), line("50", "2", "0")},
		dec("10"),
		TaxSettings{Mode: catalog.TaxModeExclusive, Rate: dec("15")},
	)
	require.NoError(t, err)

	assert.True(t, result.Subtotal.Equal(dec("200")))
	assert.True(t, result.OrderDiscountAmount.Equal(dec("20")))
	assert.True(t, result.DiscountedSubtotal.Equal(dec("180")))
	assert.True(t, result.TaxAmount.Equal(dec("27")))
	assert.True(t, result.Total.Equal(dec("207")))
}

func TestCalculate_FullDiscountInclusiveMode(t *testing.T) {
	// A 100% discount must produce a zero total and zero tax without a
	// division error in inclusive mode.
	result, err := Calculate(
		[]LineInput{line("100", "3", "0")},
		dec("100"),
		TaxSettings{Mode: catalog.TaxModeInclusive, Rate: dec("15")},
	)
	require.NoError(t, err)

	assert.True(t, result.Total.IsZero(), "total=%s", result.Total)
	assert.True(t, result.TaxAmount.IsZero(), "tax=%s", result.TaxAmount)
}

func TestCalculate_Validation(t *testing.T) {
	tax := TaxSettings{Mode: catalog.TaxModeExclusive, Rate: dec("15")}

	tests := []struct {
		name     string
		lines    []LineInput
		discount decimal.Decimal
		tax      TaxSettings
	}{
		{"empty lines", nil, decimal.Zero, tax},
		{"zero quantity", []LineInput{line("10", "0", "0")}, decimal.Zero, tax},
		{"negative price", []LineInput{line("-10", "1", "0")}, decimal.Zero, tax},
		{"line discount over 100", []LineInput{line("10", "1", "101")}, decimal.Zero, tax},
		{"negative order discount", []LineInput{line("10", "1", "0")}, dec("-5"), tax},
		{"unknown tax mode", []LineInput{line("10", "1", "0")}, decimal.Zero, TaxSettings{Mode: "flat", Rate: decimal.Zero}},
		{"tax rate at -100", []LineInput{line("10", "1", "0")}, decimal.Zero, TaxSettings{Mode: catalog.TaxModeInclusive, Rate: dec("-100")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.lines, tt.discount, tt.tax)
			require.Error(t, err)
			assert.True(t, shared.HasCode(err, shared.CodeValidation), "got %v", err)
		})
	}
}
