package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := NewProduct(uuid.New(), "Consulting hour", decimal.NewFromFloat(150))
		require.NoError(t, err)

		assert.Equal(t, "unit", p.Unit)
		assert.True(t, p.TaxRate.IsZero())
		assert.True(t, p.IsActive)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "Bad", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("requires organization", func(t *testing.T) {
		_, err := NewProduct(uuid.Nil, "Thing", decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}

func TestProductPricing(t *testing.T) {
	p, err := NewProduct(uuid.New(), "License", decimal.NewFromFloat(100))
	require.NoError(t, err)
	require.NoError(t, p.SetTaxRate(decimal.NewFromFloat(10)))

	assert.Equal(t, "110.00", p.PriceWithTax().StringFixed(2))

	assert.Error(t, p.SetUnitPrice(decimal.NewFromInt(-5)))
	assert.Error(t, p.SetTaxRate(decimal.NewFromInt(150)))
}
