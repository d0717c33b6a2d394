package service

import (
	"testing"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogConfigService_Update(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewCatalogConfigService(env.configRepo)

	cfg, err := svc.Get()
	require.NoError(t, err)
	assert.True(t, cfg.ShowPrices)
	assert.Equal(t, model.DefaultCurrencyCode, cfg.CurrencyCode)

	updated, err := svc.Update(CatalogConfigUpdate{
		ShowPrices:   boolPtr(false),
		CurrencyCode: strPtr(" usd "),
		WhatsApp:     strPtr(" +598 99 123 456 "),
	})
	require.NoError(t, err)
	assert.False(t, updated.ShowPrices)
	assert.Equal(t, "USD", updated.CurrencyCode)
	assert.Equal(t, "+598 99 123 456", updated.WhatsApp)

	again, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "USD", again.CurrencyCode)
	assert.False(t, again.ShowPrices)
}

func TestCatalogConfigService_Rejections(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewCatalogConfigService(env.configRepo)

	_, err := svc.Update(CatalogConfigUpdate{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	for _, code := range []string{"", "pesos", "ZZZ"} {
		_, err = svc.Update(CatalogConfigUpdate{CurrencyCode: strPtr(code)})
		assert.ErrorIs(t, err, ErrInvalidCurrency, code)
	}

	cfg, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCurrencyCode, cfg.CurrencyCode)
}
