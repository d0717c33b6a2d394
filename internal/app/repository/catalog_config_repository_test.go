package repository

import (
	"testing"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogConfigRepository_GetAndSave(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)
	repo := NewCatalogConfigRepository(testDB)

	cfg, err := repo.Get()
	require.NoError(t, err)
	assert.True(t, cfg.ShowPrices)
	assert.Equal(t, model.DefaultCurrencyCode, cfg.CurrencyCode)

	cfg.ShowPrices = false
	cfg.CurrencyCode = "USD"
	require.NoError(t, repo.Save(cfg))

	reloaded, err := repo.Get()
	require.NoError(t, err)
	assert.False(t, reloaded.ShowPrices)
	assert.Equal(t, "USD", reloaded.CurrencyCode)
}

func TestCatalogConfigRepository_MissingRowFallsBack(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)
	require.NoError(t, testDB.Exec("DELETE FROM catalogo_config").Error)

	cfg, err := NewCatalogConfigRepository(testDB).Get()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCatalogConfig(), *cfg)
}
