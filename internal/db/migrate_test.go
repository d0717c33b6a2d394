package db

import (
	"testing"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateDB_SeedsCatalogConfig(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	var cfg model.CatalogConfig
	require.NoError(t, testDB.First(&cfg, model.CatalogConfigID).Error)
	assert.True(t, cfg.ShowPrices)
	assert.Equal(t, "UYU", cfg.CurrencyCode)

	// a second run keeps the existing row
	require.NoError(t, testDB.Model(&cfg).Update("show_prices", false).Error)
	require.NoError(t, MigrateDB(testDB))

	var again model.CatalogConfig
	require.NoError(t, testDB.First(&again, model.CatalogConfigID).Error)
	assert.False(t, again.ShowPrices)

	var count int64
	require.NoError(t, testDB.Model(&model.CatalogConfig{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTruncateAllTables(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	require.NoError(t, testDB.Create(&model.Category{Slug: "bebidas", Name: "Bebidas"}).Error)
	require.NoError(t, TruncateAllTables(testDB))

	var count int64
	require.NoError(t, testDB.Model(&model.Category{}).Count(&count).Error)
	assert.Zero(t, count)
}
