package repository

import (
	"testing"
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestImageRepository_ScopeAndPrimary(t *testing.T) {
	testDB, productRepo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)
	repo := NewImageRepository(testDB)
	variantRepo := NewVariantRepository(testDB)

	product := seedProduct(t, productRepo, "mate", "Mate", model.StatusPublished, time.Now())
	require.NoError(t, variantRepo.CreateBatch([]model.Variant{{ProductID: product.ID, SKU: "M-1", Name: "Uno", PriceCents: 1}}))
	variants, err := variantRepo.FindByProductID(product.ID)
	require.NoError(t, err)
	variantID := variants[0].ID

	first := &model.Image{ProductID: product.ID, Path: "1/a.jpg", IsPrimary: true, Position: 0}
	second := &model.Image{ProductID: product.ID, Path: "1/b.jpg", Position: 1}
	onVariant := &model.Image{ProductID: product.ID, VariantID: &variantID, Path: "1/variants/x.jpg", IsPrimary: true}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))
	require.NoError(t, repo.Create(onVariant))

	count, err := repo.CountInScope(product.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountInScope(product.ID, &variantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// promoting the second image only touches the product scope
	require.NoError(t, repo.ClearPrimaryInScope(product.ID, nil, second.ID))
	require.NoError(t, repo.UpdateFields(second.ID, map[string]interface{}{"is_primary": true}))

	images, err := repo.FindByProductID(product.ID)
	require.NoError(t, err)
	require.Len(t, images, 3)
	primaries := 0
	for _, img := range images {
		if img.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 2, primaries)

	reloaded, err := repo.FindByID(first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsPrimary)

	variantImg, err := repo.FindByID(onVariant.ID)
	require.NoError(t, err)
	assert.True(t, variantImg.IsPrimary)

	covers, err := repo.FindCoverByProductIDs([]uint{product.ID})
	require.NoError(t, err)
	assert.Equal(t, second.ID, covers[product.ID].ID)

	require.NoError(t, repo.DetachVariants([]uint{variantID}))
	detached, err := repo.FindByID(onVariant.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.VariantID)
	assert.False(t, detached.IsPrimary)
}

func TestImageRepository_Delete(t *testing.T) {
	testDB, productRepo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)
	repo := NewImageRepository(testDB)

	product := seedProduct(t, productRepo, "termo", "Termo", model.StatusDraft, time.Now())
	img := &model.Image{ProductID: product.ID, Path: "2/a.png"}
	require.NoError(t, repo.Create(img))

	require.NoError(t, repo.Delete(img.ID))
	assert.ErrorIs(t, repo.Delete(img.ID), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.UpdateFields(img.ID, map[string]interface{}{"alt": "x"}), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Create(&model.Image{ProductID: product.ID, Path: "2/b.png"}))
	require.NoError(t, repo.DeleteByProductID(product.ID))
	images, err := repo.FindByProductID(product.ID)
	require.NoError(t, err)
	assert.Empty(t, images)
}
