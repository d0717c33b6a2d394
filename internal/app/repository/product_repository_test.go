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

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewProductRepository(testDB)
	return testDB, repo
}

func seedProduct(t *testing.T, repo ProductRepository, slug, name string, status model.ProductStatus, createdAt time.Time) *model.Product {
	t.Helper()
	product := &model.Product{
		Slug:      slug,
		Name:      name,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, repo.Create(product))
	return product
}

func TestProductRepository_CreateAndFind(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := seedProduct(t, repo, "yerba-canarias", "Yerba Canarias 1kg", model.StatusPublished, time.Now())
	assert.NotZero(t, product.ID)

	byID, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "yerba-canarias", byID.Slug)

	bySlug, err := repo.FindBySlug("yerba-canarias")
	require.NoError(t, err)
	assert.Equal(t, product.ID, bySlug.ID)

	_, err = repo.FindBySlug("no-existe")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_FindWithFilter(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := seedProduct(t, repo, "mate-calabaza", "Mate de calabaza", model.StatusPublished, base)
	b := seedProduct(t, repo, "bombilla-alpaca", "Bombilla alpaca", model.StatusPublished, base.Add(time.Hour))
	seedProduct(t, repo, "termo-borrador", "Termo acero", model.StatusDraft, base.Add(2*time.Hour))
	c := seedProduct(t, repo, "mate-100-puro", "Mate 100% puro", model.StatusPublished, base.Add(3*time.Hour))

	published := model.StatusPublished

	t.Run("published only, newest first", func(t *testing.T) {
		products, total, err := repo.FindWithFilter(ProductFilter{Status: &published})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, products, 3)
		assert.Equal(t, c.ID, products[0].ID)
		assert.Equal(t, a.ID, products[2].ID)
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		products, total, err := repo.FindWithFilter(ProductFilter{Status: &published, Search: "MATE"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, products, 2)
	})

	t.Run("wildcards match literally", func(t *testing.T) {
		products, _, err := repo.FindWithFilter(ProductFilter{Status: &published, Search: "100%"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, c.ID, products[0].ID)

		products, _, err = repo.FindWithFilter(ProductFilter{Status: &published, Search: "_"})
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("restricted to empty id set", func(t *testing.T) {
		products, total, err := repo.FindWithFilter(ProductFilter{RestrictToIDs: true})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, products)
	})

	t.Run("restricted ids with name sort and paging", func(t *testing.T) {
		products, total, err := repo.FindWithFilter(ProductFilter{
			RestrictToIDs: true,
			ProductIDs:    []uint{a.ID, b.ID, c.ID},
			SortBy:        ProductSortName,
			SortAscending: true,
			Limit:         2,
			Offset:        1,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, products, 2)
		assert.Equal(t, c.ID, products[0].ID)
		assert.Equal(t, a.ID, products[1].ID)
	})
}

func TestProductRepository_UpsertBySlug(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	first := &model.Product{Slug: "yerba-baldo", Name: "Yerba Baldo", Status: model.StatusDraft}
	id, err := repo.UpsertBySlug(first)
	require.NoError(t, err)
	assert.NotZero(t, id)

	second := &model.Product{Slug: "yerba-baldo", Name: "Yerba Baldo 500g", Status: model.StatusPublished}
	id2, err := repo.UpsertBySlug(second)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	found, err := repo.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Yerba Baldo 500g", found.Name)
	assert.Equal(t, model.StatusPublished, found.Status)

	all, err := repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProductRepository_UpdateStatusAndDelete(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := seedProduct(t, repo, "termo-stanley", "Termo Stanley", model.StatusDraft, time.Now())

	require.NoError(t, repo.UpdateStatus(product.ID, model.StatusArchived))
	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusArchived, found.Status)

	assert.ErrorIs(t, repo.UpdateStatus(9999, model.StatusPublished), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(product.ID))
	assert.ErrorIs(t, repo.Delete(product.ID), gorm.ErrRecordNotFound)
}

func TestProductRepository_UpdateClearsShowPrices(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	hidden := false
	product := &model.Product{Slug: "azucar", Name: "Azúcar", Status: model.StatusPublished, ShowPrices: &hidden}
	require.NoError(t, repo.Create(product))

	product.ShowPrices = nil
	product.Name = "Azúcar 1kg"
	require.NoError(t, repo.Update(product))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Nil(t, found.ShowPrices)
	assert.Equal(t, "Azúcar 1kg", found.Name)
}

func TestParseProductSort(t *testing.T) {
	assert.Equal(t, ProductSortName, ParseProductSort("name"))
	assert.Equal(t, ProductSortUpdatedAt, ParseProductSort("updated_at"))
	assert.Equal(t, ProductSortCreatedAt, ParseProductSort("price; DROP TABLE"))
}
