package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/internal/db"
	"github.com/ikkim/catalogo-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testStorageURL = "https://cdn.test/products"

type testEnv struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	imageRepo    repository.ImageRepository
	categoryRepo repository.CategoryRepository
	configRepo   repository.CatalogConfigRepository
	clickRepo    repository.ClickEventRepository
	userRepo     repository.UserRepository
	resetRepo    repository.PasswordResetRepository
	storage      *storage.MemoryStorage
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return &testEnv{
		db:           testDB,
		productRepo:  repository.NewProductRepository(testDB),
		variantRepo:  repository.NewVariantRepository(testDB),
		imageRepo:    repository.NewImageRepository(testDB),
		categoryRepo: repository.NewCategoryRepository(testDB),
		configRepo:   repository.NewCatalogConfigRepository(testDB),
		clickRepo:    repository.NewClickEventRepository(testDB),
		userRepo:     repository.NewUserRepository(testDB),
		resetRepo:    repository.NewPasswordResetRepository(testDB),
		storage:      storage.NewMemoryStorage(testStorageURL),
	}
}

func (e *testEnv) catalogService() CatalogService {
	return NewCatalogService(e.productRepo, e.variantRepo, e.imageRepo, e.categoryRepo, e.configRepo, e.storage, 12, 60)
}

func (e *testEnv) productService(objectStorage storage.ObjectStorage) ProductService {
	if objectStorage == nil {
		objectStorage = e.storage
	}
	return NewProductService(e.db, e.productRepo, e.variantRepo, e.imageRepo, e.categoryRepo, e.configRepo, objectStorage)
}

func (e *testEnv) imageService(objectStorage storage.ObjectStorage) ImageService {
	if objectStorage == nil {
		objectStorage = e.storage
	}
	return NewImageService(e.db, e.productRepo, e.variantRepo, e.imageRepo, objectStorage, 8*1024*1024)
}

func (e *testEnv) importExportService() ImportExportService {
	return NewImportExportService(e.db, e.productRepo, e.variantRepo)
}

func (e *testEnv) product(t *testing.T, slug, name string, status model.ProductStatus, variants ...model.Variant) *model.Product {
	t.Helper()
	p := &model.Product{Slug: slug, Name: name, Status: status}
	require.NoError(t, e.productRepo.Create(p))
	for i := range variants {
		variants[i].ProductID = p.ID
	}
	require.NoError(t, e.variantRepo.CreateBatch(variants))
	return p
}

func (e *testEnv) category(t *testing.T, slug string, products ...*model.Product) *model.Category {
	t.Helper()
	c := &model.Category{Slug: slug, Name: slug}
	require.NoError(t, e.categoryRepo.Create(c))
	for _, p := range products {
		require.NoError(t, e.db.Create(&model.ProductCategory{ProductID: p.ID, CategoryID: c.ID}).Error)
	}
	return c
}

func (e *testEnv) setShowPrices(t *testing.T, show bool) {
	t.Helper()
	cfg, err := e.configRepo.Get()
	require.NoError(t, err)
	cfg.ShowPrices = show
	require.NoError(t, e.configRepo.Save(cfg))
}

// brokenStorage accepts uploads but can fail removals.
type brokenStorage struct {
	*storage.MemoryStorage
	removeErr error
	removed   []string
}

func (b *brokenStorage) Remove(ctx context.Context, key string) error {
	b.removed = append(b.removed, key)
	if b.removeErr != nil {
		return b.removeErr
	}
	return b.MemoryStorage.Remove(ctx, key)
}

type failingUploadStorage struct {
	*storage.MemoryStorage
}

func (f *failingUploadStorage) Upload(context.Context, string, io.Reader, int64, string) error {
	return errors.New("bucket unavailable")
}

// failingClickRepo never stores events.
type failingClickRepo struct{}

func (failingClickRepo) Create(*model.ClickEvent) error { return errors.New("insert failed") }

func (failingClickRepo) CountSince(time.Time) (int64, error) { return 0, nil }

func (failingClickRepo) DeleteOlderThan(time.Time) (int64, error) { return 0, nil }

type recordingMailer struct {
	to    []string
	links []string
	err   error
}

func (m *recordingMailer) SendPasswordReset(to, link string) error {
	m.to = append(m.to, to)
	m.links = append(m.links, link)
	return m.err
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }
