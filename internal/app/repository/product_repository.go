package repository

import (
	"strings"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortUpdatedAt ProductSort = "updated_at"
	ProductSortName      ProductSort = "name"
)

// ParseProductSort falls back to created_at for unknown fields.
func ParseProductSort(raw string) ProductSort {
	switch ProductSort(raw) {
	case ProductSortUpdatedAt, ProductSortName:
		return ProductSort(raw)
	}
	return ProductSortCreatedAt
}

type ProductFilter struct {
	Search string
	Status *model.ProductStatus
	// RestrictToIDs limits results to ProductIDs; an empty set yields no rows.
	RestrictToIDs bool
	ProductIDs    []uint
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindAll() ([]model.Product, error)
	Update(product *model.Product) error
	UpdateStatus(id uint, status model.ProductStatus) error
	UpsertBySlug(product *model.Product) (uint, error)
	Delete(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"slug":   product.Slug,
		"status": product.Status,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"slug": product.Slug,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		logger.Debug("Product not found by ID", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("slug = ?", slug).First(&product).Error; err != nil {
		logger.Debug("Product not found by slug", map[string]interface{}{
			"slug":  slug,
			"error": err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"search":     filter.Search,
		"status":     filter.Status,
		"restricted": filter.RestrictToIDs,
		"id_count":   len(filter.ProductIDs),
		"sort_by":    filter.SortBy,
		"ascending":  filter.SortAscending,
		"limit":      filter.Limit,
		"offset":     filter.Offset,
	})

	if filter.RestrictToIDs && len(filter.ProductIDs) == 0 {
		return []model.Product{}, 0, nil
	}

	query := r.db.Model(&model.Product{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RestrictToIDs {
		query = query.Where("id IN ?", filter.ProductIDs)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		query = query.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\'`,
			pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err, nil)
		return nil, 0, err
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = ProductSortCreatedAt
	}
	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	query = query.Order(string(sortBy) + " " + direction).Order("id " + direction)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, nil)
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

// FindAll returns every product in creation order.
func (r *productRepository) FindAll() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Order("created_at ASC").Order("id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to list products", err, nil)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	err := r.db.Model(product).
		Select("slug", "name", "description", "status", "show_prices", "updated_at").
		Updates(product).Error
	if err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) UpdateStatus(id uint, status model.ProductStatus) error {
	result := r.db.Model(&model.Product{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update product status", result.Error, map[string]interface{}{
			"product_id": id,
			"status":     status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertBySlug inserts the product or updates the row with the same slug,
// returning its id.
func (r *productRepository) UpsertBySlug(product *model.Product) (uint, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "status", "updated_at"}),
	}).Create(product).Error
	if err != nil {
		logger.Error("Failed to upsert product by slug", err, map[string]interface{}{
			"slug": product.Slug,
		})
		return 0, err
	}

	if product.ID != 0 {
		return product.ID, nil
	}

	// no row returned: resolve by slug
	existing, err := r.FindBySlug(product.Slug)
	if err != nil {
		return 0, err
	}
	product.ID = existing.ID
	return existing.ID, nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
