package repository

import (
	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	WithTx(tx *gorm.DB) CategoryRepository
	Create(category *model.Category) error
	FindAll() ([]model.Category, error)
	FindBySlug(slug string) (*model.Category, error)
	FindBySlugs(slugs []string) ([]model.Category, error)
	ProductIDsByCategory(categoryID uint) ([]uint, error)
	SlugsByProduct(productID uint) ([]string, error)
	ReplaceForProduct(productID uint, categoryIDs []uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) WithTx(tx *gorm.DB) CategoryRepository {
	return &categoryRepository{db: tx}
}

func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category in database", map[string]interface{}{
		"slug": category.Slug,
	})
	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"slug": category.Slug,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("name ASC").Order("id ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to list categories", err, nil)
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindBySlug(slug string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindBySlugs(slugs []string) ([]model.Category, error) {
	if len(slugs) == 0 {
		return []model.Category{}, nil
	}
	var categories []model.Category
	if err := r.db.Where("slug IN ?", slugs).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) ProductIDsByCategory(categoryID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.ProductCategory{}).
		Where("category_id = ?", categoryID).
		Pluck("product_id", &ids).Error
	if err != nil {
		logger.Error("Failed to resolve products for category", err, map[string]interface{}{
			"category_id": categoryID,
		})
		return nil, err
	}
	return ids, nil
}

func (r *categoryRepository) SlugsByProduct(productID uint) ([]string, error) {
	var slugs []string
	err := r.db.Table(model.Category{}.TableName()+" AS c").
		Joins("JOIN "+model.ProductCategory{}.TableName()+" AS pc ON pc.category_id = c.id").
		Where("pc.product_id = ?", productID).
		Order("c.slug ASC").
		Pluck("c.slug", &slugs).Error
	if err != nil {
		return nil, err
	}
	return slugs, nil
}

// ReplaceForProduct swaps the product's category links for categoryIDs.
func (r *categoryRepository) ReplaceForProduct(productID uint, categoryIDs []uint) error {
	if err := r.db.Where("product_id = ?", productID).Delete(&model.ProductCategory{}).Error; err != nil {
		logger.Error("Failed to clear product categories", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	links := make([]model.ProductCategory, 0, len(categoryIDs))
	seen := make(map[uint]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, model.ProductCategory{ProductID: productID, CategoryID: id})
	}
	if err := r.db.Create(&links).Error; err != nil {
		logger.Error("Failed to link product categories", err, map[string]interface{}{
			"product_id": productID,
			"count":      len(links),
		})
		return err
	}
	return nil
}
