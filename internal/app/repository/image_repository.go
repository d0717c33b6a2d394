package repository

import (
	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"gorm.io/gorm"
)

type ImageRepository interface {
	WithTx(tx *gorm.DB) ImageRepository
	Create(image *model.Image) error
	FindByID(id uint) (*model.Image, error)
	FindByProductID(productID uint) ([]model.Image, error)
	FindCoverByProductIDs(productIDs []uint) (map[uint]model.Image, error)
	CountInScope(productID uint, variantID *uint) (int64, error)
	DetachVariants(variantIDs []uint) error
	ClearPrimaryInScope(productID uint, variantID *uint, exceptID uint) error
	UpdateFields(id uint, fields map[string]interface{}) error
	Delete(id uint) error
	DeleteByProductID(productID uint) error
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) WithTx(tx *gorm.DB) ImageRepository {
	return &imageRepository{db: tx}
}

// scope narrows a query to the product-level or variant-level image set.
func (r *imageRepository) scope(productID uint, variantID *uint) *gorm.DB {
	query := r.db.Model(&model.Image{}).Where("product_id = ?", productID)
	if variantID == nil {
		return query.Where("variant_id IS NULL")
	}
	return query.Where("variant_id = ?", *variantID)
}

func (r *imageRepository) Create(image *model.Image) error {
	logger.Debug("Creating image in database", map[string]interface{}{
		"product_id": image.ProductID,
		"variant_id": image.VariantID,
		"path":       image.Path,
		"is_primary": image.IsPrimary,
	})

	if err := r.db.Create(image).Error; err != nil {
		logger.Error("Failed to create image in database", err, map[string]interface{}{
			"product_id": image.ProductID,
			"path":       image.Path,
		})
		return err
	}
	return nil
}

func (r *imageRepository) FindByID(id uint) (*model.Image, error) {
	var image model.Image
	if err := r.db.First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// FindByProductID returns every image of the product, primary first.
func (r *imageRepository) FindByProductID(productID uint) ([]model.Image, error) {
	var images []model.Image
	err := r.db.Where("product_id = ?", productID).
		Order("is_primary DESC").
		Order("position ASC").
		Order("id ASC").
		Find(&images).Error
	if err != nil {
		logger.Error("Failed to find images by product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return images, nil
}

// FindCoverByProductIDs picks one image per product, preferring
// product-level primaries over variant images.
func (r *imageRepository) FindCoverByProductIDs(productIDs []uint) (map[uint]model.Image, error) {
	covers := make(map[uint]model.Image, len(productIDs))
	if len(productIDs) == 0 {
		return covers, nil
	}

	var images []model.Image
	err := r.db.Where("product_id IN ?", productIDs).
		Order("product_id ASC").
		Order("(variant_id IS NULL) DESC").
		Order("is_primary DESC").
		Order("position ASC").
		Order("id ASC").
		Find(&images).Error
	if err != nil {
		logger.Error("Failed to find cover images", err, map[string]interface{}{
			"product_count": len(productIDs),
		})
		return nil, err
	}

	for _, img := range images {
		if _, ok := covers[img.ProductID]; !ok {
			covers[img.ProductID] = img
		}
	}
	return covers, nil
}

func (r *imageRepository) CountInScope(productID uint, variantID *uint) (int64, error) {
	var count int64
	if err := r.scope(productID, variantID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DetachVariants moves the images of removed variants back to the product
// scope, dropping their primary flag.
func (r *imageRepository) DetachVariants(variantIDs []uint) error {
	if len(variantIDs) == 0 {
		return nil
	}
	err := r.db.Model(&model.Image{}).
		Where("variant_id IN ?", variantIDs).
		Updates(map[string]interface{}{"variant_id": nil, "is_primary": false}).Error
	if err != nil {
		logger.Error("Failed to detach variant images", err, map[string]interface{}{
			"variant_ids": variantIDs,
		})
		return err
	}
	return nil
}

func (r *imageRepository) ClearPrimaryInScope(productID uint, variantID *uint, exceptID uint) error {
	query := r.scope(productID, variantID).Where("is_primary = ?", true)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Update("is_primary", false).Error; err != nil {
		logger.Error("Failed to clear primary images in scope", err, map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
		})
		return err
	}
	return nil
}

func (r *imageRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	logger.Debug("Updating image in database", map[string]interface{}{
		"image_id": id,
		"fields":   fields,
	})

	result := r.db.Model(&model.Image{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update image in database", result.Error, map[string]interface{}{
			"image_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *imageRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Image{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete image from database", result.Error, map[string]interface{}{
			"image_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *imageRepository) DeleteByProductID(productID uint) error {
	if err := r.db.Where("product_id = ?", productID).Delete(&model.Image{}).Error; err != nil {
		logger.Error("Failed to delete images by product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}
