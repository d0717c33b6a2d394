package repository

import (
	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VariantStats aggregates the variants of one product.
type VariantStats struct {
	ProductID     uint
	Total         int64
	Available     int64
	MinPriceCents *int64 // mínimo entre variantes disponibles
}

type VariantRepository interface {
	WithTx(tx *gorm.DB) VariantRepository
	FindByID(id uint) (*model.Variant, error)
	FindByProductID(productID uint) ([]model.Variant, error)
	FindByProductIDs(productIDs []uint) ([]model.Variant, error)
	StatsByProductIDs(productIDs []uint) (map[uint]VariantStats, error)
	CreateBatch(variants []model.Variant) error
	UpsertBySKU(variant *model.Variant) error
	Save(variant *model.Variant) error
	DeleteByIDs(ids []uint) error
	DeleteByProductID(productID uint) error
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) WithTx(tx *gorm.DB) VariantRepository {
	return &variantRepository{db: tx}
}

func (r *variantRepository) FindByID(id uint) (*model.Variant, error) {
	var variant model.Variant
	if err := r.db.First(&variant, id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindByProductID orders variants by price, then name.
func (r *variantRepository) FindByProductID(productID uint) ([]model.Variant, error) {
	var variants []model.Variant
	err := r.db.Where("product_id = ?", productID).
		Order("price_cents ASC").
		Order("name ASC").
		Order("id ASC").
		Find(&variants).Error
	if err != nil {
		logger.Error("Failed to find variants by product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return variants, nil
}

func (r *variantRepository) FindByProductIDs(productIDs []uint) ([]model.Variant, error) {
	if len(productIDs) == 0 {
		return []model.Variant{}, nil
	}

	var variants []model.Variant
	err := r.db.Where("product_id IN ?", productIDs).
		Order("product_id ASC").
		Order("id ASC").
		Find(&variants).Error
	if err != nil {
		logger.Error("Failed to find variants by products", err, map[string]interface{}{
			"product_count": len(productIDs),
		})
		return nil, err
	}
	return variants, nil
}

func (r *variantRepository) StatsByProductIDs(productIDs []uint) (map[uint]VariantStats, error) {
	stats := make(map[uint]VariantStats, len(productIDs))
	if len(productIDs) == 0 {
		return stats, nil
	}

	var rows []VariantStats
	err := r.db.Model(&model.Variant{}).
		Select(`product_id,
			COUNT(*) AS total,
			SUM(CASE WHEN is_available THEN 1 ELSE 0 END) AS available,
			MIN(CASE WHEN is_available THEN price_cents END) AS min_price_cents`).
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate variant stats", err, map[string]interface{}{
			"product_count": len(productIDs),
		})
		return nil, err
	}

	for _, row := range rows {
		stats[row.ProductID] = row
	}
	return stats, nil
}

func (r *variantRepository) CreateBatch(variants []model.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	if err := r.db.Create(&variants).Error; err != nil {
		logger.Error("Failed to create variants", err, map[string]interface{}{
			"count": len(variants),
		})
		return err
	}
	return nil
}

// UpsertBySKU inserts the variant or updates the row sharing its SKU.
func (r *variantRepository) UpsertBySKU(variant *model.Variant) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_id", "name", "price_cents", "is_available", "stock", "updated_at",
		}),
	}).Create(variant).Error
	if err != nil {
		logger.Error("Failed to upsert variant by sku", err, map[string]interface{}{
			"sku":        variant.SKU,
			"product_id": variant.ProductID,
		})
		return err
	}
	return nil
}

func (r *variantRepository) Save(variant *model.Variant) error {
	if err := r.db.Save(variant).Error; err != nil {
		logger.Error("Failed to save variant", err, map[string]interface{}{
			"variant_id": variant.ID,
			"sku":        variant.SKU,
		})
		return err
	}
	return nil
}

func (r *variantRepository) DeleteByIDs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.Where("id IN ?", ids).Delete(&model.Variant{}).Error; err != nil {
		logger.Error("Failed to delete variants", err, map[string]interface{}{
			"variant_ids": ids,
		})
		return err
	}
	return nil
}

func (r *variantRepository) DeleteByProductID(productID uint) error {
	if err := r.db.Where("product_id = ?", productID).Delete(&model.Variant{}).Error; err != nil {
		logger.Error("Failed to delete variants by product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}
