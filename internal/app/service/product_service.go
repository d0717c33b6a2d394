package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/internal/metrics"
	"github.com/ikkim/catalogo-backend/internal/storage"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"github.com/ikkim/catalogo-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProductSlugExists  = errors.New("product slug already exists")
	ErrCategorySlugExists = errors.New("category slug already exists")
	ErrInvalidStatus      = errors.New("invalid product status")
)

// FieldError reports one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func fieldError(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type VariantInput struct {
	SKU         string                 `json:"sku"`
	Name        string                 `json:"name"`
	Price       decimal.Decimal        `json:"price"`
	IsAvailable *bool                  `json:"is_available"`
	Stock       int                    `json:"stock"`
	Attributes  map[string]interface{} `json:"attributes"`
}

type ProductInput struct {
	Name        string         `json:"name"`
	Slug        string         `json:"slug" binding:"omitempty,slug"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	ShowPrices  *bool          `json:"show_prices"`
	Categories  []string       `json:"categories"`
	Variants    []VariantInput `json:"variants"`
}

// AdminProductRow is one line of the admin product table.
type AdminProductRow struct {
	ID                 uint                `json:"id"`
	Name               string              `json:"name"`
	Slug               string              `json:"slug"`
	Status             model.ProductStatus `json:"status"`
	Visible            bool                `json:"visible"`
	ShowPrices         bool                `json:"show_prices"`
	ShowPricesOverride *bool               `json:"show_prices_override"`
	MinPrice           *string             `json:"min_price"`
	VariantsTotal      int64               `json:"variants_total"`
	VariantsAvailable  int64               `json:"variants_available"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

type AdminVariant struct {
	ID          uint              `json:"id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Price       string            `json:"price"`
	IsAvailable bool              `json:"is_available"`
	Stock       int               `json:"stock"`
	Attributes  datatypes.JSONMap `json:"attributes,omitempty"`
}

type AdminProductDetail struct {
	Product    *model.Product `json:"product"`
	Variants   []AdminVariant `json:"variants"`
	Categories []string       `json:"categories"`
}

type ProductService interface {
	List() ([]AdminProductRow, error)
	Get(id uint) (*AdminProductDetail, error)
	Create(input ProductInput, createdBy uint) (*AdminProductDetail, error)
	Update(id uint, input ProductInput) (*AdminProductDetail, error)
	UpdateStatus(id uint, status string) error
	Delete(ctx context.Context, id uint) error
	CreateCategory(name, slug string) (*model.Category, error)
}

type productService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	imageRepo    repository.ImageRepository
	categoryRepo repository.CategoryRepository
	configRepo   repository.CatalogConfigRepository
	storage      storage.ObjectStorage
}

func NewProductService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	imageRepo repository.ImageRepository,
	categoryRepo repository.CategoryRepository,
	configRepo repository.CatalogConfigRepository,
	objectStorage storage.ObjectStorage,
) ProductService {
	return &productService{
		db:           db,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		imageRepo:    imageRepo,
		categoryRepo: categoryRepo,
		configRepo:   configRepo,
		storage:      objectStorage,
	}
}

func (s *productService) List() ([]AdminProductRow, error) {
	products, _, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		SortBy: repository.ProductSortUpdatedAt,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	stats, err := s.variantRepo.StatsByProductIDs(ids)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configRepo.Get()
	if err != nil {
		return nil, err
	}

	rows := make([]AdminProductRow, 0, len(products))
	for i := range products {
		p := &products[i]
		st := stats[p.ID]
		rows = append(rows, AdminProductRow{
			ID:                 p.ID,
			Name:               p.Name,
			Slug:               p.Slug,
			Status:             p.Status,
			Visible:            p.IsPublic(),
			ShowPrices:         p.EffectiveShowPrices(cfg.ShowPrices),
			ShowPricesOverride: p.ShowPrices,
			MinPrice:           formatOptionalCents(st.MinPriceCents),
			VariantsTotal:      st.Total,
			VariantsAvailable:  st.Available,
			UpdatedAt:          p.UpdatedAt,
		})
	}
	return rows, nil
}

func (s *productService) Get(id uint) (*AdminProductDetail, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.detail(product)
}

func (s *productService) detail(product *model.Product) (*AdminProductDetail, error) {
	variants, err := s.variantRepo.FindByProductID(product.ID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.SlugsByProduct(product.ID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}

	out := &AdminProductDetail{
		Product:    product,
		Variants:   make([]AdminVariant, 0, len(variants)),
		Categories: categories,
	}
	for _, v := range variants {
		out.Variants = append(out.Variants, AdminVariant{
			ID:          v.ID,
			SKU:         v.SKU,
			Name:        v.Name,
			Price:       util.FormatCents(v.PriceCents),
			IsAvailable: v.IsAvailable,
			Stock:       v.Stock,
			Attributes:  v.Attributes,
		})
	}
	return out, nil
}

// validated is a ProductInput converted to rows.
type validated struct {
	product     model.Product
	variants    []model.Variant
	categoryIDs []uint
}

func (s *productService) validate(input ProductInput) (*validated, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fieldError("name", "el nombre es obligatorio")
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		return nil, fieldError("slug", "el slug es obligatorio")
	}
	if !util.IsSlug(slug) {
		return nil, fieldError("slug", "usá minúsculas, números y guiones")
	}
	status, ok := model.ParseProductStatus(input.Status)
	if !ok {
		return nil, fieldError("status", "estado inválido: %s", input.Status)
	}

	out := &validated{
		product: model.Product{
			Slug:        slug,
			Name:        name,
			Description: strings.TrimSpace(input.Description),
			Status:      status,
			ShowPrices:  input.ShowPrices,
		},
	}

	seen := make(map[string]bool, len(input.Variants))
	for i, v := range input.Variants {
		field := fmt.Sprintf("variants[%d]", i)
		sku := strings.TrimSpace(v.SKU)
		if sku == "" {
			return nil, fieldError(field+".sku", "el SKU es obligatorio")
		}
		if seen[sku] {
			return nil, fieldError(field+".sku", "SKU repetido: %s", sku)
		}
		seen[sku] = true

		cents, err := util.DecimalToCents(v.Price)
		if err != nil {
			return nil, fieldError(field+".price", "precio inválido")
		}
		if v.Stock < 0 {
			return nil, fieldError(field+".stock", "el stock no puede ser negativo")
		}
		available := true
		if v.IsAvailable != nil {
			available = *v.IsAvailable
		}
		variantName := strings.TrimSpace(v.Name)
		if variantName == "" {
			variantName = sku
		}
		out.variants = append(out.variants, model.Variant{
			SKU:         sku,
			Name:        variantName,
			PriceCents:  cents,
			IsAvailable: available,
			Stock:       v.Stock,
			Attributes:  datatypes.JSONMap(v.Attributes),
		})
	}

	if len(input.Categories) > 0 {
		categories, err := s.categoryRepo.FindBySlugs(input.Categories)
		if err != nil {
			return nil, err
		}
		known := make(map[string]uint, len(categories))
		for _, c := range categories {
			known[c.Slug] = c.ID
		}
		for _, slug := range input.Categories {
			id, ok := known[slug]
			if !ok {
				return nil, fieldError("categories", "categoría desconocida: %s", slug)
			}
			out.categoryIDs = append(out.categoryIDs, id)
		}
	}
	return out, nil
}

func (s *productService) Create(input ProductInput, createdBy uint) (*AdminProductDetail, error) {
	v, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindBySlug(v.product.Slug); err == nil {
		return nil, ErrProductSlugExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product := v.product
	if createdBy != 0 {
		product.CreatedByID = &createdBy
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.WithTx(tx).Create(&product); err != nil {
			return err
		}
		for i := range v.variants {
			v.variants[i].ProductID = product.ID
		}
		if err := s.variantRepo.WithTx(tx).CreateBatch(v.variants); err != nil {
			return err
		}
		return s.categoryRepo.WithTx(tx).ReplaceForProduct(product.ID, v.categoryIDs)
	})
	if err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"slug": product.Slug,
		})
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
		"variants":   len(v.variants),
	})
	return s.detail(&product)
}

// Update overwrites the product, reconciles variants by SKU and replaces
// the category links. Images of removed variants fall back to the product.
func (s *productService) Update(id uint, input ProductInput) (*AdminProductDetail, error) {
	v, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if product.Slug != v.product.Slug {
		if other, err := s.productRepo.FindBySlug(v.product.Slug); err == nil && other.ID != id {
			return nil, ErrProductSlugExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	product.Slug = v.product.Slug
	product.Name = v.product.Name
	product.Description = v.product.Description
	product.Status = v.product.Status
	product.ShowPrices = v.product.ShowPrices

	err = s.db.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)

		if err := productRepo.Update(product); err != nil {
			return err
		}

		existing, err := variantRepo.FindByProductID(id)
		if err != nil {
			return err
		}
		bySKU := make(map[string]model.Variant, len(existing))
		for _, ev := range existing {
			bySKU[ev.SKU] = ev
		}

		var fresh []model.Variant
		for _, nv := range v.variants {
			nv.ProductID = id
			if current, ok := bySKU[nv.SKU]; ok {
				nv.ID = current.ID
				nv.CreatedAt = current.CreatedAt
				if err := variantRepo.Save(&nv); err != nil {
					return err
				}
				delete(bySKU, nv.SKU)
				continue
			}
			fresh = append(fresh, nv)
		}
		if err := variantRepo.CreateBatch(fresh); err != nil {
			return err
		}

		removed := make([]uint, 0, len(bySKU))
		for _, gone := range bySKU {
			removed = append(removed, gone.ID)
		}
		if err := s.imageRepo.WithTx(tx).DetachVariants(removed); err != nil {
			return err
		}
		if err := variantRepo.DeleteByIDs(removed); err != nil {
			return err
		}
		return s.categoryRepo.WithTx(tx).ReplaceForProduct(id, v.categoryIDs)
	})
	if err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
		"slug":       product.Slug,
	})
	return s.detail(product)
}

func (s *productService) UpdateStatus(id uint, status string) error {
	parsed, ok := model.ParseProductStatus(status)
	if !ok || strings.TrimSpace(status) == "" {
		return ErrInvalidStatus
	}
	if err := s.productRepo.UpdateStatus(id, parsed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	logger.Info("Product status changed", map[string]interface{}{
		"product_id": id,
		"status":     parsed,
	})
	return nil
}

// Delete removes the product with its images, variants and category links.
// Storage objects are removed after the rows; failures there are only logged.
func (s *productService) Delete(ctx context.Context, id uint) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	images, err := s.imageRepo.FindByProductID(id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.imageRepo.WithTx(tx).DeleteByProductID(id); err != nil {
			return err
		}
		if err := s.variantRepo.WithTx(tx).DeleteByProductID(id); err != nil {
			return err
		}
		if err := s.categoryRepo.WithTx(tx).ReplaceForProduct(id, nil); err != nil {
			return err
		}
		return s.productRepo.WithTx(tx).Delete(id)
	})
	if err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	for _, img := range images {
		if err := s.storage.Remove(ctx, img.Path); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			logger.Warn("Failed to remove image object of deleted product", map[string]interface{}{
				"product_id": id,
				"path":       img.Path,
				"error":      err.Error(),
			})
		}
	}

	metrics.ProductsDeleted.Inc()
	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
		"images":     len(images),
	})
	return nil
}

func (s *productService) CreateCategory(name, slug string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError("name", "el nombre es obligatorio")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = util.Slugify(name)
	}
	if !util.IsSlug(slug) {
		return nil, fieldError("slug", "usá minúsculas, números y guiones")
	}
	if _, err := s.categoryRepo.FindBySlug(slug); err == nil {
		return nil, ErrCategorySlugExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &model.Category{Slug: slug, Name: name}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}
