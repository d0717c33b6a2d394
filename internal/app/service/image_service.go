package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/internal/metrics"
	"github.com/ikkim/catalogo-backend/internal/storage"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"github.com/ikkim/catalogo-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrImageNotFound       = errors.New("image not found")
	ErrVariantNotInProduct = errors.New("variant does not belong to product")
	ErrInvalidPosition     = errors.New("position must be 1 or greater")
	ErrStorageUpload       = errors.New("failed to store image")
)

const defaultImagePosition = 1

type ImageUpload struct {
	ProductID   uint
	VariantID   *uint
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	Alt         string
	IsPrimary   bool
	Position    *int
}

// ImageUpdate is a partial update; nil fields are left untouched.
type ImageUpdate struct {
	Alt       *string `json:"alt"`
	IsPrimary *bool   `json:"is_primary"`
	Position  *int    `json:"position"`
}

func (u ImageUpdate) empty() bool {
	return u.Alt == nil && u.IsPrimary == nil && u.Position == nil
}

type ImageService interface {
	List(productID uint) ([]model.Image, error)
	Upload(ctx context.Context, upload ImageUpload) (*model.Image, error)
	Update(productID, imageID uint, update ImageUpdate) (*model.Image, error)
	Delete(ctx context.Context, productID, imageID uint) error
}

type imageService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	imageRepo   repository.ImageRepository
	storage     storage.ObjectStorage
	maxBytes    int64
	now         func() time.Time
}

func NewImageService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	imageRepo repository.ImageRepository,
	objectStorage storage.ObjectStorage,
	maxBytes int64,
) ImageService {
	return &imageService{
		db:          db,
		productRepo: productRepo,
		variantRepo: variantRepo,
		imageRepo:   imageRepo,
		storage:     objectStorage,
		maxBytes:    maxBytes,
		now:         time.Now,
	}
}

func (s *imageService) withURL(img *model.Image) *model.Image {
	img.URL = s.storage.PublicURL(img.Path)
	return img
}

func (s *imageService) requireProduct(productID uint) error {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *imageService) List(productID uint) ([]model.Image, error) {
	if err := s.requireProduct(productID); err != nil {
		return nil, err
	}
	images, err := s.imageRepo.FindByProductID(productID)
	if err != nil {
		return nil, err
	}
	for i := range images {
		s.withURL(&images[i])
	}
	return images, nil
}

// ObjectKey builds the storage key of an uploaded image.
func ObjectKey(productID uint, variantID *uint, at time.Time, fileName, contentType string) string {
	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	name := util.Slugify(base)
	if name == "" {
		name = "imagen"
	}
	file := fmt.Sprintf("%d-%s%s", at.UnixMilli(), name, storage.ExtensionFor(contentType))
	if variantID != nil {
		return fmt.Sprintf("%d/variants/%d/%s", productID, *variantID, file)
	}
	return fmt.Sprintf("%d/%s", productID, file)
}

func (s *imageService) Upload(ctx context.Context, upload ImageUpload) (*model.Image, error) {
	if err := storage.ValidateContentType(upload.ContentType, storage.ImageContentTypes); err != nil {
		return nil, err
	}
	if err := storage.ValidateFileSize(upload.Size, s.maxBytes); err != nil {
		return nil, err
	}
	position := defaultImagePosition
	if upload.Position != nil {
		if *upload.Position < 1 {
			return nil, ErrInvalidPosition
		}
		position = *upload.Position
	}
	if err := s.requireProduct(upload.ProductID); err != nil {
		return nil, err
	}
	if upload.VariantID != nil {
		variant, err := s.variantRepo.FindByID(*upload.VariantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVariantNotInProduct
			}
			return nil, fmt.Errorf("failed to load variant: %w", err)
		}
		if variant.ProductID != upload.ProductID {
			return nil, ErrVariantNotInProduct
		}
	}

	key := ObjectKey(upload.ProductID, upload.VariantID, s.now(), upload.FileName, upload.ContentType)
	if err := s.storage.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		logger.Error("Failed to upload image object", err, map[string]interface{}{
			"product_id": upload.ProductID,
			"key":        key,
			"backend":    s.storage.Name(),
		})
		return nil, fmt.Errorf("%w: %v", ErrStorageUpload, err)
	}

	image := &model.Image{
		ProductID: upload.ProductID,
		VariantID: upload.VariantID,
		Path:      key,
		Alt:       strings.TrimSpace(upload.Alt),
		IsPrimary: upload.IsPrimary,
		Position:  position,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.imageRepo.WithTx(tx)
		count, err := repo.CountInScope(image.ProductID, image.VariantID)
		if err != nil {
			return err
		}
		if count == 0 {
			image.IsPrimary = true
		}
		if image.IsPrimary {
			if err := repo.ClearPrimaryInScope(image.ProductID, image.VariantID, 0); err != nil {
				return err
			}
		}
		return repo.Create(image)
	})
	if err != nil {
		logger.Error("Failed to save image metadata, removing uploaded object", err, map[string]interface{}{
			"product_id": upload.ProductID,
			"key":        key,
		})
		if rmErr := s.storage.Remove(ctx, key); rmErr != nil {
			logger.Warn("Failed to remove orphaned image object", map[string]interface{}{
				"key":   key,
				"error": rmErr.Error(),
			})
		}
		return nil, err
	}

	metrics.ImagesUploaded.Inc()
	logger.Info("Image uploaded", map[string]interface{}{
		"product_id": image.ProductID,
		"image_id":   image.ID,
		"is_primary": image.IsPrimary,
	})
	return s.withURL(image), nil
}

func (s *imageService) findOwned(productID, imageID uint) (*model.Image, error) {
	image, err := s.imageRepo.FindByID(imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	if image.ProductID != productID {
		return nil, ErrImageNotFound
	}
	return image, nil
}

func (s *imageService) Update(productID, imageID uint, update ImageUpdate) (*model.Image, error) {
	if update.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	if update.Position != nil && *update.Position < 1 {
		return nil, ErrInvalidPosition
	}

	image, err := s.findOwned(productID, imageID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.Alt != nil {
		fields["alt"] = strings.TrimSpace(*update.Alt)
	}
	if update.Position != nil {
		fields["position"] = *update.Position
	}
	if update.IsPrimary != nil {
		fields["is_primary"] = *update.IsPrimary
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.imageRepo.WithTx(tx)
		if update.IsPrimary != nil && *update.IsPrimary {
			if err := repo.ClearPrimaryInScope(image.ProductID, image.VariantID, image.ID); err != nil {
				return err
			}
		}
		return repo.UpdateFields(image.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	return s.findOwnedWithURL(productID, imageID)
}

func (s *imageService) findOwnedWithURL(productID, imageID uint) (*model.Image, error) {
	image, err := s.findOwned(productID, imageID)
	if err != nil {
		return nil, err
	}
	return s.withURL(image), nil
}

// Delete removes the stored object, then the row. The row is removed even
// when the object cannot be.
func (s *imageService) Delete(ctx context.Context, productID, imageID uint) error {
	image, err := s.findOwned(productID, imageID)
	if err != nil {
		return err
	}

	if err := s.storage.Remove(ctx, image.Path); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		logger.Warn("Failed to remove image object, deleting row anyway", map[string]interface{}{
			"image_id": image.ID,
			"path":     image.Path,
			"error":    err.Error(),
		})
	}

	if err := s.imageRepo.Delete(image.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}

	logger.Info("Image deleted", map[string]interface{}{
		"product_id": productID,
		"image_id":   imageID,
	})
	return nil
}
