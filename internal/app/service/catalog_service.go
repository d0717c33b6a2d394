package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/internal/storage"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"github.com/ikkim/catalogo-backend/pkg/util"
	"github.com/ikkim/catalogo-backend/pkg/whatsapp"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

const (
	CategoryAll      = "all"
	MinSearchRunes   = 2
	MaxSearchPage    = 100000
	StockLabelNone   = "Sin stock"
	SourceDetailPage = "detail"
)

// SearchQuery is the public catalog search input as received from the client.
type SearchQuery struct {
	Query    string
	Category string
	Page     int
	PerPage  int
	Sort     string
	Dir      string
}

// normalize applies defaults and bounds; short queries are dropped.
func (q SearchQuery) normalize(defaultPerPage, maxPerPage int) SearchQuery {
	q.Query = strings.TrimSpace(q.Query)
	if utf8.RuneCountInString(q.Query) < MinSearchRunes {
		q.Query = ""
	}
	q.Category = strings.TrimSpace(q.Category)
	if q.Category == "" {
		q.Category = CategoryAll
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxSearchPage {
		q.Page = MaxSearchPage
	}
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	q.Sort = string(repository.ParseProductSort(q.Sort))
	if q.Dir != "asc" {
		q.Dir = "desc"
	}
	return q
}

// ProductCard is one search result.
type ProductCard struct {
	ID                  uint      `json:"id"`
	Slug                string    `json:"slug"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	ImageURL            string    `json:"image_url,omitempty"`
	EffectiveShowPrices bool      `json:"effective_show_prices"`
	MinPriceVisible     *string   `json:"min_price_visible"`
	VariantsAvailable   int64     `json:"variants_available"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type SearchResult struct {
	Items   []ProductCard `json:"items"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

type GalleryImage struct {
	ID        uint   `json:"id"`
	URL       string `json:"url"`
	Alt       string `json:"alt"`
	VariantID *uint  `json:"variant_id,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

type VariantView struct {
	ID          uint              `json:"id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Label       string            `json:"label"`
	Price       *string           `json:"price"`
	PriceCents  *int64            `json:"price_cents"`
	IsAvailable bool              `json:"is_available"`
	Stock       int               `json:"stock"`
	StockLabel  string            `json:"stock_label"`
	Attributes  datatypes.JSONMap `json:"attributes,omitempty"`
	ContactURL  string            `json:"contact_url"`
}

// ProductDetail is the assembled public product page.
type ProductDetail struct {
	Product              *model.Product `json:"product"`
	Categories           []string       `json:"categories"`
	Images               []GalleryImage `json:"images"`
	PrimaryImage         *GalleryImage  `json:"primary_image"`
	Variants             []VariantView  `json:"variants"`
	EffectiveShowPrices  bool           `json:"effective_show_prices"`
	CurrencyCode         string         `json:"currency_code"`
	MinPriceVisible      *string        `json:"min_price_visible"`
	PreselectedVariantID *uint          `json:"preselected_variant_id"`
	ContactEnabled       bool           `json:"contact_enabled"`
	ContactURL           string         `json:"contact_url,omitempty"`
}

type SitemapEntry struct {
	Slug      string
	UpdatedAt time.Time
}

// CategoryInspection explains how a category filter resolves.
type CategoryInspection struct {
	Category   *model.Category `json:"category"`
	ProductIDs []uint          `json:"product_ids"`
	Preview    []model.Product `json:"preview"`
}

// ProductInspection compares the public view of a slug with its stored row.
type ProductInspection struct {
	Public *model.Product `json:"public"`
	Base   *model.Product `json:"base"`
}

type CatalogService interface {
	ListCategories() ([]model.Category, error)
	Search(query SearchQuery) (*SearchResult, error)
	GetPublicProduct(slug string) (*model.Product, error)
	GetProductDetail(ctx context.Context, slug string) (*ProductDetail, error)
	SitemapEntries() ([]SitemapEntry, error)
	InspectCategory(slug string) (*CategoryInspection, error)
	InspectProduct(slug string) (*ProductInspection, error)
}

type catalogService struct {
	productRepo    repository.ProductRepository
	variantRepo    repository.VariantRepository
	imageRepo      repository.ImageRepository
	categoryRepo   repository.CategoryRepository
	configRepo     repository.CatalogConfigRepository
	storage        storage.ObjectStorage
	defaultPerPage int
	maxPerPage     int
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	imageRepo repository.ImageRepository,
	categoryRepo repository.CategoryRepository,
	configRepo repository.CatalogConfigRepository,
	objectStorage storage.ObjectStorage,
	defaultPerPage, maxPerPage int,
) CatalogService {
	return &catalogService{
		productRepo:    productRepo,
		variantRepo:    variantRepo,
		imageRepo:      imageRepo,
		categoryRepo:   categoryRepo,
		configRepo:     configRepo,
		storage:        objectStorage,
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
	}
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *catalogService) Search(query SearchQuery) (*SearchResult, error) {
	q := query.normalize(s.defaultPerPage, s.maxPerPage)
	logger.Debug("Searching catalog", map[string]interface{}{
		"q":        q.Query,
		"category": q.Category,
		"page":     q.Page,
		"per_page": q.PerPage,
		"sort":     q.Sort,
		"dir":      q.Dir,
	})

	result := &SearchResult{Items: []ProductCard{}, Page: q.Page, PerPage: q.PerPage}

	published := model.StatusPublished
	filter := repository.ProductFilter{
		Search:        q.Query,
		Status:        &published,
		SortBy:        repository.ProductSort(q.Sort),
		SortAscending: q.Dir == "asc",
		Limit:         q.PerPage,
		Offset:        (q.Page - 1) * q.PerPage,
	}

	if q.Category != CategoryAll {
		category, err := s.categoryRepo.FindBySlug(q.Category)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		ids, err := s.categoryRepo.ProductIDsByCategory(category.ID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return result, nil
		}
		filter.RestrictToIDs = true
		filter.ProductIDs = ids
	}

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to search catalog", err, nil)
		return nil, err
	}
	result.Total = total
	if len(products) == 0 {
		return result, nil
	}

	cards, err := s.buildCards(products)
	if err != nil {
		return nil, err
	}
	result.Items = cards
	return result, nil
}

func (s *catalogService) buildCards(products []model.Product) ([]ProductCard, error) {
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	cfg, err := s.configRepo.Get()
	if err != nil {
		return nil, err
	}
	stats, err := s.variantRepo.StatsByProductIDs(ids)
	if err != nil {
		return nil, err
	}
	covers, err := s.imageRepo.FindCoverByProductIDs(ids)
	if err != nil {
		return nil, err
	}

	cards := make([]ProductCard, 0, len(products))
	for i := range products {
		p := &products[i]
		visible := p.EffectiveShowPrices(cfg.ShowPrices)
		card := ProductCard{
			ID:                  p.ID,
			Slug:                p.Slug,
			Name:                p.Name,
			Description:         p.Description,
			EffectiveShowPrices: visible,
			VariantsAvailable:   stats[p.ID].Available,
			CreatedAt:           p.CreatedAt,
			UpdatedAt:           p.UpdatedAt,
		}
		if visible {
			card.MinPriceVisible = formatOptionalCents(stats[p.ID].MinPriceCents)
		}
		if cover, ok := covers[p.ID]; ok {
			card.ImageURL = s.storage.PublicURL(cover.Path)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (s *catalogService) GetPublicProduct(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsPublic() {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *catalogService) GetProductDetail(ctx context.Context, slug string) (*ProductDetail, error) {
	product, err := s.GetPublicProduct(slug)
	if err != nil {
		return nil, err
	}

	var (
		images     []model.Image
		variants   []model.Variant
		cfg        *model.CatalogConfig
		categories []string
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		images, err = s.imageRepo.FindByProductID(product.ID)
		return err
	})
	g.Go(func() error {
		var err error
		variants, err = s.variantRepo.FindByProductID(product.ID)
		return err
	})
	g.Go(func() error {
		var err error
		cfg, err = s.configRepo.Get()
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categoryRepo.SlugsByProduct(product.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to assemble product detail", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	visible := product.EffectiveShowPrices(cfg.ShowPrices)
	detail := &ProductDetail{
		Product:             product,
		Categories:          categories,
		EffectiveShowPrices: visible,
		CurrencyCode:        cfg.CurrencyCode,
		Variants:            make([]VariantView, 0, len(variants)),
	}
	if detail.Categories == nil {
		detail.Categories = []string{}
	}

	detail.Images = s.buildGallery(product, images)
	if len(detail.Images) > 0 {
		primary := detail.Images[0]
		detail.PrimaryImage = &primary
	}

	var minCents *int64
	for i := range variants {
		v := &variants[i]
		view := VariantView{
			ID:          v.ID,
			SKU:         v.SKU,
			Name:        v.Name,
			Label:       v.Label(),
			IsAvailable: v.IsAvailable,
			Stock:       v.Stock,
			StockLabel:  StockLabel(v),
			Attributes:  v.Attributes,
			ContactURL: whatsapp.Tracking{
				ProductID:    product.ID,
				VariantID:    v.ID,
				Source:       SourceDetailPage,
				ProductSlug:  product.Slug,
				ProductName:  product.Name,
				VariantLabel: v.Label(),
			}.URL(),
		}
		if visible {
			cents := v.PriceCents
			view.PriceCents = &cents
			view.Price = formatOptionalCents(&cents)
		}
		if v.IsAvailable && (minCents == nil || v.PriceCents < *minCents) {
			cents := v.PriceCents
			minCents = &cents
		}
		detail.Variants = append(detail.Variants, view)
	}
	if visible {
		detail.MinPriceVisible = formatOptionalCents(minCents)
	}

	switch len(detail.Variants) {
	case 0:
		detail.ContactEnabled = true
		detail.ContactURL = whatsapp.Tracking{
			ProductID:   product.ID,
			Source:      SourceDetailPage,
			ProductSlug: product.Slug,
			ProductName: product.Name,
		}.URL()
	case 1:
		id := detail.Variants[0].ID
		detail.PreselectedVariantID = &id
		detail.ContactEnabled = true
		detail.ContactURL = detail.Variants[0].ContactURL
	}

	return detail, nil
}

// buildGallery keeps the primary-first order and drops images whose
// resolved URL was already seen.
func (s *catalogService) buildGallery(product *model.Product, images []model.Image) []GalleryImage {
	gallery := make([]GalleryImage, 0, len(images))
	seen := make(map[string]bool, len(images))
	for _, img := range images {
		url := s.storage.PublicURL(img.Path)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		alt := strings.TrimSpace(img.Alt)
		if alt == "" {
			alt = product.Name
		}
		gallery = append(gallery, GalleryImage{
			ID:        img.ID,
			URL:       url,
			Alt:       alt,
			VariantID: img.VariantID,
			IsPrimary: img.IsPrimary,
		})
	}
	return gallery
}

func (s *catalogService) SitemapEntries() ([]SitemapEntry, error) {
	published := model.StatusPublished
	products, _, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		Status:        &published,
		SortBy:        repository.ProductSortUpdatedAt,
		SortAscending: false,
	})
	if err != nil {
		return nil, err
	}
	entries := make([]SitemapEntry, len(products))
	for i, p := range products {
		entries[i] = SitemapEntry{Slug: p.Slug, UpdatedAt: p.UpdatedAt}
	}
	return entries, nil
}

func (s *catalogService) InspectCategory(slug string) (*CategoryInspection, error) {
	category, err := s.categoryRepo.FindBySlug(strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	ids, err := s.categoryRepo.ProductIDsByCategory(category.ID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	preview, _, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		RestrictToIDs: true,
		ProductIDs:    ids,
		Limit:         10,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryInspection{Category: category, ProductIDs: ids, Preview: preview}, nil
}

func (s *catalogService) InspectProduct(slug string) (*ProductInspection, error) {
	base, err := s.productRepo.FindBySlug(strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ProductInspection{}, nil
		}
		return nil, err
	}
	out := &ProductInspection{Base: base}
	if base.IsPublic() {
		out.Public = base
	}
	return out, nil
}

// StockLabel is the buyer-facing stock text of a variant.
func StockLabel(v *model.Variant) string {
	if v.IsAvailable && v.Stock > 0 {
		return "Stock: " + strconv.Itoa(v.Stock)
	}
	return StockLabelNone
}

func formatOptionalCents(cents *int64) *string {
	if cents == nil {
		return nil
	}
	s := util.FormatCents(*cents)
	return &s
}
