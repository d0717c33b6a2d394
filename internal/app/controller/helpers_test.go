package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/config"
	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	"github.com/ikkim/catalogo-backend/internal/db"
	"github.com/ikkim/catalogo-backend/internal/middleware"
	"github.com/ikkim/catalogo-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret   = "test-jwt-secret-for-controllers"
	testSiteURL     = "https://catalogo.test"
	testStorageURL  = "https://cdn.test/products"
	testOwnerEmail  = "duena@example.com"
	testPassword    = "secreto123"
	testWhatsApp    = "+598 99 123 456"
	testMaxUploadSz = 1024
)

type ctrlEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	storage     *storage.MemoryStorage
	mailer      *recordingMailer
	authService service.AuthService
	ownerToken  string
}

type recordingMailer struct {
	links []string
}

func (m *recordingMailer) SendPasswordReset(to, link string) error {
	m.links = append(m.links, link)
	return nil
}

func setupControllerTest(t *testing.T) *ctrlEnv {
	return setupControllerTestWith(t, false)
}

func setupControllerTestWith(t *testing.T, production bool) *ctrlEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	objectStorage := storage.NewMemoryStorage(testStorageURL)
	store := service.NewMemoryStore()
	mailer := &recordingMailer{}

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)
	imageRepo := repository.NewImageRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	configRepo := repository.NewCatalogConfigRepository(testDB)
	clickRepo := repository.NewClickEventRepository(testDB)
	resetRepo := repository.NewPasswordResetRepository(testDB)

	authService := service.NewAuthService(
		userRepo,
		store,
		service.NewAdminPolicy(nil, []string{"owner", "editor"}),
		testJWTSecret,
		time.Hour,
	)
	resetService := service.NewPasswordResetService(resetRepo, userRepo, mailer, store, testSiteURL)
	catalogService := service.NewCatalogService(productRepo, variantRepo, imageRepo, categoryRepo, configRepo, objectStorage, 12, 60)
	productService := service.NewProductService(testDB, productRepo, variantRepo, imageRepo, categoryRepo, configRepo, objectStorage)
	imageService := service.NewImageService(testDB, productRepo, variantRepo, imageRepo, objectStorage, testMaxUploadSz)
	importExportService := service.NewImportExportService(testDB, productRepo, variantRepo)
	configService := service.NewCatalogConfigService(configRepo)
	trackingService := service.NewTrackingService(clickRepo, configRepo, service.TrackingConfig{
		SiteURL:       testSiteURL,
		WhatsAppPhone: testWhatsApp,
		IPSalt:        "sal",
		CookieTTL:     7 * 24 * time.Hour,
	})

	_, err = authService.CreateUser(testOwnerEmail, testPassword, "Dueña", model.RoleOwner)
	require.NoError(t, err)
	_, owner, err := authService.Login(testOwnerEmail, testPassword)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.Environment = "development"
	cfg.S3.Bucket = "products"
	cfg.Site.URL = testSiteURL

	catalogCtrl := NewCatalogController(catalogService)
	trackingCtrl := NewTrackingController(trackingService, 7*24*time.Hour, false)
	seoCtrl := NewSEOController(catalogService, testSiteURL, production)
	authCtrl := NewAuthController(authService, resetService, false)
	productCtrl := NewProductController(productService)
	imageCtrl := NewImageController(imageService)
	configCtrl := NewConfigController(configService)
	importExportCtrl := NewImportExportController(importExportService)
	debugCtrl := NewDebugController(catalogService, objectStorage, cfg)

	guard := middleware.NewAdminGuard(authService, 12*time.Hour)
	adminAPI := guard.RequireAdmin(middleware.API)

	router := gin.New()
	router.GET("/sitemap.xml", seoCtrl.Sitemap)
	router.GET("/robots.txt", seoCtrl.Robots)
	router.GET("/w", trackingCtrl.WhatsAppRedirect)
	router.POST("/api/utm/persist", trackingCtrl.PersistUTM)
	router.GET("/api/catalog/categories", catalogCtrl.ListCategories)
	router.GET("/api/catalog/search", catalogCtrl.Search)
	router.GET("/api/catalog/product/:slug", catalogCtrl.GetProduct)
	router.GET("/api/catalog/product/:slug/detail", catalogCtrl.GetProductDetail)

	router.POST("/api/admin/auth/login", authCtrl.Login)
	router.POST("/api/admin/auth/logout", authCtrl.Logout)
	router.POST("/api/admin/auth/reset", authCtrl.RequestReset)
	router.POST("/api/admin/auth/reset/confirm", authCtrl.ConfirmReset)

	admin := router.Group("/api/admin", adminAPI)
	admin.GET("/me", authCtrl.Me)
	admin.GET("/config", configCtrl.Get)
	admin.PATCH("/config", configCtrl.Update)
	admin.POST("/categories", productCtrl.CreateCategory)
	admin.POST("/import", importExportCtrl.Import)
	admin.GET("/products", productCtrl.List)
	admin.POST("/products", productCtrl.Create)
	admin.GET("/products/:id", productCtrl.Get)
	admin.PUT("/products/:id", productCtrl.Update)
	admin.DELETE("/products/:id", productCtrl.Delete)
	admin.PATCH("/products/:id/status", productCtrl.UpdateStatus)
	admin.GET("/products/:id/images", imageCtrl.List)
	admin.POST("/products/:id/images", imageCtrl.Upload)
	admin.PATCH("/products/:id/images/:imageId", imageCtrl.Update)
	admin.DELETE("/products/:id/images/:imageId", imageCtrl.Delete)

	debug := router.Group("/api/debug", adminAPI)
	debug.GET("/search", debugCtrl.Search)
	debug.GET("/product", debugCtrl.Product)
	debug.GET("/storage/health", debugCtrl.StorageHealth)
	debug.GET("/env", debugCtrl.Env)

	router.GET("/admin/export", guard.RequireAdmin(middleware.Page), importExportCtrl.Export)

	return &ctrlEnv{
		db:          testDB,
		router:      router,
		storage:     objectStorage,
		mailer:      mailer,
		authService: authService,
		ownerToken:  owner.Value,
	}
}

func (e *ctrlEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *ctrlEnv) request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.do(req)
}

func (e *ctrlEnv) adminRequest(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+e.ownerToken)
	return e.do(req)
}

// multipartRequest builds an authorized multipart upload with one file part.
func (e *ctrlEnv) multipartRequest(t *testing.T, path, field, fileName, contentType string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if field != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+fileName+`"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.ownerToken)
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (e *ctrlEnv) product(t *testing.T, slug string, status model.ProductStatus, variants ...model.Variant) *model.Product {
	t.Helper()
	p := &model.Product{Slug: slug, Name: "Producto " + slug, Description: "Descripción de " + slug, Status: status}
	require.NoError(t, e.db.Create(p).Error)
	for i := range variants {
		variants[i].ProductID = p.ID
		require.NoError(t, e.db.Create(&variants[i]).Error)
	}
	return p
}
