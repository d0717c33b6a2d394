package errors

// Códigos de error expuestos al frontend.
// Formato: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== Autenticación (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"         // sesión requerida
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"  // email o contraseña incorrectos
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"        // token vencido
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"        // token inválido
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"        // token revocado (logout)
	AuthSessionStale       = "AUTH_SESSION_STALE"        // sesión de admin vencida, volver a ingresar
	AuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID"  // token de recuperación inválido/usado/vencido
	AuthRateLimited        = "AUTH_RATE_LIMITED"         // demasiados intentos

	// ==================== Autorización (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN" // rol sin acceso al panel

	// ==================== Validación (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationNoFields      = "VALIDATION_NO_FIELDS" // PATCH sin campos

	// ==================== Recursos (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catálogo (PRODUCT_ / IMAGE_ / IMPORT_) ====================
	ProductNotFound     = "PRODUCT_NOT_FOUND"
	ProductSlugExists   = "PRODUCT_SLUG_EXISTS"
	VariantSKUExists    = "VARIANT_SKU_EXISTS"
	VariantNotFound     = "VARIANT_NOT_FOUND"
	ImageNotFound       = "IMAGE_NOT_FOUND"
	CategoryNotFound    = "CATEGORY_NOT_FOUND"
	ImportInvalidFile   = "IMPORT_INVALID_FILE"
	ImportMissingColumn = "IMPORT_MISSING_COLUMN"

	// ==================== Subidas (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadMissingFile     = "UPLOAD_MISSING_FILE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Errores internos (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalStorageError  = "INTERNAL_STORAGE_ERROR"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
