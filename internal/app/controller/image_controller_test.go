package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image")

func TestImageController_UploadListPatchDelete(t *testing.T) {
	env := setupControllerTest(t)
	p := env.product(t, "mate", model.StatusPublished)
	base := fmt.Sprintf("/api/admin/products/%d/images", p.ID)

	w := env.do(env.multipartRequest(t, base, "file", "Mate Calabaza.png", "image/png", pngBytes, map[string]string{
		"alt":      "Mate de calabaza",
		"position": "2",
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	image := decode(t, w)["image"].(map[string]interface{})
	assert.Equal(t, true, image["is_primary"])
	assert.Equal(t, float64(2), image["position"])
	assert.Contains(t, image["url"], testStorageURL+"/")
	assert.Equal(t, 1, env.storage.Len())
	imageID := uint(image["id"].(float64))

	w = env.do(env.multipartRequest(t, base, "image", "segunda.webp", "image/webp", pngBytes, map[string]string{"is_primary": "on"}))
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode(t, w)["image"].(map[string]interface{})
	assert.Equal(t, true, second["is_primary"])

	w = env.adminRequest(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["images"], 2)

	w = env.adminRequest(http.MethodPatch, fmt.Sprintf("%s/%d", base, imageID), map[string]interface{}{"alt": "Nuevo alt"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Nuevo alt", decode(t, w)["image"].(map[string]interface{})["alt"])

	w = env.adminRequest(http.MethodPatch, fmt.Sprintf("%s/%d", base, imageID), map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_NO_FIELDS", decode(t, w)["error"])

	w = env.adminRequest(http.MethodDelete, fmt.Sprintf("%s/%d", base, imageID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.storage.Len())

	w = env.adminRequest(http.MethodDelete, fmt.Sprintf("%s/%d", base, imageID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "IMAGE_NOT_FOUND", decode(t, w)["error"])
}

func TestImageController_UploadRejections(t *testing.T) {
	env := setupControllerTest(t)
	p := env.product(t, "mate", model.StatusPublished)
	other := env.product(t, "termo", model.StatusPublished, model.Variant{SKU: "T-1", Name: "Acero", IsAvailable: true})
	var foreign model.Variant
	require.NoError(t, env.db.Where("product_id = ?", other.ID).First(&foreign).Error)
	base := fmt.Sprintf("/api/admin/products/%d/images", p.ID)

	w := env.do(env.multipartRequest(t, base, "file", "doc.pdf", "application/pdf", pngBytes, nil))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "UPLOAD_INVALID_FILE_TYPE", decode(t, w)["error"])

	big := bytes.Repeat([]byte("a"), testMaxUploadSz+1)
	w = env.do(env.multipartRequest(t, base, "file", "grande.png", "image/png", big, nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = env.do(env.multipartRequest(t, base, "", "", "", nil, map[string]string{"alt": "sin archivo"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UPLOAD_MISSING_FILE", decode(t, w)["error"])

	w = env.do(env.multipartRequest(t, base, "file", "a.png", "image/png", pngBytes, map[string]string{"position": "0"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(env.multipartRequest(t, base, "file", "a.png", "image/png", pngBytes, map[string]string{
		"variant_id": fmt.Sprint(foreign.ID),
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VARIANT_NOT_FOUND", decode(t, w)["error"])

	w = env.do(env.multipartRequest(t, "/api/admin/products/9999/images", "file", "a.png", "image/png", pngBytes, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, env.storage.Len())
}
