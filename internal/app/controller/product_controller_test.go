package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productPayload(slug string) map[string]interface{} {
	return map[string]interface{}{
		"name":        "Yerba Suave",
		"slug":        slug,
		"description": "Molienda fina",
		"status":      "published",
		"categories":  []string{},
		"variants": []map[string]interface{}{
			{"sku": "YS-500", "name": "500 g", "price": "4.50", "is_available": true, "stock": 10},
			{"sku": "YS-1000", "name": "1 kg", "price": "8", "is_available": false, "stock": 0},
		},
	}
}

func TestProductController_CreateGetList(t *testing.T) {
	env := setupControllerTest(t)

	w := env.adminRequest(http.MethodPost, "/api/admin/products", productPayload("yerba-suave"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode(t, w)
	product := created["product"].(map[string]interface{})
	id := uint(product["id"].(float64))
	assert.Len(t, created["variants"], 2)

	w = env.adminRequest(http.MethodGet, fmt.Sprintf("/api/admin/products/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	variants := decode(t, w)["variants"].([]interface{})
	prices := []interface{}{}
	for _, v := range variants {
		prices = append(prices, v.(map[string]interface{})["price"])
	}
	assert.ElementsMatch(t, []interface{}{"4.50", "8.00"}, prices)

	w = env.adminRequest(http.MethodGet, "/api/admin/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	row := body["products"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(2), row["variants_total"])
	assert.Equal(t, float64(1), row["variants_available"])
}

func TestProductController_CreateRejections(t *testing.T) {
	env := setupControllerTest(t)

	w := env.adminRequest(http.MethodPost, "/api/admin/products", productPayload("Slug Inválido"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload := productPayload("sin-nombre")
	payload["name"] = "  "
	w = env.adminRequest(http.MethodPost, "/api/admin/products", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "name")

	require.Equal(t, http.StatusCreated, env.adminRequest(http.MethodPost, "/api/admin/products", productPayload("repetido")).Code)
	again := productPayload("repetido")
	again["variants"] = []map[string]interface{}{}
	w = env.adminRequest(http.MethodPost, "/api/admin/products", again)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PRODUCT_SLUG_EXISTS", decode(t, w)["error"])
}

func TestProductController_RequiresAdmin(t *testing.T) {
	env := setupControllerTest(t)

	w := env.request(http.MethodGet, "/api/admin/products", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductController_UpdateStatusAndDelete(t *testing.T) {
	env := setupControllerTest(t)
	p := env.product(t, "mate", model.StatusDraft, model.Variant{SKU: "M-1", Name: "Calabaza", PriceCents: 90000, IsAvailable: true})
	path := fmt.Sprintf("/api/admin/products/%d", p.ID)

	w := env.adminRequest(http.MethodPatch, path+"/status", UpdateStatusRequest{Status: "vendido"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.adminRequest(http.MethodPatch, path+"/status", UpdateStatusRequest{Status: "published"})
	require.Equal(t, http.StatusOK, w.Code)
	var stored model.Product
	require.NoError(t, env.db.First(&stored, p.ID).Error)
	assert.Equal(t, model.StatusPublished, stored.Status)

	w = env.adminRequest(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.adminRequest(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decode(t, w)["error"])

	w = env.adminRequest(http.MethodGet, "/api/admin/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_INVALID_ID", decode(t, w)["error"])
}

func TestProductController_Update(t *testing.T) {
	env := setupControllerTest(t)
	w := env.adminRequest(http.MethodPost, "/api/admin/products", productPayload("yerba"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(decode(t, w)["product"].(map[string]interface{})["id"].(float64))

	payload := productPayload("yerba")
	payload["name"] = "Yerba Suave Premium"
	payload["variants"] = []map[string]interface{}{
		{"sku": "YS-500", "name": "500 g", "price": "5", "is_available": true, "stock": 4},
	}
	w = env.adminRequest(http.MethodPut, fmt.Sprintf("/api/admin/products/%d", id), payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "Yerba Suave Premium", body["product"].(map[string]interface{})["name"])
	assert.Len(t, body["variants"], 1)

	w = env.adminRequest(http.MethodPut, "/api/admin/products/9999", payload)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_CreateCategory(t *testing.T) {
	env := setupControllerTest(t)

	w := env.adminRequest(http.MethodPost, "/api/admin/categories", CreateCategoryRequest{Name: "Yerbas Orgánicas"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "yerbas-organicas", decode(t, w)["category"].(map[string]interface{})["slug"])

	w = env.adminRequest(http.MethodPost, "/api/admin/categories", CreateCategoryRequest{Name: "Otra", Slug: "yerbas-organicas"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
