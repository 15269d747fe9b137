package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stockroom-app/stockroom/internal/models"
	"github.com/stockroom-app/stockroom/internal/transport"
	"github.com/stretchr/testify/require"
)

func TestCreateProductHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)

	body := transport.CreateProductRequest{
		Name:          "widget",
		Description:   "a widget",
		PriceCents:    1999,
		StockQuantity: 10,
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/products", body)
	env.actAs(c, admin)

	require.NoError(t, env.Prods.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEqual(t, uuid.Nil, resp.ID)
	require.Equal(t, "widget", resp.Name)
	require.True(t, resp.IsActive)

	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/products", transport.CreateProductRequest{Name: "bad", PriceCents: 0})
	env.actAs(c, admin)
	he := httpError(t, env.Prods.CreateProduct(c))
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetProductHandler(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("widget", 1000, 5, true)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/"+product.ID.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(product.ID.String())
	require.NoError(t, env.Prods.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, product.ID, resp.ID)

	_, c = env.doJSONRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	he := httpError(t, env.Prods.GetProduct(c))
	require.Equal(t, http.StatusBadRequest, he.Code)

	_, c = env.doJSONRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())
	he = httpError(t, env.Prods.GetProduct(c))
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestListProductsHandler(t *testing.T) {
	env := newTestEnv(t)
	env.createProduct("red widget", 500, 5, true)
	env.createProduct("blue widget", 1500, 5, true)
	env.createProduct("gadget", 2500, 5, true)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products?search=widget", nil)
	require.NoError(t, env.Prods.ListProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.Paged[models.Product]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 2, resp.Meta.Total)
	require.Len(t, resp.Data, 2)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/v1/products?page=1&size=2", nil)
	require.NoError(t, env.Prods.ListProducts(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 3, resp.Meta.Total)
	require.Len(t, resp.Data, 2)
	require.EqualValues(t, 2, resp.Meta.TotalPages)
}

func TestPatchProductHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	product := env.createProduct("widget", 1000, 5, true)

	name := "renamed widget"
	rec, c := env.doJSONRequest(http.MethodPatch, "/api/v1/products/"+product.ID.String(), transport.PatchProductRequest{Name: &name})
	env.actAs(c, admin)
	c.SetParamNames("id")
	c.SetParamValues(product.ID.String())
	require.NoError(t, env.Prods.PatchProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "renamed widget", resp.Name)
	require.EqualValues(t, 1000, resp.PriceCents)
}

func TestDeleteProductHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	product := env.createProduct("widget", 1000, 5, true)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/v1/products/"+product.ID.String(), nil)
	env.actAs(c, admin)
	c.SetParamNames("id")
	c.SetParamValues(product.ID.String())
	require.NoError(t, env.Prods.DeleteProduct(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	got, err := env.Repo.GetProduct(c.Request().Context(), product.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}

func TestCheckAvailabilityHandler(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("widget", 1000, 5, true)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/availability?product_id="+product.ID.String()+"&quantity=3", nil)
	require.NoError(t, env.Prods.CheckAvailability(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.Availability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Available)
	require.Equal(t, "Product is available", resp.Message)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/v1/products/availability?product_id="+product.ID.String()+"&quantity=9", nil)
	require.NoError(t, env.Prods.CheckAvailability(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Available)
	require.Equal(t, "Insufficient stock. Available: 5, Requested: 9", resp.Message)

	_, c = env.doJSONRequest(http.MethodGet, "/api/v1/products/availability?product_id="+product.ID.String(), nil)
	he := httpError(t, env.Prods.CheckAvailability(c))
	require.Equal(t, http.StatusBadRequest, he.Code)
}
