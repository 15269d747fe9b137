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

func TestCreateOrderHandler(t *testing.T) {
	env := newTestEnv(t)

	customer := env.createUser("customer@example.com", models.RoleCustomer)
	product := env.createProduct("widget", 1000, 5, true)

	body := transport.CreateOrderRequest{
		Items: []transport.CreateOrderItem{{ProductID: product.ID, Quantity: 3}},
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body)
	env.actAs(c, customer)

	require.NoError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, models.OrderStatusPending, resp.Status)
	require.EqualValues(t, 3000, resp.TotalCents)
	require.Len(t, resp.Items, 1)
	require.NotEmpty(t, resp.OrderNumber)

	got, err := env.Repo.GetProduct(c.Request().Context(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.StockQuantity)
}

func TestCreateOrderHandler_InsufficientStock(t *testing.T) {
	env := newTestEnv(t)

	customer := env.createUser("customer@example.com", models.RoleCustomer)
	product := env.createProduct("widget", 1000, 2, true)

	body := transport.CreateOrderRequest{
		Items: []transport.CreateOrderItem{{ProductID: product.ID, Quantity: 3}},
	}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body)
	env.actAs(c, customer)

	he := httpError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Contains(t, he.Message, "Insufficient stock")
	require.Contains(t, he.Message, "widget: requested 3, available 2")
}

func TestCreateOrderHandler_MissingAuth(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("widget", 1000, 5, true)

	body := transport.CreateOrderRequest{
		Items: []transport.CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body)

	he := httpError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestGetOrderHandler_Ownership(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createUser("owner@example.com", models.RoleCustomer)
	other := env.createUser("other@example.com", models.RoleCustomer)
	product := env.createProduct("widget", 1000, 5, true)

	order := placeOrder(t, env, owner, product.ID, 1)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil)
	env.actAs(c, owner)
	c.SetParamNames("id")
	c.SetParamValues(order.ID.String())
	require.NoError(t, env.Orders.GetOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, c = env.doJSONRequest(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil)
	env.actAs(c, other)
	c.SetParamNames("id")
	c.SetParamValues(order.ID.String())
	he := httpError(t, env.Orders.GetOrder(c))
	require.Equal(t, http.StatusForbidden, he.Code)
	require.Equal(t, "You do not have permission to view this order", he.Message)

	_, c = env.doJSONRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	env.actAs(c, owner)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())
	he = httpError(t, env.Orders.GetOrder(c))
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestListOrdersHandler_ScopesToCaller(t *testing.T) {
	env := newTestEnv(t)

	customerA := env.createUser("a@example.com", models.RoleCustomer)
	customerB := env.createUser("b@example.com", models.RoleCustomer)
	admin := env.createUser("admin@example.com", models.RoleAdmin)
	product := env.createProduct("widget", 1000, 10, true)

	placeOrder(t, env, customerA, product.ID, 1)
	placeOrder(t, env, customerA, product.ID, 1)
	placeOrder(t, env, customerB, product.ID, 1)

	// A customer only sees their own orders, even when asking for another's.
	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/orders?customer_id="+customerB.ID.String(), nil)
	env.actAs(c, customerA)
	require.NoError(t, env.Orders.ListOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.Paged[models.Order]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 2, resp.Meta.Total)
	for _, o := range resp.Data {
		require.Equal(t, customerA.ID, o.CustomerID)
	}

	rec, c = env.doJSONRequest(http.MethodGet, "/api/v1/orders", nil)
	env.actAs(c, admin)
	require.NoError(t, env.Orders.ListOrders(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 3, resp.Meta.Total)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/v1/orders?customer_id="+customerB.ID.String(), nil)
	env.actAs(c, admin)
	require.NoError(t, env.Orders.ListOrders(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 1, resp.Meta.Total)
}

func TestCancelOrderHandler(t *testing.T) {
	env := newTestEnv(t)

	customer := env.createUser("customer@example.com", models.RoleCustomer)
	product := env.createProduct("widget", 1000, 5, true)
	order := placeOrder(t, env, customer, product.ID, 3)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/cancel", nil)
	env.actAs(c, customer)
	c.SetParamNames("id")
	c.SetParamValues(order.ID.String())
	require.NoError(t, env.Orders.CancelOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Order cancelled successfully.", resp["message"])

	got, err := env.Repo.GetProduct(c.Request().Context(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.StockQuantity)

	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/cancel", nil)
	env.actAs(c, customer)
	c.SetParamNames("id")
	c.SetParamValues(order.ID.String())
	he := httpError(t, env.Orders.CancelOrder(c))
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "Order is already cancelled", he.Message)
}

func placeOrder(t *testing.T, env *testEnv, customer *models.User, productID uuid.UUID, qty int) *models.Order {
	t.Helper()

	body := transport.CreateOrderRequest{
		Items: []transport.CreateOrderItem{{ProductID: productID, Quantity: qty}},
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body)
	env.actAs(c, customer)
	require.NoError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp
}
