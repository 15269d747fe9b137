package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stockroom-app/stockroom/internal/events"
	"github.com/stockroom-app/stockroom/internal/models"
	"github.com/stockroom-app/stockroom/internal/repo"
	"github.com/stockroom-app/stockroom/internal/service"
	"github.com/stockroom-app/stockroom/internal/transport"
	"github.com/stockroom-app/stockroom/internal/util"
	"github.com/stockroom-app/stockroom/pkg/logging"
)

type OrderHTTP struct {
	Svc      *service.OrderService
	Repo     *repo.GormRepo
	Producer *events.Producer
}

func (h *OrderHTTP) publish(c echo.Context, key string, event map[string]any) {
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, events.TopicOrderEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "error", err)
	}
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.CreateOrder(ctx, userID, req)
	if err != nil {
		return serviceError(l, "create_order_error", err)
	}

	h.publish(c, userID.String(), map[string]any{
		"type":         "order_created",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"customer_id":  order.CustomerID,
		"total_cents":  order.TotalCents,
	})
	h.Repo.LogAction(ctx, "CreateOrder",
		"Order "+order.OrderNumber+" placed", "orders", userID.String(), c.RealIP())

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	order, err := h.Svc.GetOrderByID(ctx, orderID, userID)
	if err != nil {
		return serviceError(l, "get_order_error", err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var q transport.OrderListQuery
	if err := c.Bind(&q); err != nil {
		l.Warn("list_orders_error", "status", 400, "reason", "invalid query", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	filter := repo.OrderFilter{Status: q.Status}

	// Non-admins only ever see their own orders, whatever they ask for.
	if callerRole(c) == models.RoleAdmin {
		if q.CustomerID != "" {
			id, err := uuid.Parse(q.CustomerID)
			if err != nil {
				l.Warn("list_orders_error", "status", 400, "reason", "customer_id is not a uuid")
				return echo.NewHTTPError(http.StatusBadRequest, "customer_id is not a uuid")
			}
			filter.CustomerID = &id
		}
	} else {
		filter.CustomerID = &userID
	}

	if q.FromDate != "" {
		t, err := time.Parse(time.RFC3339, q.FromDate)
		if err != nil {
			l.Warn("list_orders_error", "status", 400, "reason", "invalid from_date")
			return echo.NewHTTPError(http.StatusBadRequest, "from_date must be RFC3339")
		}
		filter.FromDate = &t
	}
	if q.ToDate != "" {
		t, err := time.Parse(time.RFC3339, q.ToDate)
		if err != nil {
			l.Warn("list_orders_error", "status", 400, "reason", "invalid to_date")
			return echo.NewHTTPError(http.StatusBadRequest, "to_date must be RFC3339")
		}
		filter.ToDate = &t
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	offset, limit := util.Calculate(page, q.Size)

	total, orders, err := h.Svc.ListOrders(ctx, filter, offset, limit)
	if err != nil {
		return serviceError(l, "list_orders_error", err)
	}

	return c.JSON(http.StatusOK, transport.NewPaged(orders, page, limit, total))
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("cancel_order_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	if err := h.Svc.CancelOrder(ctx, orderID, userID); err != nil {
		return serviceError(l, "cancel_order_error", err)
	}

	h.publish(c, userID.String(), map[string]any{
		"type":     "order_cancelled",
		"order_id": orderID,
	})
	h.Repo.LogAction(ctx, "CancelOrder",
		"Order "+orderID.String()+" cancelled", "orders", userID.String(), c.RealIP())

	l.Info("cancel_order_success", "order_id", orderID)
	return c.JSON(http.StatusOK, map[string]string{"message": "Order cancelled successfully."})
}
