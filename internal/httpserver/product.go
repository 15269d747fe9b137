package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stockroom-app/stockroom/internal/events"
	"github.com/stockroom-app/stockroom/internal/repo"
	"github.com/stockroom-app/stockroom/internal/search"
	"github.com/stockroom-app/stockroom/internal/service"
	"github.com/stockroom-app/stockroom/internal/transport"
	"github.com/stockroom-app/stockroom/internal/util"
	"github.com/stockroom-app/stockroom/pkg/logging"
)

type ProductHTTP struct {
	Svc      *service.ProductService
	Repo     *repo.GormRepo
	Producer *events.Producer
	Indexer  *search.Indexer
}

func (h *ProductHTTP) publish(c echo.Context, key string, event map[string]any) {
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, events.TopicProductEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "error", err)
	}
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return serviceError(l, "create_product_error", err)
	}

	h.Indexer.IndexProduct(ctx, product)
	h.publish(c, product.ID.String(), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})
	if actor, err := callerID(c); err == nil {
		h.Repo.LogAction(ctx, "CreateProduct", "Product "+product.Name+" created", "catalog", actor.String(), c.RealIP())
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return serviceError(l, "get_product_error", err)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	filter := repo.ProductFilter{SearchTerm: c.QueryParam("search")}
	if v := c.QueryParam("min_price_cents"); v != "" {
		p := int64(util.ParseIntDefault(v, 0))
		filter.MinPriceCents = &p
	}
	if v := c.QueryParam("max_price_cents"); v != "" {
		p := int64(util.ParseIntDefault(v, 0))
		filter.MaxPriceCents = &p
	}
	switch c.QueryParam("is_active") {
	case "true":
		t := true
		filter.IsActive = &t
	case "false":
		f := false
		filter.IsActive = &f
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListProducts(ctx, filter, offset, limit)
	if err != nil {
		return serviceError(l, "list_products_error", err)
	}

	return c.JSON(http.StatusOK, transport.NewPaged(items, page, limit, total))
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("patch_product_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return serviceError(l, "patch_product_error", err)
	}

	h.Indexer.IndexProduct(ctx, product)
	h.publish(c, product.ID.String(), map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})
	if actor, err := callerID(c); err == nil {
		h.Repo.LogAction(ctx, "UpdateProduct", "Product "+product.Name+" updated", "catalog", actor.String(), c.RealIP())
	}

	l.Info("patch_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("delete_product_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return serviceError(l, "delete_product_error", err)
	}

	h.Indexer.DeleteProduct(ctx, id.String())
	h.publish(c, id.String(), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	if actor, err := callerID(c); err == nil {
		h.Repo.LogAction(ctx, "DeleteProduct", "Product "+id.String()+" deactivated", "catalog", actor.String(), c.RealIP())
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) CheckAvailability(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.check_availability")

	id, err := uuid.Parse(c.QueryParam("product_id"))
	if err != nil {
		l.Warn("check_availability_error", "status", 400, "reason", "product_id is not a uuid")
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is not a uuid")
	}
	quantity := util.ParseIntDefault(c.QueryParam("quantity"), 0)
	if quantity <= 0 {
		l.Warn("check_availability_error", "status", 400, "reason", "quantity must be greater than 0")
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be greater than 0")
	}

	return c.JSON(http.StatusOK, h.Svc.CheckAvailability(ctx, id, quantity))
}
