package httpserver

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/stockroom-app/stockroom/internal/search"
	"github.com/stockroom-app/stockroom/internal/transport"
	"github.com/stockroom-app/stockroom/internal/util"
	"github.com/stockroom-app/stockroom/pkg/logging"
)

type SearchHTTP struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search.products")

	q := c.QueryParam("q")
	if q == "" {
		l.Warn("search_error", "status", 400, "reason", "missing query")
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}

	if h.ES == nil {
		l.Warn("search_error", "status", 503, "reason", "search backend not configured")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	offset, limit := util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	total, products, err := search.Search(ctx, h.ES, h.Index, q, offset, limit)
	if err != nil {
		l.Error("search_error", "query", q, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, friendlyInternalError)
	}

	l.Info("search_success", "query", q, "hits", total)
	return c.JSON(http.StatusOK, transport.NewPaged(products, page, limit, total))
}
