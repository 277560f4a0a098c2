package dashboard

import (
	"net/http"

	"github.com/booketlist/booketlist/pkg/stats"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	statsService *stats.Service
}

type statsResponse struct {
	Totals *stats.DashboardTotals `json:"totals"`
}

func (h *handler) stats(c echo.Context) error {
	ctx := c.Request().Context()

	totals, err := h.statsService.DashboardTotals(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, statsResponse{Totals: totals}))
}
