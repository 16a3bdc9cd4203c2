package api

import (
	_ "embed"
	"errors"
	"net/http"

	"VolPulse/internal/dataset"
	models "VolPulse/internal/domain/models"
	"VolPulse/internal/handler/ws"
	"VolPulse/internal/usecase"
	xhttp "VolPulse/pkg/http"
	xlogger "VolPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

//go:embed static/index.html
var indexPage []byte

// DashboardEchoHandler implements Echo-based HTTP handlers for the dashboard.
type DashboardEchoHandler struct {
	logger *xlogger.Logger
	ctrl   *usecase.DashboardController
	hub    *ws.Hub
}

func NewDashboardEchoHandler(logger *xlogger.Logger, ctrl *usecase.DashboardController, hub *ws.Hub) *DashboardEchoHandler {
	return &DashboardEchoHandler{logger: logger, ctrl: ctrl, hub: hub}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/healthz", h.Health)
	if h.hub != nil {
		e.GET("/ws", h.hub.Handle)
	}

	g := e.Group("/api")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/meta", h.Meta)
}

// Index serves the dashboard page shell; everything on it is fed by /api.
func (h *DashboardEchoHandler) Index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexPage)
}

func (h *DashboardEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Dashboard runs one render pass. Load failures come back as a view with
// state load_error so the page renders the message; only malformed input is
// an HTTP-level error.
func (h *DashboardEchoHandler) Dashboard(c echo.Context) error {
	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	view, err := h.ctrl.Render(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRange) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("start must not be after end").WithError(err))
		}
		h.logger.Error("dashboard render error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, view)
}

// Meta reports dataset bounds for the range selector.
func (h *DashboardEchoHandler) Meta(c echo.Context) error {
	info, err := h.ctrl.Meta(c.Request().Context())
	if err != nil {
		switch {
		case errors.Is(err, dataset.ErrDataNotFound):
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("dataset source not found").WithError(err))
		case errors.Is(err, dataset.ErrSchema):
			return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("dataset schema mismatch").WithError(err))
		}
		h.logger.Error("meta error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, info)
}
