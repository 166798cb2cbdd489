package api

import (
	"errors"
	"net/http"

	"CryptoCast/internal/domain/models"
	domrepo "CryptoCast/internal/domain/repository"
	"CryptoCast/internal/registry"
	"CryptoCast/internal/service/ratelimit"
	"CryptoCast/internal/services/chart"
	"CryptoCast/internal/usecase"
	xhttp "CryptoCast/pkg/http"
	xlogger "CryptoCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionHandler serves the presentation API over the request controller.
type PredictionHandler struct {
	logger     *xlogger.Logger
	registry   *registry.Registry
	controller *usecase.RequestController
	outcomes   domrepo.OutcomeReader
	history    domrepo.OutcomeHistory
	limiter    *ratelimit.Limiter
	feed       *StateFeed
}

var _ xhttp.Handler = (*PredictionHandler)(nil)

func NewPredictionHandler(
	logger *xlogger.Logger,
	reg *registry.Registry,
	controller *usecase.RequestController,
	outcomes domrepo.OutcomeReader,
	limiter *ratelimit.Limiter,
) *PredictionHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	h := &PredictionHandler{
		logger:     logger,
		registry:   reg,
		controller: controller,
		outcomes:   outcomes,
		limiter:    limiter,
	}
	h.feed = NewStateFeed(logger, controller, h.encode)
	return h
}

// SetHistory enables /api/outcomes/history.
func (h *PredictionHandler) SetHistory(hist domrepo.OutcomeHistory) { h.history = hist }

func (h *PredictionHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/ws/state", h.feed.Serve)

	g := e.Group("/api")
	g.GET("/assets", h.Assets)
	g.GET("/timeframes", h.Timeframes)
	g.POST("/predict", h.Predict)
	g.GET("/state", h.State)
	g.GET("/outcomes/latest", h.LatestOutcome)
	g.GET("/outcomes/history", h.OutcomeHistory)
}

func (h *PredictionHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PredictionHandler) Assets(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.registry.Assets())
}

func (h *PredictionHandler) Timeframes(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.registry.Timeframes())
}

// Predict starts a prediction and answers 202 with the pending state. The
// outcome is observed through /api/state or /ws/state.
func (h *PredictionHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		h.logger.Warn("predict rate limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("Too many prediction requests"))
	}

	sub, err := h.controller.Submit(c.Request().Context(), req.Crypto, req.Timeframe)
	switch {
	case errors.Is(err, registry.ErrUnknownAsset):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).
			WithParam("crypto", req.Crypto).WithError(err))
	case errors.Is(err, registry.ErrUnknownTimeframe):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).
			WithParam("timeframe", req.Timeframe).WithError(err))
	case errors.Is(err, usecase.ErrControllerClosed):
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("Service is shutting down"))
	case err != nil:
		h.logger.Error("predict submit error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	return xhttp.AcceptedResponse(c, models.SubmitReceipt{
		SubmissionID: sub.ID,
		Generation:   sub.Generation,
		State:        h.controller.State(),
	})
}

func (h *PredictionHandler) State(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, h.encode(h.controller.State()))
}

func (h *PredictionHandler) LatestOutcome(c echo.Context) error {
	req := &models.LatestOutcomeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.outcomes == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("Outcome history is disabled"))
	}

	o, err := h.outcomes.Latest(c.Request().Context(), req.Crypto, req.Timeframe)
	if errors.Is(err, domrepo.ErrOutcomeNotFound) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("No outcome for %s/%s", req.Crypto, req.Timeframe))
	}
	if err != nil {
		h.logger.Error("latest outcome error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Unable to read outcome history").WithError(err))
	}
	return xhttp.SuccessResponse(c, o)
}

func (h *PredictionHandler) OutcomeHistory(c echo.Context) error {
	req := &models.OutcomeHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.history == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("Outcome history is disabled"))
	}

	out, err := h.history.Recent(c.Request().Context(), req.Crypto, req.Timeframe, req.Limit)
	if err != nil {
		h.logger.Error("outcome history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Unable to read outcome history").WithError(err))
	}
	return xhttp.SuccessResponse(c, out)
}

// encode attaches the chart view to successful states. Ids in a success
// state were resolved at submit, so a lookup miss only drops the view.
func (h *PredictionHandler) encode(st models.RequestState) models.StateView {
	if st.Kind != models.StateSuccess {
		return models.StateView{State: st}
	}
	asset, err := h.registry.Asset(st.AssetID)
	if err != nil {
		return models.StateView{State: st}
	}
	tf, err := h.registry.Timeframe(st.TimeframeID)
	if err != nil {
		return models.StateView{State: st}
	}
	return chart.EncodeState(st, asset, tf)
}
