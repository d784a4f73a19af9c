package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	models "KPIPulse/internal/domain/models"
	icache "KPIPulse/internal/service/cache"
	"KPIPulse/internal/service/metrics"
	"KPIPulse/internal/service/ratelimit"
	"KPIPulse/internal/services/forecast"
	"KPIPulse/internal/usecase"
	xhttp "KPIPulse/pkg/http"
	xlogger "KPIPulse/pkg/logger"
	"KPIPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type ForecastEchoHandler struct {
	logger   *xlogger.Logger
	svc      *usecase.ForecastService
	obs      *usecase.ObservationsQuery
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
	cacheTTL time.Duration
	health   func(context.Context) error
}

func NewForecastEchoHandler(logger *xlogger.Logger, svc *usecase.ForecastService) *ForecastEchoHandler {
	metrics.Register()
	return &ForecastEchoHandler{
		logger:   logger,
		svc:      svc,
		rl:       ratelimit.New(),
		cacheTTL: 30 * time.Second,
	}
}

// SetHealthCheck wires the storage ping into /health.
func (h *ForecastEchoHandler) SetHealthCheck(fn func(context.Context) error) { h.health = fn }

// SetObservationsQuery enables the raw observations listing endpoint.
func (h *ForecastEchoHandler) SetObservationsQuery(q *usecase.ObservationsQuery) { h.obs = q }

// SetCache enables response caching for identical forecast requests.
func (h *ForecastEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetCacheTTL overrides the response cache TTL.
func (h *ForecastEchoHandler) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		h.cacheTTL = ttl
	}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/forecast", h.Forecast)
	g.GET("/forecast", h.Forecast)
	g.GET("/forecast/capabilities", h.Capabilities)
	if h.obs != nil {
		g.GET("/observations", h.Observations)
	}
	e.GET("/health", h.Health)
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	if h.health != nil {
		if err := h.health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	start := time.Now()
	endpoint := "forecast"
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.rl.Allow(c.RealIP()+":forecast", 5, 2) {
		h.logger.Warn("forecast rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
	}

	cacheKey := forecastCacheKey(req)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("forecast cache_get_error", xlogger.Error(err))
		} else if ok {
			h.logger.Debug("forecast cache_hit", xlogger.String("key", cacheKey))
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	res, err := h.svc.Generate(c.Request().Context(), *req)
	if err != nil {
		metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("forecast usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, engineAppError(err))
	}
	metrics.ForecastModelRuns.WithLabelValues(res.Metadata.Model).Inc()

	if h.cache != nil {
		if b, err := json.Marshal(xhttp.APIResponse{
			Status:  http.StatusOK,
			Message: http.StatusText(http.StatusOK),
			Data:    res,
		}); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, h.cacheTTL); err != nil {
				h.logger.Warn("forecast cache_set_error", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Capabilities(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.svc.Capabilities())
}

func (h *ForecastEchoHandler) Observations(c echo.Context) error {
	req := &models.ObservationsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now().UTC()
	res, err := h.obs.List(c.Request().Context(), usecase.ListObservationsParams{
		ScopeID:   req.ScopeID(),
		Category:  req.Category,
		From:      util.ParseTimeDefault(req.From, now.AddDate(-2, 0, 0)),
		To:        util.ParseTimeDefault(req.To, now),
		Timeframe: req.Timeframe,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Error("observations usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, res)
}

// engineAppError maps engine error kinds to transport-level errors.
func engineAppError(err error) error {
	var fe *forecast.Error
	if !errors.As(err, &fe) {
		return xhttp.InternalError("forecast failed").WithError(err)
	}
	switch fe.Kind {
	case forecast.KindValidation:
		return xhttp.BadRequestError(fe.Message)
	case forecast.KindInsufficientHistory:
		return xhttp.NewAppError("ERR_INSUFFICIENT_HISTORY", "", fe.Message, http.StatusUnprocessableEntity)
	default:
		return xhttp.InternalError(fe.Message)
	}
}

func forecastCacheKey(r *models.ForecastRequest) string {
	return "forecast:" + r.ScopeID() +
		":" + r.Category +
		":" + r.Timeframe +
		":" + strconv.Itoa(r.Horizon) +
		":" + r.Model +
		":" + strconv.FormatBool(r.IncludeIntervals) +
		":" + strconv.FormatBool(r.IncludeScenarios)
}
