package api

import (
	"encoding/json"
	"time"

	models "ShelfScout/internal/domain/models"
	"ShelfScout/internal/freshness"
	"ShelfScout/internal/series"
	icache "ShelfScout/internal/service/cache"
	"ShelfScout/internal/service/metrics"
	"ShelfScout/internal/service/ratelimit"
	"ShelfScout/internal/usecase"
	xhttp "ShelfScout/pkg/http"
	applogger "ShelfScout/pkg/logger"
	"ShelfScout/pkg/util"

	"github.com/labstack/echo/v4"
)

// EvaluateHandler exposes the valuation and decision endpoints over Echo.
type EvaluateHandler struct {
	eval      *usecase.EvaluateUseCase
	scans     *usecase.ScanQueryUseCase
	tracker   *series.Tracker
	scheduler *freshness.Scheduler

	thresholds models.DecisionThresholds
	cache      icache.BytesCache
	rl         *ratelimit.Limiter
	l          *applogger.Logger
}

func NewEvaluateHandler(
	l *applogger.Logger,
	eval *usecase.EvaluateUseCase,
	scans *usecase.ScanQueryUseCase,
	tracker *series.Tracker,
	scheduler *freshness.Scheduler,
	thresholds models.DecisionThresholds,
) *EvaluateHandler {
	metrics.Register()
	return &EvaluateHandler{
		eval:       eval,
		scans:      scans,
		tracker:    tracker,
		scheduler:  scheduler,
		thresholds: thresholds.Normalize(),
		rl:         ratelimit.New(),
		l:          l,
	}
}

// SetCache enables response caching for the read endpoints.
func (h *EvaluateHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *EvaluateHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/evaluate", h.Evaluate)
	g.GET("/evaluate", h.Evaluate)
	g.GET("/series", h.Series)
	g.GET("/profit", h.Profit)
	g.GET("/freshness", h.Freshness)
	g.GET("/thresholds", h.Thresholds)
	g.GET("/scans", h.Scans)
}

func (h *EvaluateHandler) Evaluate(c echo.Context) error {
	start := time.Now()
	endpoint := "evaluate"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":evaluate", 5, 2) {
		h.l.Warn("evaluate rate_limited", applogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
	}

	res, err := h.eval.Evaluate(c.Request().Context(), usecase.EvaluateParams{
		ISBN:             req.ISBN,
		Condition:        req.Condition,
		AcquisitionCost:  req.AcquisitionCost,
		SeriesName:       req.SeriesName,
		SeriesIndex:      req.SeriesIndex,
		MinAutobuyProfit: req.MinAutobuyProfit,
	})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("evaluate usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EvaluateHandler) Series(c echo.Context) error {
	start := time.Now()
	endpoint := "series"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cacheKey := "series:" + series.NormalizeName(req.SeriesName)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.l.Warn("series cache_get_error", applogger.Error(err))
		} else if ok {
			h.l.Debug("series cache_hit", applogger.String("key", cacheKey))
			return c.JSONBlob(200, b)
		}
	}

	snap := &models.BookEvaluationSnapshot{ISBN: req.ISBN, SeriesName: req.SeriesName}
	check, err := h.tracker.CheckSeries(c.Request().Context(), snap)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("series usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if h.cache != nil {
		if b, err := json.Marshal(check); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil {
				h.l.Warn("series cache_set_error", applogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, check)
}

func (h *EvaluateHandler) Profit(c echo.Context) error {
	start := time.Now()
	endpoint := "profit"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ProfitRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":profit", 5, 2) {
		h.l.Warn("profit rate_limited", applogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
	}

	res, err := h.eval.Evaluate(c.Request().Context(), usecase.EvaluateParams{
		ISBN:            req.ISBN,
		AcquisitionCost: req.AcquisitionCost,
	})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("profit usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res.Profit)
}

func (h *EvaluateHandler) Freshness(c echo.Context) error {
	endpoint := "freshness"
	req := &models.FreshnessRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	stale, err := h.scheduler.Stale(c.Request().Context(), req.ISBN)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("freshness usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"isbn":  req.ISBN,
		"stale": stale,
	})
}

func (h *EvaluateHandler) Thresholds(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.thresholds)
}

func (h *EvaluateHandler) Scans(c echo.Context) error {
	start := time.Now()
	endpoint := "scans"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ScansRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now := time.Now()
	to := util.ParseTimeDefault(req.To, now)
	from := util.ParseTimeDefault(req.From, to.Add(-24*time.Hour))
	from, to = util.ClampRange(from, to, 90*24*time.Hour)

	res, err := h.scans.GetScans(c.Request().Context(), usecase.GetScansParams{
		Location: req.Location,
		From:     from,
		To:       to,
		Limit:    req.Limit,
	})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("scans usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
