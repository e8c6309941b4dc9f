package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/satindergrewal/astrochart"
	"github.com/satindergrewal/astrochart/internal/cache"
	"github.com/satindergrewal/astrochart/internal/metrics"
)

const svgContentType = "image/svg+xml"

type radixRequest struct {
	astrochart.Data
	Format string `json:"format" default:"svg" validate:"oneof=svg json"`
}

type transitRequest struct {
	Radix   astrochart.Data `json:"radix"`
	Transit astrochart.Data `json:"transit"`
	Format  string          `json:"format" default:"svg" validate:"oneof=svg json"`
}

type aspectsRequest struct {
	From        []astrochart.Point            `json:"from" validate:"required,min=1,dive"`
	To          []astrochart.Point            `json:"to" validate:"required,min=1,dive"`
	Aspects     []astrochart.AspectDefinition `json:"aspects" validate:"dive"`
	ExcludeSelf bool                          `json:"exclude_self"`
	Dedupe      bool                          `json:"dedupe"`
}

type chartResponse struct {
	Shift     float64                  `json:"shift"`
	Placement astrochart.Placement     `json:"placement"`
	Aspects   []astrochart.AspectMatch `json:"aspects"`
	Passes    int                      `json:"passes"`
}

type aspectsResponse struct {
	Matches []astrochart.AspectMatch `json:"matches"`
}

// HandlerOption configures Handler.
type HandlerOption func(*Handler)

// WithCache stores rendered SVGs in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) HandlerOption {
	return func(h *Handler) {
		h.cache = c
		h.ttl = ttl
	}
}

// WithMetrics records render and error metrics.
func WithMetrics(m *metrics.Recorder) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithLogger sets the handler logger.
func WithLogger(l zerolog.Logger) HandlerOption {
	return func(h *Handler) {
		h.log = l
	}
}

// Handler serves the chart API.
type Handler struct {
	cfg      astrochart.Config
	renderer *astrochart.Renderer
	cache    cache.Cache
	ttl      time.Duration
	metrics  *metrics.Recorder
	log      zerolog.Logger
}

// NewHandler creates the chart API handler.
func NewHandler(cfg astrochart.Config, opts ...HandlerOption) *Handler {
	h := &Handler{
		cfg: cfg,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	var ropts []astrochart.RendererOption
	ropts = append(ropts, astrochart.WithLogger(h.log))
	if h.metrics != nil {
		ropts = append(ropts, astrochart.WithMetrics(h.metrics))
	}
	h.renderer = astrochart.NewRenderer(ropts...)
	return h
}

// RegisterRoutes mounts the API on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)

	v1 := e.Group("/api/v1")
	v1.POST("/charts/radix", h.radix)
	v1.POST("/charts/transit", h.transit)
	v1.POST("/aspects", h.aspects)
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) radix(c echo.Context) error {
	var req radixRequest
	if err := h.read(c, &req); err != nil {
		return err
	}

	key := h.cacheKey("radix", req)
	if body, ok := h.lookup(c.Request().Context(), key, req.Format); ok {
		return h.svg(c, body, true)
	}

	r, err := astrochart.NewRadix(req.Data, h.cfg, astrochart.WithChartLogger(h.log))
	if err != nil {
		return h.fail(chartError(err))
	}
	if req.Format == "json" {
		return c.JSON(http.StatusOK, chartResponse{
			Shift:     r.Shift,
			Placement: r.Placement,
			Aspects:   r.Aspects,
			Passes:    r.Passes,
		})
	}

	var buf bytes.Buffer
	if err := h.renderer.WriteRadix(&buf, r); err != nil {
		return h.fail(chartError(err))
	}
	h.store(c.Request().Context(), key, buf.Bytes())
	return h.svg(c, buf.Bytes(), false)
}

func (h *Handler) transit(c echo.Context) error {
	var req transitRequest
	if err := h.read(c, &req); err != nil {
		return err
	}

	key := h.cacheKey("transit", req)
	if body, ok := h.lookup(c.Request().Context(), key, req.Format); ok {
		return h.svg(c, body, true)
	}

	r, err := astrochart.NewRadix(req.Radix, h.cfg, astrochart.WithChartLogger(h.log))
	if err != nil {
		return h.fail(chartError(err))
	}
	t, err := r.Transit(req.Transit, astrochart.WithChartLogger(h.log))
	if err != nil {
		return h.fail(chartError(err))
	}
	if req.Format == "json" {
		return c.JSON(http.StatusOK, chartResponse{
			Shift:     r.Shift,
			Placement: t.Placement,
			Aspects:   t.Aspects,
			Passes:    t.Passes,
		})
	}

	var buf bytes.Buffer
	if err := h.renderer.WriteTransit(&buf, t); err != nil {
		return h.fail(chartError(err))
	}
	h.store(c.Request().Context(), key, buf.Bytes())
	return h.svg(c, buf.Bytes(), false)
}

func (h *Handler) aspects(c echo.Context) error {
	var req aspectsRequest
	if err := h.read(c, &req); err != nil {
		return err
	}
	defs := req.Aspects
	if len(defs) == 0 {
		defs = h.cfg.Aspects
	}

	matches := astrochart.Match(req.From, req.To, defs)
	if req.ExcludeSelf {
		matches = astrochart.ExcludeSelfMatches(matches)
	}
	if req.Dedupe {
		matches = astrochart.DedupeMirrors(matches)
	}
	if matches == nil {
		matches = []astrochart.AspectMatch{}
	}
	return c.JSON(http.StatusOK, aspectsResponse{Matches: matches})
}

func (h *Handler) read(c echo.Context, req interface{}) error {
	if err := readAndValidate(c, req); err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			return h.fail(appErr)
		}
		return err
	}
	return nil
}

func (h *Handler) fail(err *AppError) error {
	if h.metrics != nil {
		h.metrics.RecordError(errorKind(err))
	}
	return err
}

func (h *Handler) svg(c echo.Context, body []byte, hit bool) error {
	status := "MISS"
	if hit {
		status = "HIT"
	}
	c.Response().Header().Set("X-Cache", status)
	return c.Blob(http.StatusOK, svgContentType, body)
}

// cacheKey hashes the bound request, so equivalent bodies share a key.
func (h *Handler) cacheKey(kind string, req interface{}) string {
	b, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return cache.Key(kind, b)
}

func (h *Handler) lookup(ctx context.Context, key, format string) ([]byte, bool) {
	if h.cache == nil || key == "" || format != "svg" {
		return nil, false
	}
	body, err := h.cache.Get(ctx, key)
	hit := err == nil
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		h.log.Warn().Err(err).Msg("cache get failed")
	}
	if h.metrics != nil {
		h.metrics.RecordCacheLookup(hit)
	}
	return body, hit
}

func (h *Handler) store(ctx context.Context, key string, body []byte) {
	if h.cache == nil || key == "" {
		return
	}
	if err := h.cache.Set(ctx, key, body, h.ttl); err != nil {
		h.log.Warn().Err(err).Msg("cache set failed")
	}
}
