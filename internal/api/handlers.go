package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"customerdash/internal/engine"

	"github.com/labstack/echo/v4"
)

// Defaults are the initial widget values handed to the presentation layer.
type Defaults struct {
	MinAge int
	MaxAge int
}

// Handler serves the chart endpoints from the current store.
type Handler struct {
	store    atomic.Pointer[engine.RecordStore]
	defaults Defaults
	stats    *LatencyRecorder
}

// NewHandler accepts a nil store; the API answers 503 until SetStore.
func NewHandler(store *engine.RecordStore, defaults Defaults) *Handler {
	h := &Handler{defaults: defaults, stats: NewLatencyRecorder()}
	if store != nil {
		h.store.Store(store)
	}
	return h
}

// SetStore publishes a loaded store to every subsequent request.
func (h *Handler) SetStore(store *engine.RecordStore) {
	h.store.Store(store)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api", h.stats.Middleware())
	api.GET("/health", h.GetHealth)
	api.GET("/stats", h.GetStats)
	api.GET("/controls", h.GetControls)
	api.GET("/professions", h.GetProfessionVolume)
	api.GET("/professions/gender", h.GetProfessionGender)
	api.GET("/provinces", h.GetGeographicDemand)
	api.GET("/generations", h.GetGenerations)
	api.GET("/income-experience", h.GetIncomeExperience)
	api.GET("/dashboard", h.GetDashboard)
}

var errLoading = echo.NewHTTPError(http.StatusServiceUnavailable, "data is still loading")

func (h *Handler) loaded() (*engine.RecordStore, error) {
	s := h.store.Load()
	if s == nil {
		return nil, errLoading
	}
	return s, nil
}

// pipelineError maps engine error kinds to HTTP statuses.
func pipelineError(err error) error {
	switch {
	case errors.Is(err, engine.ErrInvalidParameter):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, engine.ErrDataIntegrity):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	return err
}

// --- PARAMETERS ---

func (h *Handler) profession(c echo.Context, s *engine.RecordStore) string {
	if p := c.QueryParam("profession"); p != "" {
		return p
	}
	return s.Controls(h.defaults.MinAge, h.defaults.MaxAge).DefaultProfession
}

// ageRange reads min_age/max_age, falling back to the clamped defaults.
func (h *Handler) ageRange(c echo.Context, s *engine.RecordStore) (int, int, error) {
	minAge, maxAge := s.ClampAgeRange(h.defaults.MinAge, h.defaults.MaxAge)
	err := echo.QueryParamsBinder(c).
		Int("min_age", &minAge).
		Int("max_age", &maxAge).
		BindError()
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "min_age and max_age must be integers").SetInternal(err)
	}
	return minAge, maxAge, nil
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// --- HANDLERS ---

func (h *Handler) GetHealth(c echo.Context) error {
	if h.store.Load() == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.stats.Snapshot())
}

func (h *Handler) GetControls(c echo.Context) error {
	s, err := h.loaded()
	if err != nil {
		return err
	}
	return respond(c, s.Controls(h.defaults.MinAge, h.defaults.MaxAge))
}

func (h *Handler) GetProfessionVolume(c echo.Context) error {
	s, err := h.loaded()
	if err != nil {
		return err
	}
	return respond(c, s.ProfessionVolume())
}

func (h *Handler) GetProfessionGender(c echo.Context) error {
	s, err := h.loaded()
	if err != nil {
		return err
	}
	return respond(c, s.ProfessionGender())
}

func (h *Handler) GetGeographicDemand(c echo.Context) error {
	s, err := h.loaded()
	if err != nil {
		return err
	}
	rows, err := s.GeographicDemand()
	if err != nil {
		return pipelineError(err)
	}
	return respond(c, rows)
}

func (h *Handler) GetGenerations(c echo.Context) error {
	s, err := h.loaded()
	if err != nil {
		return err
	}
	rows, err := s.GenerationDistribution(h.profession(c, s))
	if err != nil {
		return pipelineError(err)
	}
	return respond(c, rows)
}

// GetIncomeExperience returns one point per customer in the age range,
// paginated by limit/offset; X-Total-Count carries the unpaginated size.
func (h *Handler) GetIncomeExperience(c echo.Context) error {
	s, err := h.loaded()
	if err != nil {
		return err
	}
	minAge, maxAge, err := h.ageRange(c, s)
	if err != nil {
		return err
	}
	points, err := s.IncomeExperience(minAge, maxAge)
	if err != nil {
		return pipelineError(err)
	}

	total := len(points)
	limit, offset := getPaginationParams(c, total)
	c.Response().Header().Set(headerTotalCount, strconv.Itoa(total))
	if offset >= total {
		return respond(c, points[:0])
	}
	end := total
	if limit < total-offset {
		end = offset + limit
	}
	return respond(c, points[offset:end])
}

func (h *Handler) GetDashboard(c echo.Context) error {
	s, err := h.loaded()
	if err != nil {
		return err
	}
	minAge, maxAge, err := h.ageRange(c, s)
	if err != nil {
		return err
	}
	data, err := s.Dashboard(c.Request().Context(), h.profession(c, s), minAge, maxAge)
	if err != nil {
		return pipelineError(err)
	}
	return respond(c, data)
}
