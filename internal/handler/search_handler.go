package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"openlens/internal/auth"
	"openlens/internal/errors"
	"openlens/internal/model"
	"openlens/internal/openverse"
	"openlens/internal/service"
)

const (
	defaultSearchPageSize = 20
	maxSearchPageSize     = 50
)

// reservedSearchParams are the query keys with dedicated meaning; every other
// key is forwarded to the upstream API as a filter.
var reservedSearchParams = map[string]bool{
	"q":         true,
	"mediaType": true,
	"page":      true,
	"pageSize":  true,
}

// SearchHandler handles media search, detail, related and stats endpoints.
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search godoc
// @Summary Search openly licensed media
// @Tags search
// @Produce json
// @Param q query string true "Search query"
// @Param mediaType query string false "image|audio|video|all (default all)"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 50)"
// @Success 200 {object} openverse.SearchResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /search [get]
func (h *SearchHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "query parameter q is required",
			Code:  "QUERY_REQUIRED",
		})
	}

	mediaType := model.MediaTypeAll
	if raw := c.QueryParam("mediaType"); raw != "" {
		mediaType = model.MediaType(raw)
		if !mediaType.Valid() {
			httpErr := errors.MapErrorToHTTP(errors.ErrInvalidMediaType)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
	}

	params := openverse.SearchParams{
		Query:     query,
		MediaType: mediaType,
		Page:      intQueryParam(c, "page", 1),
		PageSize:  intQueryParam(c, "pageSize", defaultSearchPageSize),
		Filters:   filterParams(c),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > maxSearchPageSize {
		params.PageSize = defaultSearchPageSize
	}

	var userID *uuid.UUID
	if id, ok := auth.UserIDFromContext(c); ok {
		userID = &id
	}

	result, err := h.searchService.Search(c.Request().Context(), params, userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, result)
}

// Detail godoc
// @Summary Get a single media item
// @Tags search
// @Produce json
// @Param type path string true "Media type (image or audio)"
// @Param id path string true "Media ID"
// @Success 200 {object} openverse.MediaResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /media/{type}/{id} [get]
func (h *SearchHandler) Detail(c echo.Context) error {
	result, err := h.searchService.Detail(c.Request().Context(), model.MediaType(c.Param("type")), c.Param("id"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, result)
}

// Related godoc
// @Summary Get media related to an item
// @Tags search
// @Produce json
// @Param type path string true "Media type (image or audio)"
// @Param id path string true "Media ID"
// @Success 200 {object} openverse.SearchResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /media/{type}/{id}/related [get]
func (h *SearchHandler) Related(c echo.Context) error {
	result, err := h.searchService.Related(c.Request().Context(), model.MediaType(c.Param("type")), c.Param("id"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, result)
}

// Stats godoc
// @Summary Get upstream provider statistics
// @Tags search
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} errors.ErrorResponse
// @Router /stats [get]
func (h *SearchHandler) Stats(c echo.Context) error {
	stats, err := h.searchService.Stats(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, stats)
}

// filterParams collects every non-reserved query parameter.
func filterParams(c echo.Context) map[string]string {
	filters := map[string]string{}
	for key, values := range c.QueryParams() {
		if reservedSearchParams[key] || len(values) == 0 || values[0] == "" {
			continue
		}
		filters[key] = values[0]
	}
	return filters
}

func intQueryParam(c echo.Context, key string, def int) int {
	if raw := c.QueryParam(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}
