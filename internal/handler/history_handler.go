package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"openlens/internal/auth"
	"openlens/internal/errors"
	"openlens/internal/service"
)

// HistoryHandler handles search history endpoints. All routes require an
// authenticated identity; rows are scoped strictly to the caller.
type HistoryHandler struct {
	historyService service.HistoryService
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// List godoc
// @Summary List the caller's search history
// @Tags history
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /history [get]
func (h *HistoryHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	page, err := h.historyService.List(c.Request().Context(), userID,
		intQueryParam(c, "page", 1), intQueryParam(c, "pageSize", 0))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
		"pages":    page.Pages,
		"history":  page.Items,
	})
}

// DeleteOne godoc
// @Summary Delete one search history item
// @Tags history
// @Produce json
// @Security BearerAuth
// @Param id path string true "History item ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /history/{id} [delete]
func (h *HistoryHandler) DeleteOne(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Malformed IDs cannot match any row the caller owns.
		httpErr := errors.MapErrorToHTTP(errors.ErrHistoryNotFound)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	if err := h.historyService.DeleteOne(c.Request().Context(), userID, id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "search history item deleted",
	})
}

// Clear godoc
// @Summary Clear the caller's entire search history
// @Tags history
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /history [delete]
func (h *HistoryHandler) Clear(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	if err := h.historyService.ClearAll(c.Request().Context(), userID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "search history cleared",
	})
}
