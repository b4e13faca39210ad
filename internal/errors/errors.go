package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrMediaNotFound is returned when a media item does not exist upstream.
	ErrMediaNotFound = errors.New("media item not found")
	// ErrHistoryNotFound is returned when a history row does not exist or is owned by another user.
	ErrHistoryNotFound = errors.New("search history item not found")
	// ErrInvalidMediaType is returned for media types outside image|audio|video|all.
	ErrInvalidMediaType = errors.New("invalid media type")
	// ErrUpstreamUnavailable is returned when the Openverse API cannot be reached or fails.
	ErrUpstreamUnavailable = errors.New("media provider unavailable")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Upstream and unknown
// failures deliberately carry a generic message so internals never leak.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrMediaNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "MEDIA_NOT_FOUND")
	case errors.Is(err, ErrHistoryNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "HISTORY_NOT_FOUND")
	case errors.Is(err, ErrInvalidMediaType):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_MEDIA_TYPE")
	case errors.Is(err, ErrUpstreamUnavailable):
		return NewHTTPError(http.StatusBadGateway, "media provider unavailable, try again later", "UPSTREAM_UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
