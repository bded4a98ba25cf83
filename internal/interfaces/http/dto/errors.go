package dto

import "net/http"

// Error codes produced by the HTTP layer itself. Domain errors keep the code
// they were raised with.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Malformed requests and date selection errors -> 400
	ErrCodeBadRequest:       http.StatusBadRequest,
	"INVALID_INPUT":         http.StatusBadRequest,
	"INVALID_DATE_RANGE":    http.StatusBadRequest,
	"EMPTY_DATE_RANGE":      http.StatusBadRequest,
	"INVALID_RANGE_TYPE":    http.StatusBadRequest,
	"DATE_RANGE_TOO_LONG":   http.StatusBadRequest,
	"INVALID_EXPORT_FORMAT": http.StatusBadRequest,

	// Authentication -> 401
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	ErrCodeTokenRevoked:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,

	// Access scope -> 403
	"FORBIDDEN":            http.StatusForbidden,
	"INCOME_ACCESS_DENIED": http.StatusForbidden,
	"NO_ACCESSIBLE_DATES":  http.StatusForbidden,

	// Lookups -> 404
	"NOT_FOUND":     http.StatusNotFound,
	"UNKNOWN_VENUE": http.StatusNotFound,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
