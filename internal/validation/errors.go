package validation

import (
	"errors"
	"net/http"

	"github.com/emma-crm/warden/internal/relevance"
)

// Domain errors for validation operations.
var (
	ErrInvalidRequest = errors.New("invalid validation request")
	ErrEmptyBatch     = errors.New("batch contains no requests")
	ErrExportFailed   = errors.New("audit export failed")
)

// MapHTTPStatus maps validation domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrEmptyBatch) {
		return http.StatusBadRequest
	}
	if errors.Is(err, relevance.ErrInvalidPolicy) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
