package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/middleware"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/Abdurahmanit/review-service/internal/validator"
	"go.uber.org/zap"
)

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError is the single place domain errors become HTTP statuses.
// Server-side failures are logged with the request's correlation id.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	var verr *validator.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "INVALID_INPUT", Message: "Validation error", Fields: verr.Fields()})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrReviewAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "ALREADY_EXISTS", Message: err.Error()})
	case errors.Is(err, domain.ErrUpstream):
		log.Error("Upstream failure", zap.Error(err), correlationID(r))
		writeJSON(w, http.StatusBadGateway, errorResponse{Code: "UPSTREAM_ERROR", Message: "A dependent service failed"})
	default:
		log.Error("Unhandled error", zap.Error(err), correlationID(r))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL_ERROR", Message: "Server error"})
	}
}

func correlationID(r *http.Request) zap.Field {
	return zap.String("correlation_id", middleware.CorrelationIDFromContext(r.Context()))
}
