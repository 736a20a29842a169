package httpServer

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/service"
)

// writeError translates service errors to status codes. Anything unexpected is a
// 500 with a generic message; the detail only goes to the log.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrShipmentNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Shipment not found"})
	case errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
