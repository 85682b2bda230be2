package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/datavault/internal/inventory"
	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/suggest"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]any{"error": message})
}

// writeError maps typed errors to a status code and body. Anything untyped is
// logged and reported as an internal error with the given fallback message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var verr *model.ValidationError
	var rl *suggest.RateLimitError
	switch {
	case errors.Is(err, inventory.ErrAlreadySold):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
	case errors.As(err, &rl):
		w.Header().Set("Retry-After", strconv.Itoa(max(int(time.Until(rl.ResetAt).Seconds()), 1)))
		jsonResponse(w, http.StatusTooManyRequests, map[string]any{
			"error":    rl.Error(),
			"kind":     suggest.Kind(err),
			"reset_at": rl.ResetAt,
		})
	case suggest.IsMalformedResponse(err), suggest.IsServiceUnavailable(err):
		jsonResponse(w, http.StatusBadGateway, map[string]any{
			"error": err.Error(),
			"kind":  suggest.Kind(err),
		})
	default:
		slog.Error(fallback, "error", err)
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}
