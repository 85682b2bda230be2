package api

import (
	"net/http"

	"github.com/erazemk/datavault/internal/inventory"
	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/suggest"
)

// SuggestHandler serves the suggestion gateway.
type SuggestHandler struct {
	Repo    *inventory.Repository
	Gateway *suggest.Gateway
}

type fieldsResponse struct {
	Suggestion suggest.FieldSuggestion `json:"suggestion"`
	Draft      model.Draft             `json:"draft"`
}

func (h *SuggestHandler) available(w http.ResponseWriter) bool {
	if h.Gateway == nil {
		jsonError(w, http.StatusServiceUnavailable, "suggestions are not configured")
		return false
	}
	return true
}

// Fields handles POST /api/suggest. The body is the draft being edited; the
// response carries the suggestion and the draft with it merged in.
func (h *SuggestHandler) Fields(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var d model.Draft
	if err := decodeJSON(r, &d); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.Gateway.SuggestFields(r.Context(), d.Name)
	if err != nil {
		writeError(w, err, "failed to get suggestion")
		return
	}
	s.ApplyTo(&d)
	jsonResponse(w, http.StatusOK, fieldsResponse{Suggestion: s, Draft: d})
}

// Estimate handles POST /api/items/{id}/estimate?scale=numeric|text.
func (h *SuggestHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	scale, ok := suggest.ParseScale(r.URL.Query().Get("scale"))
	if !ok {
		jsonError(w, http.StatusBadRequest, "scale must be numeric or text")
		return
	}
	item, found := h.Repo.Get(id)
	if !found {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	e, err := h.Gateway.Estimate(r.Context(), item, scale)
	if err != nil {
		writeError(w, err, "failed to estimate item")
		return
	}
	jsonResponse(w, http.StatusOK, e)
}

// Usage handles GET /api/usage.
func (h *SuggestHandler) Usage(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	l := h.Gateway.Limiter()
	if l == nil {
		jsonError(w, http.StatusNotFound, "estimations are not limited")
		return
	}
	jsonResponse(w, http.StatusOK, l.Usage())
}
