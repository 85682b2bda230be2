package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/erazemk/datavault/internal/inventory"
	"github.com/erazemk/datavault/internal/query"
	"github.com/erazemk/datavault/internal/report"
	"github.com/erazemk/datavault/internal/stats"
)

// CollectionHandler serves aggregate views of the collection.
type CollectionHandler struct {
	Repo     *inventory.Repository
	Currency string
	Now      func() time.Time
}

// Categories handles GET /api/categories.
func (h *CollectionHandler) Categories(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Repo.Categories())
}

// Stats handles GET /api/stats. The list query parameters narrow the items
// the statistics are computed over.
func (h *CollectionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	spec, err := parseQuery(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, stats.Compute(query.Apply(h.Repo.Items(), spec)))
}

// Report handles GET /api/report?format=md|html|text|xlsx.
func (h *CollectionHandler) Report(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	spec, err := parseQuery(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep := report.Build(query.Apply(h.Repo.Items(), spec), h.Currency, h.Now())
	var buf bytes.Buffer
	if err := rep.Write(&buf, format); err != nil {
		writeError(w, err, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format == report.FormatXLSX {
		w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
