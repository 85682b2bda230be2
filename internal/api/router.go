package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/datavault/internal/inventory"
	"github.com/erazemk/datavault/internal/suggest"
	"github.com/erazemk/datavault/internal/telemetry"
)

// Deps are the services the API serves.
type Deps struct {
	DB       *sql.DB
	Repo     *inventory.Repository
	Gateway  *suggest.Gateway // nil disables suggestion endpoints
	Metrics  *telemetry.Metrics
	Currency string
	Now      func() time.Time
}

// NewRouter creates the API router with all endpoints registered, wrapped in
// the request id and logging middleware.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}

	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{DB: d.DB, Repo: d.Repo, Now: d.Now}
	collectionHandler := &CollectionHandler{Repo: d.Repo, Currency: d.Currency, Now: d.Now}
	suggestHandler := &SuggestHandler{Repo: d.Repo, Gateway: d.Gateway}

	// Items.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("POST /api/items/random", itemsHandler.CreateRandom)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("PUT /api/items/{id}", itemsHandler.Update)
	mux.HandleFunc("DELETE /api/items/{id}", itemsHandler.Delete)
	mux.HandleFunc("POST /api/items/{id}/sell", itemsHandler.Sell)
	mux.HandleFunc("POST /api/items/{id}/revalue", itemsHandler.Revalue)
	mux.HandleFunc("PUT /api/items/{id}/image", itemsHandler.UploadImage)
	mux.HandleFunc("GET /api/items/{id}/image", itemsHandler.GetImage)

	// Collection views.
	mux.HandleFunc("GET /api/categories", collectionHandler.Categories)
	mux.HandleFunc("GET /api/stats", collectionHandler.Stats)
	mux.HandleFunc("GET /api/report", collectionHandler.Report)

	// Suggestions.
	mux.HandleFunc("POST /api/suggest", suggestHandler.Fields)
	mux.HandleFunc("POST /api/items/{id}/estimate", suggestHandler.Estimate)
	mux.HandleFunc("GET /api/usage", suggestHandler.Usage)

	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	return RequestID(LoggingMiddleware(d.Metrics)(mux))
}
