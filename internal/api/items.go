package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/datavault/internal/imaging"
	"github.com/erazemk/datavault/internal/inventory"
	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/query"
	"github.com/erazemk/datavault/internal/store"
	"github.com/erazemk/datavault/internal/valuation"
)

// maxUploadBytes bounds the multipart body of a photo upload.
const maxUploadBytes = 10 << 20

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB   *sql.DB
	Repo *inventory.Repository
	Now  func() time.Time
}

// ItemView is an item with its derived metrics.
type ItemView struct {
	model.Item
	Sold             bool    `json:"sold"`
	Profit           float64 `json:"profit"`
	ProfitPercentage string  `json:"profitPercentage"`
	Holding          string  `json:"holding"`
}

func viewOf(item model.Item, now time.Time) ItemView {
	return ItemView{
		Item:             item,
		Sold:             item.Sold(),
		Profit:           valuation.Profit(item),
		ProfitPercentage: valuation.ProfitPercentage(item),
		Holding:          valuation.HoldingDuration(item.PurchaseDate, item.SaleDate, now),
	}
}

// parseQuery reads the view spec from q, status, category, sort and order.
func parseQuery(r *http.Request) (query.Spec, error) {
	v := r.URL.Query()
	status, err := query.ParseStatus(v.Get("status"))
	if err != nil {
		return query.Spec{}, err
	}
	key, err := query.ParseSortKey(v.Get("sort"))
	if err != nil {
		return query.Spec{}, err
	}
	dir, err := query.ParseDirection(v.Get("order"))
	if err != nil {
		return query.Spec{}, err
	}
	return query.Spec{
		Search:    v.Get("q"),
		Status:    status,
		Category:  v.Get("category"),
		SortKey:   key,
		Direction: dir,
	}, nil
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	spec, err := parseQuery(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.Now()
	items := query.Apply(h.Repo.Items(), spec)
	views := make([]ItemView, len(items))
	for i, item := range items {
		views[i] = viewOf(item, now)
	}
	jsonResponse(w, http.StatusOK, views)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var d model.Draft
	if err := decodeJSON(r, &d); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d.PurchaseDate = model.NormalizeDate(d.PurchaseDate)
	if err := d.Validate(); err != nil {
		writeError(w, err, "invalid item")
		return
	}

	item, err := h.Repo.Add(r.Context(), d.Item())
	if err != nil {
		writeError(w, err, "failed to create item")
		return
	}
	jsonResponse(w, http.StatusCreated, viewOf(item, h.Now()))
}

// CreateRandom handles POST /api/items/random.
func (h *ItemsHandler) CreateRandom(w http.ResponseWriter, r *http.Request) {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	now := h.Now()

	item, err := h.Repo.Add(r.Context(), inventory.RandomItem(rng, now))
	if err != nil {
		writeError(w, err, "failed to create item")
		return
	}
	jsonResponse(w, http.StatusCreated, viewOf(item, now))
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, found := h.Repo.Get(id)
	if !found {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, viewOf(item, h.Now()))
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var d model.Draft
	if err := decodeJSON(r, &d); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d.PurchaseDate = model.NormalizeDate(d.PurchaseDate)
	if err := d.Validate(); err != nil {
		writeError(w, err, "invalid item")
		return
	}

	item := d.Item()
	item.ID = id
	if strings.TrimSpace(d.Image) == "" {
		item.Image = ""
	}
	h.respondAfter(w, id, func() (bool, error) {
		found, err := h.Repo.Update(r.Context(), item)
		if found && err == nil {
			h.dropUnusedImage(r.Context(), id)
		}
		return found, err
	}, "failed to update item")
}

// dropUnusedImage deletes the stored photo of an item whose image no longer
// points at it.
func (h *ItemsHandler) dropUnusedImage(ctx context.Context, id int64) {
	item, ok := h.Repo.Get(id)
	if !ok || item.Image == imageURL(id) {
		return
	}
	if err := store.DeleteItemImage(ctx, h.DB, id); err != nil {
		slog.Warn("failed to delete item image", "item_id", id, "error", err)
	}
}

func imageURL(id int64) string {
	return fmt.Sprintf("/api/items/%d/image", id)
}

type sellRequest struct {
	SalePrice *float64 `json:"salePrice"`
}

// Sell handles POST /api/items/{id}/sell.
func (h *ItemsHandler) Sell(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req sellRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkAmount(req.SalePrice, "salePrice"); err != nil {
		writeError(w, err, "invalid sale")
		return
	}

	h.respondAfter(w, id, func() (bool, error) { return h.Repo.Sell(r.Context(), id, *req.SalePrice) }, "failed to sell item")
}

type revalueRequest struct {
	CurrentValue *float64 `json:"currentValue"`
}

// Revalue handles POST /api/items/{id}/revalue. Sold items cannot be revalued.
func (h *ItemsHandler) Revalue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req revalueRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkAmount(req.CurrentValue, "currentValue"); err != nil {
		writeError(w, err, "invalid value")
		return
	}

	if item, found := h.Repo.Get(id); found && item.Sold() {
		jsonError(w, http.StatusConflict, "sold items cannot be revalued")
		return
	}
	h.respondAfter(w, id, func() (bool, error) { return h.Repo.Revalue(r.Context(), id, *req.CurrentValue) }, "failed to revalue item")
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	found, err := h.Repo.Remove(r.Context(), id)
	if err != nil {
		writeError(w, err, "failed to delete item")
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err := store.DeleteItemImage(r.Context(), h.DB, id); err != nil {
		slog.Warn("failed to delete item image", "item_id", id, "error", err)
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles PUT /api/items/{id}/image. The photo is stored as a
// bounded JPEG and the item's image points at it.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if _, found := h.Repo.Get(id); !found {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Normalize(file, imaging.Options{MaxBytes: maxUploadBytes})
	switch {
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		jsonError(w, http.StatusBadRequest, "image must be JPEG or PNG")
		return
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	case err != nil:
		writeError(w, err, "failed to process image")
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		writeError(w, err, "failed to save image")
		return
	}

	h.respondAfter(w, id, func() (bool, error) { return h.Repo.SetImage(r.Context(), id, imageURL(id)) }, "failed to update item")
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// respondAfter runs a repository mutation and responds with the updated item,
// or 404 if the id is unknown.
func (h *ItemsHandler) respondAfter(w http.ResponseWriter, id int64, mutate func() (bool, error), fallback string) {
	found, err := mutate()
	if err != nil {
		writeError(w, err, fallback)
		return
	}
	item, ok := h.Repo.Get(id)
	if !found || !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, viewOf(item, h.Now()))
}

// checkAmount requires a finite, non-negative amount.
func checkAmount(v *float64, field string) error {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return &model.ValidationError{Fields: []string{field}}
	}
	return nil
}
