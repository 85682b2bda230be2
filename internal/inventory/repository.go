// Package inventory holds the item collection and keeps it in sync with durable
// storage. Every mutation is written through before it becomes visible.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/query"
)

// Persister loads and stores the whole collection.
type Persister interface {
	Load(ctx context.Context) ([]model.Item, error)
	Save(ctx context.Context, items []model.Item) error
}

// Op names a mutation, as passed to change listeners.
type Op string

// Mutation kinds.
const (
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpSell    Op = "sell"
	OpRevalue Op = "revalue"
	OpRemove  Op = "remove"
)

// ErrAlreadySold is returned by Sell for an item that already carries a sale.
var ErrAlreadySold = errors.New("item already sold")

// Listener is notified after a mutation has been saved.
type Listener func(op Op, item model.Item, count int)

// Repository is the single source of truth for items. Items are kept newest first.
type Repository struct {
	mu        sync.RWMutex
	items     []model.Item
	lastID    int64
	persister Persister
	listeners []Listener

	now func() time.Time
}

// New creates an empty repository backed by p.
func New(p Persister) *Repository {
	return &Repository{persister: p, now: time.Now}
}

// SetClock replaces the time source.
func (r *Repository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// OnChange registers a listener for saved mutations.
func (r *Repository) OnChange(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Load replaces the in-memory collection with the persisted one.
func (r *Repository) Load(ctx context.Context) error {
	items, err := r.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading items: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
	r.lastID = 0
	for _, item := range items {
		r.lastID = max(r.lastID, item.ID)
	}
	return nil
}

// Items returns a copy of the collection in stored order.
func (r *Repository) Items() []model.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.items)
}

// Len returns the number of items.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Get returns the item with the given id.
func (r *Repository) Get(id int64) (model.Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return model.Item{}, false
	}
	return r.items[i].Clone(), true
}

// Categories returns the distinct categories currently in the collection.
func (r *Repository) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return query.Categories(r.items)
}

// Add assigns identity to item and inserts it at the head of the collection.
// Any id, creation time or sale fields on the argument are ignored.
func (r *Repository) Add(ctx context.Context, item model.Item) (model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UnixMilli()
	item = item.Clone()
	item.ID = max(now, r.lastID+1)
	item.CreatedAt = now
	item.SalePrice = nil
	item.SaleDate = ""
	if item.Image == "" {
		item.Image = model.DefaultImage
	}

	next := make([]model.Item, 0, len(r.items)+1)
	next = append(next, item)
	next = append(next, r.items...)
	if err := r.commit(ctx, next); err != nil {
		return model.Item{}, err
	}
	r.lastID = item.ID
	r.notify(OpAdd, item)
	return item.Clone(), nil
}

// Update replaces the editable fields of the item with item.ID. Creation time
// and sale fields are kept from the stored record, and so is the image when
// item.Image is empty.
func (r *Repository) Update(ctx context.Context, item model.Item) (bool, error) {
	return r.mutate(ctx, OpUpdate, item.ID, func(stored *model.Item) bool {
		updated := item.Clone()
		updated.CreatedAt = stored.CreatedAt
		updated.SalePrice = stored.SalePrice
		updated.SaleDate = stored.SaleDate
		if updated.Image == "" {
			updated.Image = stored.Image
		}
		*stored = updated
		return true
	})
}

// Sell records a sale at price, dated today. Selling an item twice leaves the
// first sale in place and returns ErrAlreadySold.
func (r *Repository) Sell(ctx context.Context, id int64, price float64) (bool, error) {
	var sold bool
	found, err := r.mutate(ctx, OpSell, id, func(stored *model.Item) bool {
		if stored.Sold() {
			sold = true
			return false
		}
		stored.SalePrice = model.Price(price)
		stored.SaleDate = model.FormatDate(r.now())
		return true
	})
	if err == nil && sold {
		return found, ErrAlreadySold
	}
	return found, err
}

// SetImage points the item's image at url.
func (r *Repository) SetImage(ctx context.Context, id int64, url string) (bool, error) {
	return r.mutate(ctx, OpUpdate, id, func(stored *model.Item) bool {
		if stored.Image == url {
			return false
		}
		stored.Image = url
		return true
	})
}

// Revalue sets a new current valuation.
func (r *Repository) Revalue(ctx context.Context, id int64, value float64) (bool, error) {
	return r.mutate(ctx, OpRevalue, id, func(stored *model.Item) bool {
		stored.CurrentValue = value
		return true
	})
}

// Remove deletes the item with the given id.
func (r *Repository) Remove(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return false, nil
	}
	removed := r.items[i]
	next := slices.Delete(cloneAll(r.items), i, i+1)
	if err := r.commit(ctx, next); err != nil {
		return true, err
	}
	r.notify(OpRemove, removed)
	return true, nil
}

// mutate applies fn to a copy of the item with the given id and commits the
// result. fn returns false to leave the collection untouched.
func (r *Repository) mutate(ctx context.Context, op Op, id int64, fn func(*model.Item) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return false, nil
	}
	next := cloneAll(r.items)
	if !fn(&next[i]) {
		return true, nil
	}
	if err := r.commit(ctx, next); err != nil {
		return true, err
	}
	r.notify(op, next[i])
	return true, nil
}

// commit saves next and swaps it in only once the write succeeded.
// Caller must hold r.mu.
func (r *Repository) commit(ctx context.Context, next []model.Item) error {
	if err := r.persister.Save(ctx, next); err != nil {
		return fmt.Errorf("saving items: %w", err)
	}
	r.items = next
	return nil
}

// Caller must hold r.mu.
func (r *Repository) notify(op Op, item model.Item) {
	for _, l := range r.listeners {
		l(op, item.Clone(), len(r.items))
	}
}

// Caller must hold r.mu.
func (r *Repository) index(id int64) int {
	return slices.IndexFunc(r.items, func(item model.Item) bool { return item.ID == id })
}

func cloneAll(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
