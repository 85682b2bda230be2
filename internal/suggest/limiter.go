package suggest

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultDailyLimit is the number of successful estimations allowed per day.
const DefaultDailyLimit = 20

// UsageStore persists the limiter state.
type UsageStore interface {
	LoadUsage(ctx context.Context) (count int, resetAt time.Time, err error)
	SaveUsage(ctx context.Context, count int, resetAt time.Time) error
}

// Usage is a snapshot of the limiter.
type Usage struct {
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

// Limiter caps successful estimations per calendar day. The count resets at
// the first local midnight after the window opened.
//
// A call takes a slot with Reserve before it is sent, then either Record or
// Release settles it, so concurrent calls never exceed the limit.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	count   int
	pending int
	resetAt time.Time
	store   UsageStore

	now func() time.Time
}

// NewLimiter creates a limiter allowing limit calls per day. store may be nil.
func NewLimiter(limit int, store UsageStore) *Limiter {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &Limiter{limit: limit, store: store, now: time.Now}
}

// SetClock replaces the time source.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Load restores the persisted count.
func (l *Limiter) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	count, resetAt, err := l.store.LoadUsage(ctx)
	if err != nil {
		return fmt.Errorf("loading usage: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.count = count
	l.resetAt = resetAt
	return nil
}

// Reserve takes a slot for one call, or returns a RateLimitError if the
// allowance is used up, counting calls still in flight.
func (l *Limiter) Reserve() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roll()
	if l.count+l.pending >= l.limit {
		return &RateLimitError{Limit: l.limit, ResetAt: l.resetAt}
	}
	l.pending++
	return nil
}

// Release gives back a reserved slot whose call failed.
func (l *Limiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending > 0 {
		l.pending--
	}
}

// Record counts one successful call, settling its reservation, and persists
// the new count.
func (l *Limiter) Record(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roll()
	if l.pending > 0 {
		l.pending--
	}
	l.count++
	if l.store == nil {
		return nil
	}
	if err := l.store.SaveUsage(ctx, l.count, l.resetAt); err != nil {
		return fmt.Errorf("saving usage: %w", err)
	}
	return nil
}

// Usage returns the current state.
func (l *Limiter) Usage() Usage {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roll()
	return Usage{
		Used:      l.count,
		Limit:     l.limit,
		Remaining: max(l.limit-l.count-l.pending, 0),
		ResetAt:   l.resetAt,
	}
}

// roll starts a new window once the reset time has passed.
// Caller must hold l.mu.
func (l *Limiter) roll() {
	now := l.now()
	if !l.resetAt.IsZero() && now.Before(l.resetAt) {
		return
	}
	l.count = 0
	l.resetAt = nextMidnight(now)
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
