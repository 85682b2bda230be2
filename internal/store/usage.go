package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Keys holding the estimation usage counter.
const (
	ClickCountKey = "clickCount"
	ResetTimeKey  = "resetTime"
)

// LoadUsage returns the stored estimation count and the time it resets.
// A zero reset time means no usage has been recorded.
func LoadUsage(ctx context.Context, db *sql.DB) (int, time.Time, error) {
	rawCount, ok, err := GetValue(ctx, db, ClickCountKey)
	if err != nil || !ok {
		return 0, time.Time{}, err
	}
	count, err := strconv.Atoi(rawCount)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("parsing %s: %w", ClickCountKey, err)
	}

	rawReset, ok, err := GetValue(ctx, db, ResetTimeKey)
	if err != nil || !ok {
		return count, time.Time{}, err
	}
	reset, err := time.Parse(time.RFC3339, rawReset)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("parsing %s: %w", ResetTimeKey, err)
	}
	return count, reset, nil
}

// SaveUsage stores the estimation count and reset time together.
func SaveUsage(ctx context.Context, db *sql.DB, count int, reset time.Time) error {
	err := setValues(ctx, db, map[string]string{
		ClickCountKey: strconv.Itoa(count),
		ResetTimeKey:  reset.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("saving usage: %w", err)
	}
	return nil
}

// UsageStore adapts the usage functions to the limiter's persistence interface.
type UsageStore struct {
	DB *sql.DB
}

// LoadUsage returns the stored count and reset time.
func (s UsageStore) LoadUsage(ctx context.Context) (int, time.Time, error) {
	return LoadUsage(ctx, s.DB)
}

// SaveUsage stores the count and reset time.
func (s UsageStore) SaveUsage(ctx context.Context, count int, reset time.Time) error {
	return SaveUsage(ctx, s.DB, count, reset)
}
