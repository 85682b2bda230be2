package store

import (
	"context"
	"testing"

	"github.com/erazemk/datavault/internal/db"
)

func TestGetValueMissing(t *testing.T) {
	database := db.NewTestDB(t)

	value, ok, err := GetValue(context.Background(), database, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok || value != "" {
		t.Errorf("expected unset key, got %q (ok=%v)", value, ok)
	}
}

func TestSetValueReplaces(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := SetValue(ctx, database, "k", "one"); err != nil {
		t.Fatal(err)
	}
	if err := SetValue(ctx, database, "k", "two"); err != nil {
		t.Fatal(err)
	}

	value, ok, err := GetValue(ctx, database, "k")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || value != "two" {
		t.Errorf("expected 'two', got %q (ok=%v)", value, ok)
	}
}
