package source

import (
	"testing"
	"time"
)

func TestWindowContains(t *testing.T) {
	t.Parallel()

	since := time.Date(2025, time.November, 8, 12, 0, 0, 0, time.UTC)
	w := Window{Since: since}

	inside := float64(since.Add(time.Hour).Unix())
	outside := float64(since.Add(-time.Hour).Unix())
	boundary := float64(since.Unix())

	if !w.Contains(inside) {
		t.Fatalf("expected %v inside window", inside)
	}
	if w.Contains(outside) {
		t.Fatalf("expected %v outside window", outside)
	}
	if !w.Contains(boundary) {
		t.Fatalf("expected the lower bound itself to be included")
	}
}

func TestLastHoursDefault(t *testing.T) {
	t.Parallel()

	w := LastHours(0)
	age := time.Since(w.Since)

	if age < 23*time.Hour || age > 25*time.Hour {
		t.Fatalf("expected a ~24h window, got %v", age)
	}
}
