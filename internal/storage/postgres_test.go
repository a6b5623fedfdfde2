package storage

import (
	"context"
	"testing"
)

func TestListAvailableInterviews_NonPositiveLimit(t *testing.T) {
	// The guard returns before touching the pool, so a zero-value
	// repository is enough.
	repo := &PostgresRepository{}

	for _, limit := range []int{0, -3} {
		got, err := repo.ListAvailableInterviews(context.Background(), "user-1", limit)
		if err != nil {
			t.Fatalf("limit %d: unexpected error: %v", limit, err)
		}
		if got == nil {
			t.Fatalf("limit %d: expected empty slice, got nil", limit)
		}
		if len(got) != 0 {
			t.Errorf("limit %d: expected no interviews, got %d", limit, len(got))
		}
	}
}
