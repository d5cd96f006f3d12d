package poll

import (
	"context"
	"testing"
	"time"
)

func TestUntilStopsAtFirstSuccess(t *testing.T) {
	tests := []struct {
		name        string
		trueAt      int // attempt on which the predicate becomes true, 0 = never
		maxAttempts int
		wantAttempt int
		wantCalls   int
	}{
		{
			name:        "True on first attempt",
			trueAt:      1,
			maxAttempts: 30,
			wantAttempt: 1,
			wantCalls:   1,
		},
		{
			name:        "True mid-loop",
			trueAt:      7,
			maxAttempts: 30,
			wantAttempt: 7,
			wantCalls:   7,
		},
		{
			name:        "True on last attempt",
			trueAt:      5,
			maxAttempts: 5,
			wantAttempt: 5,
			wantCalls:   5,
		},
		{
			name:        "Never true",
			trueAt:      0,
			maxAttempts: 5,
			wantAttempt: 0,
			wantCalls:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got := Until(context.Background(), tt.maxAttempts, time.Millisecond, func() bool {
				calls++
				return tt.trueAt != 0 && calls == tt.trueAt
			})

			if got != tt.wantAttempt {
				t.Errorf("Until() = %d, want %d", got, tt.wantAttempt)
			}
			if calls != tt.wantCalls {
				t.Errorf("predicate called %d times, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestUntilHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	got := Until(ctx, 100, 10*time.Millisecond, func() bool {
		calls++
		if calls == 2 {
			cancel()
		}
		return false
	})

	if got != 0 {
		t.Errorf("Until() = %d, want 0 after cancellation", got)
	}
	if calls >= 100 {
		t.Errorf("predicate called %d times, expected early stop", calls)
	}
}
